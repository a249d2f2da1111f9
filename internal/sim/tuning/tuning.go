package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Tuning carries every pilot/solver knob. Loaded from tuning.yaml;
// Defaults() when the file is absent.
type Tuning struct {
	TickRateHz int `yaml:"tick_rate_hz"`

	// RealScale switches the scene into physically-scaled distances, which
	// loosens waypoint buffers and travel timeouts.
	RealScale bool `yaml:"real_scale"`

	// DaysPerSecond is the time compression of the kinematic integrator:
	// simulated days advanced per wall-clock second.
	DaysPerSecond float64 `yaml:"days_per_second"`

	Focus  Focus  `yaml:"focus"`
	Roam   Roam   `yaml:"roam"`
	Fly    Fly    `yaml:"fly"`
	Status Status `yaml:"status"`
}

// Focus tunes the focus-follow pilot.
type Focus struct {
	TravelRate float64 `yaml:"travel_rate"` // per-second damp while gliding in
	TrackRate  float64 `yaml:"track_rate"`  // per-second damp while tracking

	SettleTolerance float64 `yaml:"settle_tolerance"`

	PlanetOffsetMul       float64 `yaml:"planet_offset_mul"`
	PlanetOffsetFrozenMul float64 `yaml:"planet_offset_frozen_mul"`
	MoonSideScale         float64 `yaml:"moon_side_scale"`
	MoonParentClearance   float64 `yaml:"moon_parent_clearance"` // multiples of parent radius

	ReleaseRadiusMul float64 `yaml:"release_radius_mul"`
	ReleaseFloor     float64 `yaml:"release_floor"`

	HomeOffset float64 `yaml:"home_offset"`
}

// Roam tunes the autonomous tour pilot.
type Roam struct {
	WeightSun      float64 `yaml:"weight_sun"`
	WeightPlanet   float64 `yaml:"weight_planet"`
	WeightMoon     float64 `yaml:"weight_moon"`
	WeightAsteroid float64 `yaml:"weight_asteroid"`
	WeightKuiper   float64 `yaml:"weight_kuiper"`
	WeightOort     float64 `yaml:"weight_oort"`

	InnerBias     float64 `yaml:"inner_bias"`     // multiplier on inner categories when preferInner is set
	RepeatPenalty float64 `yaml:"repeat_penalty"` // multiplier on the previously chosen category
	MoonBranchP   float64 `yaml:"moon_branch_p"`  // chance a planet pick resolves into one of its moons

	PlanetBuffer float64 `yaml:"planet_buffer"`
	MoonBuffer   float64 `yaml:"moon_buffer"`
	FieldBuffer  float64 `yaml:"field_buffer"`
	BufferJitter float64 `yaml:"buffer_jitter"`
	RealScaleMul float64 `yaml:"real_scale_mul"` // buffer multiplier in real-scale mode

	// Earth exclusion. MapEnterBuffer mirrors the ground-transition
	// threshold of the map widget; the roam pilot must always stay
	// EarthRadius+MapEnterBuffer+EarthMargin away from Earth's center.
	MapEnterBuffer float64 `yaml:"map_enter_buffer"`
	EarthMargin    float64 `yaml:"earth_margin"`

	ArrivalPlanet float64 `yaml:"arrival_planet"`
	ArrivalEarth  float64 `yaml:"arrival_earth"`
	ArrivalMoon   float64 `yaml:"arrival_moon"`
	ArrivalField  float64 `yaml:"arrival_field"`

	HoldBodyMinSec  float64 `yaml:"hold_body_min_sec"`
	HoldBodyMaxSec  float64 `yaml:"hold_body_max_sec"`
	HoldFieldMinSec float64 `yaml:"hold_field_min_sec"`
	HoldFieldMaxSec float64 `yaml:"hold_field_max_sec"`

	TurnsBodyMin  float64 `yaml:"turns_body_min"`
	TurnsBodyMax  float64 `yaml:"turns_body_max"`
	TurnsFieldMin float64 `yaml:"turns_field_min"`
	TurnsFieldMax float64 `yaml:"turns_field_max"`

	TravelTimeoutSec     float64 `yaml:"travel_timeout_sec"`
	TravelTimeoutRealSec float64 `yaml:"travel_timeout_real_sec"`

	SpeedMin        float64 `yaml:"speed_min"`
	SpeedMax        float64 `yaml:"speed_max"`
	SpeedDistFactor float64 `yaml:"speed_dist_factor"` // speed per unit of remaining distance
	SteerRate       float64 `yaml:"steer_rate"`        // per-second damp of the ship-forward vector
	MoveDamp        float64 `yaml:"move_damp"`         // per-second damp of the position step
	StepMaxFrac     float64 `yaml:"step_max_frac"`     // travel step cap as fraction of remaining distance
	OrbitInward     float64 `yaml:"orbit_inward"`      // inward blend while circling
	StrafeMax       float64 `yaml:"strafe_max"`

	NearLookMul  float64 `yaml:"near_look_mul"` // look at focus within this multiple of arrival distance
	LookRate     float64 `yaml:"look_rate"`     // per-second damp of the look target
	LookOffDecay float64 `yaml:"look_off_decay"`
}

// Fly tunes the manual 6DOF pilot.
type Fly struct {
	SpeedMin        float64 `yaml:"speed_min"`
	SpeedMax        float64 `yaml:"speed_max"`
	SpeedDistFactor float64 `yaml:"speed_dist_factor"` // speed per unit of distance from origin
	BoostMul        float64 `yaml:"boost_mul"`
	LookSensitivity float64 `yaml:"look_sensitivity"` // radians per input unit
	LookAhead       float64 `yaml:"look_ahead"`       // look target distance ahead of the camera
	ProgramTTLMs    int     `yaml:"program_ttl_ms"`   // validity window of programmatic axis input
}

// Status throttles the pilot status emitter.
type Status struct {
	MinIntervalMs int `yaml:"min_interval_ms"`
}

// Load reads tuning.yaml on top of Defaults so partial files stay valid.
func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if t.TickRateHz <= 0 {
		t.TickRateHz = Defaults().TickRateHz
	}
	return t, nil
}

// Defaults returns the shipped tuning.
func Defaults() Tuning {
	return Tuning{
		TickRateHz:    30,
		DaysPerSecond: 0.25,
		Focus: Focus{
			TravelRate:            3.0,
			TrackRate:             1.2,
			SettleTolerance:       0.25,
			PlanetOffsetMul:       4.0,
			PlanetOffsetFrozenMul: 2.5,
			MoonSideScale:         2.0,
			MoonParentClearance:   1.5,
			ReleaseRadiusMul:      8.0,
			ReleaseFloor:          12.0,
			HomeOffset:            90.0,
		},
		Roam: Roam{
			WeightSun:      0.06,
			WeightPlanet:   0.46,
			WeightMoon:     0.22,
			WeightAsteroid: 0.12,
			WeightKuiper:   0.08,
			WeightOort:     0.06,
			InnerBias:      3.0,
			RepeatPenalty:  0.35,
			MoonBranchP:    0.6,

			PlanetBuffer: 3.0,
			MoonBuffer:   4.0,
			FieldBuffer:  25.0,
			BufferJitter: 2.0,
			RealScaleMul: 4.0,

			MapEnterBuffer: 6.0,
			EarthMargin:    2.0,

			ArrivalPlanet: 2.5,
			ArrivalEarth:  1.5,
			ArrivalMoon:   2.0,
			ArrivalField:  8.0,

			HoldBodyMinSec:  18,
			HoldBodyMaxSec:  40,
			HoldFieldMinSec: 8,
			HoldFieldMaxSec: 16,

			TurnsBodyMin:  0.75,
			TurnsBodyMax:  2.0,
			TurnsFieldMin: 0.25,
			TurnsFieldMax: 0.6,

			TravelTimeoutSec:     45,
			TravelTimeoutRealSec: 120,

			SpeedMin:        2.0,
			SpeedMax:        60.0,
			SpeedDistFactor: 0.35,
			SteerRate:       2.2,
			MoveDamp:        4.0,
			StepMaxFrac:     0.5,
			OrbitInward:     0.15,
			StrafeMax:       0.5,

			NearLookMul:  3.0,
			LookRate:     3.5,
			LookOffDecay: 0.4,
		},
		Fly: Fly{
			SpeedMin:        1.5,
			SpeedMax:        80.0,
			SpeedDistFactor: 0.25,
			BoostMul:        4.0,
			LookSensitivity: 0.003,
			LookAhead:       50.0,
			ProgramTTLMs:    500,
		},
		Status: Status{MinIntervalMs: 200},
	}
}
