package catalog

func f(v float64) *float64 { return &v }

// Default returns the built-in solar system used when no bodies.yaml is
// supplied. Radii and distances are illustrative scene units (not to real
// scale); periods and angles are real values.
func Default() *Catalog {
	c, err := build([]Body{
		{Name: "Sun", Kind: KindStar, Radius: 30, RotationPeriodDays: 25.38},

		{Name: "Mercury", Kind: KindPlanet, Radius: 1.6, Distance: 80, OrbitPeriodDays: 87.97, RotationPeriodDays: 58.65, AxialTiltDeg: 0.03},
		{Name: "Venus", Kind: KindPlanet, Radius: 3.8, Distance: 120, OrbitPeriodDays: 224.70, RotationPeriodDays: -243.02, AxialTiltDeg: 177.4},
		{Name: "Earth", Kind: KindPlanet, Radius: 4, Distance: 160, OrbitPeriodDays: 365.25, RotationPeriodDays: 1.0, AxialTiltDeg: 23.44},
		{Name: "Mars", Kind: KindPlanet, Radius: 2.1, Distance: 220, OrbitPeriodDays: 686.98, RotationPeriodDays: 1.03, AxialTiltDeg: 25.19},
		{Name: "Jupiter", Kind: KindPlanet, Radius: 14, Distance: 340, OrbitPeriodDays: 4332.6, RotationPeriodDays: 0.41, AxialTiltDeg: 3.13},
		{Name: "Saturn", Kind: KindPlanet, Radius: 12, Distance: 460, OrbitPeriodDays: 10759.2, RotationPeriodDays: 0.45, AxialTiltDeg: 26.73},
		{Name: "Uranus", Kind: KindPlanet, Radius: 6.4, Distance: 580, OrbitPeriodDays: 30688.5, RotationPeriodDays: -0.72, AxialTiltDeg: 97.77},
		{Name: "Neptune", Kind: KindPlanet, Radius: 6.2, Distance: 680, OrbitPeriodDays: 60182, RotationPeriodDays: 0.67, AxialTiltDeg: 28.32},

		{Name: "Moon", Kind: KindMoon, Parent: "Earth", Radius: 1.1, Distance: 10, OrbitPeriodDays: 27.32, RotationPeriodDays: 27.32,
			InclinationDeg: f(5.14), AscendingNodeDeg: f(125.08), OrbitReference: RefEcliptic},
		{Name: "Phobos", Kind: KindMoon, Parent: "Mars", Radius: 0.3, Distance: 4, OrbitPeriodDays: 0.32, RotationPeriodDays: 0.32,
			InclinationDeg: f(1.08)},
		{Name: "Deimos", Kind: KindMoon, Parent: "Mars", Radius: 0.2, Distance: 6, OrbitPeriodDays: 1.26, RotationPeriodDays: 1.26,
			InclinationDeg: f(1.79)},
		{Name: "Io", Kind: KindMoon, Parent: "Jupiter", Radius: 1.2, Distance: 20, OrbitPeriodDays: 1.77, RotationPeriodDays: 1.77,
			InclinationDeg: f(0.04)},
		{Name: "Europa", Kind: KindMoon, Parent: "Jupiter", Radius: 1.0, Distance: 25, OrbitPeriodDays: 3.55, RotationPeriodDays: 3.55,
			InclinationDeg: f(0.47)},
		{Name: "Ganymede", Kind: KindMoon, Parent: "Jupiter", Radius: 1.7, Distance: 31, OrbitPeriodDays: 7.15, RotationPeriodDays: 7.15,
			InclinationDeg: f(0.2)},
		{Name: "Callisto", Kind: KindMoon, Parent: "Jupiter", Radius: 1.6, Distance: 38, OrbitPeriodDays: 16.69, RotationPeriodDays: 16.69,
			InclinationDeg: f(0.19)},
		{Name: "Titan", Kind: KindMoon, Parent: "Saturn", Radius: 1.7, Distance: 30, OrbitPeriodDays: 15.95, RotationPeriodDays: 15.95,
			InclinationDeg: f(0.35)},
		{Name: "Triton", Kind: KindMoon, Parent: "Neptune", Radius: 0.9, Distance: 14, OrbitPeriodDays: -5.88, RotationPeriodDays: 5.88,
			InclinationDeg: f(156.87), OrbitReference: RefEcliptic},

		{Name: "asteroid_belt", Kind: KindField, BandInner: 260, BandOuter: 300},
		{Name: "kuiper_belt", Kind: KindField, BandInner: 720, BandOuter: 820},
		{Name: "oort_cloud", Kind: KindField, BandInner: 900, BandOuter: 1100},
	})
	if err != nil {
		// Static data validated by tests; a failure here is a programming error.
		panic(err)
	}
	return c
}
