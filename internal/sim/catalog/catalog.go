package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Kind classifies a catalog entry.
type Kind string

const (
	KindStar   Kind = "star"
	KindPlanet Kind = "planet"
	KindMoon   Kind = "moon"
	KindField  Kind = "field"
)

// OrbitReference selects the frame a moon's orbital plane is expressed in.
// Ecliptic moons skip the parent's axial-tilt rotation; equatorial moons
// inherit it.
const (
	RefEcliptic   = "ecliptic"
	RefEquatorial = "equatorial"
)

// Body is one immutable celestial body configuration. Distances and radii
// are scene units; periods are Earth days. A negative orbit period means a
// retrograde orbit.
type Body struct {
	Name               string  `yaml:"name" json:"name"`
	Kind               Kind    `yaml:"kind" json:"kind"`
	Radius             float64 `yaml:"radius" json:"radius"`
	Distance           float64 `yaml:"distance" json:"distance"`
	OrbitPeriodDays    float64 `yaml:"orbit_period_days" json:"orbit_period_days"`
	RotationPeriodDays float64 `yaml:"rotation_period_days" json:"rotation_period_days"`
	AxialTiltDeg       float64 `yaml:"axial_tilt_deg" json:"axial_tilt_deg"`

	// Moon-only fields. Inclination/ascending node stay nil when the config
	// leaves them out, which selects the solver's deterministic hash fallback.
	Parent           string   `yaml:"parent,omitempty" json:"parent,omitempty"`
	InclinationDeg   *float64 `yaml:"inclination_deg,omitempty" json:"inclination_deg,omitempty"`
	AscendingNodeDeg *float64 `yaml:"ascending_node_deg,omitempty" json:"ascending_node_deg,omitempty"`
	OrbitReference   string   `yaml:"orbit_reference,omitempty" json:"orbit_reference,omitempty"`

	// Field-only radial band (asteroid/kuiper/oort), scene units.
	BandInner float64 `yaml:"band_inner,omitempty" json:"band_inner,omitempty"`
	BandOuter float64 `yaml:"band_outer,omitempty" json:"band_outer,omitempty"`
}

// Catalog is the loaded body set plus a digest clients can pin.
type Catalog struct {
	Bodies []Body
	ByName map[string]*Body
	Digest string
}

type fileForm struct {
	Bodies []Body `yaml:"bodies"`
}

// Load reads a bodies.yaml. The digest covers the canonical JSON form of
// the sorted body list, so catalog identity survives YAML reformatting.
func Load(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f fileForm
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("bodies.yaml: %w", err)
	}
	return build(f.Bodies)
}

func build(bodies []Body) (*Catalog, error) {
	c := &Catalog{
		Bodies: bodies,
		ByName: make(map[string]*Body, len(bodies)),
	}
	for i := range c.Bodies {
		b := &c.Bodies[i]
		if b.Name == "" {
			return nil, fmt.Errorf("body %d: missing name", i)
		}
		if _, dup := c.ByName[b.Name]; dup {
			return nil, fmt.Errorf("duplicate body %q", b.Name)
		}
		c.ByName[b.Name] = b
	}
	for i := range c.Bodies {
		b := &c.Bodies[i]
		switch b.Kind {
		case KindStar, KindPlanet:
		case KindMoon:
			p, ok := c.ByName[b.Parent]
			if !ok {
				return nil, fmt.Errorf("moon %q: unknown parent %q", b.Name, b.Parent)
			}
			if p.Kind != KindPlanet {
				return nil, fmt.Errorf("moon %q: parent %q is not a planet", b.Name, b.Parent)
			}
			if b.OrbitReference == "" {
				b.OrbitReference = RefEquatorial
			}
			if b.OrbitReference != RefEcliptic && b.OrbitReference != RefEquatorial {
				return nil, fmt.Errorf("moon %q: bad orbit_reference %q", b.Name, b.OrbitReference)
			}
		case KindField:
			if b.BandInner <= 0 || b.BandOuter <= b.BandInner {
				return nil, fmt.Errorf("field %q: bad band [%v, %v]", b.Name, b.BandInner, b.BandOuter)
			}
		default:
			return nil, fmt.Errorf("body %q: unknown kind %q", b.Name, b.Kind)
		}
	}
	d, err := digest(c.Bodies)
	if err != nil {
		return nil, err
	}
	c.Digest = d
	return c, nil
}

func digest(bodies []Body) (string, error) {
	sorted := make([]Body, len(bodies))
	copy(sorted, bodies)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	blob, err := json.Marshal(sorted)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(blob)
	return "sha256:" + hex.EncodeToString(sum[:]), nil
}

// Moons returns the moons of the named planet, in catalog order.
func (c *Catalog) Moons(parent string) []*Body {
	var out []*Body
	for i := range c.Bodies {
		b := &c.Bodies[i]
		if b.Kind == KindMoon && b.Parent == parent {
			out = append(out, b)
		}
	}
	return out
}

// Planets returns every planet, in catalog order.
func (c *Catalog) Planets() []*Body {
	var out []*Body
	for i := range c.Bodies {
		if c.Bodies[i].Kind == KindPlanet {
			out = append(out, &c.Bodies[i])
		}
	}
	return out
}

// Fields returns every particle-field entry.
func (c *Catalog) Fields() []*Body {
	var out []*Body
	for i := range c.Bodies {
		if c.Bodies[i].Kind == KindField {
			out = append(out, &c.Bodies[i])
		}
	}
	return out
}

// Star returns the central star, or nil if the catalog has none.
func (c *Catalog) Star() *Body {
	for i := range c.Bodies {
		if c.Bodies[i].Kind == KindStar {
			return &c.Bodies[i]
		}
	}
	return nil
}

// QualifiedName labels a body for display: moons as "Moon (Parent)",
// everything else by plain name.
func (c *Catalog) QualifiedName(name string) string {
	b, ok := c.ByName[name]
	if !ok {
		return name
	}
	if b.Kind == KindMoon && b.Parent != "" {
		return fmt.Sprintf("%s (%s)", b.Name, b.Parent)
	}
	return b.Name
}
