package ephem

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"solarpilot.ai/internal/sim/geom"
)

// Upstream responses are Horizons-flavored text. Vectors arrive as
//
//	X = 1.234567E+00 Y =-4.321000E-01 Z = 2.000000E-03
//
// and radii inside prose like
//
//	Vol. mean radius (km) = 6371.01+-0.02
var (
	vectorRe = regexp.MustCompile(`X\s*=\s*(-?[\d.]+(?:[eE][+-]?\d+)?)\s*Y\s*=\s*(-?[\d.]+(?:[eE][+-]?\d+)?)\s*Z\s*=\s*(-?[\d.]+(?:[eE][+-]?\d+)?)`)
	radiusRe = regexp.MustCompile(`(?i)(?:vol\.?\s*)?mean\s+radius\s*\(km\)\s*=\s*([\d.]+)`)
)

// ParseVector extracts the first X/Y/Z triple from a response body.
func ParseVector(text string) (geom.Vec3, error) {
	m := vectorRe.FindStringSubmatch(text)
	if m == nil {
		return geom.Vec3{}, fmt.Errorf("no vector triple in response")
	}
	var out [3]float64
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(m[i+1]), 64)
		if err != nil {
			return geom.Vec3{}, fmt.Errorf("vector component %d: %w", i, err)
		}
		out[i] = v
	}
	return geom.Vec3{X: out[0], Y: out[1], Z: out[2]}, nil
}

// ParseRadiusKm extracts a mean radius in km, or 0 when the response does
// not carry one (radius is advisory; 0 never propagates into clearance
// math because catalog radii take precedence).
func ParseRadiusKm(text string) float64 {
	m := radiusRe.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}
	return v
}
