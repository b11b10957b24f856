// README: Coordinate pair in decimal degrees.
package types

import "math"

type Point struct {
	Lat float64
	Lng float64
}

// Finite reports whether both components are real numbers.
func (p Point) Finite() bool {
	return !math.IsNaN(p.Lat) && !math.IsInf(p.Lat, 0) &&
		!math.IsNaN(p.Lng) && !math.IsInf(p.Lng, 0)
}

// InRange reports whether the point lies within valid latitude/longitude bounds.
func (p Point) InRange() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}
