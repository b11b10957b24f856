// README: Fare calculator: Euclidean distance over raw degrees priced by the tier schedule.
package fare

import (
	"math"

	"cabbook/internal/apperr"
	"cabbook/internal/types"
)

var ErrInvalidCoordinate = apperr.New(apperr.InvalidArgument, "coordinates must be finite numbers")

// Compute prices a ride between two points. Distance is the plain Euclidean norm of the
// coordinate differences and is read as kilometres without geodesic correction.
func Compute(pickup, dropoff types.Point) (Quote, error) {
	if !pickup.Finite() || !dropoff.Finite() {
		return Quote{}, ErrInvalidCoordinate
	}
	d := Distance(pickup, dropoff)
	return Quote{
		Distance: types.Kilometres(d),
		Charge:   types.Rupees(Charge(d)),
	}, nil
}

func Distance(a, b types.Point) float64 {
	return math.Hypot(a.Lat-b.Lat, a.Lng-b.Lng)
}

// Charge returns the unrounded charge for distance d.
func Charge(d float64) float64 {
	if d <= 0 {
		return 0
	}
	for _, t := range Tiers {
		if d <= t.UpTo {
			return t.Base + t.PerKm*(d-t.From)
		}
	}
	last := Tiers[len(Tiers)-1]
	return last.Base + last.PerKm*(d-last.From)
}
