// README: Tier schedule and quote definitions for the fare calculator.
package fare

import (
	"math"

	"cabbook/internal/types"
)

// Tier charges PerKm for every kilometre above From, on top of Base.
// A tier applies while distance <= UpTo.
type Tier struct {
	From  float64
	UpTo  float64
	Base  float64
	PerKm float64
}

// Tiers is the single fare schedule. Base values keep the schedule continuous at every boundary.
var Tiers = []Tier{
	{From: 0, UpTo: 5, Base: 0, PerKm: 10},
	{From: 5, UpTo: 10, Base: 50, PerKm: 8},
	{From: 10, UpTo: 20, Base: 90, PerKm: 6},
	{From: 20, UpTo: math.Inf(1), Base: 150, PerKm: 5},
}

type Quote struct {
	Distance types.Measurement
	Charge   types.Measurement
}
