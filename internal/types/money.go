// README: Measurement value object (amount + unit suffix) used for distance and charges.
package types

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	UnitKilometre = "km"
	UnitRupee     = "Rs"
)

// Measurement renders as fixed two-decimal text followed by its unit, e.g. "123.40Rs".
type Measurement struct {
	Value decimal.Decimal
	Unit  string
}

func NewMeasurement(v float64, unit string) Measurement {
	return Measurement{Value: decimal.NewFromFloat(v).Round(2), Unit: unit}
}

func Kilometres(v float64) Measurement { return NewMeasurement(v, UnitKilometre) }

func Rupees(v float64) Measurement { return NewMeasurement(v, UnitRupee) }

func (m Measurement) String() string {
	return m.Value.StringFixed(2) + m.Unit
}

func (m Measurement) Float64() float64 {
	return m.Value.InexactFloat64()
}

func (m Measurement) Equal(o Measurement) bool {
	return m.Unit == o.Unit && m.Value.Equal(o.Value)
}

func (m Measurement) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

func (m *Measurement) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseMeasurement(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// ParseMeasurement reads the text form produced by String.
func ParseMeasurement(s string) (Measurement, error) {
	for _, unit := range []string{UnitKilometre, UnitRupee} {
		if !strings.HasSuffix(s, unit) {
			continue
		}
		v, err := decimal.NewFromString(strings.TrimSuffix(s, unit))
		if err != nil {
			return Measurement{}, fmt.Errorf("parse measurement %q: %w", s, err)
		}
		return Measurement{Value: v.Round(2), Unit: unit}, nil
	}
	return Measurement{}, fmt.Errorf("parse measurement %q: unknown unit", s)
}
