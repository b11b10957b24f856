// README: Monthly report period, rows and result.
package report

import (
	"fmt"
	"time"
)

// Header is the fixed first CSV line of every report.
var Header = []string{"Booking ID", "Customer Name", "Pickup Location", "Drop Location", "Booking Date"}

// DateLayout renders booking dates in report rows, e.g. "Thu Mar 14 2024".
const DateLayout = "Mon Jan 02 2006"

type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// MonthPeriod spans the first through the last instant of the month in loc.
func MonthPeriod(year, month int, loc *time.Location) Period {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
	return Period{Start: start, End: start.AddDate(0, 1, 0).Add(-time.Nanosecond)}
}

// FileName is built from the parsed values so "03" and "3" name the same artifact.
func FileName(year, month int) string {
	return fmt.Sprintf("booking-report-%d-%d.csv", month, year)
}

type Row struct {
	BookingID    string
	CustomerName string
	Pickup       string
	Drop         string
	BookingDate  time.Time
}

func (r Row) record(loc *time.Location) []string {
	return []string{r.BookingID, r.CustomerName, r.Pickup, r.Drop, r.BookingDate.In(loc).Format(DateLayout)}
}

type Result struct {
	FileName string `json:"fileName"`
	Period   Period `json:"period"`
	Rows     int    `json:"rows"`
}
