// README: Booking record, locations, and the status state machine.
package booking

import (
	"fmt"
	"strings"
	"time"

	"cabbook/internal/apperr"
	"cabbook/internal/modules/directory"
	"cabbook/internal/types"
)

type Status string

const (
	StatusBooked     Status = "booked"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// AllowedTransitions is the booking status flow. Completed and cancelled are terminal.
var AllowedTransitions = map[Status][]Status{
	StatusBooked:     {StatusInProgress, StatusCompleted, StatusCancelled},
	StatusInProgress: {StatusCompleted, StatusCancelled},
}

func CanTransition(from, to Status) bool {
	for _, s := range AllowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func ParseStatus(v string) (Status, error) {
	switch s := Status(strings.TrimSpace(v)); s {
	case StatusBooked, StatusInProgress, StatusCompleted, StatusCancelled:
		return s, nil
	}
	return "", &apperr.Error{
		Kind: apperr.InvalidArgument,
		Msg:  fmt.Sprintf("unknown status %q", v),
		Err:  ErrInvalidStatus,
	}
}

// Active bookings hold their (cab, route) key.
func (s Status) Active() bool {
	return s == StatusBooked || s == StatusInProgress
}

type Location struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (l Location) Point() types.Point {
	return types.Point{Lat: l.Latitude, Lng: l.Longitude}
}

// Validate checks the name is present and the coordinates are finite and in range.
// role names the location in the error ("pick-up", "drop-off").
func (l Location) Validate(role string) error {
	p := l.Point()
	switch {
	case strings.TrimSpace(l.Name) == "":
		return invalidLocation("%s location name is required", role)
	case !p.Finite():
		return invalidLocation("%s coordinates must be finite numbers", role)
	case !p.InRange():
		return invalidLocation("%s coordinates out of range (lat -90..90, lng -180..180)", role)
	}
	return nil
}

func invalidLocation(format string, role string) error {
	return &apperr.Error{Kind: apperr.InvalidArgument, Msg: fmt.Sprintf(format, role), Err: ErrInvalidLocation}
}

type Booking struct {
	ID          types.ID          `json:"id"`
	UserID      types.ID          `json:"userId"`
	User        *directory.User   `json:"user,omitempty"`
	CabID       types.ID          `json:"cabId"`
	PickUp      Location          `json:"pickUpLocation"`
	DropOff     Location          `json:"dropOffLocation"`
	BookingDate time.Time         `json:"bookingDate"`
	Distance    types.Measurement `json:"distance"`
	RideCharges types.Measurement `json:"rideCharges"`
	PickupTime  time.Time         `json:"pickupTime"`
	Status      Status            `json:"status"`
}

type CreateCommand struct {
	UserID  string
	CabID   string
	PickUp  Location
	DropOff Location
}
