// README: Typed partial update for bookings, decoded strictly from JSON.
package booking

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"cabbook/internal/apperr"
)

// Patch names the fields a caller may change. Nil means unchanged.
// Distance and charges are never accepted; they follow the coordinates.
type Patch struct {
	PickUp     *Location  `json:"pickUpLocation,omitempty"`
	DropOff    *Location  `json:"dropOffLocation,omitempty"`
	CabID      *string    `json:"cabId,omitempty"`
	PickupTime *time.Time `json:"pickupTime,omitempty"`
	Status     *string    `json:"status,omitempty"`
}

// patchBody is the wire form of Patch. Location coordinates are pointers so a
// replacement location that omits one is rejected instead of landing on 0.
type patchBody struct {
	PickUp     *locationPatch `json:"pickUpLocation"`
	DropOff    *locationPatch `json:"dropOffLocation"`
	CabID      *string        `json:"cabId"`
	PickupTime *time.Time     `json:"pickupTime"`
	Status     *string        `json:"status"`
}

type locationPatch struct {
	Name      *string  `json:"name"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

func (l *locationPatch) location(field string) (*Location, error) {
	if l == nil {
		return nil, nil
	}
	var missing []string
	if l.Name == nil {
		missing = append(missing, "name")
	}
	if l.Latitude == nil {
		missing = append(missing, "latitude")
	}
	if l.Longitude == nil {
		missing = append(missing, "longitude")
	}
	if len(missing) > 0 {
		return nil, &apperr.Error{
			Kind: apperr.InvalidArgument,
			Msg:  fmt.Sprintf("%s is missing %s", field, strings.Join(missing, ", ")),
			Err:  ErrInvalidLocation,
		}
	}
	return &Location{Name: *l.Name, Latitude: *l.Latitude, Longitude: *l.Longitude}, nil
}

var immutableFields = map[string]string{
	"id":          "id is assigned on creation and cannot be changed",
	"userId":      "userId cannot be changed",
	"user":        "user cannot be changed",
	"bookingDate": "bookingDate cannot be changed",
	"distance":    "distance is derived from the coordinates and cannot be set",
	"rideCharges": "rideCharges is derived from the coordinates and cannot be set",
}

func (p Patch) Empty() bool {
	return p.PickUp == nil && p.DropOff == nil && p.CabID == nil && p.PickupTime == nil && p.Status == nil
}

// DecodePatch reads a JSON patch, rejecting derived, immutable and unknown fields.
func DecodePatch(r io.Reader) (Patch, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return Patch{}, apperr.Wrap(apperr.InvalidArgument, "could not read request body", err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Patch{}, apperr.Wrap(apperr.InvalidArgument, "request body must be a JSON object", err)
	}
	for name := range fields {
		if msg, ok := immutableFields[name]; ok {
			return Patch{}, &apperr.Error{Kind: apperr.InvalidArgument, Msg: msg, Err: ErrImmutableField}
		}
	}

	var body patchBody
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		msg := "invalid update"
		if strings.HasPrefix(err.Error(), "json: unknown field") {
			msg = strings.TrimPrefix(err.Error(), "json: ")
		}
		return Patch{}, apperr.Wrap(apperr.InvalidArgument, msg, err)
	}

	p := Patch{CabID: body.CabID, PickupTime: body.PickupTime, Status: body.Status}
	if p.PickUp, err = body.PickUp.location("pickUpLocation"); err != nil {
		return Patch{}, err
	}
	if p.DropOff, err = body.DropOff.location("dropOffLocation"); err != nil {
		return Patch{}, err
	}
	if p.Empty() {
		return Patch{}, ErrEmptyPatch
	}
	return p, nil
}

// validate checks every supplied field before the store is touched.
func (p Patch) validate() (Status, error) {
	if p.PickUp != nil {
		if err := p.PickUp.Validate("pick-up"); err != nil {
			return "", err
		}
	}
	if p.DropOff != nil {
		if err := p.DropOff.Validate("drop-off"); err != nil {
			return "", err
		}
	}
	if p.PickupTime != nil && p.PickupTime.IsZero() {
		return "", apperr.New(apperr.InvalidArgument, "pickupTime must be a valid timestamp")
	}
	if p.Status == nil {
		return "", nil
	}
	return ParseStatus(*p.Status)
}

func transitionError(from, to Status) error {
	return &apperr.Error{
		Kind: apperr.InvalidArgument,
		Msg:  fmt.Sprintf("cannot change status from %s to %s", from, to),
		Err:  ErrInvalidTransition,
	}
}
