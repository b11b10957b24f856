package booking

import (
	"errors"
	"strings"
	"testing"

	"cabbook/internal/apperr"
)

func TestDecodePatch(t *testing.T) {
	p, err := DecodePatch(strings.NewReader(`{"status":"completed","dropOffLocation":{"name":"MG Road","latitude":12.97,"longitude":77.6}}`))
	if err != nil {
		t.Fatalf("DecodePatch: %v", err)
	}
	if p.Status == nil || *p.Status != "completed" {
		t.Fatalf("status = %v", p.Status)
	}
	if p.DropOff == nil || p.DropOff.Name != "MG Road" || p.PickUp != nil {
		t.Fatalf("locations = %+v / %+v", p.PickUp, p.DropOff)
	}
}

func TestDecodePatchRejects(t *testing.T) {
	cases := []struct {
		name string
		body string
		want error
	}{
		{"derived distance", `{"distance":"1.00km"}`, ErrImmutableField},
		{"derived charges", `{"rideCharges":"10.00Rs","status":"completed"}`, ErrImmutableField},
		{"owner", `{"userId":"x"}`, ErrImmutableField},
		{"empty", `{}`, ErrEmptyPatch},
		{"pickup without coordinates", `{"pickUpLocation":{"name":"X"}}`, ErrInvalidLocation},
		{"drop-off without longitude", `{"dropOffLocation":{"name":"X","latitude":12.9}}`, ErrInvalidLocation},
		{"drop-off without name", `{"dropOffLocation":{"latitude":12.9,"longitude":77.6}}`, ErrInvalidLocation},
	}
	for _, tc := range cases {
		if _, err := DecodePatch(strings.NewReader(tc.body)); !errors.Is(err, tc.want) {
			t.Errorf("%s: err = %v, want %v", tc.name, err, tc.want)
		}
	}

	for _, body := range []string{`{"fare":1}`, `[]`, `not json`} {
		_, err := DecodePatch(strings.NewReader(body))
		if apperr.KindOf(err) != apperr.InvalidArgument {
			t.Errorf("%s: err = %v, want InvalidArgument", body, err)
		}
	}
}

func TestDecodePatchKeepsExplicitZeroCoordinates(t *testing.T) {
	p, err := DecodePatch(strings.NewReader(`{"pickUpLocation":{"name":"Null Island","latitude":0,"longitude":0}}`))
	if err != nil {
		t.Fatalf("DecodePatch: %v", err)
	}
	if p.PickUp == nil || p.PickUp.Latitude != 0 || p.PickUp.Name != "Null Island" {
		t.Fatalf("pickup = %+v", p.PickUp)
	}
}
