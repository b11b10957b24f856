// README: Identity directory records: users (booking owners) and cabs.
package directory

import (
	"regexp"
	"strings"
	"time"

	"cabbook/internal/types"
)

var phonePattern = regexp.MustCompile(`^[0-9]{10}$`)

// ValidPhone reports whether v is exactly ten digits.
func ValidPhone(v string) bool {
	return phonePattern.MatchString(v)
}

type User struct {
	ID           types.ID  `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PhoneNumber  string    `json:"phoneNumber"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

type Cab struct {
	ID                 types.ID  `json:"id"`
	RegistrationNumber string    `json:"registrationNumber"`
	DriverName         string    `json:"driverName"`
	DriverPhoneNumber  string    `json:"driverPhoneNumber"`
	CabType            string    `json:"cabType"`
	Available          bool      `json:"available"`
	CreatedAt          time.Time `json:"createdAt"`
}

// RegisterCommand carries an already-hashed credential; hashing happens upstream.
type RegisterCommand struct {
	Name         string
	Email        string
	PhoneNumber  string
	PasswordHash string
}

type AddCabCommand struct {
	RegistrationNumber string `json:"registrationNumber"`
	DriverName         string `json:"driverName"`
	DriverPhoneNumber  string `json:"driverPhoneNumber"`
	CabType            string `json:"cabType"`
	Available          *bool  `json:"available,omitempty"`
}

// CabPatch lists the mutable cab fields. Nil means unchanged.
type CabPatch struct {
	DriverName        *string `json:"driverName,omitempty"`
	DriverPhoneNumber *string `json:"driverPhoneNumber,omitempty"`
	CabType           *string `json:"cabType,omitempty"`
	Available         *bool   `json:"available,omitempty"`
}

func (p CabPatch) Empty() bool {
	return p.DriverName == nil && p.DriverPhoneNumber == nil && p.CabType == nil && p.Available == nil
}

func normalizeEmail(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}
