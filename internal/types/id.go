// README: Identifier value object shared by all modules (UUID text form).
package types

import (
	"errors"

	"github.com/google/uuid"
)

// ErrInvalidID is returned by ParseID for anything that is not a UUID.
var ErrInvalidID = errors.New("invalid id")

type ID string

func NewID() ID {
	return ID(uuid.NewString())
}

// ParseID validates v and returns it in canonical lower-case form.
func ParseID(v string) (ID, error) {
	u, err := uuid.Parse(v)
	if err != nil {
		return "", ErrInvalidID
	}
	return ID(u.String()), nil
}

func (id ID) String() string {
	return string(id)
}
