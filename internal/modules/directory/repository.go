// README: Directory persistence contract (users + cabs).
package directory

import (
	"context"

	"cabbook/internal/types"
)

// Repository is implemented by the Postgres Store and the SQLiteStore.
// Lookups return ErrUserNotFound / ErrCabNotFound; inserts that hit a unique
// key return ErrDuplicateEmail / ErrDuplicateRegistration.
type Repository interface {
	CreateUser(ctx context.Context, u *User) error
	GetUser(ctx context.Context, id types.ID) (*User, error)
	CreateCab(ctx context.Context, c *Cab) error
	GetCab(ctx context.Context, id types.ID) (*Cab, error)
	GetCabByRegistration(ctx context.Context, reg string) (*Cab, error)
	ListCabs(ctx context.Context) ([]Cab, error)
	UpdateCab(ctx context.Context, c *Cab) error
	DeleteCab(ctx context.Context, id types.ID) error
}
