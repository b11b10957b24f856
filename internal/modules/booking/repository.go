// README: Booking persistence contract shared by the Postgres and SQLite stores.
package booking

import (
	"context"
	"time"

	"cabbook/internal/types"
)

// Repository is the booking ledger storage. Implementations enforce the
// one-active-booking-per-(cab, route) key and report violations as ErrDuplicate.
type Repository interface {
	Create(ctx context.Context, b *Booking) error
	Get(ctx context.Context, id types.ID) (*Booking, error)
	ListByUser(ctx context.Context, userID types.ID) ([]Booking, error)
	ListBetween(ctx context.Context, start, end time.Time) ([]Booking, error)
	HasActiveRoute(ctx context.Context, cabID types.ID, pickup, dropoff types.Point) (bool, error)
	// Update loads the booking, applies mutate and persists the result in one transaction.
	// mutate must not call back into the store.
	Update(ctx context.Context, id types.ID, mutate func(*Booking) error) (*Booking, error)
	Delete(ctx context.Context, id types.ID) (*Booking, error)
}
