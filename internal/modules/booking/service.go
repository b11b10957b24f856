// README: Booking service: validation, duplicate detection, fare derivation, and the record lifecycle.
package booking

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"cabbook/internal/apperr"
	"cabbook/internal/modules/directory"
	"cabbook/internal/modules/fare"
	"cabbook/internal/types"
)

// Directory resolves booking owners and cabs.
type Directory interface {
	GetUser(ctx context.Context, id types.ID) (*directory.User, error)
	GetCab(ctx context.Context, id types.ID) (*directory.Cab, error)
}

var (
	ErrInvalidID         = apperr.New(apperr.InvalidArgument, "invalid id")
	ErrNotFound          = apperr.New(apperr.NotFound, "booking not found")
	ErrDuplicate         = apperr.New(apperr.Conflict, "an active booking already exists for this cab and route")
	ErrInvalidLocation   = apperr.New(apperr.InvalidArgument, "invalid location")
	ErrInvalidStatus     = apperr.New(apperr.InvalidArgument, "invalid status")
	ErrInvalidTransition = apperr.New(apperr.InvalidArgument, "invalid status transition")
	ErrImmutableField    = apperr.New(apperr.InvalidArgument, "field cannot be updated")
	ErrEmptyPatch        = apperr.New(apperr.InvalidArgument, "nothing to update")
	ErrInvalidRange      = apperr.New(apperr.InvalidArgument, "range end is before its start")
)

type Service struct {
	store  Repository
	dir    Directory
	events Publisher
	log    *slog.Logger
	now    func() time.Time
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.events = p }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.log = l }
}

func NewService(store Repository, dir Directory, opts ...Option) *Service {
	s := &Service{
		store:  store,
		dir:    dir,
		events: nopPublisher{},
		log:    slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func parseID(v string) (types.ID, error) {
	id, err := types.ParseID(strings.TrimSpace(v))
	if err != nil {
		return "", ErrInvalidID
	}
	return id, nil
}

func (s *Service) Create(ctx context.Context, cmd CreateCommand) (*Booking, error) {
	userID, err := parseID(cmd.UserID)
	if err != nil {
		return nil, err
	}
	cabID, err := parseID(cmd.CabID)
	if err != nil {
		return nil, err
	}
	if err := cmd.PickUp.Validate("pick-up"); err != nil {
		return nil, err
	}
	if err := cmd.DropOff.Validate("drop-off"); err != nil {
		return nil, err
	}

	if _, err := s.dir.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	if _, err := s.dir.GetCab(ctx, cabID); err != nil {
		return nil, err
	}

	pickup, dropoff := cmd.PickUp.Point(), cmd.DropOff.Point()
	exists, err := s.store.HasActiveRoute(ctx, cabID, pickup, dropoff)
	if err != nil {
		return nil, err
	}
	if exists {
		s.log.Info("booking already exists", "cab_id", cabID, "user_id", userID)
		return nil, ErrDuplicate
	}

	quote, err := fare.Compute(pickup, dropoff)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	b := &Booking{
		ID:          types.NewID(),
		UserID:      userID,
		CabID:       cabID,
		PickUp:      trimmed(cmd.PickUp),
		DropOff:     trimmed(cmd.DropOff),
		BookingDate: now,
		Distance:    quote.Distance,
		RideCharges: quote.Charge,
		PickupTime:  now,
		Status:      StatusBooked,
	}
	if err := s.store.Create(ctx, b); err != nil {
		if errors.Is(err, ErrDuplicate) {
			s.log.Info("booking already exists", "cab_id", cabID, "user_id", userID)
		}
		return nil, err
	}
	s.log.Info("booking created", "booking_id", b.ID, "distance", b.Distance.String(), "ride_charges", b.RideCharges.String())
	s.publish(ctx, EventCreated, b)
	return b, nil
}

// ListByOwner returns the user's bookings, newest first.
func (s *Service) ListByOwner(ctx context.Context, userID string) ([]Booking, error) {
	id, err := parseID(userID)
	if err != nil {
		return nil, err
	}
	return s.store.ListByUser(ctx, id)
}

// Get returns the booking with its owner attached. A booking whose owner has since
// left the directory is returned without one.
func (s *Service) Get(ctx context.Context, rawID string) (*Booking, error) {
	id, err := parseID(rawID)
	if err != nil {
		return nil, err
	}
	b, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	u, err := s.dir.GetUser(ctx, b.UserID)
	switch {
	case errors.Is(err, directory.ErrUserNotFound):
		s.log.Warn("booking owner missing from directory", "booking_id", b.ID, "user_id", b.UserID)
	case err != nil:
		return nil, err
	default:
		b.User = u
	}
	return b, nil
}

func (s *Service) Update(ctx context.Context, rawID string, p Patch) (*Booking, error) {
	id, err := parseID(rawID)
	if err != nil {
		return nil, err
	}
	if p.Empty() {
		return nil, ErrEmptyPatch
	}
	status, err := p.validate()
	if err != nil {
		return nil, err
	}
	var cabID types.ID
	if p.CabID != nil {
		if cabID, err = parseID(*p.CabID); err != nil {
			return nil, err
		}
		if _, err := s.dir.GetCab(ctx, cabID); err != nil {
			return nil, err
		}
	}

	b, err := s.store.Update(ctx, id, func(b *Booking) error {
		if status != "" && status != b.Status {
			if !CanTransition(b.Status, status) {
				return transitionError(b.Status, status)
			}
			b.Status = status
		}
		if cabID != "" {
			b.CabID = cabID
		}
		if p.PickupTime != nil {
			b.PickupTime = p.PickupTime.UTC()
		}
		if p.PickUp == nil && p.DropOff == nil {
			return nil
		}
		if p.PickUp != nil {
			b.PickUp = trimmed(*p.PickUp)
		}
		if p.DropOff != nil {
			b.DropOff = trimmed(*p.DropOff)
		}
		quote, err := fare.Compute(b.PickUp.Point(), b.DropOff.Point())
		if err != nil {
			return err
		}
		b.Distance, b.RideCharges = quote.Distance, quote.Charge
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("booking updated", "booking_id", b.ID, "status", b.Status)
	s.publish(ctx, EventUpdated, b)
	return b, nil
}

func (s *Service) Delete(ctx context.Context, rawID string) (*Booking, error) {
	id, err := parseID(rawID)
	if err != nil {
		return nil, err
	}
	b, err := s.store.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	s.log.Info("booking deleted", "booking_id", b.ID)
	s.publish(ctx, EventDeleted, b)
	return b, nil
}

// ListBetween returns bookings with start <= bookingDate <= end, oldest first.
func (s *Service) ListBetween(ctx context.Context, start, end time.Time) ([]Booking, error) {
	if end.Before(start) {
		return nil, ErrInvalidRange
	}
	return s.store.ListBetween(ctx, start, end)
}

func (s *Service) publish(ctx context.Context, typ string, b *Booking) {
	err := s.events.Publish(ctx, Event{Type: typ, OccurredAt: s.now().UTC(), Booking: *b})
	if err != nil {
		s.log.Warn("publish booking event failed", "type", typ, "booking_id", b.ID, "err", err)
	}
}

func trimmed(l Location) Location {
	l.Name = strings.TrimSpace(l.Name)
	return l
}
