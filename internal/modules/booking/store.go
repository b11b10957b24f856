// README: Booking store backed by PostgreSQL.
package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"cabbook/internal/types"
)

const bookingColumns = `id, user_id, cab_id,
	pickup_name, pickup_lat, pickup_lng,
	dropoff_name, dropoff_lat, dropoff_lng,
	booking_date, distance_km, ride_charges, pickup_time, status`

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) Create(ctx context.Context, b *Booking) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO bookings (`+bookingColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		string(b.ID), string(b.UserID), string(b.CabID),
		b.PickUp.Name, b.PickUp.Latitude, b.PickUp.Longitude,
		b.DropOff.Name, b.DropOff.Latitude, b.DropOff.Longitude,
		b.BookingDate, b.Distance.Float64(), b.RideCharges.Float64(), b.PickupTime, string(b.Status),
	)
	if isPgUnique(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id types.ID) (*Booking, error) {
	b, err := scanBooking(s.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, string(id)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}
	return b, nil
}

func (s *Store) ListByUser(ctx context.Context, userID types.ID) ([]Booking, error) {
	return s.list(ctx, `
		SELECT `+bookingColumns+` FROM bookings
		WHERE user_id = $1
		ORDER BY booking_date DESC, id DESC`, string(userID))
}

func (s *Store) ListBetween(ctx context.Context, start, end time.Time) ([]Booking, error) {
	return s.list(ctx, `
		SELECT `+bookingColumns+` FROM bookings
		WHERE booking_date >= $1 AND booking_date <= $2
		ORDER BY booking_date ASC, id ASC`, start, end)
}

func (s *Store) list(ctx context.Context, query string, args ...any) ([]Booking, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	out := []Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

func (s *Store) HasActiveRoute(ctx context.Context, cabID types.ID, pickup, dropoff types.Point) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE cab_id = $1
			  AND pickup_lat = $2 AND pickup_lng = $3
			  AND dropoff_lat = $4 AND dropoff_lng = $5
			  AND status IN ('booked', 'in_progress')
		)`, string(cabID), pickup.Lat, pickup.Lng, dropoff.Lat, dropoff.Lng,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check active route: %w", err)
	}
	return exists, nil
}

func (s *Store) Update(ctx context.Context, id types.ID, mutate func(*Booking) error) (*Booking, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	b, err := scanBooking(tx.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1 FOR UPDATE`, string(id)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load booking: %w", err)
	}
	if err := mutate(b); err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, `
		UPDATE bookings
		SET cab_id = $2,
		    pickup_name = $3, pickup_lat = $4, pickup_lng = $5,
		    dropoff_name = $6, dropoff_lat = $7, dropoff_lng = $8,
		    distance_km = $9, ride_charges = $10, pickup_time = $11, status = $12
		WHERE id = $1`,
		string(b.ID), string(b.CabID),
		b.PickUp.Name, b.PickUp.Latitude, b.PickUp.Longitude,
		b.DropOff.Name, b.DropOff.Latitude, b.DropOff.Longitude,
		b.Distance.Float64(), b.RideCharges.Float64(), b.PickupTime, string(b.Status),
	)
	if isPgUnique(err) {
		return nil, ErrDuplicate
	}
	if err != nil {
		return nil, fmt.Errorf("update booking: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return b, nil
}

func (s *Store) Delete(ctx context.Context, id types.ID) (*Booking, error) {
	b, err := scanBooking(s.db.QueryRow(ctx, `DELETE FROM bookings WHERE id = $1 RETURNING `+bookingColumns, string(id)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("delete booking: %w", err)
	}
	return b, nil
}

func scanBooking(row pgx.Row) (*Booking, error) {
	var b Booking
	var distance, charges float64
	err := row.Scan(
		&b.ID, &b.UserID, &b.CabID,
		&b.PickUp.Name, &b.PickUp.Latitude, &b.PickUp.Longitude,
		&b.DropOff.Name, &b.DropOff.Latitude, &b.DropOff.Longitude,
		&b.BookingDate, &distance, &charges, &b.PickupTime, &b.Status,
	)
	if err != nil {
		return nil, err
	}
	b.BookingDate = b.BookingDate.UTC()
	b.PickupTime = b.PickupTime.UTC()
	b.Distance = types.Kilometres(distance)
	b.RideCharges = types.Rupees(charges)
	return &b, nil
}

func isPgUnique(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
