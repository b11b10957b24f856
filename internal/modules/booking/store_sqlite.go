// README: Booking store backed by the embedded SQLite database.
package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"cabbook/internal/types"
)

// Fixed-width UTC text so lexical comparison in SQL matches time order.
const sqliteTime = "2006-01-02 15:04:05.000000000"

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(sqliteTime)
}

func (s *SQLiteStore) Create(ctx context.Context, b *Booking) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bookings (`+bookingColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(b.ID), string(b.UserID), string(b.CabID),
		b.PickUp.Name, b.PickUp.Latitude, b.PickUp.Longitude,
		b.DropOff.Name, b.DropOff.Latitude, b.DropOff.Longitude,
		formatTime(b.BookingDate), b.Distance.Float64(), b.RideCharges.Float64(),
		formatTime(b.PickupTime), string(b.Status),
	)
	if isSQLiteUnique(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, id types.ID) (*Booking, error) {
	b, err := scanSQLiteBooking(s.db.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, string(id)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}
	return b, nil
}

func (s *SQLiteStore) ListByUser(ctx context.Context, userID types.ID) ([]Booking, error) {
	return s.list(ctx, `
		SELECT `+bookingColumns+` FROM bookings
		WHERE user_id = ?
		ORDER BY booking_date DESC, id DESC`, string(userID))
}

func (s *SQLiteStore) ListBetween(ctx context.Context, start, end time.Time) ([]Booking, error) {
	return s.list(ctx, `
		SELECT `+bookingColumns+` FROM bookings
		WHERE booking_date >= ? AND booking_date <= ?
		ORDER BY booking_date ASC, id ASC`, formatTime(start), formatTime(end))
}

func (s *SQLiteStore) list(ctx context.Context, query string, args ...any) ([]Booking, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	out := []Booking{}
	for rows.Next() {
		b, err := scanSQLiteBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) HasActiveRoute(ctx context.Context, cabID types.ID, pickup, dropoff types.Point) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE cab_id = ?
			  AND pickup_lat = ? AND pickup_lng = ?
			  AND dropoff_lat = ? AND dropoff_lng = ?
			  AND status IN ('booked', 'in_progress')
		)`, string(cabID), pickup.Lat, pickup.Lng, dropoff.Lat, dropoff.Lng,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check active route: %w", err)
	}
	return exists, nil
}

func (s *SQLiteStore) Update(ctx context.Context, id types.ID, mutate func(*Booking) error) (*Booking, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	b, err := scanSQLiteBooking(tx.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, string(id)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load booking: %w", err)
	}
	if err := mutate(b); err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE bookings
		SET cab_id = ?,
		    pickup_name = ?, pickup_lat = ?, pickup_lng = ?,
		    dropoff_name = ?, dropoff_lat = ?, dropoff_lng = ?,
		    distance_km = ?, ride_charges = ?, pickup_time = ?, status = ?
		WHERE id = ?`,
		string(b.CabID),
		b.PickUp.Name, b.PickUp.Latitude, b.PickUp.Longitude,
		b.DropOff.Name, b.DropOff.Latitude, b.DropOff.Longitude,
		b.Distance.Float64(), b.RideCharges.Float64(), formatTime(b.PickupTime), string(b.Status),
		string(b.ID),
	)
	if isSQLiteUnique(err) {
		return nil, ErrDuplicate
	}
	if err != nil {
		return nil, fmt.Errorf("update booking: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return b, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id types.ID) (*Booking, error) {
	b, err := scanSQLiteBooking(s.db.QueryRowContext(ctx, `DELETE FROM bookings WHERE id = ? RETURNING `+bookingColumns, string(id)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("delete booking: %w", err)
	}
	return b, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteBooking(row rowScanner) (*Booking, error) {
	var b Booking
	var distance, charges float64
	var bookingDate, pickupTime string
	err := row.Scan(
		&b.ID, &b.UserID, &b.CabID,
		&b.PickUp.Name, &b.PickUp.Latitude, &b.PickUp.Longitude,
		&b.DropOff.Name, &b.DropOff.Latitude, &b.DropOff.Longitude,
		&bookingDate, &distance, &charges, &pickupTime, &b.Status,
	)
	if err != nil {
		return nil, err
	}
	if b.BookingDate, err = time.Parse(sqliteTime, bookingDate); err != nil {
		return nil, fmt.Errorf("booking_date: %w", err)
	}
	if b.PickupTime, err = time.Parse(sqliteTime, pickupTime); err != nil {
		return nil, fmt.Errorf("pickup_time: %w", err)
	}
	b.Distance = types.Kilometres(distance)
	b.RideCharges = types.Rupees(charges)
	return &b, nil
}

func isSQLiteUnique(err error) bool {
	var sqlErr sqlite3.Error
	return errors.As(err, &sqlErr) && sqlErr.ExtendedCode == sqlite3.ErrConstraintUnique
}
