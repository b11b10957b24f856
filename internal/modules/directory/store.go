// README: Directory store backed by PostgreSQL.
package directory

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"cabbook/internal/types"
)

const pgUniqueViolation = "23505"

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) CreateUser(ctx context.Context, u *User) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO users (id, name, email, phone_number, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		string(u.ID), u.Name, u.Email, u.PhoneNumber, u.PasswordHash, u.CreatedAt,
	)
	if isPgUnique(err) {
		return ErrDuplicateEmail
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *Store) GetUser(ctx context.Context, id types.ID) (*User, error) {
	var u User
	err := s.db.QueryRow(ctx, `
		SELECT id, name, email, phone_number, password_hash, created_at
		FROM users WHERE id = $1`, string(id),
	).Scan(&u.ID, &u.Name, &u.Email, &u.PhoneNumber, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

func (s *Store) CreateCab(ctx context.Context, c *Cab) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO cabs (id, registration_number, driver_name, driver_phone_number, cab_type, available, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		string(c.ID), c.RegistrationNumber, c.DriverName, c.DriverPhoneNumber, c.CabType, c.Available, c.CreatedAt,
	)
	if isPgUnique(err) {
		return ErrDuplicateRegistration
	}
	if err != nil {
		return fmt.Errorf("insert cab: %w", err)
	}
	return nil
}

const cabColumns = `id, registration_number, driver_name, driver_phone_number, cab_type, available, created_at`

func (s *Store) GetCab(ctx context.Context, id types.ID) (*Cab, error) {
	return s.getCab(ctx, `SELECT `+cabColumns+` FROM cabs WHERE id = $1`, string(id))
}

func (s *Store) GetCabByRegistration(ctx context.Context, reg string) (*Cab, error) {
	return s.getCab(ctx, `SELECT `+cabColumns+` FROM cabs WHERE registration_number = $1`, reg)
}

func (s *Store) getCab(ctx context.Context, query string, arg string) (*Cab, error) {
	var c Cab
	err := s.db.QueryRow(ctx, query, arg).Scan(
		&c.ID, &c.RegistrationNumber, &c.DriverName, &c.DriverPhoneNumber, &c.CabType, &c.Available, &c.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrCabNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get cab: %w", err)
	}
	return &c, nil
}

func (s *Store) ListCabs(ctx context.Context) ([]Cab, error) {
	rows, err := s.db.Query(ctx, `SELECT `+cabColumns+` FROM cabs ORDER BY created_at, registration_number`)
	if err != nil {
		return nil, fmt.Errorf("list cabs: %w", err)
	}
	defer rows.Close()

	out := []Cab{}
	for rows.Next() {
		var c Cab
		if err := rows.Scan(&c.ID, &c.RegistrationNumber, &c.DriverName, &c.DriverPhoneNumber, &c.CabType, &c.Available, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan cab: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) UpdateCab(ctx context.Context, c *Cab) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE cabs
		SET driver_name = $2, driver_phone_number = $3, cab_type = $4, available = $5
		WHERE id = $1`,
		string(c.ID), c.DriverName, c.DriverPhoneNumber, c.CabType, c.Available,
	)
	if err != nil {
		return fmt.Errorf("update cab: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCabNotFound
	}
	return nil
}

func (s *Store) DeleteCab(ctx context.Context, id types.ID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM cabs WHERE id = $1`, string(id))
	if err != nil {
		return fmt.Errorf("delete cab: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCabNotFound
	}
	return nil
}

func isPgUnique(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
