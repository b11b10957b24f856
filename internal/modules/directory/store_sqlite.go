// README: Directory store backed by the embedded SQLite database.
package directory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"cabbook/internal/types"
)

const sqliteTime = "2006-01-02 15:04:05.000000000"

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) CreateUser(ctx context.Context, u *User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, name, email, phone_number, password_hash, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		string(u.ID), u.Name, u.Email, u.PhoneNumber, u.PasswordHash, u.CreatedAt.UTC().Format(sqliteTime),
	)
	if isSQLiteUnique(err) {
		return ErrDuplicateEmail
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetUser(ctx context.Context, id types.ID) (*User, error) {
	var u User
	var created string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, phone_number, password_hash, created_at
		FROM users WHERE id = ?`, string(id),
	).Scan(&u.ID, &u.Name, &u.Email, &u.PhoneNumber, &u.PasswordHash, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if u.CreatedAt, err = time.Parse(sqliteTime, created); err != nil {
		return nil, fmt.Errorf("get user: created_at: %w", err)
	}
	return &u, nil
}

func (s *SQLiteStore) CreateCab(ctx context.Context, c *Cab) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cabs (id, registration_number, driver_name, driver_phone_number, cab_type, available, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		string(c.ID), c.RegistrationNumber, c.DriverName, c.DriverPhoneNumber, c.CabType, c.Available,
		c.CreatedAt.UTC().Format(sqliteTime),
	)
	if isSQLiteUnique(err) {
		return ErrDuplicateRegistration
	}
	if err != nil {
		return fmt.Errorf("insert cab: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetCab(ctx context.Context, id types.ID) (*Cab, error) {
	return s.getCab(ctx, `SELECT `+cabColumns+` FROM cabs WHERE id = ?`, string(id))
}

func (s *SQLiteStore) GetCabByRegistration(ctx context.Context, reg string) (*Cab, error) {
	return s.getCab(ctx, `SELECT `+cabColumns+` FROM cabs WHERE registration_number = ?`, reg)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteCab(row rowScanner) (*Cab, error) {
	var c Cab
	var created string
	if err := row.Scan(&c.ID, &c.RegistrationNumber, &c.DriverName, &c.DriverPhoneNumber, &c.CabType, &c.Available, &created); err != nil {
		return nil, err
	}
	t, err := time.Parse(sqliteTime, created)
	if err != nil {
		return nil, fmt.Errorf("created_at: %w", err)
	}
	c.CreatedAt = t
	return &c, nil
}

func (s *SQLiteStore) getCab(ctx context.Context, query string, arg string) (*Cab, error) {
	c, err := scanSQLiteCab(s.db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCabNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get cab: %w", err)
	}
	return c, nil
}

func (s *SQLiteStore) ListCabs(ctx context.Context) ([]Cab, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+cabColumns+` FROM cabs ORDER BY created_at, registration_number`)
	if err != nil {
		return nil, fmt.Errorf("list cabs: %w", err)
	}
	defer rows.Close()

	out := []Cab{}
	for rows.Next() {
		c, err := scanSQLiteCab(rows)
		if err != nil {
			return nil, fmt.Errorf("scan cab: %w", err)
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) UpdateCab(ctx context.Context, c *Cab) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE cabs
		SET driver_name = ?, driver_phone_number = ?, cab_type = ?, available = ?
		WHERE id = ?`,
		c.DriverName, c.DriverPhoneNumber, c.CabType, c.Available, string(c.ID),
	)
	if err != nil {
		return fmt.Errorf("update cab: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrCabNotFound
	}
	return nil
}

func (s *SQLiteStore) DeleteCab(ctx context.Context, id types.ID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM cabs WHERE id = ?`, string(id))
	if err != nil {
		return fmt.Errorf("delete cab: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrCabNotFound
	}
	return nil
}

func isSQLiteUnique(err error) bool {
	var sqlErr sqlite3.Error
	return errors.As(err, &sqlErr) && sqlErr.ExtendedCode == sqlite3.ErrConstraintUnique
}
