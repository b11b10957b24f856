// README: Directory service tests (registration, cab CRUD, cache read-through).
package directory

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cabbook/internal/apperr"
	"cabbook/internal/infra"
	"cabbook/internal/types"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newSQLiteRepo(t *testing.T) *SQLiteStore {
	t.Helper()
	db, err := infra.NewSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewSQLiteStore(db)
}

// countingRepo records how often lookups reach the store.
type countingRepo struct {
	Repository
	cabLookups  int
	userLookups int
}

func (r *countingRepo) GetCab(ctx context.Context, id types.ID) (*Cab, error) {
	r.cabLookups++
	return r.Repository.GetCab(ctx, id)
}

func (r *countingRepo) GetUser(ctx context.Context, id types.ID) (*User, error) {
	r.userLookups++
	return r.Repository.GetUser(ctx, id)
}

func addCab(t *testing.T, svc *Service, reg string) *Cab {
	t.Helper()
	c, err := svc.AddCab(context.Background(), AddCabCommand{
		RegistrationNumber: reg,
		DriverName:         "Ravi",
		DriverPhoneNumber:  "9876543210",
		CabType:            "sedan",
	})
	require.NoError(t, err)
	return c
}

func TestRegisterAndGetUser(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newSQLiteRepo(t), nil, quietLogger())

	u, err := svc.Register(ctx, RegisterCommand{
		Name: " Asha ", Email: " Asha@Example.COM ", PhoneNumber: "9000000001", PasswordHash: "$2a$10$hash",
	})
	require.NoError(t, err)
	assert.Equal(t, "Asha", u.Name)
	assert.Equal(t, "asha@example.com", u.Email)

	got, err := svc.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Email, got.Email)
	assert.Equal(t, "$2a$10$hash", got.PasswordHash)
	assert.True(t, u.CreatedAt.Equal(got.CreatedAt))

	_, err = svc.Register(ctx, RegisterCommand{
		Name: "Other", Email: "asha@example.com", PhoneNumber: "9000000002", PasswordHash: "h",
	})
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	_, err = svc.GetUser(ctx, types.NewID())
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
}

func TestRegisterValidation(t *testing.T) {
	svc := NewService(newSQLiteRepo(t), nil, quietLogger())
	cases := []struct {
		name string
		cmd  RegisterCommand
		want error
	}{
		{"short phone", RegisterCommand{Name: "a", Email: "a@b.c", PhoneNumber: "12345", PasswordHash: "h"}, ErrInvalidPhone},
		{"letters", RegisterCommand{Name: "a", Email: "a@b.c", PhoneNumber: "12345abcde", PasswordHash: "h"}, ErrInvalidPhone},
		{"no name", RegisterCommand{Email: "a@b.c", PhoneNumber: "1234567890", PasswordHash: "h"}, ErrBadRequest},
		{"no hash", RegisterCommand{Name: "a", Email: "a@b.c", PhoneNumber: "1234567890"}, ErrBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tc.cmd)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestCabLifecycle(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newSQLiteRepo(t), nil, quietLogger())

	cab := addCab(t, svc, " KA01AB1234 ")
	assert.Equal(t, "KA01AB1234", cab.RegistrationNumber)
	assert.True(t, cab.Available)

	_, err := svc.AddCab(ctx, AddCabCommand{
		RegistrationNumber: "KA01AB1234", DriverName: "Other", DriverPhoneNumber: "9876543211", CabType: "mini",
	})
	assert.ErrorIs(t, err, ErrDuplicateRegistration)
	assert.Equal(t, apperr.Conflict, apperr.KindOf(err))

	_, err = svc.AddCab(ctx, AddCabCommand{
		RegistrationNumber: "KA01AB9999", DriverName: "Other", DriverPhoneNumber: "98765", CabType: "mini",
	})
	assert.ErrorIs(t, err, ErrInvalidPhone)

	byID, err := svc.GetCab(ctx, cab.ID)
	require.NoError(t, err)
	assert.Equal(t, cab.RegistrationNumber, byID.RegistrationNumber)

	off := false
	name := "Suresh"
	updated, err := svc.UpdateCab(ctx, "KA01AB1234", CabPatch{DriverName: &name, Available: &off})
	require.NoError(t, err)
	assert.Equal(t, "Suresh", updated.DriverName)
	assert.False(t, updated.Available)

	bad := "123"
	_, err = svc.UpdateCab(ctx, "KA01AB1234", CabPatch{DriverPhoneNumber: &bad})
	assert.ErrorIs(t, err, ErrInvalidPhone)
	_, err = svc.UpdateCab(ctx, "KA01AB1234", CabPatch{})
	assert.ErrorIs(t, err, ErrEmptyPatch)

	list, err := svc.ListCabs(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.False(t, list[0].Available)

	deleted, err := svc.DeleteCab(ctx, "KA01AB1234")
	require.NoError(t, err)
	assert.Equal(t, cab.ID, deleted.ID)

	_, err = svc.GetCabByRegistration(ctx, "KA01AB1234")
	assert.ErrorIs(t, err, ErrCabNotFound)
	_, err = svc.DeleteCab(ctx, "KA01AB1234")
	assert.ErrorIs(t, err, ErrCabNotFound)
}

func TestGetCabReadThroughCache(t *testing.T) {
	ctx := context.Background()
	base := newSQLiteRepo(t)
	cab := addCab(t, NewService(base, nil, quietLogger()), "MH12XY0001")

	stored, err := base.GetCab(ctx, cab.ID)
	require.NoError(t, err)
	payload, err := json.Marshal(stored)
	require.NoError(t, err)

	rdb, mock := redismock.NewClientMock()
	repo := &countingRepo{Repository: base}
	svc := NewService(repo, NewCache(rdb, time.Minute, quietLogger()), quietLogger())
	key := "directory:cab:" + cab.ID.String()

	mock.ExpectGet(key).RedisNil()
	mock.ExpectSet(key, string(payload), time.Minute).SetVal("OK")
	got, err := svc.GetCab(ctx, cab.ID)
	require.NoError(t, err)
	assert.Equal(t, cab.RegistrationNumber, got.RegistrationNumber)
	assert.Equal(t, 1, repo.cabLookups)

	mock.ExpectGet(key).SetVal(string(payload))
	got, err = svc.GetCab(ctx, cab.ID)
	require.NoError(t, err)
	assert.Equal(t, cab.DriverName, got.DriverName)
	assert.Equal(t, 1, repo.cabLookups, "cache hit must not reach the store")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCacheFailureFallsBackToStore(t *testing.T) {
	ctx := context.Background()
	base := newSQLiteRepo(t)
	u, err := NewService(base, nil, quietLogger()).Register(ctx, RegisterCommand{
		Name: "Asha", Email: "asha@example.com", PhoneNumber: "9000000001", PasswordHash: "h",
	})
	require.NoError(t, err)

	rdb, mock := redismock.NewClientMock()
	repo := &countingRepo{Repository: base}
	svc := NewService(repo, NewCache(rdb, time.Minute, quietLogger()), quietLogger())
	key := "directory:user:" + u.ID.String()

	stored, err := base.GetUser(ctx, u.ID)
	require.NoError(t, err)
	payload, err := json.Marshal(stored)
	require.NoError(t, err)

	mock.ExpectGet(key).SetErr(errors.New("connection refused"))
	mock.ExpectSet(key, string(payload), time.Minute).SetErr(errors.New("connection refused"))

	got, err := svc.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Asha", got.Name)
	assert.Equal(t, 1, repo.userLookups)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateCabInvalidatesCache(t *testing.T) {
	ctx := context.Background()
	base := newSQLiteRepo(t)
	cab := addCab(t, NewService(base, nil, quietLogger()), "DL3CAA0001")

	rdb, mock := redismock.NewClientMock()
	svc := NewService(base, NewCache(rdb, time.Minute, quietLogger()), quietLogger())
	key := "directory:cab:" + cab.ID.String()

	mock.ExpectDel(key).SetVal(1)
	cabType := "suv"
	_, err := svc.UpdateCab(ctx, "DL3CAA0001", CabPatch{CabType: &cabType})
	require.NoError(t, err)

	mock.ExpectDel(key).SetVal(0)
	_, err = svc.DeleteCab(ctx, "DL3CAA0001")
	require.NoError(t, err)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestValidPhone(t *testing.T) {
	assert.True(t, ValidPhone("0123456789"))
	assert.False(t, ValidPhone("012345678"))
	assert.False(t, ValidPhone("01234567890"))
	assert.False(t, ValidPhone("+123456789"))
}
