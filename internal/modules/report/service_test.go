package report

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cabbook/internal/apperr"
	"cabbook/internal/infra"
	"cabbook/internal/modules/booking"
	"cabbook/internal/modules/directory"
	"cabbook/internal/types"
)

type memSink struct {
	mu    sync.Mutex
	files map[string]string
	err   error
}

func (s *memSink) Write(_ context.Context, name string, data []byte) error {
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.files == nil {
		s.files = map[string]string{}
	}
	s.files[name] = string(data)
	return nil
}

type ledgerFunc func(ctx context.Context, start, end time.Time) ([]booking.Booking, error)

func (f ledgerFunc) ListBetween(ctx context.Context, start, end time.Time) ([]booking.Booking, error) {
	return f(ctx, start, end)
}

type env struct {
	bookings *booking.Service
	dir      *directory.Service
	user     *directory.User
	cab      *directory.Cab
	now      time.Time
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newEnv(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()
	db, err := infra.NewSQLite(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	e := &env{dir: directory.NewService(directory.NewSQLiteStore(db), nil, quietLogger())}
	e.user, err = e.dir.Register(ctx, directory.RegisterCommand{
		Name: "Asha Rao", Email: "asha@example.com", PhoneNumber: "9000000001", PasswordHash: "h",
	})
	require.NoError(t, err)
	e.cab, err = e.dir.AddCab(ctx, directory.AddCabCommand{
		RegistrationNumber: "KA01AB1234", DriverName: "Ravi", DriverPhoneNumber: "9876543210", CabType: "sedan",
	})
	require.NoError(t, err)

	e.bookings = booking.NewService(booking.NewSQLiteStore(db), e.dir,
		booking.WithClock(func() time.Time { return e.now }),
		booking.WithLogger(quietLogger()),
	)
	return e
}

func (e *env) book(t *testing.T, at time.Time, from, to string, lat float64) *booking.Booking {
	t.Helper()
	e.now = at
	b, err := e.bookings.Create(context.Background(), booking.CreateCommand{
		UserID:  e.user.ID.String(),
		CabID:   e.cab.ID.String(),
		PickUp:  booking.Location{Name: from, Latitude: lat, Longitude: 77.6},
		DropOff: booking.Location{Name: to, Latitude: 12.9, Longitude: 77.5},
	})
	require.NoError(t, err)
	return b
}

func TestGenerateMonthlyScopesToMonth(t *testing.T) {
	e := newEnv(t)
	jan := e.book(t, time.Date(2024, 1, 31, 23, 59, 59, 999_999_999, time.UTC), "Whitefield", "Koramangala", 12.96)
	feb1 := e.book(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), "Hebbal", "Jayanagar", 13.03)
	feb2 := e.book(t, time.Date(2024, 2, 29, 23, 59, 59, 999_999_999, time.UTC), "Indiranagar, 100ft Rd", "MG Road", 12.97)

	sink := &memSink{}
	svc := NewService(e.bookings, e.dir, sink, WithLogger(quietLogger()))

	res, err := svc.GenerateMonthly(context.Background(), 2024, 2)
	require.NoError(t, err)
	assert.Equal(t, "booking-report-2-2024.csv", res.FileName)
	assert.Equal(t, 2, res.Rows)
	assert.True(t, res.Period.Start.Equal(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, res.Period.End.Equal(time.Date(2024, 2, 29, 23, 59, 59, 999_999_999, time.UTC)))

	want := strings.Join([]string{
		"Booking ID,Customer Name,Pickup Location,Drop Location,Booking Date",
		feb1.ID.String() + ",Asha Rao,Hebbal,Jayanagar,Thu Feb 01 2024",
		feb2.ID.String() + `,Asha Rao,"Indiranagar, 100ft Rd",MG Road,Thu Feb 29 2024`,
	}, "\n") + "\n"
	assert.Equal(t, want, sink.files[res.FileName])

	res, err = svc.GenerateMonthly(context.Background(), 2024, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Rows)
	assert.Contains(t, sink.files["booking-report-1-2024.csv"], jan.ID.String())
}

func TestGenerateMonthlyEmptyIsHeaderOnly(t *testing.T) {
	e := newEnv(t)
	sink := &memSink{}
	svc := NewService(e.bookings, e.dir, sink, WithLogger(quietLogger()))

	res, err := svc.GenerateMonthly(context.Background(), 2023, 7)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Rows)
	assert.Equal(t, "Booking ID,Customer Name,Pickup Location,Drop Location,Booking Date\n", sink.files["booking-report-7-2023.csv"])
}

func TestGenerateMonthlyInvalidPeriod(t *testing.T) {
	svc := NewService(ledgerFunc(func(context.Context, time.Time, time.Time) ([]booking.Booking, error) {
		t.Fatal("ledger must not be queried")
		return nil, nil
	}), nil, &memSink{})

	for _, p := range [][2]int{{2024, 0}, {2024, 13}, {0, 5}, {10000, 1}} {
		_, err := svc.GenerateMonthly(context.Background(), p[0], p[1])
		assert.ErrorIs(t, err, ErrInvalidPeriod, "year=%d month=%d", p[0], p[1])
		assert.Equal(t, apperr.InvalidArgument, apperr.KindOf(err))
	}
}

func TestGenerateMonthlyFailuresAreInternal(t *testing.T) {
	ledgerDown := ledgerFunc(func(context.Context, time.Time, time.Time) ([]booking.Booking, error) {
		return nil, errors.New("connection reset")
	})
	_, err := NewService(ledgerDown, nil, &memSink{}, WithLogger(quietLogger())).GenerateMonthly(context.Background(), 2024, 3)
	require.Error(t, err)
	assert.Equal(t, apperr.Internal, apperr.KindOf(err))

	e := newEnv(t)
	svc := NewService(e.bookings, e.dir, &memSink{err: errors.New("disk full")}, WithLogger(quietLogger()))
	_, err = svc.GenerateMonthly(context.Background(), 2024, 3)
	require.Error(t, err)
	assert.Equal(t, apperr.Internal, apperr.KindOf(err))
	assert.Equal(t, "internal server error", apperr.Message(err))
}

func TestGenerateMonthlyMissingOwnerHasEmptyName(t *testing.T) {
	orphan := booking.Booking{
		ID:          types.NewID(),
		UserID:      types.NewID(),
		PickUp:      booking.Location{Name: "A"},
		DropOff:     booking.Location{Name: "B"},
		BookingDate: time.Date(2024, 5, 5, 10, 0, 0, 0, time.UTC),
	}
	ledger := ledgerFunc(func(context.Context, time.Time, time.Time) ([]booking.Booking, error) {
		return []booking.Booking{orphan}, nil
	})
	e := newEnv(t)
	sink := &memSink{}
	_, err := NewService(ledger, e.dir, sink, WithLogger(quietLogger())).GenerateMonthly(context.Background(), 2024, 5)
	require.NoError(t, err)
	assert.Contains(t, sink.files["booking-report-5-2024.csv"], orphan.ID.String()+",,A,B,Sun May 05 2024")
}

func TestMonthPeriodInZone(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	p := MonthPeriod(2024, 12, ist)
	assert.Equal(t, "2024-12-01T00:00:00+05:30", p.Start.Format(time.RFC3339))
	assert.Equal(t, "2024-12-31T23:59:59.999999999+05:30", p.End.Format(time.RFC3339Nano))
}

func TestFileSinkOverwritesAtomically(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "bookings")
	sink := NewFileSink(dir)
	ctx := context.Background()

	require.NoError(t, sink.Write(ctx, "booking-report-3-2024.csv", []byte("first\n")))
	require.NoError(t, sink.Write(ctx, "booking-report-3-2024.csv", []byte("second\n")))

	got, err := os.ReadFile(filepath.Join(dir, "booking-report-3-2024.csv"))
	require.NoError(t, err)
	assert.Equal(t, "second\n", string(got))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")

	assert.Error(t, sink.Write(ctx, "../escape.csv", []byte("x")))
}
