package booking

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"cabbook/internal/infra"
	"cabbook/internal/modules/directory"
	"cabbook/internal/types"
)

var (
	indiranagar = Location{Name: "Indiranagar", Latitude: 12.9719, Longitude: 77.6412}
	mgRoad      = Location{Name: "MG Road", Latitude: 12.9716, Longitude: 77.5946}
	origin      = Location{Name: "Origin", Latitude: 0, Longitude: 0}
)

type fixture struct {
	svc   *Service
	store *SQLiteStore
	dir   *directory.Service
	clock *testClock
	user  *directory.User
	cab   *directory.Cab
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) eventTypes() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	ctx := context.Background()
	db, err := infra.NewSQLite(ctx, ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	dir := directory.NewService(directory.NewSQLiteStore(db), nil, quietLogger())
	user, err := dir.Register(ctx, directory.RegisterCommand{
		Name: "Asha Rao", Email: "asha@example.com", PhoneNumber: "9000000001", PasswordHash: "hash",
	})
	if err != nil {
		t.Fatalf("register user: %v", err)
	}
	cab, err := dir.AddCab(ctx, directory.AddCabCommand{
		RegistrationNumber: "KA01AB1234", DriverName: "Ravi", DriverPhoneNumber: "9876543210", CabType: "sedan",
	})
	if err != nil {
		t.Fatalf("add cab: %v", err)
	}

	clock := &testClock{now: time.Date(2024, 3, 14, 9, 30, 0, 0, time.UTC)}
	store := NewSQLiteStore(db)
	all := append([]Option{WithClock(clock.Now), WithLogger(quietLogger())}, opts...)
	return &fixture{
		svc:   NewService(store, dir, all...),
		store: store,
		dir:   dir,
		clock: clock,
		user:  user,
		cab:   cab,
	}
}

func (f *fixture) addCab(t *testing.T, reg string) *directory.Cab {
	t.Helper()
	cab, err := f.dir.AddCab(context.Background(), directory.AddCabCommand{
		RegistrationNumber: reg, DriverName: "Kiran", DriverPhoneNumber: "9876543211", CabType: "mini",
	})
	if err != nil {
		t.Fatalf("add cab: %v", err)
	}
	return cab
}

func (f *fixture) create(t *testing.T, pickup, dropoff Location) *Booking {
	t.Helper()
	b, err := f.svc.Create(context.Background(), CreateCommand{
		UserID: f.user.ID.String(), CabID: f.cab.ID.String(), PickUp: pickup, DropOff: dropoff,
	})
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}
	return b
}

func ptr[T any](v T) *T { return &v }

// spyRepo fails the test if any call reaches the store.
type spyRepo struct {
	t *testing.T
}

func (s spyRepo) fail() { s.t.Fatalf("store must not be called") }

func (s spyRepo) Create(context.Context, *Booking) error { s.fail(); return nil }
func (s spyRepo) Get(context.Context, types.ID) (*Booking, error) {
	s.fail()
	return nil, nil
}
func (s spyRepo) ListByUser(context.Context, types.ID) ([]Booking, error) {
	s.fail()
	return nil, nil
}
func (s spyRepo) ListBetween(context.Context, time.Time, time.Time) ([]Booking, error) {
	s.fail()
	return nil, nil
}
func (s spyRepo) HasActiveRoute(context.Context, types.ID, types.Point, types.Point) (bool, error) {
	s.fail()
	return false, nil
}
func (s spyRepo) Update(context.Context, types.ID, func(*Booking) error) (*Booking, error) {
	s.fail()
	return nil, nil
}
func (s spyRepo) Delete(context.Context, types.ID) (*Booking, error) {
	s.fail()
	return nil, nil
}
