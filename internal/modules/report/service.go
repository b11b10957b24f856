// README: Monthly booking report generation (CSV).
package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"log/slog"
	"time"

	"cabbook/internal/apperr"
	"cabbook/internal/modules/booking"
	"cabbook/internal/modules/directory"
	"cabbook/internal/types"
)

var ErrInvalidPeriod = apperr.New(apperr.InvalidArgument, "month must be 1-12 and year 1-9999")

type Ledger interface {
	ListBetween(ctx context.Context, start, end time.Time) ([]booking.Booking, error)
}

type Users interface {
	GetUser(ctx context.Context, id types.ID) (*directory.User, error)
}

type Service struct {
	ledger Ledger
	users  Users
	sink   Sink
	loc    *time.Location
	log    *slog.Logger
}

type Option func(*Service)

// WithLocation sets the time zone months are cut in. Default UTC.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) { s.loc = loc }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.log = l }
}

func NewService(ledger Ledger, users Users, sink Sink, opts ...Option) *Service {
	s := &Service{ledger: ledger, users: users, sink: sink, loc: time.UTC, log: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GenerateMonthly writes booking-report-{month}-{year}.csv covering every booking
// made in that month. A month without bookings yields a header-only report.
func (s *Service) GenerateMonthly(ctx context.Context, year, month int) (Result, error) {
	if month < 1 || month > 12 || year < 1 || year > 9999 {
		return Result{}, ErrInvalidPeriod
	}
	period := MonthPeriod(year, month, s.loc)

	bookings, err := s.ledger.ListBetween(ctx, period.Start, period.End)
	if err != nil {
		return Result{}, apperr.Wrap(apperr.Internal, "list bookings", err)
	}

	rows, err := s.rows(ctx, bookings)
	if err != nil {
		return Result{}, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write(Header)
	for _, r := range rows {
		_ = w.Write(r.record(s.loc))
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return Result{}, apperr.Wrap(apperr.Internal, "encode report", err)
	}

	name := FileName(year, month)
	if err := s.sink.Write(ctx, name, buf.Bytes()); err != nil {
		return Result{}, apperr.Wrap(apperr.Internal, "write report", err)
	}
	s.log.Info("booking report generated", "file", name, "rows", len(rows))
	return Result{FileName: name, Period: period, Rows: len(rows)}, nil
}

func (s *Service) rows(ctx context.Context, bookings []booking.Booking) ([]Row, error) {
	names := map[types.ID]string{}
	out := make([]Row, 0, len(bookings))
	for _, b := range bookings {
		name, ok := names[b.UserID]
		if !ok {
			u, err := s.users.GetUser(ctx, b.UserID)
			switch {
			case errors.Is(err, directory.ErrUserNotFound):
				s.log.Warn("report: booking owner missing", "booking_id", b.ID, "user_id", b.UserID)
			case err != nil:
				return nil, apperr.Wrap(apperr.Internal, "resolve customer", err)
			default:
				name = u.Name
			}
			names[b.UserID] = name
		}
		out = append(out, Row{
			BookingID:    b.ID.String(),
			CustomerName: name,
			Pickup:       b.PickUp.Name,
			Drop:         b.DropOff.Name,
			BookingDate:  b.BookingDate,
		})
	}
	return out, nil
}
