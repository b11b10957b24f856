// README: Directory service: user/cab lookup for the booking core, plus cab administration.
package directory

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"cabbook/internal/apperr"
	"cabbook/internal/types"
)

var (
	ErrUserNotFound          = apperr.New(apperr.NotFound, "user not found")
	ErrCabNotFound           = apperr.New(apperr.NotFound, "cab not found")
	ErrInvalidPhone          = apperr.New(apperr.InvalidArgument, "phone number must be exactly 10 digits")
	ErrDuplicateEmail        = apperr.New(apperr.Conflict, "email is already registered")
	ErrDuplicateRegistration = apperr.New(apperr.Conflict, "cab with this registration number already exists")
	ErrBadRequest            = apperr.New(apperr.InvalidArgument, "missing required fields")
	ErrEmptyPatch            = apperr.New(apperr.InvalidArgument, "nothing to update")
)

type Service struct {
	repo  Repository
	cache *Cache
	log   *slog.Logger
	now   func() time.Time
}

// NewService wires a repository with an optional cache (nil disables caching).
func NewService(repo Repository, cache *Cache, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{repo: repo, cache: cache, log: log, now: time.Now}
}

func (s *Service) GetUser(ctx context.Context, id types.ID) (*User, error) {
	if s.cache != nil {
		if u, ok := s.cache.User(ctx, id); ok {
			return u, nil
		}
	}
	u, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.PutUser(ctx, u)
	}
	return u, nil
}

func (s *Service) GetCab(ctx context.Context, id types.ID) (*Cab, error) {
	if s.cache != nil {
		if c, ok := s.cache.Cab(ctx, id); ok {
			return c, nil
		}
	}
	c, err := s.repo.GetCab(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.PutCab(ctx, c)
	}
	return c, nil
}

func (s *Service) Register(ctx context.Context, cmd RegisterCommand) (*User, error) {
	u := &User{
		ID:           types.NewID(),
		Name:         strings.TrimSpace(cmd.Name),
		Email:        normalizeEmail(cmd.Email),
		PhoneNumber:  strings.TrimSpace(cmd.PhoneNumber),
		PasswordHash: cmd.PasswordHash,
		CreatedAt:    s.now().UTC(),
	}
	if u.Name == "" || u.Email == "" || u.PasswordHash == "" {
		return nil, ErrBadRequest
	}
	if !ValidPhone(u.PhoneNumber) {
		return nil, ErrInvalidPhone
	}
	if err := s.repo.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	s.log.Info("user registered", "user_id", u.ID)
	return u, nil
}

func (s *Service) AddCab(ctx context.Context, cmd AddCabCommand) (*Cab, error) {
	c := &Cab{
		ID:                 types.NewID(),
		RegistrationNumber: strings.TrimSpace(cmd.RegistrationNumber),
		DriverName:         strings.TrimSpace(cmd.DriverName),
		DriverPhoneNumber:  strings.TrimSpace(cmd.DriverPhoneNumber),
		CabType:            strings.TrimSpace(cmd.CabType),
		Available:          true,
		CreatedAt:          s.now().UTC(),
	}
	if cmd.Available != nil {
		c.Available = *cmd.Available
	}
	if c.RegistrationNumber == "" || c.DriverName == "" || c.CabType == "" {
		return nil, ErrBadRequest
	}
	if !ValidPhone(c.DriverPhoneNumber) {
		return nil, ErrInvalidPhone
	}
	if err := s.repo.CreateCab(ctx, c); err != nil {
		if errors.Is(err, ErrDuplicateRegistration) {
			s.log.Info("cab already registered", "registration_number", c.RegistrationNumber)
		}
		return nil, err
	}
	s.log.Info("cab added", "cab_id", c.ID, "registration_number", c.RegistrationNumber)
	return c, nil
}

func (s *Service) ListCabs(ctx context.Context) ([]Cab, error) {
	return s.repo.ListCabs(ctx)
}

func (s *Service) GetCabByRegistration(ctx context.Context, reg string) (*Cab, error) {
	return s.repo.GetCabByRegistration(ctx, strings.TrimSpace(reg))
}

func (s *Service) UpdateCab(ctx context.Context, reg string, p CabPatch) (*Cab, error) {
	if p.Empty() {
		return nil, ErrEmptyPatch
	}
	c, err := s.repo.GetCabByRegistration(ctx, strings.TrimSpace(reg))
	if err != nil {
		return nil, err
	}
	if p.DriverName != nil {
		name := strings.TrimSpace(*p.DriverName)
		if name == "" {
			return nil, ErrBadRequest
		}
		c.DriverName = name
	}
	if p.DriverPhoneNumber != nil {
		phone := strings.TrimSpace(*p.DriverPhoneNumber)
		if !ValidPhone(phone) {
			return nil, ErrInvalidPhone
		}
		c.DriverPhoneNumber = phone
	}
	if p.CabType != nil {
		cabType := strings.TrimSpace(*p.CabType)
		if cabType == "" {
			return nil, ErrBadRequest
		}
		c.CabType = cabType
	}
	if p.Available != nil {
		c.Available = *p.Available
	}
	if err := s.repo.UpdateCab(ctx, c); err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.ForgetCab(ctx, c.ID)
	}
	return c, nil
}

func (s *Service) DeleteCab(ctx context.Context, reg string) (*Cab, error) {
	c, err := s.repo.GetCabByRegistration(ctx, strings.TrimSpace(reg))
	if err != nil {
		return nil, err
	}
	if err := s.repo.DeleteCab(ctx, c.ID); err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.ForgetCab(ctx, c.ID)
	}
	s.log.Info("cab deleted", "cab_id", c.ID, "registration_number", c.RegistrationNumber)
	return c, nil
}
