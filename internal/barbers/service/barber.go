package service

import (
	"context"
	"errors"
	"time"

	barberserrors "barbershop/internal/barbers/errors"
	"barbershop/internal/barbers/repository"
	"barbershop/internal/barbers/validator"
	"barbershop/pkg/cache"
	"barbershop/pkg/client"
	"barbershop/pkg/config"
	apperrors "barbershop/pkg/errors"
	"barbershop/pkg/model"
	"barbershop/pkg/sanitizer"

	"github.com/shopspring/decimal"
)

const activeBarbersKey = "barbers:active"

type BarberService interface {
	GetBarber(ctx context.Context, id string) (*model.Barber, error)
	ListActiveBarbers(ctx context.Context) ([]*model.Barber, error)
	ListAllBarbers(ctx context.Context) ([]*model.Barber, error)
	// CreateBarber returns the existing record, with created false, when the
	// user is already a barber.
	CreateBarber(ctx context.Context, req *model.CreateBarberRequest) (*model.Barber, bool, error)
	UpdateBarber(ctx context.Context, id string, update *model.BarberUpdate) (*model.Barber, error)
	DeactivateBarber(ctx context.Context, id string) (*model.Barber, error)
}

type barberService struct {
	repo      repository.BarberRepository
	validator *validator.BarberValidator
	users     client.UserDirectory
	cache     cache.Cache
	cfg       *config.Config
	now       func() time.Time
}

func NewBarberService(
	repo repository.BarberRepository,
	validator *validator.BarberValidator,
	users client.UserDirectory,
	c cache.Cache,
	cfg *config.Config,
) BarberService {
	if c == nil {
		c = cache.Noop{}
	}
	return &barberService{
		repo:      repo,
		validator: validator,
		users:     users,
		cache:     c,
		cfg:       cfg,
		now:       time.Now,
	}
}

func (s *barberService) GetBarber(ctx context.Context, id string) (*model.Barber, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Barber ID cannot be empty")
	}

	barber, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.translate(err, "Failed to retrieve barber", id)
	}
	return barber, nil
}

func (s *barberService) ListActiveBarbers(ctx context.Context) ([]*model.Barber, error) {
	var cached []*model.Barber
	if err := s.cache.Get(ctx, activeBarbersKey, &cached); err == nil {
		return cached, nil
	}

	barbers, err := s.repo.FindActive(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to list active barbers", "error", err)
		return nil, apperrors.Internal("Failed to retrieve barbers", err)
	}

	if err := s.cache.Set(ctx, activeBarbersKey, barbers, s.cfg.CacheTTL); err != nil {
		s.cfg.Log.Warn("Barber cache write failed", "key", activeBarbersKey, "error", err)
	}
	return barbers, nil
}

func (s *barberService) ListAllBarbers(ctx context.Context) ([]*model.Barber, error) {
	barbers, err := s.repo.FindAll(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to list barbers", "error", err)
		return nil, apperrors.Internal("Failed to retrieve barbers", err)
	}
	return barbers, nil
}

func (s *barberService) CreateBarber(ctx context.Context, req *model.CreateBarberRequest) (*model.Barber, bool, error) {
	req.DisplayName = sanitizer.NormalizeText(req.DisplayName)
	req.Bio = sanitizer.NormalizeText(req.Bio)
	req.Specialties = sanitizer.NormalizeSpecialties(req.Specialties)

	if err := s.validator.ValidateCreate(req); err != nil {
		s.cfg.Log.Warn("Barber validation failed", "user_id", req.UserID, "error", err)
		return nil, false, apperrors.Validation("Barber validation failed", map[string]any{"errors": err})
	}

	existing, err := s.repo.FindByUserID(ctx, req.UserID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, barberserrors.ErrNotFound) {
		s.cfg.Log.Error("Failed to look up barber", "user_id", req.UserID, "error", err)
		return nil, false, apperrors.Internal("Failed to create barber", err)
	}

	barber := &model.Barber{
		UserID:      req.UserID,
		DisplayName: s.displayName(ctx, req),
		Bio:         req.Bio,
		Specialties: req.Specialties,
		Rating:      decimal.Zero,
		Active:      true,
		CreatedAt:   s.now(),
	}

	if err := s.repo.Create(ctx, barber); err != nil {
		if errors.Is(err, barberserrors.ErrDuplicateUser) {
			// lost a race with another create for the same user
			existing, findErr := s.repo.FindByUserID(ctx, req.UserID)
			if findErr == nil {
				return existing, false, nil
			}
			err = findErr
		}
		s.cfg.Log.Error("Failed to create barber", "user_id", req.UserID, "error", err)
		return nil, false, apperrors.Internal("Failed to create barber", err)
	}

	s.invalidate(ctx)
	s.cfg.Log.Info("Barber created", "barber_id", barber.ID, "user_id", barber.UserID)
	return barber, true, nil
}

// displayName prefers the requested name, then the user's full name.
func (s *barberService) displayName(ctx context.Context, req *model.CreateBarberRequest) string {
	if req.DisplayName != "" {
		return req.DisplayName
	}

	profile, err := s.users.GetUser(ctx, req.UserID)
	if err == nil && profile.FullName != "" {
		return sanitizer.NormalizeText(profile.FullName)
	}
	if err != nil && !errors.Is(err, client.ErrUserNotFound) {
		s.cfg.Log.Warn("User lookup failed, using placeholder name", "user_id", req.UserID, "error", err)
	}

	short := req.UserID
	if len(short) > 8 {
		short = short[:8]
	}
	return "Barber " + short
}

func (s *barberService) UpdateBarber(ctx context.Context, id string, update *model.BarberUpdate) (*model.Barber, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Barber ID cannot be empty")
	}

	if update.Bio != nil {
		bio := sanitizer.NormalizeText(*update.Bio)
		update.Bio = &bio
	}
	if update.Specialties != nil {
		tags := sanitizer.NormalizeSpecialties(*update.Specialties)
		update.Specialties = &tags
	}

	if err := s.validator.ValidateUpdate(update); err != nil {
		s.cfg.Log.Warn("Barber update validation failed", "barber_id", id, "error", err)
		return nil, apperrors.Validation("Barber validation failed", map[string]any{"errors": err})
	}

	barber, err := s.repo.Update(ctx, id, update, s.now())
	if err != nil {
		return nil, s.translate(err, "Failed to update barber", id)
	}

	s.invalidate(ctx)
	s.cfg.Log.Info("Barber updated", "barber_id", id)
	return barber, nil
}

// DeactivateBarber hides the barber from assignment. Existing bookings keep
// their assignment.
func (s *barberService) DeactivateBarber(ctx context.Context, id string) (*model.Barber, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Barber ID cannot be empty")
	}

	inactive := false
	barber, err := s.repo.Update(ctx, id, &model.BarberUpdate{Active: &inactive}, s.now())
	if err != nil {
		return nil, s.translate(err, "Failed to deactivate barber", id)
	}

	s.invalidate(ctx)
	s.cfg.Log.Info("Barber deactivated", "barber_id", id)
	return barber, nil
}

func (s *barberService) invalidate(ctx context.Context) {
	if err := s.cache.Delete(ctx, activeBarbersKey); err != nil {
		s.cfg.Log.Warn("Barber cache invalidation failed", "key", activeBarbersKey, "error", err)
	}
}

func (s *barberService) translate(err error, message, id string) error {
	switch {
	case errors.Is(err, barberserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Barber", id)
	case errors.Is(err, barberserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid barber ID format")
	}
	s.cfg.Log.Error(message, "barber_id", id, "error", err)
	return apperrors.Internal(message, err)
}
