package service

import (
	"context"
	"errors"
	"time"

	bookingserrors "barbershop/internal/bookings/errors"
	"barbershop/internal/bookings/events"
	"barbershop/internal/bookings/lifecycle"
	"barbershop/internal/bookings/repository"
	"barbershop/internal/bookings/stats"
	"barbershop/internal/bookings/validator"
	"barbershop/pkg/client"
	"barbershop/pkg/config"
	apperrors "barbershop/pkg/errors"
	"barbershop/pkg/model"
	"barbershop/pkg/sanitizer"

	"go.mongodb.org/mongo-driver/mongo"
)

// Catalog is the part of the service catalog a booking needs.
type Catalog interface {
	GetService(ctx context.Context, id string) (*model.Service, error)
}

// BarberResolver picks the barber for a new booking; nil means unassigned.
type BarberResolver interface {
	Resolve(ctx context.Context, requestedBarberID string) (*model.Barber, error)
}

type BookingService interface {
	CreateBooking(ctx context.Context, req *model.CreateBookingRequest, actor model.Actor) (*model.Booking, error)
	GetBooking(ctx context.Context, id string, actor model.Actor) (*model.Booking, error)
	ListBookings(ctx context.Context, actor model.Actor, scope model.Scope, filter model.BookingFilter) ([]*model.Booking, error)
	ApplyTransition(ctx context.Context, id string, transition string, actor model.Actor) (*model.Booking, error)
	GetStats(ctx context.Context, actor model.Actor, scope model.Scope) (*model.Stats, error)
	DeleteBooking(ctx context.Context, id string, actor model.Actor) error
}

type bookingService struct {
	repo      repository.BookingRepository
	catalog   Catalog
	resolver  BarberResolver
	users     client.UserDirectory
	publisher events.Publisher
	validator *validator.BookingValidator
	cfg       *config.Config
	now       func() time.Time
}

func NewBookingService(
	repo repository.BookingRepository,
	catalog Catalog,
	resolver BarberResolver,
	users client.UserDirectory,
	publisher events.Publisher,
	validator *validator.BookingValidator,
	cfg *config.Config,
) BookingService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &bookingService{
		repo:      repo,
		catalog:   catalog,
		resolver:  resolver,
		users:     users,
		publisher: publisher,
		validator: validator,
		cfg:       cfg,
		now:       time.Now,
	}
}

func (s *bookingService) CreateBooking(ctx context.Context, req *model.CreateBookingRequest, actor model.Actor) (*model.Booking, error) {
	if actor.UserID == "" {
		return nil, apperrors.Unauthorized("Authentication required")
	}

	req.Notes = sanitizer.NormalizeText(req.Notes)
	now := s.now()

	if err := s.validator.Validate(req, now); err != nil {
		s.cfg.Log.Warn("Booking validation failed",
			"user_id", actor.UserID,
			"service_id", req.ServiceID,
			"error", err,
		)
		return nil, apperrors.Validation("Booking validation failed", map[string]any{"errors": err})
	}

	svc, err := s.catalog.GetService(ctx, req.ServiceID)
	if err != nil {
		return nil, err
	}
	if !svc.Active {
		s.cfg.Log.Warn("Booking rejected for inactive service", "user_id", actor.UserID, "service_id", svc.ID)
		return nil, apperrors.ServiceInactive(svc.ID)
	}

	barber, err := s.resolver.Resolve(ctx, req.BarberID)
	if err != nil {
		s.cfg.Log.Warn("Barber resolution failed", "user_id", actor.UserID, "barber_id", req.BarberID, "error", err)
		return nil, err
	}

	booking := &model.Booking{
		UserID:     actor.UserID,
		ClientName: s.clientName(ctx, actor.UserID),
		Service:    svc.Snapshot(),
		Date:       req.Date,
		Time:       req.Time,
		Status:     model.StatusPending,
		Notes:      req.Notes,
		Version:    1,
		CreatedAt:  now,
	}
	if barber != nil {
		booking.BarberID = barber.ID
		booking.BarberUserID = barber.UserID
		booking.BarberName = barber.DisplayName
	}

	if err := s.repo.Create(ctx, booking); err != nil {
		s.cfg.Log.Error("Failed to create booking", "user_id", actor.UserID, "error", err)
		return nil, apperrors.Internal("Failed to create booking", err)
	}

	s.cfg.Log.Info("Booking created",
		"booking_id", booking.ID,
		"user_id", booking.UserID,
		"barber_id", booking.BarberID,
		"service_id", booking.Service.ID,
		"booking_date", booking.Date,
		"booking_time", booking.Time,
	)

	s.publish(ctx, model.NewBookingEvent(model.EventBookingCreated, booking, "", actor.Role, s.now()))
	return booking, nil
}

// clientName is best effort; a booking never fails because the user
// directory is unreachable.
func (s *bookingService) clientName(ctx context.Context, userID string) string {
	profile, err := s.users.GetUser(ctx, userID)
	if err != nil {
		if !errors.Is(err, client.ErrUserNotFound) {
			s.cfg.Log.Warn("Client name lookup failed", "user_id", userID, "error", err)
		}
		return ""
	}
	return sanitizer.NormalizeText(profile.FullName)
}

func (s *bookingService) GetBooking(ctx context.Context, id string, actor model.Actor) (*model.Booking, error) {
	booking, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if !canView(booking, actor) {
		s.cfg.Log.Warn("Booking access denied", "booking_id", id, "user_id", actor.UserID, "role", actor.Role)
		return nil, apperrors.Forbidden("Not allowed to view this booking")
	}

	return booking, nil
}

func canView(b *model.Booking, actor model.Actor) bool {
	return actor.IsAdmin() ||
		b.OwnedBy(actor.UserID) ||
		(actor.Role == model.RoleBarber && b.AssignedTo(actor.UserID))
}

func (s *bookingService) find(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		s.cfg.Log.Error("Failed to retrieve booking", "booking_id", id, "error", err)
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}

	return booking, nil
}

func (s *bookingService) ListBookings(ctx context.Context, actor model.Actor, scope model.Scope, filter model.BookingFilter) ([]*model.Booking, error) {
	bookings, err := s.scoped(ctx, actor, scope)
	if err != nil {
		return nil, err
	}

	filtered := stats.Filter(bookings, filter, s.calendar())
	s.cfg.Log.Debug("Bookings listed",
		"user_id", actor.UserID,
		"scope", scope,
		"status", filter.Status,
		"range", filter.Range,
		"count", len(filtered),
	)
	return filtered, nil
}

func (s *bookingService) GetStats(ctx context.Context, actor model.Actor, scope model.Scope) (*model.Stats, error) {
	bookings, err := s.scoped(ctx, actor, scope)
	if err != nil {
		return nil, err
	}

	summary := stats.Summarize(bookings, s.calendar())
	return &summary, nil
}

func (s *bookingService) calendar() stats.Calendar {
	return stats.NewCalendar(s.now(), s.cfg.Location(), s.cfg.WeekStart())
}

// scoped loads the booking set visible to actor under scope, newest first.
func (s *bookingService) scoped(ctx context.Context, actor model.Actor, scope model.Scope) ([]*model.Booking, error) {
	if actor.UserID == "" {
		return nil, apperrors.Unauthorized("Authentication required")
	}

	var (
		bookings []*model.Booking
		err      error
	)

	switch scope {
	case model.ScopeOwn, "":
		bookings, err = s.repo.FindByUser(ctx, actor.UserID)
	case model.ScopeAssigned:
		if actor.Role != model.RoleBarber {
			return nil, apperrors.Forbidden("Only barbers have assigned bookings")
		}
		bookings, err = s.repo.FindByBarberUser(ctx, actor.UserID)
	case model.ScopeAll:
		if !actor.IsAdmin() {
			s.cfg.Log.Warn("Scope all denied", "user_id", actor.UserID, "role", actor.Role)
			return nil, apperrors.Forbidden("Admin role required")
		}
		bookings, err = s.repo.FindAll(ctx)
	default:
		return nil, apperrors.InvalidInput("Unknown scope: " + string(scope))
	}

	if err != nil {
		s.cfg.Log.Error("Failed to list bookings", "user_id", actor.UserID, "scope", scope, "error", err)
		return nil, apperrors.Internal("Failed to retrieve bookings", err)
	}
	return bookings, nil
}

// ApplyTransition reads the booking, checks the rule table and writes the new
// status only if status and version are still the ones that were read.
func (s *bookingService) ApplyTransition(ctx context.Context, id string, transition string, actor model.Actor) (*model.Booking, error) {
	t, ok := model.ParseTransition(transition)
	if !ok {
		return nil, apperrors.InvalidInput("Unknown transition: " + transition)
	}

	booking, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	next, err := lifecycle.Next(booking, t, actor)
	if err != nil {
		s.cfg.Log.Warn("Transition rejected",
			"booking_id", id,
			"status", booking.Status,
			"transition", t,
			"user_id", actor.UserID,
			"role", actor.Role,
		)
		return nil, err
	}

	updated, err := s.repo.UpdateStatus(ctx, id, booking.Status, booking.Version, next, s.now())
	if err != nil {
		switch {
		case errors.Is(err, bookingserrors.ErrVersionConflict):
			s.cfg.Log.Warn("Concurrent booking modification", "booking_id", id, "expected_status", booking.Status, "version", booking.Version)
			return nil, apperrors.ConcurrentModification(id, string(booking.Status))
		case errors.Is(err, bookingserrors.ErrNotFound):
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		s.cfg.Log.Error("Failed to update booking status", "booking_id", id, "error", err)
		return nil, apperrors.Internal("Failed to update booking", err)
	}

	s.cfg.Log.Info("Booking transitioned",
		"booking_id", id,
		"transition", t,
		"from", booking.Status,
		"to", updated.Status,
		"role", actor.Role,
	)

	s.publish(ctx, model.NewBookingEvent(model.EventBookingStatusChanged, updated, booking.Status, actor.Role, s.now()))
	return updated, nil
}

// DeleteBooking removes the record outright, bypassing the state machine.
func (s *bookingService) DeleteBooking(ctx context.Context, id string, actor model.Actor) error {
	if id == "" {
		return apperrors.InvalidInput("Booking ID cannot be empty")
	}

	var deleted *model.Booking
	err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		booking, err := s.find(sessCtx, id)
		if err != nil {
			return err
		}
		if !actor.IsAdmin() && !booking.OwnedBy(actor.UserID) {
			return apperrors.Forbidden("Not allowed to delete this booking")
		}
		if err := s.repo.Delete(sessCtx, id); err != nil {
			if errors.Is(err, bookingserrors.ErrNotFound) {
				return apperrors.NotFoundWithID("Booking", id)
			}
			return apperrors.Internal("Failed to delete booking", err)
		}
		deleted = booking
		return nil
	})
	if err != nil {
		if apperrors.IsAppError(err) {
			return err
		}
		s.cfg.Log.Error("Failed to delete booking", "booking_id", id, "error", err)
		return apperrors.Internal("Failed to delete booking", err)
	}

	s.cfg.Log.Info("Booking deleted", "booking_id", id, "user_id", actor.UserID, "role", actor.Role)
	s.publish(ctx, model.NewBookingEvent(model.EventBookingDeleted, deleted, deleted.Status, actor.Role, s.now()))
	return nil
}

func (s *bookingService) publish(ctx context.Context, event model.BookingEvent) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.cfg.Log.Error("Failed to publish booking event",
			"event_type", event.Type,
			"booking_id", event.BookingID,
			"error", err,
		)
	}
}
