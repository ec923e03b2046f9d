package handler

import (
	"net/http"
	"strings"

	"barbershop/internal/bookings/service"
	apperrors "barbershop/pkg/errors"
	httputil "barbershop/pkg/http"
	"barbershop/pkg/logger"
	"barbershop/pkg/middleware"
	"barbershop/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type BookingHandler struct {
	service service.BookingService
	log     *logger.Logger
}

func NewBookingHandler(service service.BookingService, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log,
	}
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor, ok := middleware.ActorFrom(r.Context())
	if !ok {
		h.writeError(w, "Create", apperrors.Unauthorized("Authentication required"))
		return
	}

	var req model.CreateBookingRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	booking, err := h.service.CreateBooking(r.Context(), &req, actor)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, booking); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, ok := middleware.ActorFrom(r.Context())
	if !ok {
		h.writeError(w, "GetByID", apperrors.Unauthorized("Authentication required"))
		return
	}

	booking, err := h.service.GetBooking(r.Context(), ps.ByName("id"), actor)
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

// List reads scope, status, search, date and upcoming from the query string.
func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor, ok := middleware.ActorFrom(r.Context())
	if !ok {
		h.writeError(w, "List", apperrors.Unauthorized("Authentication required"))
		return
	}

	scope, err := parseScope(r)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}
	filter, err := parseFilter(r)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	bookings, err := h.service.ListBookings(r.Context(), actor, scope, filter)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	if err := httputil.WriteList(w, bookings, len(bookings)); err != nil {
		h.log.Error("failed to write list response", "handler", "List", "operation", "WriteList", "error", err)
	}
}

func (h *BookingHandler) Stats(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor, ok := middleware.ActorFrom(r.Context())
	if !ok {
		h.writeError(w, "Stats", apperrors.Unauthorized("Authentication required"))
		return
	}

	scope, err := parseScope(r)
	if err != nil {
		h.writeError(w, "Stats", err)
		return
	}

	stats, err := h.service.GetStats(r.Context(), actor, scope)
	if err != nil {
		h.writeError(w, "Stats", err)
		return
	}

	if err := httputil.WriteSuccess(w, stats); err != nil {
		h.log.Error("failed to write success response", "handler", "Stats", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) Transition(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, ok := middleware.ActorFrom(r.Context())
	if !ok {
		h.writeError(w, "Transition", apperrors.Unauthorized("Authentication required"))
		return
	}

	booking, err := h.service.ApplyTransition(r.Context(), ps.ByName("id"), ps.ByName("transition"), actor)
	if err != nil {
		h.writeError(w, "Transition", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "Transition", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, ok := middleware.ActorFrom(r.Context())
	if !ok {
		h.writeError(w, "Delete", apperrors.Unauthorized("Authentication required"))
		return
	}

	if err := h.service.DeleteBooking(r.Context(), ps.ByName("id"), actor); err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *BookingHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func parseScope(r *http.Request) (model.Scope, error) {
	raw := r.URL.Query().Get("scope")
	scope, ok := model.ParseScope(raw)
	if !ok {
		return "", apperrors.InvalidInput("invalid scope parameter: " + raw)
	}
	return scope, nil
}

func parseFilter(r *http.Request) (model.BookingFilter, error) {
	query := r.URL.Query()
	var filter model.BookingFilter

	if raw := query.Get("status"); raw != "" {
		status, ok := model.ParseBookingStatus(raw)
		if !ok {
			return filter, apperrors.InvalidInput("invalid status parameter: " + raw)
		}
		filter.Status = status
	}

	rawRange := strings.ToLower(query.Get("date"))
	dateRange, ok := model.ParseDateRange(rawRange)
	if !ok {
		return filter, apperrors.InvalidInput("invalid date parameter: " + rawRange)
	}
	filter.Range = dateRange

	upcoming, err := httputil.QueryBool(r, "upcoming")
	if err != nil {
		return filter, err
	}
	filter.Upcoming = upcoming
	filter.Search = strings.TrimSpace(query.Get("search"))

	return filter, nil
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/bookings", h.Create)
	router.GET("/api/v1/bookings", h.List)
	router.GET("/api/v1/bookings/stats", h.Stats)
	router.GET("/api/v1/bookings/id/:id", h.GetByID)
	router.POST("/api/v1/bookings/id/:id/:transition", h.Transition)
	router.DELETE("/api/v1/bookings/id/:id", h.Delete)
}
