package handler

import (
	"net/http"

	"barbershop/internal/barbers/service"
	apperrors "barbershop/pkg/errors"
	httputil "barbershop/pkg/http"
	"barbershop/pkg/logger"
	"barbershop/pkg/middleware"
	"barbershop/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type BarberHandler struct {
	service service.BarberService
	log     *logger.Logger
}

func NewBarberHandler(service service.BarberService, log *logger.Logger) *BarberHandler {
	return &BarberHandler{
		service: service,
		log:     log,
	}
}

func (h *BarberHandler) ListActive(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	barbers, err := h.service.ListActiveBarbers(r.Context())
	if err != nil {
		h.writeError(w, "ListActive", err)
		return
	}

	if err := httputil.WriteList(w, barbers, len(barbers)); err != nil {
		h.log.Error("failed to write list response", "handler", "ListActive", "operation", "WriteList", "error", err)
	}
}

func (h *BarberHandler) ListAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := requireAdmin(r); err != nil {
		h.writeError(w, "ListAll", err)
		return
	}

	barbers, err := h.service.ListAllBarbers(r.Context())
	if err != nil {
		h.writeError(w, "ListAll", err)
		return
	}

	if err := httputil.WriteList(w, barbers, len(barbers)); err != nil {
		h.log.Error("failed to write list response", "handler", "ListAll", "operation", "WriteList", "error", err)
	}
}

func (h *BarberHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	barber, err := h.service.GetBarber(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, barber); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

// Create answers 201 for a new barber and 200 when the user already is one.
func (h *BarberHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := requireAdmin(r); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	var req model.CreateBarberRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	barber, created, err := h.service.CreateBarber(r.Context(), &req)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if created {
		err = httputil.WriteCreated(w, barber)
	} else {
		err = httputil.WriteSuccess(w, barber)
	}
	if err != nil {
		h.log.Error("failed to write success response", "handler", "Create", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BarberHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := requireAdmin(r); err != nil {
		h.writeError(w, "Update", err)
		return
	}

	var update model.BarberUpdate
	if err := httputil.DecodeJSON(r, &update); err != nil {
		h.writeError(w, "Update", err)
		return
	}

	barber, err := h.service.UpdateBarber(r.Context(), ps.ByName("id"), &update)
	if err != nil {
		h.writeError(w, "Update", err)
		return
	}

	if err := httputil.WriteSuccess(w, barber); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BarberHandler) Deactivate(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := requireAdmin(r); err != nil {
		h.writeError(w, "Deactivate", err)
		return
	}

	if _, err := h.service.DeactivateBarber(r.Context(), ps.ByName("id")); err != nil {
		h.writeError(w, "Deactivate", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *BarberHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func requireAdmin(r *http.Request) error {
	actor, ok := middleware.ActorFrom(r.Context())
	if !ok {
		return apperrors.Unauthorized("Authentication required")
	}
	if !actor.IsAdmin() {
		return apperrors.Forbidden("Admin role required")
	}
	return nil
}

func (h *BarberHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/barbers", h.ListActive)
	router.GET("/api/v1/barbers/admin/all", h.ListAll)
	router.GET("/api/v1/barbers/id/:id", h.GetByID)
	router.POST("/api/v1/barbers", h.Create)
	router.PATCH("/api/v1/barbers/id/:id", h.Update)
	router.DELETE("/api/v1/barbers/id/:id", h.Deactivate)
}
