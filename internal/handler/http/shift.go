package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/crewclock/crewclock-backend-go/internal/domain/shift"
	"github.com/crewclock/crewclock-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
)

type ShiftHandler interface {
	StartSession(w http.ResponseWriter, r *http.Request)
	StopSession(w http.ResponseWriter, r *http.Request)
	ForceFinish(w http.ResponseWriter, r *http.Request)
	MySlots(w http.ResponseWriter, r *http.Request)
	OrgSlots(w http.ResponseWriter, r *http.Request)
	AutoAssignSlots(w http.ResponseWriter, r *http.Request)
}

type ShiftHandlerImpl struct {
	shiftService shift.Service
}

func NewShiftHandler(shiftService shift.Service) ShiftHandler {
	return &ShiftHandlerImpl{shiftService: shiftService}
}

// StartSession implements ShiftHandler.
func (h *ShiftHandlerImpl) StartSession(w http.ResponseWriter, r *http.Request) {
	var req shift.StartSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("StartSession decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	session, err := h.shiftService.StartSession(r.Context(), req)
	if err != nil {
		slog.Error("StartSession service error", "error", err)
		response.HandleError(w, err)
		return
	}

	if session.SyncPending {
		response.Accepted(w, "Session opened locally, synchronization pending", session)
		return
	}
	response.Created(w, "Session opened", session)
}

// StopSession implements ShiftHandler. Stopping an already-empty slot is
// not an error.
func (h *ShiftHandlerImpl) StopSession(w http.ResponseWriter, r *http.Request) {
	var req shift.StopSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("StopSession decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	session, err := h.shiftService.StopSession(r.Context(), req)
	if err != nil {
		slog.Error("StopSession service error", "error", err)
		response.HandleError(w, err)
		return
	}

	if session == nil {
		response.NoContent(w)
		return
	}
	if session.SyncPending {
		response.Accepted(w, "Session closed locally, synchronization pending", session)
		return
	}
	response.Success(w, session)
}

// ForceFinish implements ShiftHandler. Admin only, enforced by the router.
func (h *ShiftHandlerImpl) ForceFinish(w http.ResponseWriter, r *http.Request) {
	logID := chi.URLParam(r, "logID")
	if logID == "" {
		response.BadRequest(w, "Log id is required", nil)
		return
	}

	session, err := h.shiftService.ForceFinish(r.Context(), logID)
	if err != nil {
		slog.Error("ForceFinish service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Session force-finished", session)
}

// MySlots implements ShiftHandler.
func (h *ShiftHandlerImpl) MySlots(w http.ResponseWriter, r *http.Request) {
	slots, err := h.shiftService.MySlots(r.Context())
	if err != nil {
		slog.Error("MySlots service error", "error", err)
		response.HandleError(w, err)
		return
	}
	response.Success(w, slots)
}

// OrgSlots implements ShiftHandler. Admin dashboard view of every open
// session in the organization, enforced by the router.
func (h *ShiftHandlerImpl) OrgSlots(w http.ResponseWriter, r *http.Request) {
	slots, err := h.shiftService.OrgSlots(r.Context())
	if err != nil {
		slog.Error("OrgSlots service error", "error", err)
		response.HandleError(w, err)
		return
	}
	response.Success(w, slots)
}

// AutoAssignSlots implements ShiftHandler. Defaults to the caller;
// another employee may be targeted with ?user_id=.
func (h *ShiftHandlerImpl) AutoAssignSlots(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		_, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			response.Unauthorized(w, err.Error())
			return
		}
		userID, _ = claims["user_id"].(string)
	}

	assignments, err := h.shiftService.AutoAssignSlots(r.Context(), userID)
	if err != nil {
		slog.Error("AutoAssignSlots service error", "error", err)
		response.HandleError(w, err)
		return
	}
	response.Success(w, assignments)
}
