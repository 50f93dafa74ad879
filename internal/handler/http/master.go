package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/crewclock/crewclock-backend-go/internal/domain/master"
	"github.com/crewclock/crewclock-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type MasterHandler interface {
	CreateMachine(w http.ResponseWriter, r *http.Request)
	ListMachines(w http.ResponseWriter, r *http.Request)
	DeleteMachine(w http.ResponseWriter, r *http.Request)
	CreatePosition(w http.ResponseWriter, r *http.Request)
	ListPositions(w http.ResponseWriter, r *http.Request)
	UpdatePosition(w http.ResponseWriter, r *http.Request)
	DeletePosition(w http.ResponseWriter, r *http.Request)
	ListEmployees(w http.ResponseWriter, r *http.Request)
	UpdateEmployee(w http.ResponseWriter, r *http.Request)
}

type MasterHandlerImpl struct {
	masterService master.Service
}

func NewMasterHandler(masterService master.Service) MasterHandler {
	return &MasterHandlerImpl{masterService: masterService}
}

// CreateMachine implements MasterHandler.
func (h *MasterHandlerImpl) CreateMachine(w http.ResponseWriter, r *http.Request) {
	var req master.CreateMachineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("CreateMachine decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	m, err := h.masterService.CreateMachine(r.Context(), req)
	if err != nil {
		slog.Error("CreateMachine service error", "error", err)
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Machine created", m)
}

// ListMachines implements MasterHandler.
func (h *MasterHandlerImpl) ListMachines(w http.ResponseWriter, r *http.Request) {
	machines, err := h.masterService.ListMachines(r.Context())
	if err != nil {
		slog.Error("ListMachines service error", "error", err)
		response.HandleError(w, err)
		return
	}
	response.Success(w, machines)
}

// DeleteMachine implements MasterHandler.
func (h *MasterHandlerImpl) DeleteMachine(w http.ResponseWriter, r *http.Request) {
	if err := h.masterService.DeleteMachine(r.Context(), chi.URLParam(r, "machineID")); err != nil {
		slog.Error("DeleteMachine service error", "error", err)
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Machine deleted", nil)
}

// CreatePosition implements MasterHandler.
func (h *MasterHandlerImpl) CreatePosition(w http.ResponseWriter, r *http.Request) {
	var req master.CreatePositionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("CreatePosition decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	p, err := h.masterService.CreatePosition(r.Context(), req)
	if err != nil {
		slog.Error("CreatePosition service error", "error", err)
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Position created", p)
}

// ListPositions implements MasterHandler.
func (h *MasterHandlerImpl) ListPositions(w http.ResponseWriter, r *http.Request) {
	positions, err := h.masterService.ListPositions(r.Context())
	if err != nil {
		slog.Error("ListPositions service error", "error", err)
		response.HandleError(w, err)
		return
	}
	response.Success(w, positions)
}

// UpdatePosition implements MasterHandler.
func (h *MasterHandlerImpl) UpdatePosition(w http.ResponseWriter, r *http.Request) {
	var req master.UpdatePositionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("UpdatePosition decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ID = chi.URLParam(r, "positionID")

	p, err := h.masterService.UpdatePosition(r.Context(), req)
	if err != nil {
		slog.Error("UpdatePosition service error", "error", err)
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Position updated", p)
}

// DeletePosition implements MasterHandler.
func (h *MasterHandlerImpl) DeletePosition(w http.ResponseWriter, r *http.Request) {
	if err := h.masterService.DeletePosition(r.Context(), chi.URLParam(r, "positionID")); err != nil {
		slog.Error("DeletePosition service error", "error", err)
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Position deleted", nil)
}

// ListEmployees implements MasterHandler.
func (h *MasterHandlerImpl) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.masterService.ListEmployees(r.Context())
	if err != nil {
		slog.Error("ListEmployees service error", "error", err)
		response.HandleError(w, err)
		return
	}
	response.Success(w, employees)
}

// UpdateEmployee implements MasterHandler.
func (h *MasterHandlerImpl) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	var req master.UpdateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("UpdateEmployee decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ID = chi.URLParam(r, "employeeID")

	u, err := h.masterService.UpdateEmployee(r.Context(), req)
	if err != nil {
		slog.Error("UpdateEmployee service error", "error", err)
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Employee updated", u)
}
