package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/crewclock/crewclock-backend-go/internal/domain/worklog"
	"github.com/crewclock/crewclock-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type WorkLogHandler interface {
	Upsert(w http.ResponseWriter, r *http.Request)
	MarkAbsence(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
	Correct(w http.ResponseWriter, r *http.Request)
	ListMonth(w http.ResponseWriter, r *http.Request)
	GetMyMonth(w http.ResponseWriter, r *http.Request)
}

type WorkLogHandlerImpl struct {
	worklogService worklog.Service
}

func NewWorkLogHandler(worklogService worklog.Service) WorkLogHandler {
	return &WorkLogHandlerImpl{worklogService: worklogService}
}

// Upsert implements WorkLogHandler. Accepts a batch of entries, typically
// a sync push from another device.
func (h *WorkLogHandlerImpl) Upsert(w http.ResponseWriter, r *http.Request) {
	var logs []worklog.WorkLog
	if err := json.NewDecoder(r.Body).Decode(&logs); err != nil {
		slog.Error("Upsert decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	err := h.worklogService.Upsert(r.Context(), logs)
	if errors.Is(err, worklog.ErrSyncPending) {
		response.Accepted(w, "Entries applied locally, synchronization pending", nil)
		return
	}
	if err != nil {
		slog.Error("Upsert service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Entries applied", nil)
}

// MarkAbsence implements WorkLogHandler.
func (h *WorkLogHandlerImpl) MarkAbsence(w http.ResponseWriter, r *http.Request) {
	var req worklog.MarkAbsenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("MarkAbsence decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	log, err := h.worklogService.MarkAbsence(r.Context(), req)
	if err != nil {
		slog.Error("MarkAbsence service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Absence marked", log)
}

// Delete implements WorkLogHandler. Admin only, enforced by the router.
func (h *WorkLogHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	logID := chi.URLParam(r, "logID")
	if logID == "" {
		response.BadRequest(w, "Log id is required", nil)
		return
	}

	if err := h.worklogService.Delete(r.Context(), logID); err != nil {
		slog.Error("Delete service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Entry deleted", nil)
}

// Correct implements WorkLogHandler. Admin only, enforced by the router.
func (h *WorkLogHandlerImpl) Correct(w http.ResponseWriter, r *http.Request) {
	var req worklog.CorrectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Correct decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.LogID = chi.URLParam(r, "logID")

	log, err := h.worklogService.Correct(r.Context(), req)
	if err != nil {
		slog.Error("Correct service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Entry corrected", log)
}

// ListMonth implements WorkLogHandler. Admin only, enforced by the router.
func (h *WorkLogHandlerImpl) ListMonth(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	filter := worklog.MonthFilter{
		UserID: q.Get("user_id"),
		Month:  q.Get("month"),
		Page:   page,
		Limit:  limit,
	}

	logs, total, err := h.worklogService.ListMonth(r.Context(), filter)
	if err != nil {
		slog.Error("ListMonth service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, logs, &response.Meta{
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalItems: total,
	})
}

// GetMyMonth implements WorkLogHandler.
func (h *WorkLogHandlerImpl) GetMyMonth(w http.ResponseWriter, r *http.Request) {
	logs, err := h.worklogService.GetMyMonth(r.Context(), r.URL.Query().Get("month"))
	if err != nil {
		slog.Error("GetMyMonth service error", "error", err)
		response.HandleError(w, err)
		return
	}
	response.Success(w, logs)
}
