package http

import (
	"log/slog"
	"net/http"

	"github.com/crewclock/crewclock-backend-go/internal/domain/payroll"
	"github.com/crewclock/crewclock-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
)

type PayrollHandler interface {
	GetMy(w http.ResponseWriter, r *http.Request)
	GetEmployee(w http.ResponseWriter, r *http.Request)
	GetOrg(w http.ResponseWriter, r *http.Request)
}

type PayrollHandlerImpl struct {
	payrollService payroll.Service
}

func NewPayrollHandler(payrollService payroll.Service) PayrollHandler {
	return &PayrollHandlerImpl{payrollService: payrollService}
}

// GetMy implements PayrollHandler.
func (h *PayrollHandlerImpl) GetMy(w http.ResponseWriter, r *http.Request) {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}
	userID, _ := claims["user_id"].(string)

	breakdown, err := h.payrollService.GetMonthlyPayroll(r.Context(), payroll.MonthlyPayrollRequest{
		UserID: userID,
		Month:  r.URL.Query().Get("month"),
	})
	if err != nil {
		slog.Error("GetMy payroll service error", "error", err)
		response.HandleError(w, err)
		return
	}
	response.Success(w, breakdown)
}

// GetEmployee implements PayrollHandler. Admin only, enforced by the
// router.
func (h *PayrollHandlerImpl) GetEmployee(w http.ResponseWriter, r *http.Request) {
	breakdown, err := h.payrollService.GetMonthlyPayroll(r.Context(), payroll.MonthlyPayrollRequest{
		UserID: chi.URLParam(r, "userID"),
		Month:  r.URL.Query().Get("month"),
	})
	if err != nil {
		slog.Error("GetEmployee payroll service error", "error", err)
		response.HandleError(w, err)
		return
	}
	response.Success(w, breakdown)
}

// GetOrg implements PayrollHandler. Admin only, enforced by the router.
func (h *PayrollHandlerImpl) GetOrg(w http.ResponseWriter, r *http.Request) {
	breakdowns, err := h.payrollService.GetOrgPayroll(r.Context(), payroll.OrgPayrollRequest{
		Month: r.URL.Query().Get("month"),
	})
	if err != nil {
		slog.Error("GetOrg payroll service error", "error", err)
		response.HandleError(w, err)
		return
	}
	response.Success(w, breakdowns)
}
