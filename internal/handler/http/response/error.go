package response

import (
	"errors"
	"net/http"

	"github.com/crewclock/crewclock-backend-go/internal/domain/auth"
	"github.com/crewclock/crewclock-backend-go/internal/domain/machine"
	"github.com/crewclock/crewclock-backend-go/internal/domain/payroll"
	"github.com/crewclock/crewclock-backend-go/internal/domain/position"
	"github.com/crewclock/crewclock-backend-go/internal/domain/shift"
	"github.com/crewclock/crewclock-backend-go/internal/domain/user"
	"github.com/crewclock/crewclock-backend-go/internal/domain/worklog"
	"github.com/crewclock/crewclock-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses.
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth
	case errors.Is(err, auth.ErrInvalidCredentials):
		Unauthorized(w, "Invalid email or password")
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenExpired):
		Unauthorized(w, "Invalid or expired token")
	case errors.Is(err, auth.ErrRefreshTokenRevoked):
		Unauthorized(w, "Refresh token revoked")
	case errors.Is(err, auth.ErrOAuthEmailNotFound):
		NotFound(w, "No account matches the Google email")
	case errors.Is(err, auth.ErrUserNotFound), errors.Is(err, user.ErrUserNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, user.ErrAdminPrivilegeRequired):
		Forbidden(w, "Administrator privilege required")

	// Shift lifecycle
	case errors.Is(err, shift.ErrSlotOccupied):
		Conflict(w, "Slot already holds an open session")
	case errors.Is(err, shift.ErrSlotOutOfRange):
		BadRequest(w, "Slot is out of range", nil)
	case errors.Is(err, shift.ErrSlotLimitReached):
		Conflict(w, "Concurrent session limit reached for this position")
	case errors.Is(err, shift.ErrSessionConflict):
		Conflict(w, "Session was already closed elsewhere")
	case errors.Is(err, shift.ErrMachineRequired):
		BadRequest(w, "This position requires a machine to check in", nil)
	case errors.Is(err, shift.ErrNightShiftNotAllowed):
		Forbidden(w, "Night shift is not allowed for this position")
	case errors.Is(err, shift.ErrPhotoRequired):
		BadRequest(w, "A check-in photo is required for this position", nil)
	case errors.Is(err, machine.ErrMachineBusy):
		Conflict(w, "Machine is in use by another open session")
	case errors.Is(err, machine.ErrMachineNotFound):
		NotFound(w, "Machine not found")

	// Work logs
	case errors.Is(err, worklog.ErrDayOccupied):
		Conflict(w, "The day already has entries")
	case errors.Is(err, worklog.ErrOpenSession):
		Conflict(w, "An open session exists for that day")
	case errors.Is(err, worklog.ErrLogNotFound):
		NotFound(w, "Work log not found")
	case errors.Is(err, worklog.ErrSessionAlreadyClosed):
		Conflict(w, "Session is already closed")
	case errors.Is(err, worklog.ErrDurationTooLarge):
		BadRequest(w, "Corrected duration exceeds the allowed maximum", nil)
	case errors.Is(err, worklog.ErrUnknownEntryType):
		BadRequest(w, "Unknown entry type", nil)

	// Master data
	case errors.Is(err, position.ErrPositionNotFound):
		NotFound(w, "Position not found")
	case errors.Is(err, position.ErrPositionInUse):
		Conflict(w, "Position is assigned to employees")
	case errors.Is(err, payroll.ErrUserNotFound):
		NotFound(w, "Employee not found")

	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
