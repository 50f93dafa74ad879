package user

import (
	"time"

	"github.com/crewclock/crewclock-backend-go/internal/domain/payroll"
)

type User struct {
	ID             string
	OrganizationID string
	FullName       string
	Email          string
	PasswordHash   string
	IsAdmin        bool
	PositionID     *string
	// PayrollOverride, when set, wins over the position's default config.
	PayrollOverride *payroll.Config
	CreatedAt       time.Time
	UpdatedAt       time.Time

	// DTO
	PositionName *string
}
