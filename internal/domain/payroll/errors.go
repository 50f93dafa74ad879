package payroll

import "errors"

// Payroll domain errors
var (
	ErrUserNotFound     = errors.New("employee not found for payroll computation")
	ErrPositionNotFound = errors.New("position not found for payroll computation")
)
