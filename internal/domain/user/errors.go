package user

import "errors"

var (
	ErrUserNotFound           = errors.New("employee not found")
	ErrAdminPrivilegeRequired = errors.New("administrator privilege required")
)
