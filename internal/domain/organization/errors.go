package organization

import "errors"

var (
	ErrOrganizationNotFound = errors.New("organization not found")
	ErrEmployeeLimitReached = errors.New("organization employee limit reached")
)
