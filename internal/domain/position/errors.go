package position

import "errors"

var (
	ErrPositionNotFound = errors.New("position not found")
	ErrPositionInUse    = errors.New("position is assigned to employees and cannot be deleted")
)
