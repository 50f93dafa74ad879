package machine

import "errors"

var (
	ErrMachineNotFound = errors.New("machine not found")
	ErrMachineBusy     = errors.New("machine is in use by another open session")
)
