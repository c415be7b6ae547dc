package types

import (
	"errors"
	"fmt"
)

// RegistrationClosedError is returned when a registration call arrives
// after the registry has locked. Registration is one-way: once the first
// enumeration or run triggers the registration pass, mutation is rejected.
type RegistrationClosedError struct {
	Name string // name of the test or scope whose registration was attempted
}

func (e *RegistrationClosedError) Error() string {
	return fmt.Sprintf("registration closed: cannot register %q after the suite is locked", e.Name)
}

// IsRegistrationClosed checks if the error is or wraps a RegistrationClosedError
func IsRegistrationClosed(err error) bool {
	var closedErr *RegistrationClosedError
	return err != nil && errors.As(err, &closedErr)
}

// DuplicateTestNameError is returned when two leaves resolve to the same
// full name. It is fatal to the registration pass.
type DuplicateTestNameError struct {
	Name string
}

func (e *DuplicateTestNameError) Error() string {
	return fmt.Sprintf("duplicate test name: %q is already registered", e.Name)
}

// IsDuplicateTestName checks if the error is or wraps a DuplicateTestNameError
func IsDuplicateTestName(err error) bool {
	var dupErr *DuplicateTestNameError
	return err != nil && errors.As(err, &dupErr)
}

// UnknownTestNameError is returned when a run is requested for a test name
// not present in the registered tree.
type UnknownTestNameError struct {
	Name string
}

func (e *UnknownTestNameError) Error() string {
	return fmt.Sprintf("unknown test name: %q", e.Name)
}

// IsUnknownTestName checks if the error is or wraps an UnknownTestNameError
func IsUnknownTestName(err error) bool {
	var unknownErr *UnknownTestNameError
	return err != nil && errors.As(err, &unknownErr)
}
