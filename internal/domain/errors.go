package domain

import "errors"

var (
	ErrNotFound     = errors.New("resource not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")
	ErrConflict     = errors.New("resource conflict")

	// ErrInvalidTransition is returned when a job lifecycle event is not
	// permitted from the job's current status. The job is left unchanged.
	ErrInvalidTransition = errors.New("transition not permitted from current status")

	// ErrAlreadyResolved is returned when an accept or reject targets an
	// offer that is no longer pending.
	ErrAlreadyResolved = errors.New("offer already resolved")

	// ErrJobNotAcceptingOffers is returned when an offer is submitted or
	// accepted against a job that is not open or reopened. Under concurrent
	// accepts the store's transition guard produces this for the loser.
	ErrJobNotAcceptingOffers = errors.New("job is not accepting offers")
)

// ValidationError represents a field-level validation failure.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
