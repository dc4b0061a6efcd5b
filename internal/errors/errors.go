// internal/errors/errors.go
package appErrors

import "fmt"

// ErrJobNotFound is a sentinel error
type ErrJobNotFound struct {
	JobID string
}

func (e *ErrJobNotFound) Error() string {
	return fmt.Sprintf("newsletter job %s not found", e.JobID)
}

// Helper constructor
func NewJobNotFound(id string) error {
	return &ErrJobNotFound{JobID: id}
}

// ErrValidation marks a client-side problem with an enqueue request.
type ErrValidation struct {
	Reason string
}

func (e *ErrValidation) Error() string {
	return e.Reason
}

func NewValidation(reason string) error {
	return &ErrValidation{Reason: reason}
}
