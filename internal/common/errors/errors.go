package commonerrors

import "errors"

// Wire status codes carried by "ERROR <code>" responses.
const (
	StatusNotFound       = -1
	StatusAlreadyExists  = -2
	StatusInvalidRequest = -3
)

var (
	ErrMissingRequiredEnv = errors.New("missing required environment variable")
	ErrInvalidConfig      = errors.New("invalid configuration")
	ErrUnexpectedResponse = errors.New("unexpected response")
)

// StatusOf maps any error to the wire status it is reported with. Errors
// outside the domain taxonomy are reported as invalid requests.
func StatusOf(err error) int {
	if de, ok := AsDomainError(err); ok {
		return de.Status()
	}
	return StatusInvalidRequest
}

// FromStatus returns the sentinel error a peer meant by the given status.
func FromStatus(status int) DomainError {
	switch status {
	case StatusNotFound:
		return ErrNoteNotFound
	case StatusAlreadyExists:
		return ErrNoteTitleExists
	default:
		return ErrInvalidRequest
	}
}
