package hub

import "fmt"

// ErrorKind classifies command failures. Authentication failures are
// fatal to the connection; everything else is recovered at the command
// boundary and surfaced to the sender as an error event.
type ErrorKind int

const (
	ErrAuthentication ErrorKind = iota + 1
	ErrAuthorization
	ErrValidation
	ErrPersistence
)

func (k ErrorKind) String() string {
	switch k {
	case ErrAuthentication:
		return "authentication"
	case ErrAuthorization:
		return "authorization"
	case ErrValidation:
		return "validation"
	case ErrPersistence:
		return "persistence"
	default:
		return "unknown"
	}
}

// HubError is a command failure with a classification and a message
// safe to put on the wire.
type HubError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *HubError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *HubError) Unwrap() error { return e.Err }

// Fatal reports whether the failure must terminate the connection.
func (e *HubError) Fatal() bool { return e.Kind == ErrAuthentication }

func authenticationError(msg string, err error) *HubError {
	return &HubError{Kind: ErrAuthentication, Message: msg, Err: err}
}

func authorizationError(msg string) *HubError {
	return &HubError{Kind: ErrAuthorization, Message: msg}
}

func validationError(msg string, err error) *HubError {
	return &HubError{Kind: ErrValidation, Message: msg, Err: err}
}

func persistenceError(msg string, err error) *HubError {
	return &HubError{Kind: ErrPersistence, Message: msg, Err: err}
}
