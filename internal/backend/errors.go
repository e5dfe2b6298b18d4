package backend

import (
	"errors"
	"fmt"
	"strings"

	"github.com/five82/minerui/internal/config"
)

// ErrNotRegistered is wrapped by UnavailableError when no constructor exists
// for a kind, typically because it was compiled out.
var ErrNotRegistered = errors.New("backend not compiled in")

// UnavailableError reports a backend that could not be constructed.
type UnavailableError struct {
	Kind config.Kind
	Err  error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("%s backend unavailable: %v", e.Kind, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// StartError reports a backend that was constructed but failed to start.
type StartError struct {
	Kind config.Kind
	Err  error
}

func (e *StartError) Error() string {
	return fmt.Sprintf("%s backend failed to start: %v", e.Kind, e.Err)
}

func (e *StartError) Unwrap() error { return e.Err }

// Attempt is one entry in the selection log. Err is nil for the attempt that
// succeeded.
type Attempt struct {
	Kind config.Kind
	Err  error
}

// FatalSelectionError is returned when no backend, including the desktop
// fallback, could start.
type FatalSelectionError struct {
	Attempts []Attempt
}

func (e *FatalSelectionError) Error() string {
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, fmt.Sprintf("%s: %v", a.Kind, causeOf(a.Err)))
	}
	return "no ui backend could start: " + strings.Join(parts, "; ")
}

// Unwrap returns every attempt error so errors.Is and errors.As can match any
// of them.
func (e *FatalSelectionError) Unwrap() []error {
	errs := make([]error, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		if a.Err != nil {
			errs = append(errs, a.Err)
		}
	}
	return errs
}

// causeOf strips the selection wrappers so the message does not repeat the kind.
func causeOf(err error) error {
	var unavailable *UnavailableError
	if errors.As(err, &unavailable) && unavailable.Err != nil {
		return unavailable.Err
	}
	var start *StartError
	if errors.As(err, &start) && start.Err != nil {
		return start.Err
	}
	return err
}

func asStartError(kind config.Kind, err error) error {
	var start *StartError
	if errors.As(err, &start) {
		return err
	}
	return &StartError{Kind: kind, Err: err}
}
