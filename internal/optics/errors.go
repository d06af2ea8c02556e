package optics

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration marks input the simulation cannot run with:
	// an unknown or nil element, invalid lens data, invalid beam data.
	ErrConfiguration = errors.New("optics: invalid configuration")

	// ErrCollision marks an element that lies behind the beam when the
	// beam reaches it, e.g. inside the span of a thick lens.
	ErrCollision = fmt.Errorf("%w: element collision", ErrConfiguration)

	// ErrDomain marks a beam state with no physical radius (Im(1/q) <= 0).
	ErrDomain = errors.New("optics: beam radius undefined")
)

// ElementError wraps an error with the offending element.
type ElementError struct {
	Index    int
	Location float64
	Err      error
}

func (e *ElementError) Error() string {
	return fmt.Sprintf("element %d at z=%g: %v", e.Index, e.Location, e.Err)
}

func (e *ElementError) Unwrap() error {
	return e.Err
}

func elementErrorf(index int, location float64, sentinel error, format string, args ...any) error {
	return &ElementError{
		Index:    index,
		Location: location,
		Err:      fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...)),
	}
}
