package forest

import (
	"errors"
	"fmt"
)

// ErrNoGeometry is returned when a tree is requested from a forest that has
// none at that position, most commonly a forest built with zero trees.
var ErrNoGeometry = errors.New("no geometry")

// ErrLevelTooDeep is wrapped by a ConfigurationError when the fractal level
// exceeds MaxFractalLevel.
var ErrLevelTooDeep = errors.New("fractal level too deep")

var errMissing = errors.New("missing")

// ConfigurationError reports a malformed, missing, or out-of-range parameter.
// It is fatal at startup: nothing is generated after one is returned.
type ConfigurationError struct {
	Field string
	Value string
	Err   error
}

func (e *ConfigurationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("invalid %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// IsConfigurationError reports whether err is or wraps a ConfigurationError.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}
