package fit

import "fmt"

// FitError indicates that no usable character or asset geometry was supplied.
type FitError struct {
	Reason string
}

func (e *FitError) Error() string {
	return "fit: " + e.Reason
}

// ConfigError indicates an asset configuration that cannot be resolved, such
// as a reference to an unknown corrective morph.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "fit config: " + e.Reason
}

func fitErrorf(format string, args ...any) error {
	return &FitError{Reason: fmt.Sprintf(format, args...)}
}

func configErrorf(format string, args ...any) error {
	return &ConfigError{Reason: fmt.Sprintf(format, args...)}
}
