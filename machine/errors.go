package machine

import "fmt"

// ConfigError reports an invalid configuration.  It is raised before any
// cipher state is built and is never retried by the engine.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "invalid configuration: " + e.Reason
}

func configErrorf(format string, args ...interface{}) error {
	return &ConfigError{Reason: fmt.Sprintf(format, args...)}
}

// FramingError reports broken quartet or chunk framing: a length that is not
// a quartet multiple, or chunk order numbers that are missing, duplicated or
// out of range.
type FramingError struct {
	Reason string
}

func (e *FramingError) Error() string {
	return "broken framing: " + e.Reason
}

func framingErrorf(format string, args ...interface{}) error {
	return &FramingError{Reason: fmt.Sprintf(format, args...)}
}
