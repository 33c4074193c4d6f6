package internal

import "fmt"

// ConfigError reports configuration that makes a run impossible: missing
// provider credentials, an unknown provider, invalid targets or an output
// location that cannot be written. It is raised before any provider call.
type ConfigError struct {
	Setting string
	Err     error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error (%s): %v", e.Setting, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError wraps err as a ConfigError for the given setting.
func NewConfigError(setting string, err error) *ConfigError {
	return &ConfigError{Setting: setting, Err: err}
}
