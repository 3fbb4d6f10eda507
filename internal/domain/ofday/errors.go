// internal/domain/ofday/errors.go
package ofday

import (
	"errors"
	"fmt"
)

// ErrConfig and ErrDataSource are matched with errors.Is against the typed errors below.
var (
	ErrConfig     = errors.New("invalid of-the-day configuration")
	ErrDataSource = errors.New("category data source unavailable")
)

// ConfigError is fatal at startup: the display has nothing it could show.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: %s", e.Reason)
}

func (e *ConfigError) Is(target error) bool {
	return target == ErrConfig
}

// NewConfigError builds a ConfigError with a formatted reason.
func NewConfigError(format string, args ...any) error {
	return &ConfigError{Reason: fmt.Sprintf(format, args...)}
}

// DataSourceError reports unreadable or malformed backing data for one category.
// Callers degrade that category only.
type DataSourceError struct {
	Category string
	Err      error
}

func (e *DataSourceError) Error() string {
	return fmt.Sprintf("data source for category %q: %v", e.Category, e.Err)
}

func (e *DataSourceError) Unwrap() error {
	return e.Err
}

func (e *DataSourceError) Is(target error) bool {
	return target == ErrDataSource
}
