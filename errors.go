package img2mosaic

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyCatalog is returned when an index is built from no tiles.
	ErrEmptyCatalog = errors.New("tile catalog is empty")

	// ErrExhausted is returned when every leaf of the match tree is
	// excluded and no fallback applies. A mosaic run cannot continue
	// past it.
	ErrExhausted = errors.New("no tiles remain to match against")
)

// ConfigError reports malformed or unreadable input: a bad catalog row,
// an unreadable cache, or an invalid option. It is fatal to a run.
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("configuration error: %v", e.Err)
	}
	return fmt.Sprintf("configuration error: %s: %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

func configErrorf(field, format string, args ...any) error {
	return &ConfigError{Field: field, Err: fmt.Errorf(format, args...)}
}
