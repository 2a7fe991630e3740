package chartcsv

import (
	"errors"
	"fmt"
)

// ErrMissingURL indicates the download endpoint was not configured.
var ErrMissingURL = errors.New("you must include an export URL")

// ErrUnsupportedFormat indicates a chart definition file with an unknown extension.
var ErrUnsupportedFormat = errors.New("unsupported chart file format")

// ErrNoChart indicates the requested chart does not exist in the source.
var ErrNoChart = errors.New("chart not found")

// ConfigError represents a missing or invalid configuration value.
type ConfigError struct {
	Key string
	Err error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error (%s): %v", e.Key, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// PostError represents a non-success response from the download endpoint.
type PostError struct {
	URL        string
	StatusCode int
}

func (e *PostError) Error() string {
	return fmt.Sprintf("post to %s failed with status %d", e.URL, e.StatusCode)
}

// LoadError represents a failure to load a chart definition.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load chart %q: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// NewLoadError creates a new LoadError.
func NewLoadError(path string, err error) *LoadError {
	return &LoadError{
		Path: path,
		Err:  err,
	}
}
