package errors

import (
	goerrors "errors"
	"fmt"
)

// PersistenceError reports a failed read or write against the key-value store.
type PersistenceError struct {
	Op  string // "get", "set", "remove", "enumerate"
	Key string
	Err error
}

func (e *PersistenceError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("storage %s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("storage %s %q failed: %v", e.Op, e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// ParseError reports malformed input, e.g. an imported settings file.
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("parse failed: %v", e.Err)
	}
	return fmt.Sprintf("parse %s failed: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ProducerError reports that fetching fresh data (weather, quote) failed.
type ProducerError struct {
	Source string
	Err    error
}

func (e *ProducerError) Error() string {
	return fmt.Sprintf("fetching %s failed: %v", e.Source, e.Err)
}

func (e *ProducerError) Unwrap() error { return e.Err }

// ConfigurationError reports a missing or invalid setting required for a computation.
// It is shown to the user with a manual retry and never retried automatically.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration %s: %s", e.Field, e.Reason)
}

// IsPersistence reports whether err wraps a PersistenceError.
func IsPersistence(err error) bool {
	var target *PersistenceError
	return goerrors.As(err, &target)
}

// IsParse reports whether err wraps a ParseError.
func IsParse(err error) bool {
	var target *ParseError
	return goerrors.As(err, &target)
}

// IsProducer reports whether err wraps a ProducerError.
func IsProducer(err error) bool {
	var target *ProducerError
	return goerrors.As(err, &target)
}

// IsConfiguration reports whether err wraps a ConfigurationError.
func IsConfiguration(err error) bool {
	var target *ConfigurationError
	return goerrors.As(err, &target)
}
