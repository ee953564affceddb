package errors

import (
	goerrors "errors"
	"fmt"
	"io"
	"strings"
	"testing"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"nil error", nil, ""},
		{"simple error", goerrors.New("boom"), "Error: boom"},
		{"wrapped error", fmt.Errorf("load: %w", io.EOF), "Error: load: EOF"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Format(tt.err); got != tt.expected {
				t.Errorf("Format() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestFormatHints(t *testing.T) {
	tests := []struct {
		name string
		err  error
		hint string
	}{
		{"persistence", &PersistenceError{Op: "set", Key: "todos", Err: io.EOF}, "homebase doctor"},
		{"configuration", &ConfigurationError{Field: "weather.units", Reason: "unknown"}, "settings show"},
		{"parse", fmt.Errorf("import: %w", &ParseError{Source: "settings import", Err: io.EOF}), "JSON or YAML"},
		{"producer", &ProducerError{Source: "quote", Err: io.EOF}, "offline"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Format(tt.err)
			if !strings.HasPrefix(got, "Error: "+tt.err.Error()) {
				t.Errorf("Format() = %q, want error first", got)
			}
			if !strings.Contains(got, "\n  hint: ") || !strings.Contains(got, tt.hint) {
				t.Errorf("Format() = %q, want hint containing %q", got, tt.hint)
			}
		})
	}
}

func TestExitWritesFormattedError(t *testing.T) {
	var buf strings.Builder
	exit(&buf, &ProducerError{Source: "weather", Err: io.EOF})
	if !strings.HasPrefix(buf.String(), "Error: fetching weather failed: EOF\n") {
		t.Errorf("exit wrote %q", buf.String())
	}
}

func TestKindsUnwrap(t *testing.T) {
	base := goerrors.New("disk full")

	perr := fmt.Errorf("update: %w", &PersistenceError{Op: "set", Key: "appSettings", Err: base})
	if !IsPersistence(perr) {
		t.Error("expected IsPersistence to be true")
	}
	if !goerrors.Is(perr, base) {
		t.Error("expected PersistenceError to unwrap to base error")
	}
	if !strings.Contains(perr.Error(), `"appSettings"`) {
		t.Errorf("expected key in message, got %q", perr.Error())
	}

	if !IsParse(&ParseError{Source: "settings import", Err: base}) {
		t.Error("expected IsParse to be true")
	}
	if !IsProducer(&ProducerError{Source: "weather", Err: base}) {
		t.Error("expected IsProducer to be true")
	}
	if !IsConfiguration(&ConfigurationError{Field: "weather.manualLocation.city", Reason: "empty"}) {
		t.Error("expected IsConfiguration to be true")
	}
	if IsParse(perr) {
		t.Error("PersistenceError must not match ParseError")
	}
}
