package search

import (
	"context"
	"errors"
	"testing"
)

func TestURL(t *testing.T) {
	tests := []struct {
		query  string
		want   string
		wantOK bool
	}{
		{"golang", "https://www.google.com/search?q=golang", true},
		{"  bubble tea & lip gloss ", "https://www.google.com/search?q=bubble+tea+%26+lip+gloss", true},
		{"", "", false},
		{"   ", "", false},
	}
	for _, tt := range tests {
		got, ok := URL(tt.query)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("URL(%q) = %q, %v; want %q, %v", tt.query, got, ok, tt.want, tt.wantOK)
		}
	}
}

type recordingLauncher struct {
	opened []string
	err    error
}

func (r *recordingLauncher) Open(_ context.Context, target string) error {
	r.opened = append(r.opened, target)
	return r.err
}

func TestRun(t *testing.T) {
	l := &recordingLauncher{}
	u, err := Run(context.Background(), l, "weather tomorrow")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(l.opened) != 1 || l.opened[0] != u {
		t.Errorf("opened %v, want [%s]", l.opened, u)
	}

	if _, err := Run(context.Background(), l, " "); err == nil {
		t.Error("expected error for blank query")
	}
	if len(l.opened) != 1 {
		t.Errorf("blank query should not open anything, opened %v", l.opened)
	}

	l.err = errors.New("no display")
	if _, err := Run(context.Background(), l, "x"); err == nil {
		t.Error("expected launcher error to be returned")
	}
}
