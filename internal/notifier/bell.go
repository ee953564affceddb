package notifier

import (
	"errors"
	"io"
	"os"
)

// Bell is the fallback tone: it rings the terminal bell.
type Bell struct {
	W io.Writer
}

func NewBell() *Bell {
	return &Bell{W: os.Stderr}
}

func (b *Bell) Beep() error {
	_, err := io.WriteString(b.W, "\a")
	return err
}

// Writer prints notifications as plain lines, for headless sessions.
type Writer struct {
	W io.Writer
}

func (w *Writer) Show(message string, level Level, _ int) error {
	prefix := "•"
	switch level {
	case LevelSuccess:
		prefix = "✓"
	case LevelError:
		prefix = "✗"
	}
	_, err := io.WriteString(w.W, prefix+" "+message+"\n")
	return err
}

// Fanout shows on every channel and succeeds if at least one did.
type Fanout []Channel

func (f Fanout) Show(message string, level Level, durationMs int) error {
	var firstErr error
	ok := false
	for _, ch := range f {
		if err := ch.Show(message, level, durationMs); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		ok = true
	}
	if ok {
		return nil
	}
	if firstErr == nil {
		return errors.New("no notification channels")
	}
	return firstErr
}
