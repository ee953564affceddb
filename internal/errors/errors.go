package errors

import (
	"fmt"
	"io"
	"os"

	"github.com/julianstephens/homebase/internal/logger"
)

// Format renders err for the terminal, followed by a hint line when the
// error kind has an obvious next step.
func Format(err error) string {
	if err == nil {
		return ""
	}
	msg := fmt.Sprintf("Error: %v", err)
	if h := hint(err); h != "" {
		msg += "\n  hint: " + h
	}
	return msg
}

func hint(err error) string {
	switch {
	case IsPersistence(err):
		return "run 'homebase doctor' to check the store"
	case IsConfiguration(err):
		return "check 'homebase settings show' or your config.toml"
	case IsParse(err):
		return "the input must be a JSON or YAML object"
	case IsProducer(err):
		return "the service may be offline, try again later"
	}
	return ""
}

// Fatal logs err, prints it to stderr and exits with status 1.
func Fatal(err error) {
	if err == nil {
		return
	}
	exit(os.Stderr, err)
	os.Exit(1)
}

func exit(w io.Writer, err error) {
	logger.Error("command failed", "error", err)
	fmt.Fprintln(w, Format(err))
}
