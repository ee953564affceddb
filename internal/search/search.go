// Package search turns a query into a web search URL and opens it.
package search

import (
	"context"
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
	"strings"
)

const baseURL = "https://www.google.com/search"

// URL returns the search URL for query. ok is false for a blank query.
func URL(query string) (u string, ok bool) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", false
	}
	return baseURL + "?" + url.Values{"q": {query}}.Encode(), true
}

type Launcher interface {
	Open(ctx context.Context, target string) error
}

type OSLauncher struct{}

func (OSLauncher) Open(ctx context.Context, target string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.CommandContext(ctx, "open", target)
	case "linux", "freebsd", "openbsd":
		cmd = exec.CommandContext(ctx, "xdg-open", target)
	case "windows":
		cmd = exec.CommandContext(ctx, "rundll32", "url.dll,FileProtocolHandler", target)
	default:
		return fmt.Errorf("opening a browser is not supported on %s", runtime.GOOS)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	go cmd.Wait() //nolint:errcheck
	return nil
}

// Run opens the search for query with l.
func Run(ctx context.Context, l Launcher, query string) (string, error) {
	u, ok := URL(query)
	if !ok {
		return "", fmt.Errorf("search query is empty")
	}
	return u, l.Open(ctx, u)
}
