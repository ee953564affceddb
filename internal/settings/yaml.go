package settings

import (
	"context"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/julianstephens/homebase/internal/errors"
)

// ExportYAML renders the current document as YAML.
func (s *Store) ExportYAML() (string, error) {
	data, err := yaml.Marshal(map[string]any(s.Get()))
	if err != nil {
		return "", fmt.Errorf("failed to serialize settings: %w", err)
	}
	return string(data), nil
}

// ImportYAML accepts a YAML settings document and imports it like Import.
func (s *Store) ImportYAML(ctx context.Context, data string) (Document, error) {
	var v any
	if err := yaml.Unmarshal([]byte(data), &v); err != nil {
		return nil, &errors.ParseError{Source: "settings", Err: err}
	}
	if _, ok := v.(map[string]any); !ok {
		return nil, &errors.ParseError{Source: "settings", Err: fmt.Errorf("expected a mapping at the document root")}
	}
	out, err := json.Marshal(v)
	if err != nil {
		return nil, &errors.ParseError{Source: "settings", Err: err}
	}
	return s.Import(ctx, string(out))
}
