package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/julianstephens/homebase/internal/cli"
	"github.com/julianstephens/homebase/internal/constants"
	hbsettings "github.com/julianstephens/homebase/internal/settings"
)

type SettingsCmd struct {
	Show   SettingsShowCmd   `cmd:"" help:"Show current settings." default:"1"`
	Set    SettingsSetCmd    `cmd:"" help:"Change one setting, e.g. 'pomodoro.focusDuration 30'."`
	Export SettingsExportCmd `cmd:"" help:"Export settings as JSON or YAML."`
	Import SettingsImportCmd `cmd:"" help:"Import settings from a JSON or YAML file."`
	Reset  SettingsResetCmd  `cmd:"" help:"Restore the default settings."`
}

type SettingsShowCmd struct {
	Category string `arg:"" optional:"" enum:",pomodoro,weather,quotes,layout,global" default:"" help:"Only show one category."`
}

func (c *SettingsShowCmd) Run(ctx *cli.Context) error {
	var v any = ctx.Settings.Get()
	if c.Category != "" {
		v = ctx.Settings.Get().Category(c.Category)
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	ctx.Println(string(out))
	return nil
}

type SettingsSetCmd struct {
	Path  string `arg:"" help:"Dotted path: category.field[.subfield]."`
	Value string `arg:"" help:"New value. Parsed as JSON when possible, otherwise used as a string."`
}

func (c *SettingsSetCmd) Run(ctx *cli.Context) error {
	category, field, rest, err := splitPath(c.Path)
	if err != nil {
		return err
	}

	value := parseValue(c.Value)
	cat := ctx.Settings.Get().Category(category)
	if cat == nil {
		cat = map[string]any{}
	}
	top := value
	if len(rest) > 0 {
		top = setNested(cat[field], rest, value)
	}

	if _, err := ctx.Settings.UpdateCategory(context.Background(), category, map[string]any{field: top}); err != nil {
		return err
	}
	ctx.Printf("✓ %s updated\n", c.Path)
	return nil
}

func splitPath(path string) (category, field string, rest []string, err error) {
	parts := strings.Split(path, ".")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", nil, fmt.Errorf("setting path must look like category.field, got %q", path)
	}
	if !hbsettings.IsCategory(parts[0]) {
		return "", "", nil, fmt.Errorf("unknown settings category %q (want one of %s)", parts[0], strings.Join(hbsettings.Categories, ", "))
	}
	return parts[0], parts[1], parts[2:], nil
}

func parseValue(s string) any {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err == nil {
		return v
	}
	return s
}

// setNested returns a copy of current with value placed at path.
func setNested(current any, path []string, value any) any {
	rec, ok := current.(map[string]any)
	out := make(map[string]any, len(rec)+1)
	if ok {
		for k, v := range rec {
			out[k] = v
		}
	}
	if len(path) == 1 {
		out[path[0]] = value
	} else {
		out[path[0]] = setNested(out[path[0]], path[1:], value)
	}
	return out
}

type SettingsExportCmd struct {
	Format string `enum:"json,yaml" default:"json" help:"Output format (json, yaml)."`
	Output string `short:"o" help:"Write to this file instead of stdout. Use '.' for the default file name." type:"path"`
}

func (c *SettingsExportCmd) Run(ctx *cli.Context) error {
	var (
		data string
		err  error
	)
	if c.Format == "yaml" {
		data, err = ctx.Settings.ExportYAML()
	} else {
		data, err = ctx.Settings.Export()
	}
	if err != nil {
		return err
	}

	if c.Output == "" {
		ctx.Println(data)
		return nil
	}
	out := c.Output
	if info, err := os.Stat(out); err == nil && info.IsDir() {
		name := constants.ExportFileName
		if c.Format == "yaml" {
			name = strings.TrimSuffix(name, ".json") + ".yaml"
		}
		out = filepath.Join(out, name)
	}
	if err := os.WriteFile(out, []byte(data+"\n"), 0600); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	ctx.Printf("✓ Settings exported to %s\n", out)
	return nil
}

type SettingsImportCmd struct {
	File   string `arg:"" help:"Settings file to import." type:"existingfile"`
	Format string `enum:"auto,json,yaml" default:"auto" help:"Input format; auto picks by file extension."`
}

func (c *SettingsImportCmd) Run(ctx *cli.Context) error {
	data, err := os.ReadFile(c.File)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", c.File, err)
	}

	format := c.Format
	if format == "auto" {
		switch strings.ToLower(filepath.Ext(c.File)) {
		case ".yaml", ".yml":
			format = "yaml"
		default:
			format = "json"
		}
	}

	bg := context.Background()
	if format == "yaml" {
		_, err = ctx.Settings.ImportYAML(bg, string(data))
	} else {
		_, err = ctx.Settings.Import(bg, string(data))
	}
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}
	ctx.Println("✓ Settings imported")
	return nil
}

type SettingsResetCmd struct {
	Yes bool `short:"y" help:"Confirm the reset." required:""`
}

func (c *SettingsResetCmd) Run(ctx *cli.Context) error {
	if err := ctx.Settings.Reset(context.Background()); err != nil {
		return fmt.Errorf("defaults restored in memory but could not be saved: %w", err)
	}
	ctx.Println("✓ Settings reset to defaults")
	return nil
}
