package system

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/julianstephens/homebase/internal/cli"
)

type DebugCmd struct {
	DBPath  DebugDBPathCmd  `cmd:"" help:"Show store path."`
	Keys    DebugKeysCmd    `cmd:"" help:"List stored keys."`
	DumpKey DebugDumpKeyCmd `cmd:"" help:"Dump a stored value as JSON."`
}

type DebugDBPathCmd struct{}

func (cmd *DebugDBPathCmd) Run(ctx *cli.Context) error {
	return printJSON(ctx, map[string]string{"path": ctx.Store.GetConfigPath()})
}

type DebugKeysCmd struct{}

func (cmd *DebugKeysCmd) Run(ctx *cli.Context) error {
	entries, err := ctx.KV.Enumerate(context.Background(), "")
	if err != nil {
		return fmt.Errorf("failed to list keys: %w", err)
	}
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		ctx.Printf("%s\t%d bytes\n", k, len(entries[k]))
	}
	return nil
}

type DebugDumpKeyCmd struct {
	Key string `arg:"" help:"Key without the homebase_ prefix, e.g. appSettings or todos."`
}

func (cmd *DebugDumpKeyCmd) Run(ctx *cli.Context) error {
	raw, ok, err := ctx.KV.Get(context.Background(), cmd.Key)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", cmd.Key, err)
	}
	if !ok {
		return fmt.Errorf("key not found: %s", cmd.Key)
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("stored value is not valid JSON: %w", err)
	}
	return printJSON(ctx, v)
}

func printJSON(ctx *cli.Context, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	ctx.Println(string(out))
	return nil
}
