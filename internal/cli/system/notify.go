package system

import (
	"github.com/julianstephens/homebase/internal/cli"
	"github.com/julianstephens/homebase/internal/notifier"
)

// NotifyCmd sends one notification through the configured channels, which is
// handy for checking the tray app and bell from a shell.
type NotifyCmd struct {
	Message string `arg:"" help:"Notification text."`
	Level   string `enum:"info,success,error" default:"info" help:"Notification level (info, success, error)."`
	DryRun  bool   `help:"Print the notification to stdout instead of sending it."`
}

func (c *NotifyCmd) Run(ctx *cli.Context) error {
	level := notifier.Level(c.Level)
	durationMs := int(ctx.Config.Notify.Duration.Milliseconds())
	if c.DryRun {
		return (&notifier.Writer{W: ctx.Out}).Show(c.Message, level, durationMs)
	}

	ch, tone := ctx.Notifier()
	notifier.Notify(ch, tone, c.Message, level, durationMs)
	return nil
}
