package widgets

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/julianstephens/homebase/internal/cli"
	"github.com/julianstephens/homebase/internal/constants"
	"github.com/julianstephens/homebase/internal/greeting"
	"github.com/julianstephens/homebase/internal/notifier"
	"github.com/julianstephens/homebase/internal/pomodoro"
	"github.com/julianstephens/homebase/internal/search"
	"github.com/julianstephens/homebase/internal/weather"
)

type WeatherCmd struct {
	Refresh bool `short:"r" help:"Ignore the cache and fetch now."`
}

func (c *WeatherCmd) Run(ctx *cli.Context) error {
	r, err := ctx.Weather.Current(context.Background(), c.Refresh)
	if err != nil {
		return err
	}
	units := ctx.Settings.Weather().Units
	title := r.Name
	if r.Sys.Country != "" {
		title += ", " + r.Sys.Country
	}
	ctx.Printf("🌤  %s\n", title)
	for _, line := range weather.Lines(r, units) {
		ctx.Printf("   %s\n", line)
	}
	if at := ctx.Weather.LastUpdated(context.Background()); !at.IsZero() {
		ctx.Printf("   Updated %s\n", at.Local().Format(clockFormat(ctx)))
	}
	return nil
}

type QuoteCmd struct {
	Refresh bool `short:"r" help:"Ignore the cache and fetch now."`
}

func (c *QuoteCmd) Run(ctx *cli.Context) error {
	q, fallback, err := ctx.Quotes.CurrentOrFallback(context.Background(), c.Refresh)
	if err != nil {
		return err
	}
	ctx.Println(q.String())
	if fallback {
		ctx.Println("(offline quote)")
	}
	return nil
}

type GreetCmd struct{}

func (c *GreetCmd) Run(ctx *cli.Context) error {
	focus := ""
	if g, ok, err := ctx.Todos.DailyGoal(context.Background()); err == nil && ok {
		focus = g.Text
	}
	g := ctx.Settings.Global()
	v := greeting.Build(time.Now(), g.Username, g.Uses12Hour(), focus)
	ctx.Printf("%s %s\n", v.Emoji, v.Headline)
	ctx.Printf("%s  %s\n", v.Clock, v.Date)
	ctx.Println(v.Motivation)
	ctx.Printf("Today's focus: %s\n", v.Focus)
	return nil
}

func clockFormat(ctx *cli.Context) string {
	if ctx.Settings.Global().Uses12Hour() {
		return constants.TimeFormat12
	}
	return constants.TimeFormat24
}

// PomodoroCmd runs the timer in the foreground until the requested number of
// intervals have completed or the user interrupts it.
type PomodoroCmd struct {
	Mode      string `enum:"focus,shortBreak,longBreak" default:"focus" help:"Interval to start with (focus, shortBreak, longBreak)."`
	Task      string `help:"Label for the focus session."`
	Intervals int    `short:"n" default:"1" help:"Stop after this many intervals complete."`

	sched pomodoro.Scheduler
	stop  <-chan struct{}
}

func (c *PomodoroCmd) Run(ctx *cli.Context) error {
	mode, err := pomodoro.ParseMode(c.Mode)
	if err != nil {
		return err
	}
	if c.Intervals < 1 {
		return fmt.Errorf("--intervals must be at least 1")
	}

	ch, tone := ctx.Notifier(&notifier.Writer{W: ctx.Out})
	opts := []pomodoro.Option{pomodoro.WithNotifier(ch, tone)}
	if c.sched != nil {
		opts = append(opts, pomodoro.WithScheduler(c.sched))
	}
	engine := ctx.Pomodoro(opts...)

	done := make(chan struct{})
	completed := 0
	unsubscribe := engine.Subscribe(func(ev pomodoro.Event) {
		switch ev.Kind {
		case pomodoro.EventTick:
			ctx.Printf("\r%s  %s ", ev.State.Mode.Label(), pomodoro.FormatClock(ev.State.TimeRemaining))
		case pomodoro.EventFocusComplete, pomodoro.EventBreakComplete:
			ctx.Println()
			completed++
			if completed == c.Intervals {
				close(done)
				return
			}
			// a foreground run continues even with auto-start off
			if !ev.State.Running {
				engine.Resume()
			}
		}
	})
	defer unsubscribe()

	if mode == pomodoro.Focus {
		engine.Start(strings.TrimSpace(c.Task))
	} else {
		engine.SetMode(mode)
		engine.Resume()
	}
	st := engine.State()
	ctx.Printf("▶ %s started (%s)\n", st.Mode.Label(), pomodoro.FormatClock(st.TimeRemaining))

	stop := c.stop
	if stop == nil {
		sigCtx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()
		stop = sigCtx.Done()
	}

	select {
	case <-done:
		engine.Pause()
		ctx.Printf("✓ %d interval(s) complete, %d focus session(s) this run\n", completed, engine.State().CompletedFocusSessions)
	case <-stop:
		engine.Pause()
		ctx.Printf("\n⏸ Stopped with %s left\n", pomodoro.FormatClock(engine.State().TimeRemaining))
	}
	return nil
}

type SearchCmd struct {
	Query []string `arg:"" help:"What to search for."`

	launcher search.Launcher
}

func (c *SearchCmd) Run(ctx *cli.Context) error {
	l := c.launcher
	if l == nil {
		l = search.OSLauncher{}
	}
	u, err := search.Run(context.Background(), l, strings.Join(c.Query, " "))
	if err != nil {
		return err
	}
	ctx.Printf("Opened %s\n", u)
	return nil
}
