// Package pomodoro implements the focus/break session state machine.
//
// All commands and countdown ticks funnel through one disarm-then-rearm step,
// so at most one tick timer is ever pending. Skip and natural expiry share the
// same completion path.
package pomodoro

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/homebase/internal/constants"
	"github.com/julianstephens/homebase/internal/logger"
	"github.com/julianstephens/homebase/internal/notifier"
	"github.com/julianstephens/homebase/internal/settings"
)

// Config supplies the current pomodoro settings. It is read on every use.
type Config interface {
	Pomodoro() settings.Pomodoro
}

// watcher is implemented by *settings.Store.
type watcher interface {
	Subscribe(fn func(settings.Document)) func()
}

const tickInterval = time.Second

type Engine struct {
	cfg     Config
	sched   Scheduler
	channel notifier.Channel
	tone    notifier.Tone

	mu     sync.Mutex
	state  State
	timer  Timer
	gen    uint64
	closed bool
	last   settings.Pomodoro

	subMu     sync.Mutex
	subs      map[int]func(Event)
	nextSubID int

	unwatch func()
}

type Option func(*Engine)

func WithScheduler(s Scheduler) Option {
	return func(e *Engine) { e.sched = s }
}

// WithNotifier sets the completion channel and its fallback tone.
func WithNotifier(ch notifier.Channel, tone notifier.Tone) Option {
	return func(e *Engine) {
		e.channel = ch
		e.tone = tone
	}
}

// New returns an engine in Focus mode, stopped, with the full focus duration.
// If cfg can be subscribed to, changing sessionsUntilLongBreak resets the
// completed session count.
func New(cfg Config, opts ...Option) *Engine {
	e := &Engine{
		cfg:   cfg,
		sched: RealScheduler{},
		subs:  make(map[int]func(Event)),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.last = cfg.Pomodoro()
	e.state = State{
		Mode:          Focus,
		TimeRemaining: Focus.Minutes(e.last) * 60,
	}

	if w, ok := cfg.(watcher); ok {
		e.unwatch = w.Subscribe(e.onSettings)
	}
	return e
}

// State returns a copy of the current session state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.clone()
}

// Subscribe registers fn for every event. Events are delivered synchronously
// after the state change, outside the engine lock.
func (e *Engine) Subscribe(fn func(Event)) func() {
	e.subMu.Lock()
	id := e.nextSubID
	e.nextSubID++
	e.subs[id] = fn
	e.subMu.Unlock()

	return func() {
		e.subMu.Lock()
		delete(e.subs, id)
		e.subMu.Unlock()
	}
}

// Start begins a focus interval from its full duration. An empty task clears
// the label.
func (e *Engine) Start(task string) {
	e.command(func() {
		if task == "" {
			e.state.CurrentTask = nil
		} else {
			e.state.CurrentTask = &task
		}
		e.state.Mode = Focus
		e.state.TimeRemaining = e.seconds(Focus)
		e.state.Running = true
	})
}

func (e *Engine) Pause() {
	e.command(func() { e.state.Running = false })
}

func (e *Engine) Resume() {
	e.command(func() { e.state.Running = true })
}

// Toggle pauses a running timer or resumes a stopped one.
func (e *Engine) Toggle() {
	e.command(func() { e.state.Running = !e.state.Running })
}

// Reset reloads the current mode's duration and stops.
func (e *Engine) Reset() {
	e.command(func() {
		e.state.TimeRemaining = e.seconds(e.state.Mode)
		e.state.Running = false
	})
}

// ResetSessions returns to a fresh, stopped focus interval with no completed
// sessions. Called when the task tied to the timer goes away.
func (e *Engine) ResetSessions() {
	e.command(func() {
		e.state.Mode = Focus
		e.state.CompletedFocusSessions = 0
		e.state.Running = false
		e.state.TimeRemaining = e.seconds(Focus)
	})
}

// SetMode switches to m, stopped, with m's full duration.
func (e *Engine) SetMode(m Mode) {
	e.command(func() {
		e.state.Mode = m
		e.state.Running = false
		e.state.TimeRemaining = e.seconds(m)
	})
}

// Skip ends the current interval now, exactly as if it had run out.
func (e *Engine) Skip() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.state.TimeRemaining = 0
	events, message := e.complete()
	e.rearm()
	e.mu.Unlock()

	e.emit(events...)
	e.announce(message)
}

// Close disarms the timer and detaches from settings. The engine ignores
// further ticks.
func (e *Engine) Close() {
	e.mu.Lock()
	e.closed = true
	e.state.Running = false
	e.rearm()
	e.mu.Unlock()

	if e.unwatch != nil {
		e.unwatch()
		e.unwatch = nil
	}
}

// command applies mutate under the lock, rearms, then emits StateChanged.
func (e *Engine) command(mutate func()) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	mutate()
	e.rearm()
	ev := e.event(EventStateChanged)
	e.mu.Unlock()

	e.emit(ev)
}

// rearm disarms any pending tick and arms a new one if running. Caller holds mu.
func (e *Engine) rearm() {
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	e.gen++
	if !e.state.Running || e.closed {
		return
	}
	gen := e.gen
	e.timer = e.sched.After(tickInterval, func() { e.tick(gen) })
}

func (e *Engine) tick(gen uint64) {
	e.mu.Lock()
	if gen != e.gen || e.closed || !e.state.Running {
		e.mu.Unlock()
		return
	}
	e.timer = nil

	e.state.TimeRemaining--
	events := []Event{e.event(EventTick)}
	var message string
	if e.state.TimeRemaining <= 0 {
		e.state.TimeRemaining = 0
		var done []Event
		done, message = e.complete()
		events = append(events, done...)
	}
	e.rearm()
	e.mu.Unlock()

	e.emit(events...)
	e.announce(message)
}

// complete applies the interval-completion transition. Caller holds mu.
func (e *Engine) complete() ([]Event, string) {
	p := e.cfg.Pomodoro()

	if e.state.Mode == Focus {
		e.state.CompletedFocusSessions++
		next := ShortBreak
		if e.state.CompletedFocusSessions%p.SessionsUntilLongBreak == 0 {
			next = LongBreak
		}
		e.state.Mode = next
		e.state.TimeRemaining = next.Minutes(p) * 60
		e.state.Running = p.AutoStartBreaks

		ev := e.event(EventFocusComplete)
		ev.NextBreak = next
		kind := "short"
		if next == LongBreak {
			kind = "long"
		}
		return []Event{ev}, "Focus session complete! Time for a " + kind + " break."
	}

	e.state.Mode = Focus
	e.state.TimeRemaining = Focus.Minutes(p) * 60
	e.state.Running = p.AutoStartPomodoros
	return []Event{e.event(EventBreakComplete)}, "Break complete! Ready to focus?"
}

func (e *Engine) seconds(m Mode) int {
	return m.Minutes(e.cfg.Pomodoro()) * 60
}

// event builds an Event carrying the current state. Caller holds mu.
func (e *Engine) event(kind EventKind) Event {
	return Event{
		ID:    uuid.NewString(),
		Kind:  kind,
		State: e.state.clone(),
	}
}

func (e *Engine) emit(events ...Event) {
	if len(events) == 0 {
		return
	}
	e.subMu.Lock()
	fns := make([]func(Event), 0, len(e.subs))
	for _, fn := range e.subs {
		fns = append(fns, fn)
	}
	e.subMu.Unlock()

	for _, ev := range events {
		for _, fn := range fns {
			fn(ev)
		}
	}
}

func (e *Engine) announce(message string) {
	if message == "" {
		return
	}
	logger.Info("Pomodoro interval complete", "message", message)
	notifier.Notify(e.channel, e.tone, message, notifier.LevelSuccess, constants.NotificationDurationMs)
}

func (e *Engine) onSettings(doc settings.Document) {
	p := settings.PomodoroOf(doc)

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	prev := e.last
	e.last = p
	changed := false
	if p.SessionsUntilLongBreak != prev.SessionsUntilLongBreak && e.state.CompletedFocusSessions != 0 {
		e.state.CompletedFocusSessions = 0
		changed = true
	}
	if !e.state.Running && e.state.Mode.Minutes(p) != e.state.Mode.Minutes(prev) {
		e.state.TimeRemaining = e.state.Mode.Minutes(p) * 60
		changed = true
	}
	if !changed {
		e.mu.Unlock()
		return
	}
	ev := e.event(EventStateChanged)
	e.mu.Unlock()

	e.emit(ev)
}
