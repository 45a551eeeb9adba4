package scan

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/michaelscutari/foldercap/internal/units"
)

const defaultBuffer = 256

// Option configures an Engine.
type Option func(*Engine)

// WithBuffer sets the capacity of the event channel.
func WithBuffer(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.buffer = n
		}
	}
}

// WithLogger sets the logger used for engine diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithSizeErrors reports entries the size accumulator could not read as
// skip logs. By default they are silently left out of the sum.
func WithSizeErrors(on bool) Option {
	return func(e *Engine) {
		e.sizeErrors = on
	}
}

// Engine walks a directory tree and reports large dormant or recent
// subdirectories. An Engine runs at most one scan at a time.
type Engine struct {
	buffer     int
	log        *slog.Logger
	sizeErrors bool

	running atomic.Bool
}

// NewEngine creates an engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		buffer: defaultBuffer,
		log:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Running reports whether a scan is in progress.
func (e *Engine) Running() bool {
	return e.running.Load()
}

// Start launches a scan and returns its event stream. The stream always ends
// with exactly one FinishedEvent and is then closed. Cancelling ctx stops the
// scan; the caller must keep draining the channel until it is closed.
func (e *Engine) Start(ctx context.Context, p Params) <-chan Event {
	if !e.running.CompareAndSwap(false, true) {
		ch := make(chan Event, 2)
		ch <- LogEvent{Kind: LogError, Message: "Error: " + ErrBusy.Error(), Err: ErrBusy}
		ch <- FinishedEvent{State: StateFailed, Err: ErrBusy}
		close(ch)
		return ch
	}

	ch := make(chan Event, e.buffer)
	go func() {
		defer close(ch)
		out := &stream{ctx: ctx, ch: ch}
		fin := e.run(ctx, p, out)
		// Idle before Finished is delivered, so its receiver may start again.
		e.running.Store(false)
		out.mustSend(fin)
	}()
	return ch
}

// Run performs a scan synchronously, passing every event to fn, and returns
// the final event.
func (e *Engine) Run(ctx context.Context, p Params, fn func(Event)) FinishedEvent {
	var last FinishedEvent
	for ev := range e.Start(ctx, p) {
		if fin, ok := ev.(FinishedEvent); ok {
			last = fin
		}
		if fn != nil {
			fn(ev)
		}
	}
	return last
}

// run performs the scan and returns the event that ends the stream.
func (e *Engine) run(ctx context.Context, p Params, out *stream) FinishedEvent {
	cfg, err := p.Config()
	if err != nil {
		e.log.Warn("scan configuration rejected", "err", err)
		out.mustSend(LogEvent{Kind: LogError, Message: "Error: " + err.Error(), Err: err})
		return FinishedEvent{State: StateFailed, Err: err}
	}

	e.log.Info("scan started",
		"root", cfg.Root,
		"mode", cfg.Mode.String(),
		"reference", units.FormatDate(cfg.Reference),
		"threshold_mb", cfg.SizeMB,
	)
	start := time.Now()
	state := e.walk(ctx, cfg, out)
	e.log.Info("scan finished", "state", state.String(), "elapsed", time.Since(start))
	return FinishedEvent{State: state}
}

// walk evaluates every subdirectory of a directory, in lexical order, before
// descending into any of them.
func (e *Engine) walk(ctx context.Context, cfg *Config, out *stream) State {
	sizer := &Sizer{Exclude: cfg.ShouldExclude}
	if e.sizeErrors {
		sizer.OnSkip = func(path string, err error) {
			out.send(skipEvent(path, err))
		}
	}

	stack := []string{cfg.Root}
	for len(stack) > 0 {
		if ctx.Err() != nil {
			return StateStopped
		}
		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		entries, err := os.ReadDir(dir)
		if err != nil && !out.send(skipEvent(dir, err)) {
			return StateStopped
		}

		var descend []string
		for _, de := range entries {
			if ctx.Err() != nil {
				return StateStopped
			}
			if !de.IsDir() {
				continue
			}
			path := filepath.Join(dir, de.Name())
			if cfg.ShouldExclude(path) {
				e.log.Debug("excluded", "path", path)
				continue
			}

			out.status(path)
			ok, stopped := e.inspect(ctx, cfg, sizer, path, de.Name(), out)
			if stopped {
				return StateStopped
			}
			if ok {
				descend = append(descend, path)
			}
		}

		for i := len(descend) - 1; i >= 0; i-- {
			stack = append(stack, descend[i])
		}
	}

	if ctx.Err() != nil {
		return StateStopped
	}
	return StateCompleted
}

// inspect evaluates one subdirectory. It reports whether the walk should
// descend into it and whether the scan was stopped while it was evaluated.
func (e *Engine) inspect(ctx context.Context, cfg *Config, sizer *Sizer, path, name string, out *stream) (descend, stopped bool) {
	meta, err := lstatMeta(path)
	if err != nil {
		return false, !out.send(skipEvent(path, err))
	}
	if !Matches(cfg.Mode, meta, cfg.Reference) {
		return true, false
	}

	if !out.send(LogEvent{Kind: LogCandidate, Path: path, Message: "Candidate found: " + name + "..."}) {
		return false, true
	}

	size, truncated := sizer.Sum(ctx, path, cfg.ThresholdBytes)
	if ctx.Err() != nil {
		return false, true
	}
	if !truncated && size <= cfg.ThresholdBytes {
		return true, false
	}

	found := FoundEvent{
		Path:      path,
		Timestamp: cfg.Mode.Timestamp(meta),
		Size:      size,
		Truncated: truncated,
	}
	if !out.send(found) {
		return false, true
	}
	label := units.SizeLabel(size, truncated, cfg.SizeMB)
	if !out.send(LogEvent{Kind: LogConfirmed, Path: path, Message: "--> CONFIRMED: " + label}) {
		return false, true
	}
	return true, false
}

// stream delivers events to a single consumer.
type stream struct {
	ctx context.Context
	ch  chan<- Event
}

// send blocks until ev is delivered or the scan is cancelled. It reports
// whether ev was delivered. Nothing is sent once cancellation is observed.
func (s *stream) send(ev Event) bool {
	if s.ctx.Err() != nil {
		return false
	}
	select {
	case s.ch <- ev:
		return true
	case <-s.ctx.Done():
		return false
	}
}

// status drops the update when the consumer is behind.
func (s *stream) status(path string) {
	select {
	case s.ch <- StatusEvent{Path: path}:
	default:
	}
}

// mustSend blocks until ev is delivered regardless of cancellation.
func (s *stream) mustSend(ev Event) {
	s.ch <- ev
}
