package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrEngineClosed is returned by Dispatch after Shutdown has begun.
var ErrEngineClosed = errors.New("workflow engine is shut down")

// Handler executes one function run for a delivered event.
type Handler func(ctx context.Context, ev cloudevents.Event, step Step) (any, error)

// Function binds a handler to an event type.
type Function struct {
	ID      string
	Event   string
	Handler Handler
}

// RunStatus is the lifecycle of a function run.
type RunStatus string

const (
	RunQueued    RunStatus = "queued"
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// Run is a snapshot of one function invocation.
type Run struct {
	ID         string       `json:"id"`
	FunctionID string       `json:"functionId"`
	EventID    string       `json:"eventId"`
	EventType  string       `json:"eventType"`
	Status     RunStatus    `json:"status"`
	Output     any          `json:"output,omitempty"`
	Error      string       `json:"error,omitempty"`
	Steps      []StepRecord `json:"steps"`
	QueuedAt   time.Time    `json:"queuedAt"`
	StartedAt  *time.Time   `json:"startedAt,omitempty"`
	FinishedAt *time.Time   `json:"finishedAt,omitempty"`
}

// EngineConfig holds limits for the engine.
type EngineConfig struct {
	Concurrency int
	MaxSteps    int
	RunTimeout  time.Duration
	HistorySize int
}

type runEntry struct {
	run  Run
	done chan struct{}
}

// Engine dispatches events to registered functions on a bounded set of workers.
type Engine struct {
	cfg    EngineConfig
	logger *zap.Logger
	sem    chan struct{}
	wg     sync.WaitGroup

	mu        sync.RWMutex
	functions []Function
	runs      map[string]*runEntry
	order     []string
	closed    bool
}

// NewEngine creates an Engine. Zero config values fall back to sane defaults.
func NewEngine(cfg EngineConfig, logger *zap.Logger) *Engine {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 5
	}
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = 5 * time.Minute
	}
	if cfg.HistorySize <= 0 {
		cfg.HistorySize = 200
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		cfg:    cfg,
		logger: logger,
		sem:    make(chan struct{}, cfg.Concurrency),
		runs:   make(map[string]*runEntry),
	}
}

// Register adds a function. IDs must be unique.
func (e *Engine) Register(fn Function) error {
	if fn.ID == "" || fn.Event == "" || fn.Handler == nil {
		return fmt.Errorf("workflow function requires id, event and handler")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, f := range e.functions {
		if f.ID == fn.ID {
			return fmt.Errorf("workflow function %q already registered", fn.ID)
		}
	}
	e.functions = append(e.functions, fn)
	e.logger.Info("workflow function registered", zap.String("function", fn.ID), zap.String("event", fn.Event))
	return nil
}

// Functions returns the registered functions in registration order.
func (e *Engine) Functions() []Function {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]Function, len(e.functions))
	copy(out, e.functions)
	return out
}

// Dispatch starts one run per function subscribed to the event type and returns
// their run IDs without waiting for them to execute.
func (e *Engine) Dispatch(ev cloudevents.Event) ([]string, error) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil, ErrEngineClosed
	}

	var matched []Function
	for _, f := range e.functions {
		if f.Event == ev.Type() {
			matched = append(matched, f)
		}
	}

	ids := make([]string, 0, len(matched))
	entries := make([]*runEntry, 0, len(matched))
	for _, f := range matched {
		entry := &runEntry{
			run: Run{
				ID:         uuid.NewString(),
				FunctionID: f.ID,
				EventID:    ev.ID(),
				EventType:  ev.Type(),
				Status:     RunQueued,
				Steps:      []StepRecord{},
				QueuedAt:   time.Now().UTC(),
			},
			done: make(chan struct{}),
		}
		e.runs[entry.run.ID] = entry
		e.order = append(e.order, entry.run.ID)
		ids = append(ids, entry.run.ID)
		entries = append(entries, entry)
	}
	e.evictLocked()
	e.wg.Add(len(entries))
	e.mu.Unlock()

	if len(matched) == 0 {
		e.logger.Warn("no workflow function for event", zap.String("event_type", ev.Type()), zap.String("event_id", ev.ID()))
	}

	for i := range entries {
		go e.execute(matched[i], ev, entries[i])
	}
	return ids, nil
}

func (e *Engine) execute(fn Function, ev cloudevents.Event, entry *runEntry) {
	defer e.wg.Done()
	defer close(entry.done)

	e.sem <- struct{}{} // acquire
	defer func() { <-e.sem }()

	// Runs get a fresh context so in-flight work completes during shutdown.
	ctx, cancel := context.WithTimeout(context.Background(), e.cfg.RunTimeout)
	defer cancel()

	step := NewLocalStep(e.cfg.MaxSteps)
	log := e.logger.With(
		zap.String("run_id", entry.run.ID),
		zap.String("function", fn.ID),
		zap.String("event_id", ev.ID()),
	)

	e.update(entry, func(r *Run) {
		now := time.Now().UTC()
		r.Status = RunRunning
		r.StartedAt = &now
	})
	log.Info("workflow run started")

	out, err := e.invoke(ctx, fn, ev, step)

	e.update(entry, func(r *Run) {
		now := time.Now().UTC()
		r.FinishedAt = &now
		r.Steps = step.Records()
		if err != nil {
			r.Status = RunFailed
			r.Error = err.Error()
			return
		}
		r.Status = RunCompleted
		r.Output = out
	})

	if err != nil {
		log.Error("workflow run failed", zap.Error(err), zap.Int("steps", len(step.Records())))
		return
	}
	log.Info("workflow run completed", zap.Int("steps", len(step.Records())))
}

func (e *Engine) invoke(ctx context.Context, fn Function, ev cloudevents.Event, step Step) (out any, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("workflow function %q panicked: %v", fn.ID, p)
		}
	}()
	return fn.Handler(ctx, ev, step)
}

func (e *Engine) update(entry *runEntry, mutate func(*Run)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	mutate(&entry.run)
}

// evictLocked drops the oldest finished runs beyond HistorySize. Caller holds e.mu.
func (e *Engine) evictLocked() {
	excess := len(e.order) - e.cfg.HistorySize
	if excess <= 0 {
		return
	}
	kept := e.order[:0]
	for _, id := range e.order {
		entry := e.runs[id]
		finished := entry.run.Status == RunCompleted || entry.run.Status == RunFailed
		if excess > 0 && finished {
			delete(e.runs, id)
			excess--
			continue
		}
		kept = append(kept, id)
	}
	e.order = kept
}

// Run returns a snapshot of a run by ID.
func (e *Engine) Run(id string) (Run, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	entry, ok := e.runs[id]
	if !ok {
		return Run{}, false
	}
	return snapshot(entry.run), true
}

// Runs returns snapshots of retained runs, newest first.
func (e *Engine) Runs() []Run {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]Run, 0, len(e.order))
	for i := len(e.order) - 1; i >= 0; i-- {
		out = append(out, snapshot(e.runs[e.order[i]].run))
	}
	return out
}

// Await blocks until the run finishes or ctx is done.
func (e *Engine) Await(ctx context.Context, id string) (Run, error) {
	e.mu.RLock()
	entry, ok := e.runs[id]
	e.mu.RUnlock()
	if !ok {
		return Run{}, fmt.Errorf("workflow run %q not found", id)
	}

	select {
	case <-entry.done:
	case <-ctx.Done():
		return Run{}, ctx.Err()
	}

	e.mu.RLock()
	defer e.mu.RUnlock()
	return snapshot(entry.run), nil
}

// Ready reports ErrEngineClosed once Shutdown has begun.
func (e *Engine) Ready(context.Context) error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return ErrEngineClosed
	}
	return nil
}

// Shutdown stops accepting events and waits for in-flight runs or ctx.
func (e *Engine) Shutdown(ctx context.Context) error {
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()

	e.logger.Info("workflow engine shutting down, waiting for in-flight runs")
	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		e.logger.Info("workflow engine shutdown complete")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("workflow engine shutdown: %w", ctx.Err())
	}
}

func snapshot(r Run) Run {
	steps := make([]StepRecord, len(r.Steps))
	copy(steps, r.Steps)
	r.Steps = steps
	return r
}
