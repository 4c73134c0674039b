package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrStepBudgetExhausted is returned when a run tries to start more steps than allowed.
var ErrStepBudgetExhausted = errors.New("workflow step budget exhausted")

// Step runs named units of work on behalf of one function run.
type Step interface {
	Run(ctx context.Context, name string, fn func(ctx context.Context) (any, error)) (any, error)
}

// StepRecord is the outcome of one executed step.
type StepRecord struct {
	Name      string        `json:"name"`
	StartedAt time.Time     `json:"startedAt"`
	Duration  time.Duration `json:"duration"`
	Error     string        `json:"error,omitempty"`
}

// LocalStep executes steps inline and enforces a step budget.
type LocalStep struct {
	mu      sync.Mutex
	limit   int
	records []StepRecord
}

// NewLocalStep returns a Step that allows at most limit steps. limit <= 0 means unlimited.
func NewLocalStep(limit int) *LocalStep {
	return &LocalStep{limit: limit}
}

func (s *LocalStep) Run(ctx context.Context, name string, fn func(ctx context.Context) (any, error)) (any, error) {
	s.mu.Lock()
	if s.limit > 0 && len(s.records) >= s.limit {
		s.mu.Unlock()
		return nil, fmt.Errorf("step %q: %w (max %d)", name, ErrStepBudgetExhausted, s.limit)
	}
	idx := len(s.records)
	s.records = append(s.records, StepRecord{Name: name, StartedAt: time.Now().UTC()})
	s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		s.finish(idx, err)
		return nil, fmt.Errorf("step %q: %w", name, err)
	}

	out, err := fn(ctx)
	s.finish(idx, err)
	if err != nil {
		return nil, fmt.Errorf("step %q: %w", name, err)
	}
	return out, nil
}

func (s *LocalStep) finish(idx int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := &s.records[idx]
	rec.Duration = time.Since(rec.StartedAt)
	if err != nil {
		rec.Error = err.Error()
	}
}

// Records returns a copy of the executed steps in start order.
func (s *LocalStep) Records() []StepRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]StepRecord, len(s.records))
	copy(out, s.records)
	return out
}
