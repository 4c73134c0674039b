package workflow_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"receiptly/internal/workflow"
)

func newEvent(t *testing.T, eventType string) cloudevents.Event {
	t.Helper()
	ev := cloudevents.NewEvent()
	ev.SetID("ev-1")
	ev.SetSource("test")
	ev.SetType(eventType)
	require.NoError(t, ev.SetData(cloudevents.ApplicationJSON, workflow.ExtractPayload{URL: "https://x/y.pdf", ReceiptID: "r-1"}))
	return ev
}

func awaitRun(t *testing.T, e *workflow.Engine, id string) workflow.Run {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	run, err := e.Await(ctx, id)
	require.NoError(t, err)
	return run
}

func TestEngine_DispatchRunsMatchingFunction(t *testing.T) {
	e := workflow.NewEngine(workflow.EngineConfig{MaxSteps: 5}, nil)
	require.NoError(t, e.Register(workflow.Function{
		ID:    "extract",
		Event: workflow.EventExtractReceipt,
		Handler: func(ctx context.Context, ev cloudevents.Event, step workflow.Step) (any, error) {
			var p workflow.ExtractPayload
			if err := ev.DataAs(&p); err != nil {
				return nil, err
			}
			return step.Run(ctx, "echo", func(context.Context) (any, error) { return p.ReceiptID, nil })
		},
	}))

	ids, err := e.Dispatch(newEvent(t, workflow.EventExtractReceipt))
	require.NoError(t, err)
	require.Len(t, ids, 1)

	run := awaitRun(t, e, ids[0])
	assert.Equal(t, workflow.RunCompleted, run.Status)
	assert.Equal(t, "r-1", run.Output)
	require.Len(t, run.Steps, 1)
	assert.Equal(t, "echo", run.Steps[0].Name)
	assert.Equal(t, "extract", run.FunctionID)
}

func TestEngine_DispatchUnknownEventStartsNothing(t *testing.T) {
	e := workflow.NewEngine(workflow.EngineConfig{}, nil)

	ids, err := e.Dispatch(newEvent(t, "SOMETHING_ELSE"))

	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestEngine_StepBudgetFailsRun(t *testing.T) {
	e := workflow.NewEngine(workflow.EngineConfig{MaxSteps: 2}, nil)
	require.NoError(t, e.Register(workflow.Function{
		ID:    "loop",
		Event: workflow.EventExtractReceipt,
		Handler: func(ctx context.Context, _ cloudevents.Event, step workflow.Step) (any, error) {
			for {
				if _, err := step.Run(ctx, "tick", func(context.Context) (any, error) { return nil, nil }); err != nil {
					return nil, err
				}
			}
		},
	}))

	ids, err := e.Dispatch(newEvent(t, workflow.EventExtractReceipt))
	require.NoError(t, err)

	run := awaitRun(t, e, ids[0])
	assert.Equal(t, workflow.RunFailed, run.Status)
	assert.Contains(t, run.Error, workflow.ErrStepBudgetExhausted.Error())
	assert.Len(t, run.Steps, 2)
}

func TestEngine_FailedStepMarksRunFailed(t *testing.T) {
	e := workflow.NewEngine(workflow.EngineConfig{}, nil)
	require.NoError(t, e.Register(workflow.Function{
		ID:    "boom",
		Event: workflow.EventExtractReceipt,
		Handler: func(ctx context.Context, _ cloudevents.Event, step workflow.Step) (any, error) {
			return step.Run(ctx, "infer", func(context.Context) (any, error) { return nil, errors.New("model unavailable") })
		},
	}))

	ids, err := e.Dispatch(newEvent(t, workflow.EventExtractReceipt))
	require.NoError(t, err)

	run := awaitRun(t, e, ids[0])
	assert.Equal(t, workflow.RunFailed, run.Status)
	assert.Contains(t, run.Error, "model unavailable")
	assert.Equal(t, "model unavailable", run.Steps[0].Error)
}

func TestEngine_PanicIsCapturedAsFailure(t *testing.T) {
	e := workflow.NewEngine(workflow.EngineConfig{}, nil)
	require.NoError(t, e.Register(workflow.Function{
		ID:    "panics",
		Event: workflow.EventExtractReceipt,
		Handler: func(context.Context, cloudevents.Event, workflow.Step) (any, error) {
			panic("nil map")
		},
	}))

	ids, err := e.Dispatch(newEvent(t, workflow.EventExtractReceipt))
	require.NoError(t, err)

	run := awaitRun(t, e, ids[0])
	assert.Equal(t, workflow.RunFailed, run.Status)
	assert.Contains(t, run.Error, "panicked")
}

func TestEngine_RegisterRejectsDuplicates(t *testing.T) {
	e := workflow.NewEngine(workflow.EngineConfig{}, nil)
	fn := workflow.Function{
		ID:      "extract",
		Event:   workflow.EventExtractReceipt,
		Handler: func(context.Context, cloudevents.Event, workflow.Step) (any, error) { return nil, nil },
	}

	require.NoError(t, e.Register(fn))
	assert.Error(t, e.Register(fn))
	assert.Error(t, e.Register(workflow.Function{ID: "incomplete"}))
	assert.Len(t, e.Functions(), 1)
}

func TestEngine_ConcurrencyIsBounded(t *testing.T) {
	var inFlight, peak int32
	release := make(chan struct{})

	e := workflow.NewEngine(workflow.EngineConfig{Concurrency: 2}, nil)
	require.NoError(t, e.Register(workflow.Function{
		ID:    "slow",
		Event: workflow.EventExtractReceipt,
		Handler: func(context.Context, cloudevents.Event, workflow.Step) (any, error) {
			n := atomic.AddInt32(&inFlight, 1)
			for {
				p := atomic.LoadInt32(&peak)
				if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
					break
				}
			}
			<-release
			atomic.AddInt32(&inFlight, -1)
			return nil, nil
		},
	}))

	var ids []string
	for i := 0; i < 5; i++ {
		got, err := e.Dispatch(newEvent(t, workflow.EventExtractReceipt))
		require.NoError(t, err)
		ids = append(ids, got...)
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	for _, id := range ids {
		awaitRun(t, e, id)
	}

	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
}

func TestEngine_ShutdownRejectsNewEvents(t *testing.T) {
	e := workflow.NewEngine(workflow.EngineConfig{}, nil)
	require.NoError(t, e.Ready(context.Background()))

	require.NoError(t, e.Shutdown(context.Background()))
	assert.ErrorIs(t, e.Ready(context.Background()), workflow.ErrEngineClosed)

	_, err := e.Dispatch(newEvent(t, workflow.EventExtractReceipt))
	assert.ErrorIs(t, err, workflow.ErrEngineClosed)
}

func TestEngine_HistoryIsBounded(t *testing.T) {
	e := workflow.NewEngine(workflow.EngineConfig{HistorySize: 2}, nil)
	require.NoError(t, e.Register(workflow.Function{
		ID:      "noop",
		Event:   workflow.EventExtractReceipt,
		Handler: func(context.Context, cloudevents.Event, workflow.Step) (any, error) { return nil, nil },
	}))

	for i := 0; i < 4; i++ {
		ids, err := e.Dispatch(newEvent(t, workflow.EventExtractReceipt))
		require.NoError(t, err)
		awaitRun(t, e, ids[0])
	}

	assert.LessOrEqual(t, len(e.Runs()), 3)
}
