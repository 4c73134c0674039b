package workflow

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStep_RecordsNestedSteps(t *testing.T) {
	s := NewLocalStep(0)

	out, err := s.Run(context.Background(), "agent:persisting", func(ctx context.Context) (any, error) {
		return s.Run(ctx, "save-receipt-to-database", func(context.Context) (any, error) {
			return "ok", nil
		})
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	recs := s.Records()
	require.Len(t, recs, 2)
	assert.Equal(t, "agent:persisting", recs[0].Name)
	assert.Equal(t, "save-receipt-to-database", recs[1].Name)
}

func TestLocalStep_BudgetExhausted(t *testing.T) {
	s := NewLocalStep(1)
	noop := func(context.Context) (any, error) { return nil, nil }

	_, err := s.Run(context.Background(), "first", noop)
	require.NoError(t, err)

	_, err = s.Run(context.Background(), "second", noop)
	assert.ErrorIs(t, err, ErrStepBudgetExhausted)
}

func TestLocalStep_CanceledContextSkipsWork(t *testing.T) {
	s := NewLocalStep(0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false

	_, err := s.Run(ctx, "late", func(context.Context) (any, error) {
		called = true
		return nil, nil
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestLocalStep_ErrorIsWrappedWithName(t *testing.T) {
	s := NewLocalStep(0)
	cause := errors.New("timeout")

	_, err := s.Run(context.Background(), "parse-pdf", func(context.Context) (any, error) { return nil, cause })

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), `step "parse-pdf"`)
	assert.Equal(t, "timeout", s.Records()[0].Error)
}
