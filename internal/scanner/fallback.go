package scanner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"receiptly/internal/port"
)

// provider is one link in the chain. cooldownUntil is set when the provider
// answers 429 and cleared implicitly once it passes.
type provider struct {
	name    string
	scanner port.DocumentScanner

	mu            sync.Mutex
	cooldownUntil time.Time
}

func (p *provider) coolingDown(now time.Time) (time.Time, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cooldownUntil, now.Before(p.cooldownUntil)
}

func (p *provider) coolDown(until time.Time) {
	p.mu.Lock()
	p.cooldownUntil = until
	p.mu.Unlock()
}

// FallbackScanner asks each provider in order for the receipt data and
// returns the first answer. Rate-limited providers sit out until their
// Retry-After passes.
type FallbackScanner struct {
	chain  []*provider
	logger *zap.Logger
}

// NewFallbackScanner builds the chain; names[i] labels scanners[i] in logs.
func NewFallbackScanner(scanners []port.DocumentScanner, names []string, logger *zap.Logger) *FallbackScanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	chain := make([]*provider, len(scanners))
	for i, s := range scanners {
		chain[i] = &provider{name: names[i], scanner: s}
	}
	return &FallbackScanner{chain: chain, logger: logger}
}

func (f *FallbackScanner) Scan(ctx context.Context, input port.ScanInput) (*port.ScanOutput, error) {
	now := time.Now()
	var (
		lastErr     error
		onlyLimited = true
		nextReady   time.Time
	)
	soonest := func(t time.Time) {
		if nextReady.IsZero() || t.Before(nextReady) {
			nextReady = t
		}
	}

	for _, p := range f.chain {
		if until, cooling := p.coolingDown(now); cooling {
			f.logger.Info("scanner cooling down", zap.String("scanner", p.name), zap.Time("until", until))
			soonest(until)
			continue
		}

		out, err := p.scanner.Scan(ctx, input)
		if err == nil {
			return out, nil
		}
		// The run deadline applies to the whole chain.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("scanning %s: %w", input.URL, ctxErr)
		}

		f.logger.Warn("scanner failed, trying next", zap.String("scanner", p.name), zap.Error(err))
		lastErr = err

		var limited *RateLimitError
		if !errors.As(err, &limited) {
			onlyLimited = false
			continue
		}
		until := now.Add(limited.RetryAfter)
		p.coolDown(until)
		soonest(until)
	}

	if lastErr != nil && !onlyLimited {
		return nil, fmt.Errorf("all scanners failed: %w", lastErr)
	}
	wait := max(time.Until(nextReady), time.Second)
	return nil, NewRateLimitError("all", errors.New("all scanners rate limited"), int(wait.Seconds()))
}

// Close releases every provider in the chain that holds a client.
func (f *FallbackScanner) Close() error {
	var errs []error
	for _, p := range f.chain {
		if err := Close(p.scanner); err != nil {
			errs = append(errs, fmt.Errorf("closing %s scanner: %w", p.name, err))
		}
	}
	return errors.Join(errs...)
}
