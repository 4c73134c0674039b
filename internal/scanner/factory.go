package scanner

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"receiptly/internal/config"
	"receiptly/internal/port"
)

// ProviderFactory creates a DocumentScanner from a provider config.
type ProviderFactory func(ctx context.Context, cfg *config.ScannerProviderConfig) (port.DocumentScanner, error)

// registry of scanner provider factories, populated explicitly via RegisterProvider.
var providers = map[string]ProviderFactory{}

// RegisterProvider registers a scanner provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providers[name] = factory
}

// NewScanner creates a DocumentScanner from a provider config using the registered factory.
func NewScanner(ctx context.Context, cfg *config.ScannerProviderConfig) (port.DocumentScanner, error) {
	factory, ok := providers[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown scanner provider: %s", cfg.Provider)
	}
	return factory(ctx, cfg)
}

// NewChain builds a scanner for each configured provider. A single provider is
// returned as-is; several are wrapped in a FallbackScanner in the given order.
func NewChain(ctx context.Context, cfgs []config.ScannerProviderConfig, logger *zap.Logger) (port.DocumentScanner, error) {
	if len(cfgs) == 0 {
		return nil, fmt.Errorf("no scanner providers configured")
	}

	scanners := make([]port.DocumentScanner, 0, len(cfgs))
	names := make([]string, 0, len(cfgs))
	for i := range cfgs {
		s, err := NewScanner(ctx, &cfgs[i])
		if err != nil {
			for _, built := range scanners {
				_ = Close(built)
			}
			return nil, fmt.Errorf("creating %s scanner: %w", cfgs[i].Provider, err)
		}
		scanners = append(scanners, s)
		names = append(names, cfgs[i].Provider)
	}

	if len(scanners) == 1 {
		return scanners[0], nil
	}
	return NewFallbackScanner(scanners, names, logger), nil
}

// Close releases s if it holds a client (the vertex provider does); other
// scanners are left alone.
func Close(s port.DocumentScanner) error {
	if c, ok := s.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
