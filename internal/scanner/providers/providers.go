// Package providers registers the built-in scanner providers.
package providers

import (
	"receiptly/internal/scanner"
	"receiptly/internal/scanner/claude"
	"receiptly/internal/scanner/openai"
	"receiptly/internal/scanner/vertex"
)

// Register makes claude, openai and vertex available to scanner.NewChain.
// Each factory validates its own credentials, so a misconfigured chain fails
// at startup.
func Register() {
	scanner.RegisterProvider("claude", claude.Factory)
	scanner.RegisterProvider("openai", openai.Factory)
	scanner.RegisterProvider("vertex", vertex.Factory)
}
