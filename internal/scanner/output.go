package scanner

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// ReceiptJSON is the shape returned by every scanner provider.
type ReceiptJSON struct {
	Merchant struct {
		Name    string `json:"name"`
		Address string `json:"address"`
		Contact string `json:"contact"`
	} `json:"merchant"`
	Transaction struct {
		Date          string `json:"date"`
		ReceiptNumber string `json:"receipt_number"`
		PaymentMethod string `json:"payment_method"`
	} `json:"transaction"`
	Items []struct {
		Name       string  `json:"name"`
		Quantity   float64 `json:"quantity"`
		UnitPrice  float64 `json:"unit_price"`
		TotalPrice float64 `json:"total_price"`
	} `json:"items"`
	Totals struct {
		Subtotal float64 `json:"subtotal"`
		Tax      float64 `json:"tax"`
		Total    float64 `json:"total"`
		Currency string  `json:"currency"`
	} `json:"totals"`
}

// ExtractJSON pulls the JSON object out of model text, tolerating markdown code
// fences and surrounding prose, and checks it decodes as a receipt.
func ExtractJSON(text string) (json.RawMessage, error) {
	s := strings.TrimSpace(text)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end < start {
		return nil, fmt.Errorf("no JSON object in model output (raw: %s)", Truncate(text, 500))
	}
	raw := []byte(s[start : end+1])

	var probe ReceiptJSON
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, fmt.Errorf("parsing LLM JSON output: %w (raw: %s)", err, Truncate(text, 500))
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return nil, fmt.Errorf("compacting LLM JSON output: %w", err)
	}
	return buf.Bytes(), nil
}

// Truncate shortens s to maxLen bytes for log and error messages.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
