// Package view turns receipt records into what the list screens show.
package view

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"receiptly/internal/domain"
)

var sizeUnits = []string{"Bytes", "KB", "MB", "GB", "TB"}

// FormatFileSize renders a byte count with at most two decimals, e.g. 2048 -> "2 KB".
func FormatFileSize(size int64) string {
	if size <= 0 {
		return "0 Bytes"
	}
	i := 0
	for div := int64(1024); size >= div && i < len(sizeUnits)-1; div *= 1024 {
		i++
	}
	v := float64(size) / math.Pow(1024, float64(i))
	v = math.Round(v*100) / 100
	return strconv.FormatFloat(v, 'f', -1, 64) + " " + sizeUnits[i]
}

var printer = message.NewPrinter(language.English)

var nonNumeric = regexp.MustCompile(`[^0-9.\-]`)

// FormatAmount renders an extracted amount with its currency. Missing amounts
// render as "-". Unknown currencies keep the model's text as is.
func FormatAmount(amount, cur *string) string {
	if amount == nil || strings.TrimSpace(*amount) == "" {
		return "-"
	}
	raw := strings.TrimSpace(*amount)

	v, err := strconv.ParseFloat(nonNumeric.ReplaceAllString(raw, ""), 64)
	if err != nil {
		return raw
	}

	code := ""
	if cur != nil {
		code = strings.ToUpper(strings.TrimSpace(*cur))
	}
	unit, err := currency.ParseISO(code)
	if err != nil {
		if code == "" {
			return printer.Sprintf("%.2f", v)
		}
		return printer.Sprintf("%.2f", v) + " " + code
	}

	scale, _ := currency.Standard.Rounding(unit)
	return unit.String() + " " + printer.Sprintf("%.*f", scale, v)
}

// Badge is a status label with its display colour.
type Badge struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

// StatusBadge maps a status to its badge. Anything other than pending or processed is red.
func StatusBadge(status domain.ReceiptStatus) Badge {
	label := string(status)
	if label != "" {
		label = strings.ToUpper(label[:1]) + label[1:]
	}
	switch status {
	case domain.ReceiptStatusPending:
		return Badge{Label: label, Color: "yellow"}
	case domain.ReceiptStatusProcessed:
		return Badge{Label: label, Color: "green"}
	default:
		return Badge{Label: label, Color: "red"}
	}
}
