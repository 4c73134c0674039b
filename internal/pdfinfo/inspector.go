// Package pdfinfo validates uploaded PDFs before they are stored.
package pdfinfo

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"receiptly/internal/domain"
	"receiptly/internal/port"
)

var disableConfigDir sync.Once

type inspector struct {
	conf *model.Configuration
}

// NewInspector returns a pdfcpu-backed PDFInspector using relaxed validation,
// which tolerates the minor spec violations common in scanner and POS output.
func NewInspector() port.PDFInspector {
	disableConfigDir.Do(api.DisableConfigDir)

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &inspector{conf: conf}
}

func (i *inspector) Inspect(ctx context.Context, content []byte) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if !bytes.HasPrefix(content, []byte("%PDF-")) {
		return 0, domain.ErrInvalidPDF
	}

	if err := api.Validate(bytes.NewReader(content), i.conf); err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrInvalidPDF, err)
	}

	pages, err := api.PageCount(bytes.NewReader(content), i.conf)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrInvalidPDF, err)
	}
	return pages, nil
}
