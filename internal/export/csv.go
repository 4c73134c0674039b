package export

import (
	"encoding/csv"
	"io"

	"receiptly/internal/domain"
)

// BOM lets Excel on Windows detect UTF-8.
var BOM = []byte{0xEF, 0xBB, 0xBF}

type csvExporter struct{}

func (csvExporter) ContentType() string { return "text/csv; charset=utf-8" }

func (csvExporter) Extension() string { return "csv" }

func (csvExporter) Write(w io.Writer, receipts []domain.Receipt) error {
	if _, err := w.Write(BOM); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return err
	}
	for i := range receipts {
		if err := cw.Write(receiptToRow(&receipts[i])); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
