package view

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

var headers = []string{"NAME", "UPLOADED", "SIZE", "AMOUNT", "STATUS"}

const maxNameWidth = 40

// RenderTable writes the view as a fixed-width text table. Column widths are
// measured in terminal cells so wide characters stay aligned.
func RenderTable(w io.Writer, v ListView) error {
	if v.State != StateReady {
		_, err := fmt.Fprintln(w, v.Message)
		return err
	}

	cells := make([][]string, 0, len(v.Rows)+1)
	cells = append(cells, headers)
	for _, r := range v.Rows {
		cells = append(cells, []string{
			runewidth.Truncate(r.Name, maxNameWidth, "..."),
			r.UploadedAt,
			r.Size,
			r.Amount,
			r.Status.Label,
		})
	}

	widths := make([]int, len(headers))
	for _, row := range cells {
		for i, c := range row {
			if n := runewidth.StringWidth(c); n > widths[i] {
				widths[i] = n
			}
		}
	}

	var b strings.Builder
	for _, row := range cells {
		for i, c := range row {
			if i == len(row)-1 {
				b.WriteString(c)
				break
			}
			b.WriteString(runewidth.FillRight(c, widths[i]))
			b.WriteString("  ")
		}
		b.WriteByte('\n')
	}
	_, err := io.WriteString(w, b.String())
	return err
}
