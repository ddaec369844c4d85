package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Printf writes formatted text to the formatter's writer
func (f *Formatter) Printf(format string, v ...interface{}) {
	fmt.Fprintf(f.writer, format, v...)
}

// Println writes text with newline to the formatter's writer
func (f *Formatter) Println(v ...interface{}) {
	fmt.Fprintln(f.writer, v...)
}

// Table outputs tabular data in text format. Widths are measured in
// terminal cells so glyphs like ✓ and wide names stay aligned.
type Table struct {
	writer  io.Writer
	headers []string
	rows    [][]string
	widths  []int
}

// NewTable creates a new table with headers
func NewTable(w io.Writer, headers ...string) *Table {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = runewidth.StringWidth(h)
	}
	return &Table{
		writer:  w,
		headers: headers,
		widths:  widths,
	}
}

// AddRow adds a row to the table
func (t *Table) AddRow(cols ...string) {
	for i, c := range cols {
		if i < len(t.widths) {
			if w := runewidth.StringWidth(c); w > t.widths[i] {
				t.widths[i] = w
			}
		}
	}
	t.rows = append(t.rows, cols)
}

// Render outputs the table
func (t *Table) Render() error {
	if err := t.renderRow(t.headers); err != nil {
		return err
	}
	seps := make([]string, len(t.widths))
	for i, w := range t.widths {
		seps[i] = strings.Repeat("-", w)
	}
	if err := t.renderRow(seps); err != nil {
		return err
	}
	for _, row := range t.rows {
		if err := t.renderRow(row); err != nil {
			return err
		}
	}
	return nil
}

func (t *Table) renderRow(cols []string) error {
	var sb strings.Builder
	sb.WriteString("  ")
	for i := range t.widths {
		var c string
		if i < len(cols) {
			c = cols[i]
		}
		if i == len(t.widths)-1 {
			sb.WriteString(c)
			break
		}
		sb.WriteString(runewidth.FillRight(c, t.widths[i]))
		sb.WriteString("  ")
	}
	sb.WriteString("\n")
	_, err := io.WriteString(t.writer, sb.String())
	return err
}

// Pluralize returns singular or plural form based on count
func Pluralize(count int, singular, plural string) string {
	if count == 1 {
		return singular
	}
	return plural
}

// CountStr returns "N item(s)" string
func CountStr(count int, singular, plural string) string {
	return fmt.Sprintf("%d %s", count, Pluralize(count, singular, plural))
}
