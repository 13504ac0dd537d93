// Compact textual rendering of spreadsheet data for model consumption.
//
// Raw JSON payloads are token-expensive and harder for the engine to
// read back; a pipe-separated grid keeps tool outcomes small.

package sheets

import (
	"fmt"
	"strings"
)

// maxRenderRows caps how many rows of a grid are rendered into a tool
// outcome. Larger reads are truncated with a row count note.
const maxRenderRows = 100

// FormatGrid renders a value grid as pipe-separated rows.
func FormatGrid(g ValueGrid) string {
	if len(g.Values) == 0 {
		return fmt.Sprintf("Range %s is empty.", g.Range)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Values in %s (%d rows):\n", g.Range, len(g.Values))

	rows := g.Values
	truncated := 0
	if len(rows) > maxRenderRows {
		truncated = len(rows) - maxRenderRows
		rows = rows[:maxRenderRows]
	}

	for _, row := range rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = fmt.Sprint(v)
		}
		b.WriteString(strings.Join(cells, " | "))
		b.WriteString("\n")
	}
	if truncated > 0 {
		fmt.Fprintf(&b, "(... %d more rows)\n", truncated)
	}

	return strings.TrimRight(b.String(), "\n")
}

// FormatUpdate renders an update result.
func FormatUpdate(u UpdateResult) string {
	return fmt.Sprintf("Updated %d cells in %s.", u.UpdatedCells, u.Range)
}

// FormatMetadata renders spreadsheet metadata. Each sheet's extent is
// given in A1 notation so the engine can reference it directly.
func FormatMetadata(m Metadata) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Spreadsheet %q with %d sheets:\n", m.Title, len(m.Sheets))
	for _, s := range m.Sheets {
		if s.Rows > 0 && s.Columns > 0 {
			fmt.Fprintf(&b, "- %s (%d rows x %d columns, A1:%s%d)\n",
				s.Title, s.Rows, s.Columns, columnName(s.Columns-1), s.Rows)
		} else {
			fmt.Fprintf(&b, "- %s (empty)\n", s.Title)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
