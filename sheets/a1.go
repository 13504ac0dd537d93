// A1-notation range parsing.
//
// The values API accepts A1 strings directly; parsing is only needed to
// build GridRange coordinates for chart requests.

package sheets

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// RangeRef is a parsed A1 range. Row and column indices are zero-based;
// End indices are exclusive, matching the Sheets API GridRange shape.
type RangeRef struct {
	Sheet    string
	StartRow int64
	StartCol int64
	EndRow   int64
	EndCol   int64
}

// ParseRange parses an A1 range like "Sheet1!A1:B10" or "A1". The sheet
// name may be quoted ('My Sheet'!A1:B2) and is empty when absent.
func ParseRange(a1 string) (RangeRef, error) {
	var ref RangeRef

	rest := a1
	if idx := strings.LastIndex(a1, "!"); idx >= 0 {
		ref.Sheet = strings.Trim(a1[:idx], "'")
		rest = a1[idx+1:]
	}
	if rest == "" {
		return RangeRef{}, fmt.Errorf("empty range in %q", a1)
	}

	start, end := rest, rest
	if idx := strings.Index(rest, ":"); idx >= 0 {
		start, end = rest[:idx], rest[idx+1:]
	}

	startCol, startRow, err := parseCell(start)
	if err != nil {
		return RangeRef{}, fmt.Errorf("invalid range %q: %w", a1, err)
	}
	endCol, endRow, err := parseCell(end)
	if err != nil {
		return RangeRef{}, fmt.Errorf("invalid range %q: %w", a1, err)
	}

	if endRow < startRow || endCol < startCol {
		return RangeRef{}, fmt.Errorf("inverted range %q", a1)
	}

	ref.StartRow = startRow
	ref.StartCol = startCol
	ref.EndRow = endRow + 1
	ref.EndCol = endCol + 1
	return ref, nil
}

// parseCell splits a cell reference like "B12" into zero-based column
// and row indices.
func parseCell(cell string) (col, row int64, err error) {
	i := 0
	for i < len(cell) && unicode.IsLetter(rune(cell[i])) {
		i++
	}
	if i == 0 || i == len(cell) {
		return 0, 0, fmt.Errorf("malformed cell %q", cell)
	}

	for _, c := range strings.ToUpper(cell[:i]) {
		if c < 'A' || c > 'Z' {
			return 0, 0, fmt.Errorf("malformed cell %q", cell)
		}
		col = col*26 + int64(c-'A'+1)
	}
	col--

	n, err := strconv.ParseInt(cell[i:], 10, 64)
	if err != nil || n < 1 {
		return 0, 0, fmt.Errorf("malformed cell %q", cell)
	}
	row = n - 1
	return col, row, nil
}

// columnName converts a zero-based column index to its letter name.
func columnName(col int64) string {
	name := ""
	for col >= 0 {
		name = string(rune('A'+col%26)) + name
		col = col/26 - 1
	}
	return name
}
