// Package sheets provides the spreadsheet resource client.
//
// Information Hiding:
// - Google Sheets API wiring hidden behind the Client interface
// - A1-notation parsing and grid rendering internalized
// - Remote failures surfaced uniformly as ResourceError
package sheets

import (
	"context"
	"fmt"
)

// ValueGrid holds the values read from a range.
type ValueGrid struct {
	Range  string
	Values [][]interface{}
}

// UpdateResult reports what a mutation touched.
type UpdateResult struct {
	Range        string
	UpdatedCells int64
	UpdatedRows  int64
}

// ChartSpec describes a chart to embed in the spreadsheet.
type ChartSpec struct {
	Title     string
	ChartType string // LINE, BAR, COLUMN, PIE, SCATTER
	DataRange string // A1 notation; first column is the domain
}

// SheetInfo describes one sheet tab.
type SheetInfo struct {
	ID      int64
	Title   string
	Rows    int64
	Columns int64
}

// Metadata describes the spreadsheet.
type Metadata struct {
	Title  string
	Sheets []SheetInfo
}

// Client is the interface to one spreadsheet. Implementations are bound
// to a single spreadsheet at construction time so the handle can be
// threaded through the orchestrator as an explicit dependency.
type Client interface {
	// ReadRange reads cell values from an A1 range.
	ReadRange(ctx context.Context, a1 string) (ValueGrid, error)

	// WriteRange writes values to an A1 range.
	WriteRange(ctx context.Context, a1 string, values [][]interface{}) (UpdateResult, error)

	// AppendRow appends one row after the last row of the given table range.
	AppendRow(ctx context.Context, a1 string, values []interface{}) (UpdateResult, error)

	// ClearRange clears cell values in an A1 range.
	ClearRange(ctx context.Context, a1 string) error

	// CreateChart embeds a chart on a new sheet and returns its chart ID.
	CreateChart(ctx context.Context, spec ChartSpec) (int64, error)

	// Metadata returns spreadsheet title and per-sheet dimensions.
	Metadata(ctx context.Context) (Metadata, error)
}

// ResourceError indicates a spreadsheet operation failed remotely (bad
// range syntax, auth, not-found). It is always recoverable at the tool
// boundary: the dispatcher converts it into an error outcome.
type ResourceError struct {
	Op      string
	Message string
	Err     error
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("sheets %s: %s", e.Op, e.Message)
}

func (e *ResourceError) Unwrap() error {
	return e.Err
}

// resourceErr wraps a remote failure.
func resourceErr(op string, err error) *ResourceError {
	return &ResourceError{Op: op, Message: err.Error(), Err: err}
}
