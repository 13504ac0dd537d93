package tools

import (
	"context"
	"strings"
	"testing"

	"github.com/richinex/gridagent/llm"
	"github.com/richinex/gridagent/sheets"
)

// fakeSheet records calls and returns canned results.
type fakeSheet struct {
	calls     []string
	readGrid  sheets.ValueGrid
	readErr   error
	writeErr  error
	clearErr  error
	chartErr  error
	metaErr   error
	appendErr error
}

func (f *fakeSheet) ReadRange(ctx context.Context, a1 string) (sheets.ValueGrid, error) {
	f.calls = append(f.calls, "read:"+a1)
	return f.readGrid, f.readErr
}

func (f *fakeSheet) WriteRange(ctx context.Context, a1 string, values [][]interface{}) (sheets.UpdateResult, error) {
	f.calls = append(f.calls, "write:"+a1)
	return sheets.UpdateResult{Range: a1, UpdatedCells: int64(len(values))}, f.writeErr
}

func (f *fakeSheet) AppendRow(ctx context.Context, a1 string, values []interface{}) (sheets.UpdateResult, error) {
	f.calls = append(f.calls, "append:"+a1)
	return sheets.UpdateResult{Range: a1, UpdatedCells: int64(len(values))}, f.appendErr
}

func (f *fakeSheet) ClearRange(ctx context.Context, a1 string) error {
	f.calls = append(f.calls, "clear:"+a1)
	return f.clearErr
}

func (f *fakeSheet) CreateChart(ctx context.Context, spec sheets.ChartSpec) (int64, error) {
	f.calls = append(f.calls, "chart:"+spec.DataRange)
	return 42, f.chartErr
}

func (f *fakeSheet) Metadata(ctx context.Context) (sheets.Metadata, error) {
	f.calls = append(f.calls, "metadata")
	return sheets.Metadata{Title: "Budget", Sheets: []sheets.SheetInfo{{ID: 0, Title: "Sheet1", Rows: 100, Columns: 26}}}, f.metaErr
}

// fakeRecorder collects pending registrations.
type fakeRecorder struct {
	pending []llm.ToolUseBlock
}

func (f *fakeRecorder) AddPending(inv llm.ToolUseBlock) {
	f.pending = append(f.pending, inv)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		want Class
	}{
		{"read_range", ClassRead},
		{"get_metadata", ClassRead},
		{"write_range", ClassWrite},
		{"append_row", ClassWrite},
		{"clear_range", ClassWrite},
		{"create_chart", ClassWrite},
		{"something_else", ClassRead},
	}

	for _, tt := range tests {
		if got := Classify(tt.name); got != tt.want {
			t.Errorf("Classify(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestCatalogClassificationAgreement(t *testing.T) {
	// Every write-class tool in the catalog says so in its description.
	for _, def := range Catalog() {
		if Classify(def.Name) == ClassWrite && !strings.Contains(def.Description, "confirmation") {
			t.Errorf("write tool %s should mention confirmation in its description", def.Name)
		}
	}
}

func TestDispatchWriteNeverCallsResource(t *testing.T) {
	d := NewDispatcher(nil)
	sheet := &fakeSheet{}
	rec := &fakeRecorder{}

	for _, name := range []string{"write_range", "append_row", "clear_range", "create_chart"} {
		inv := llm.ToolUseBlock{ID: "id-" + name, Name: name, Input: []byte(`{"range":"A1:B2"}`)}
		out := d.Dispatch(context.Background(), inv, sheet, rec)

		if !out.Pending {
			t.Errorf("%s: expected pending outcome", name)
		}
		if string(out.Params) != `{"range":"A1:B2"}` {
			t.Errorf("%s: pending outcome should echo params, got %s", name, out.Params)
		}
	}

	if len(sheet.calls) != 0 {
		t.Errorf("resource client must not be called for writes, got calls %v", sheet.calls)
	}
	if len(rec.pending) != 4 {
		t.Errorf("expected 4 pending registrations, got %d", len(rec.pending))
	}
}

func TestDispatchReadExecutesImmediately(t *testing.T) {
	d := NewDispatcher(nil)
	sheet := &fakeSheet{readGrid: sheets.ValueGrid{
		Range:  "Sheet1!A1:B2",
		Values: [][]interface{}{{1, 2}, {3, 4}},
	}}
	rec := &fakeRecorder{}

	inv := llm.ToolUseBlock{ID: "r1", Name: "read_range", Input: []byte(`{"range":"A1:B2"}`)}
	out := d.Dispatch(context.Background(), inv, sheet, rec)

	if out.Pending || out.IsError {
		t.Fatalf("expected successful read outcome, got %+v", out)
	}
	if !strings.Contains(out.Content, "1 | 2") {
		t.Errorf("expected rendered grid, got %q", out.Content)
	}
	if len(sheet.calls) != 1 || sheet.calls[0] != "read:A1:B2" {
		t.Errorf("expected one read call, got %v", sheet.calls)
	}
	if len(rec.pending) != 0 {
		t.Error("reads must not register pending invocations")
	}
}

func TestDispatchResourceErrorBecomesErrorOutcome(t *testing.T) {
	d := NewDispatcher(nil)
	sheet := &fakeSheet{readErr: &sheets.ResourceError{Op: "read_range", Message: "Unable to parse range: bogus"}}

	inv := llm.ToolUseBlock{ID: "r1", Name: "read_range", Input: []byte(`{"range":"bogus"}`)}
	out := d.Dispatch(context.Background(), inv, sheet, &fakeRecorder{})

	if !out.IsError {
		t.Fatal("resource failure must surface as an error outcome")
	}
	if !strings.Contains(out.Content, "Unable to parse range") {
		t.Errorf("error outcome should carry the message, got %q", out.Content)
	}
}

func TestExecuteConfirmedWrite(t *testing.T) {
	d := NewDispatcher(nil)
	sheet := &fakeSheet{}

	inv := llm.ToolUseBlock{
		ID:    "w1",
		Name:  "write_range",
		Input: []byte(`{"range":"A1:B1","values":[["x","y"]]}`),
	}
	out := d.Execute(context.Background(), inv, sheet)

	if out.IsError {
		t.Fatalf("unexpected error outcome: %q", out.Content)
	}
	if len(sheet.calls) != 1 || sheet.calls[0] != "write:A1:B1" {
		t.Errorf("expected exactly one write call, got %v", sheet.calls)
	}
	if !strings.Contains(out.Content, "A1:B1") {
		t.Errorf("outcome should name the range, got %q", out.Content)
	}
}

func TestExecuteChart(t *testing.T) {
	d := NewDispatcher(nil)
	sheet := &fakeSheet{}

	inv := llm.ToolUseBlock{
		ID:    "c1",
		Name:  "create_chart",
		Input: []byte(`{"chart_type":"LINE","title":"Revenue","data_range":"Sheet1!A1:B10"}`),
	}
	out := d.Execute(context.Background(), inv, sheet)

	if out.IsError {
		t.Fatalf("unexpected error outcome: %q", out.Content)
	}
	if !strings.Contains(out.Content, "Revenue") || !strings.Contains(out.Content, "42") {
		t.Errorf("outcome should name chart and id, got %q", out.Content)
	}
}

func TestExecuteMetadata(t *testing.T) {
	d := NewDispatcher(nil)
	sheet := &fakeSheet{}

	out := d.Execute(context.Background(), llm.ToolUseBlock{ID: "m1", Name: "get_metadata"}, sheet)
	if out.IsError {
		t.Fatalf("unexpected error outcome: %q", out.Content)
	}
	if !strings.Contains(out.Content, "Budget") || !strings.Contains(out.Content, "Sheet1") {
		t.Errorf("metadata rendering missing fields: %q", out.Content)
	}
}

func TestExecuteUnknownTool(t *testing.T) {
	d := NewDispatcher(nil)
	out := d.Execute(context.Background(), llm.ToolUseBlock{ID: "x", Name: "mystery"}, &fakeSheet{})
	if !out.IsError {
		t.Error("unknown tool must yield an error outcome, not a panic or nil")
	}
}

func TestExecuteMalformedArguments(t *testing.T) {
	d := NewDispatcher(nil)
	sheet := &fakeSheet{}

	inv := llm.ToolUseBlock{ID: "w1", Name: "write_range", Input: []byte(`{"range":42}`)}
	out := d.Execute(context.Background(), inv, sheet)

	if !out.IsError {
		t.Error("malformed arguments must yield an error outcome")
	}
	if len(sheet.calls) != 0 {
		t.Error("resource must not be called with malformed arguments")
	}
}
