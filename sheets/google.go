// Google Sheets Client implementation using google.golang.org/api.
//
// Information Hiding:
// - Service construction and credential plumbing
// - Values API vs. batchUpdate API split
// - Chart request assembly from A1 ranges

package sheets

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"
)

// GoogleClient implements Client against the Google Sheets v4 API,
// bound to a single spreadsheet.
type GoogleClient struct {
	svc           *sheetsapi.Service
	spreadsheetID string
}

// NewGoogleClient creates a client for the given spreadsheet.
// Credentials come from the provided client options (API key, credentials
// file, or application default credentials when none are given).
func NewGoogleClient(ctx context.Context, spreadsheetID string, opts ...option.ClientOption) (*GoogleClient, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet ID is required")
	}

	svc, err := sheetsapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &GoogleClient{svc: svc, spreadsheetID: spreadsheetID}, nil
}

// ReadRange reads cell values from an A1 range.
func (c *GoogleClient) ReadRange(ctx context.Context, a1 string) (ValueGrid, error) {
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, a1).Context(ctx).Do()
	if err != nil {
		return ValueGrid{}, resourceErr("read_range", err)
	}
	return ValueGrid{Range: resp.Range, Values: resp.Values}, nil
}

// WriteRange writes values to an A1 range.
func (c *GoogleClient) WriteRange(ctx context.Context, a1 string, values [][]interface{}) (UpdateResult, error) {
	body := &sheetsapi.ValueRange{Values: values}
	resp, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, a1, body).
		ValueInputOption("USER_ENTERED").
		Context(ctx).Do()
	if err != nil {
		return UpdateResult{}, resourceErr("write_range", err)
	}
	return UpdateResult{
		Range:        resp.UpdatedRange,
		UpdatedCells: resp.UpdatedCells,
		UpdatedRows:  resp.UpdatedRows,
	}, nil
}

// AppendRow appends one row after the last row of the given table range.
func (c *GoogleClient) AppendRow(ctx context.Context, a1 string, values []interface{}) (UpdateResult, error) {
	body := &sheetsapi.ValueRange{Values: [][]interface{}{values}}
	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, a1, body).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return UpdateResult{}, resourceErr("append_row", err)
	}

	result := UpdateResult{}
	if resp.Updates != nil {
		result.Range = resp.Updates.UpdatedRange
		result.UpdatedCells = resp.Updates.UpdatedCells
		result.UpdatedRows = resp.Updates.UpdatedRows
	}
	return result, nil
}

// ClearRange clears cell values in an A1 range.
func (c *GoogleClient) ClearRange(ctx context.Context, a1 string) error {
	_, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, a1, &sheetsapi.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return resourceErr("clear_range", err)
	}
	return nil
}

// Metadata returns spreadsheet title and per-sheet dimensions.
func (c *GoogleClient) Metadata(ctx context.Context) (Metadata, error) {
	resp, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return Metadata{}, resourceErr("get_metadata", err)
	}

	meta := Metadata{}
	if resp.Properties != nil {
		meta.Title = resp.Properties.Title
	}
	for _, s := range resp.Sheets {
		if s.Properties == nil {
			continue
		}
		info := SheetInfo{ID: s.Properties.SheetId, Title: s.Properties.Title}
		if gp := s.Properties.GridProperties; gp != nil {
			info.Rows = gp.RowCount
			info.Columns = gp.ColumnCount
		}
		meta.Sheets = append(meta.Sheets, info)
	}
	return meta, nil
}

// CreateChart embeds a chart on a new sheet. The first column of the
// data range is the domain; remaining columns become series.
func (c *GoogleClient) CreateChart(ctx context.Context, spec ChartSpec) (int64, error) {
	ref, err := ParseRange(spec.DataRange)
	if err != nil {
		return 0, &ResourceError{Op: "create_chart", Message: err.Error(), Err: err}
	}

	sheetID, err := c.sheetIDByName(ctx, ref.Sheet)
	if err != nil {
		return 0, err
	}

	chartSpec := &sheetsapi.ChartSpec{Title: spec.Title}
	chartType := strings.ToUpper(spec.ChartType)
	if chartType == "PIE" {
		chartSpec.PieChart = buildPieChart(sheetID, ref)
	} else {
		chartSpec.BasicChart = buildBasicChart(chartType, sheetID, ref)
	}

	req := &sheetsapi.BatchUpdateSpreadsheetRequest{
		Requests: []*sheetsapi.Request{{
			AddChart: &sheetsapi.AddChartRequest{
				Chart: &sheetsapi.EmbeddedChart{
					Spec: chartSpec,
					Position: &sheetsapi.EmbeddedObjectPosition{
						NewSheet: true,
					},
				},
			},
		}},
	}

	resp, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do()
	if err != nil {
		return 0, resourceErr("create_chart", err)
	}
	if len(resp.Replies) == 0 || resp.Replies[0].AddChart == nil || resp.Replies[0].AddChart.Chart == nil {
		return 0, &ResourceError{Op: "create_chart", Message: "batchUpdate returned no chart"}
	}
	return resp.Replies[0].AddChart.Chart.ChartId, nil
}

// sheetIDByName resolves a sheet tab name to its numeric ID. An empty
// name resolves to the first sheet.
func (c *GoogleClient) sheetIDByName(ctx context.Context, name string) (int64, error) {
	meta, err := c.Metadata(ctx)
	if err != nil {
		return 0, err
	}
	if len(meta.Sheets) == 0 {
		return 0, &ResourceError{Op: "create_chart", Message: "spreadsheet has no sheets"}
	}
	if name == "" {
		return meta.Sheets[0].ID, nil
	}
	for _, s := range meta.Sheets {
		if s.Title == name {
			return s.ID, nil
		}
	}
	return 0, &ResourceError{Op: "create_chart", Message: fmt.Sprintf("sheet %q not found", name)}
}

func columnRange(sheetID int64, ref RangeRef, col int64) *sheetsapi.GridRange {
	return &sheetsapi.GridRange{
		SheetId:          sheetID,
		StartRowIndex:    ref.StartRow,
		EndRowIndex:      ref.EndRow,
		StartColumnIndex: col,
		EndColumnIndex:   col + 1,
	}
}

func chartData(gr *sheetsapi.GridRange) *sheetsapi.ChartData {
	return &sheetsapi.ChartData{
		SourceRange: &sheetsapi.ChartSourceRange{
			Sources: []*sheetsapi.GridRange{gr},
		},
	}
}

func buildBasicChart(chartType string, sheetID int64, ref RangeRef) *sheetsapi.BasicChartSpec {
	basic := &sheetsapi.BasicChartSpec{
		ChartType:      chartType,
		LegendPosition: "BOTTOM_LEGEND",
		HeaderCount:    1,
		Domains: []*sheetsapi.BasicChartDomain{{
			Domain: chartData(columnRange(sheetID, ref, ref.StartCol)),
		}},
	}
	for col := ref.StartCol + 1; col < ref.EndCol; col++ {
		basic.Series = append(basic.Series, &sheetsapi.BasicChartSeries{
			Series:     chartData(columnRange(sheetID, ref, col)),
			TargetAxis: "LEFT_AXIS",
		})
	}
	return basic
}

func buildPieChart(sheetID int64, ref RangeRef) *sheetsapi.PieChartSpec {
	pie := &sheetsapi.PieChartSpec{
		Domain:         chartData(columnRange(sheetID, ref, ref.StartCol)),
		LegendPosition: "BOTTOM_LEGEND",
	}
	if ref.EndCol > ref.StartCol+1 {
		pie.Series = chartData(columnRange(sheetID, ref, ref.StartCol+1))
	}
	return pie
}

// Verify GoogleClient implements Client
var _ Client = (*GoogleClient)(nil)
