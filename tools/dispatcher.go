// Tool Dispatcher - converts engine tool invocations into resource calls
// or pending-confirmation records.
//
// Failure semantics: anything the resource client raises is converted to
// an error outcome at this boundary. The orchestrator and the engine
// always receive a well-formed outcome to continue the loop.

package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/richinex/gridagent/llm"
	"github.com/richinex/gridagent/sheets"
)

// Outcome is the result of dispatching one tool invocation.
type Outcome struct {
	// Content is the textual result rendered for model consumption.
	Content string
	// IsError marks a resource-level failure the engine can react to.
	IsError bool
	// Pending means the invocation is a write awaiting confirmation;
	// the resource was not called.
	Pending bool
	// Params echoes the raw invocation input when Pending, so the
	// confirmation UI can render what will be executed.
	Params json.RawMessage
}

// PendingRecorder records a write-class invocation awaiting confirmation.
// Implemented by conversation.State.
type PendingRecorder interface {
	AddPending(inv llm.ToolUseBlock)
}

// Dispatcher routes tool invocations to the spreadsheet client.
type Dispatcher struct {
	logger *slog.Logger
}

// NewDispatcher creates a dispatcher.
func NewDispatcher(logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{logger: logger}
}

// Dispatch handles one invocation from an engine response. Reads execute
// immediately; writes are recorded as pending and the resource is not
// called.
func (d *Dispatcher) Dispatch(ctx context.Context, inv llm.ToolUseBlock, sheet sheets.Client, rec PendingRecorder) Outcome {
	if Classify(inv.Name) == ClassWrite {
		rec.AddPending(inv)
		d.logger.Info("tool invocation pending confirmation",
			"tool", inv.Name, "invocation_id", inv.ID)
		return Outcome{Pending: true, Params: inv.Input}
	}
	return d.Execute(ctx, inv, sheet)
}

// Execute runs an invocation against the resource. It is the
// confirmed-write path and the read path: the call is issued exactly
// once, and any resource failure comes back as an error outcome.
func (d *Dispatcher) Execute(ctx context.Context, inv llm.ToolUseBlock, sheet sheets.Client) Outcome {
	out, err := d.run(ctx, inv, sheet)
	if err != nil {
		d.logger.Warn("tool execution failed",
			"tool", inv.Name, "invocation_id", inv.ID, "error", err)
		return Outcome{Content: err.Error(), IsError: true}
	}
	return Outcome{Content: out}
}

func (d *Dispatcher) run(ctx context.Context, inv llm.ToolUseBlock, sheet sheets.Client) (string, error) {
	switch inv.Name {
	case "read_range":
		var args struct {
			Range string `json:"range"`
		}
		if err := decodeArgs(inv, &args); err != nil {
			return "", err
		}
		grid, err := sheet.ReadRange(ctx, args.Range)
		if err != nil {
			return "", err
		}
		return sheets.FormatGrid(grid), nil

	case "get_metadata":
		meta, err := sheet.Metadata(ctx)
		if err != nil {
			return "", err
		}
		return sheets.FormatMetadata(meta), nil

	case "write_range":
		var args struct {
			Range  string          `json:"range"`
			Values [][]interface{} `json:"values"`
		}
		if err := decodeArgs(inv, &args); err != nil {
			return "", err
		}
		result, err := sheet.WriteRange(ctx, args.Range, args.Values)
		if err != nil {
			return "", err
		}
		return sheets.FormatUpdate(result), nil

	case "append_row":
		var args struct {
			Range  string        `json:"range"`
			Values []interface{} `json:"values"`
		}
		if err := decodeArgs(inv, &args); err != nil {
			return "", err
		}
		result, err := sheet.AppendRow(ctx, args.Range, args.Values)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Appended 1 row (%d cells) at %s.", result.UpdatedCells, result.Range), nil

	case "clear_range":
		var args struct {
			Range string `json:"range"`
		}
		if err := decodeArgs(inv, &args); err != nil {
			return "", err
		}
		if err := sheet.ClearRange(ctx, args.Range); err != nil {
			return "", err
		}
		return fmt.Sprintf("Cleared %s.", args.Range), nil

	case "create_chart":
		var args struct {
			ChartType string `json:"chart_type"`
			Title     string `json:"title"`
			DataRange string `json:"data_range"`
		}
		if err := decodeArgs(inv, &args); err != nil {
			return "", err
		}
		chartID, err := sheet.CreateChart(ctx, sheets.ChartSpec{
			Title:     args.Title,
			ChartType: args.ChartType,
			DataRange: args.DataRange,
		})
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Created chart %q (id %d) from %s.", args.Title, chartID, args.DataRange), nil

	default:
		return "", fmt.Errorf("unknown tool %q", inv.Name)
	}
}

func decodeArgs(inv llm.ToolUseBlock, dst interface{}) error {
	if len(inv.Input) == 0 {
		return nil
	}
	if err := json.Unmarshal(inv.Input, dst); err != nil {
		return fmt.Errorf("invalid arguments for %s: %w", inv.Name, err)
	}
	return nil
}
