// Package tools provides the spreadsheet tool catalog and dispatcher.
//
// Information Hiding:
// - Tool schemas and argument decoding hidden from the orchestrator
// - Read/write classification centralized in one membership set
package tools

import "github.com/richinex/gridagent/llm"

// Class partitions tools into auto-executing reads and
// confirmation-gated writes.
type Class int

const (
	// ClassRead tools execute immediately against the resource.
	ClassRead Class = iota
	// ClassWrite tools mutate the spreadsheet and require explicit
	// user confirmation before execution.
	ClassWrite
)

// writeSet is the fixed membership set of write-class tool names.
// Adding a new mutating tool requires adding its name here; treat this
// as configuration, not data.
var writeSet = map[string]bool{
	"write_range":  true,
	"append_row":   true,
	"clear_range":  true,
	"create_chart": true,
}

// Classify returns the class for a tool name. Unknown names classify as
// read; they fail at execution with a tool-not-found outcome rather
// than blocking on a confirmation that can never be meaningful.
func Classify(name string) Class {
	if writeSet[name] {
		return ClassWrite
	}
	return ClassRead
}

func schema(props map[string]interface{}, required []string) map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": props,
		"required":   required,
	}
}

func prop(typ, desc string) map[string]interface{} {
	return map[string]interface{}{"type": typ, "description": desc}
}

// Catalog returns the static tool definitions advertised to the engine.
func Catalog() []llm.ToolDefinition {
	return []llm.ToolDefinition{
		{
			Name:        "read_range",
			Description: "Read cell values from a range in A1 notation, e.g. Sheet1!A1:C10.",
			InputSchema: schema(map[string]interface{}{
				"range": prop("string", "The A1 range to read."),
			}, []string{"range"}),
		},
		{
			Name:        "get_metadata",
			Description: "Get the spreadsheet title and the name and dimensions of each sheet.",
			InputSchema: schema(map[string]interface{}{}, nil),
		},
		{
			Name:        "write_range",
			Description: "Write a 2D array of values to a range in A1 notation. Requires user confirmation.",
			InputSchema: schema(map[string]interface{}{
				"range": prop("string", "The A1 range to write."),
				"values": map[string]interface{}{
					"type":        "array",
					"description": "Rows of cell values.",
					"items": map[string]interface{}{
						"type":  "array",
						"items": map[string]interface{}{},
					},
				},
			}, []string{"range", "values"}),
		},
		{
			Name:        "append_row",
			Description: "Append one row after the last row of a table range. Requires user confirmation.",
			InputSchema: schema(map[string]interface{}{
				"range": prop("string", "The A1 range of the table to append to."),
				"values": map[string]interface{}{
					"type":        "array",
					"description": "Cell values for the new row.",
					"items":       map[string]interface{}{},
				},
			}, []string{"range", "values"}),
		},
		{
			Name:        "clear_range",
			Description: "Clear all cell values in a range in A1 notation. Requires user confirmation.",
			InputSchema: schema(map[string]interface{}{
				"range": prop("string", "The A1 range to clear."),
			}, []string{"range"}),
		},
		{
			Name:        "create_chart",
			Description: "Create a chart from a data range. The first column of the range is the domain. Requires user confirmation.",
			InputSchema: schema(map[string]interface{}{
				"chart_type": prop("string", "One of LINE, BAR, COLUMN, PIE, SCATTER."),
				"title":      prop("string", "Chart title."),
				"data_range": prop("string", "The A1 range containing the chart data."),
			}, []string{"chart_type", "title", "data_range"}),
		},
	}
}
