package sheets

import "testing"

func TestParseRange(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  RangeRef
	}{
		{
			name:  "plain range",
			input: "A1:B10",
			want:  RangeRef{StartRow: 0, StartCol: 0, EndRow: 10, EndCol: 2},
		},
		{
			name:  "sheet qualified",
			input: "Sheet1!C2:D5",
			want:  RangeRef{Sheet: "Sheet1", StartRow: 1, StartCol: 2, EndRow: 5, EndCol: 4},
		},
		{
			name:  "quoted sheet name",
			input: "'Q3 Sales'!A1:A3",
			want:  RangeRef{Sheet: "Q3 Sales", StartRow: 0, StartCol: 0, EndRow: 3, EndCol: 1},
		},
		{
			name:  "single cell",
			input: "B2",
			want:  RangeRef{StartRow: 1, StartCol: 1, EndRow: 2, EndCol: 2},
		},
		{
			name:  "multi-letter column",
			input: "AA1:AB2",
			want:  RangeRef{StartRow: 0, StartCol: 26, EndRow: 2, EndCol: 28},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRange(tt.input)
			if err != nil {
				t.Fatalf("ParseRange(%q) error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseRange(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseRangeErrors(t *testing.T) {
	for _, input := range []string{
		"",
		"Sheet1!",
		"123",
		"A",
		"A0",
		"B2:A1",
	} {
		if _, err := ParseRange(input); err == nil {
			t.Errorf("ParseRange(%q) expected error", input)
		}
	}
}

func TestColumnName(t *testing.T) {
	tests := []struct {
		col  int64
		want string
	}{
		{0, "A"},
		{1, "B"},
		{25, "Z"},
		{26, "AA"},
		{27, "AB"},
		{51, "AZ"},
		{52, "BA"},
		{701, "ZZ"},
		{702, "AAA"},
	}
	for _, tt := range tests {
		if got := columnName(tt.col); got != tt.want {
			t.Errorf("columnName(%d) = %q, want %q", tt.col, got, tt.want)
		}
	}
}

func TestColumnNameRoundTrip(t *testing.T) {
	for col := int64(0); col < 800; col++ {
		cell := columnName(col) + "1"
		parsed, _, err := parseCell(cell)
		if err != nil {
			t.Fatalf("parseCell(%q) error: %v", cell, err)
		}
		if parsed != col {
			t.Fatalf("round trip failed for column %d: got %d", col, parsed)
		}
	}
}
