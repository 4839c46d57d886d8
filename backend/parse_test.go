package backend

import (
	"errors"
	"image/color"
	"strings"
	"testing"
)

const validBlock = `{
	"columns": [
		["x", 1457136000000, 1457222400000, 1457308800000],
		["y0", 37, 20, 32],
		["y1", 22, 12, 30]
	],
	"types": {"y0": "line", "y1": "line", "x": "x"},
	"names": {"y0": "Joined"},
	"colors": {"y0": "#3DC23F", "y1": "#zzz"}
}`

func TestParse(t *testing.T) {
	blocks, err := Parse(strings.NewReader("["+validBlock+","+validBlock+"]"), nil)
	if err != nil {
		t.Fatalf("expected valid input to parse, got: %v", err)
	}
	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(blocks))
	}
	b := blocks[0]
	if b.Len() != 3 {
		t.Errorf("expected 3 indices, got %d", b.Len())
	}
	if len(b.Series) != 2 {
		t.Fatalf("expected 2 series, got %d", len(b.Series))
	}
	y0, y1 := b.Series[0], b.Series[1]
	if y0.Label != "Joined" {
		t.Errorf("expected named label, got %q", y0.Label)
	}
	if y1.Label != "y1" {
		t.Errorf("expected identifier as fallback label, got %q", y1.Label)
	}
	if expected := (color.NRGBA{R: 0x3d, G: 0xc2, B: 0x3f, A: 0xff}); y0.Color != expected {
		t.Errorf("expected color %v, got %v", expected, y0.Color)
	}
	if expected := PaletteColor(1); y1.Color != expected {
		t.Errorf("expected palette fallback %v, got %v", expected, y1.Color)
	}
	if y0.At(2) != 32 || y1.Max() != 30 {
		t.Errorf("unexpected samples %v %v", y0.Samples(), y1.Samples())
	}
	if b.Axis.Label(0) != "Mar 5" {
		t.Errorf("expected label %q, got %q", "Mar 5", b.Axis.Label(0))
	}
}

func TestParseErrors(t *testing.T) {
	type testcase struct {
		name     string
		input    string
		expected error
		column   string
	}
	for _, tc := range []testcase{
		{
			name:     "unknown type",
			input:    `{"columns":[["x",1],["y0",1]],"types":{"x":"x","y0":"bar"}}`,
			expected: ErrUnrecognizedColumnType,
			column:   "y0",
		},
		{
			name:     "absent type",
			input:    `{"columns":[["x",1],["y0",1]],"types":{"x":"x"}}`,
			expected: ErrUnrecognizedColumnType,
			column:   "y0",
		},
		{
			name:     "missing axis",
			input:    `{"columns":[["y0",1]],"types":{"y0":"line"}}`,
			expected: ErrMissingTimeAxis,
		},
		{
			name:     "duplicate axis",
			input:    `{"columns":[["x",1],["t",1],["y0",1]],"types":{"x":"x","t":"x","y0":"line"}}`,
			expected: ErrDuplicateTimeAxis,
			column:   "t",
		},
		{
			name:     "length mismatch",
			input:    `{"columns":[["x",1,2],["y0",1]],"types":{"x":"x","y0":"line"}}`,
			expected: ErrLengthMismatch,
			column:   "y0",
		},
		{
			name:     "non-numeric sample",
			input:    `{"columns":[["x",1],["y0","a"]],"types":{"x":"x","y0":"line"}}`,
			expected: ErrMalformedColumn,
			column:   "y0",
		},
		{
			name:     "empty column",
			input:    `{"columns":[[]],"types":{}}`,
			expected: ErrMalformedColumn,
		},
		{
			name:     "no series",
			input:    `{"columns":[["x",1]],"types":{"x":"x"}}`,
			expected: ErrNoSeries,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			b, err := ParseBlock([]byte(tc.input), nil)
			if b != nil {
				t.Errorf("expected no block from malformed input, got %v", b)
			}
			if !errors.Is(err, tc.expected) {
				t.Fatalf("expected %v, got %v", tc.expected, err)
			}
			if tc.column == "" {
				return
			}
			var colErr *ColumnError
			if !errors.As(err, &colErr) {
				t.Fatalf("expected a column error, got %T", err)
			}
			if colErr.Column != tc.column {
				t.Errorf("expected column %q, got %q", tc.column, colErr.Column)
			}
		})
	}
}

func TestParseFailsWholeInput(t *testing.T) {
	bad := `{"columns":[["x",1],["y0",1]],"types":{"x":"x","y0":"area"}}`
	blocks, err := Parse(strings.NewReader("["+validBlock+","+bad+"]"), nil)
	if blocks != nil {
		t.Errorf("expected no blocks, got %d", len(blocks))
	}
	var colErr *ColumnError
	if !errors.As(err, &colErr) || colErr.Block != 1 {
		t.Errorf("expected error on block 1, got %v", err)
	}
}

func TestParseLine(t *testing.T) {
	compact := strings.Join(strings.Fields(validBlock), "")
	blocks, err := parseLine(4, []byte(compact+"\n"), nil)
	if err != nil || len(blocks) != 1 {
		t.Fatalf("expected one block, got %d (%v)", len(blocks), err)
	}
	blocks, err = parseLine(0, []byte("["+compact+","+compact+"]\n"), nil)
	if err != nil || len(blocks) != 2 {
		t.Fatalf("expected two blocks, got %d (%v)", len(blocks), err)
	}
}

func TestParseColor(t *testing.T) {
	type testcase struct {
		input    string
		expected color.NRGBA
		ok       bool
	}
	for _, tc := range []testcase{
		{input: "#ff0080", expected: color.NRGBA{R: 0xff, B: 0x80, A: 0xff}, ok: true},
		{input: "#f08", expected: color.NRGBA{R: 0xff, B: 0x88, A: 0xff}, ok: true},
		{input: "red"},
		{input: ""},
		{input: "#12345g"},
	} {
		got, ok := ParseColor(tc.input)
		if ok != tc.ok || got != tc.expected {
			t.Errorf("ParseColor(%q): expected %v %v, got %v %v", tc.input, tc.expected, tc.ok, got, ok)
		}
	}
}
