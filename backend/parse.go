package backend

import (
	"encoding/json"
	"fmt"
	"image/color"
	"io"
	"strconv"
	"strings"
	"time"
)

const (
	columnTypeLine = "line"
	columnTypeX    = "x"
)

// rawBlock is the wire representation of a chart block.
type rawBlock struct {
	Columns [][]json.RawMessage `json:"columns"`
	Types   map[string]string   `json:"types"`
	Colors  map[string]string   `json:"colors"`
	Names   map[string]string   `json:"names"`
}

// Parse reads a JSON array of chart blocks. Labels are computed in loc (nil
// means UTC). The first malformed block fails the whole input.
func Parse(r io.Reader, loc *time.Location) ([]*Block, error) {
	var raws []json.RawMessage
	if err := json.NewDecoder(r).Decode(&raws); err != nil {
		return nil, fmt.Errorf("failed decoding chart data: %w", err)
	}
	blocks := make([]*Block, 0, len(raws))
	for i, raw := range raws {
		b, err := parseBlock(i, raw, loc)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}
	return blocks, nil
}

// ParseBlock parses a single chart block object.
func ParseBlock(data []byte, loc *time.Location) (*Block, error) {
	return parseBlock(0, data, loc)
}

// parseLine decodes one line of newline-delimited input, which may hold a
// single block object or an array of them.
func parseLine(index int, line []byte, loc *time.Location) ([]*Block, error) {
	trimmed := strings.TrimSpace(string(line))
	if strings.HasPrefix(trimmed, "[") {
		return Parse(strings.NewReader(trimmed), loc)
	}
	b, err := parseBlock(index, []byte(trimmed), loc)
	if err != nil {
		return nil, err
	}
	return []*Block{b}, nil
}

func parseBlock(index int, data []byte, loc *time.Location) (*Block, error) {
	var raw rawBlock
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed decoding block %d: %w", index, err)
	}
	var (
		axis  *TimeAxis
		lines []*Series
	)
	for _, col := range raw.Columns {
		id, err := columnID(col)
		if err != nil {
			return nil, &ColumnError{Block: index, Err: err}
		}
		switch raw.Types[id] {
		case columnTypeX:
			if axis != nil {
				return nil, &ColumnError{Block: index, Column: id, Err: ErrDuplicateTimeAxis}
			}
			timestamps, err := parseTimestamps(col[1:])
			if err != nil {
				return nil, &ColumnError{Block: index, Column: id, Err: err}
			}
			axis = NewTimeAxis(timestamps, loc)
		case columnTypeLine:
			samples, err := parseSamples(col[1:])
			if err != nil {
				return nil, &ColumnError{Block: index, Column: id, Err: err}
			}
			label, ok := raw.Names[id]
			if !ok {
				label = id
			}
			lineColor, ok := ParseColor(raw.Colors[id])
			if !ok {
				lineColor = PaletteColor(len(lines))
			}
			lines = append(lines, NewSeries(id, samples, lineColor, label))
		default:
			return nil, &ColumnError{
				Block:  index,
				Column: id,
				Err:    fmt.Errorf("%w %q", ErrUnrecognizedColumnType, raw.Types[id]),
			}
		}
	}
	if axis == nil {
		return nil, fmt.Errorf("block %d: %w", index, ErrMissingTimeAxis)
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("block %d: %w", index, ErrNoSeries)
	}
	for _, s := range lines {
		if s.Len() != axis.Len() {
			return nil, &ColumnError{
				Block:  index,
				Column: s.ID(),
				Err:    fmt.Errorf("%w: %d samples, %d timestamps", ErrLengthMismatch, s.Len(), axis.Len()),
			}
		}
	}
	return &Block{Series: lines, Axis: axis}, nil
}

func columnID(col []json.RawMessage) (string, error) {
	if len(col) == 0 {
		return "", fmt.Errorf("%w: empty column", ErrMalformedColumn)
	}
	var id string
	if err := json.Unmarshal(col[0], &id); err != nil {
		return "", fmt.Errorf("%w: identifier is not a string", ErrMalformedColumn)
	}
	return id, nil
}

func parseSamples(raw []json.RawMessage) ([]float64, error) {
	out := make([]float64, len(raw))
	for i, r := range raw {
		v, err := strconv.ParseFloat(string(r), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: sample %d is %s", ErrMalformedColumn, i, r)
		}
		out[i] = v
	}
	return out, nil
}

func parseTimestamps(raw []json.RawMessage) ([]int64, error) {
	out := make([]int64, len(raw))
	for i, r := range raw {
		ms, err := strconv.ParseInt(string(r), 10, 64)
		if err != nil {
			// Tolerate timestamps written in exponent form.
			f, ferr := strconv.ParseFloat(string(r), 64)
			if ferr != nil {
				return nil, fmt.Errorf("%w: timestamp %d is %s", ErrMalformedColumn, i, r)
			}
			ms = int64(f)
		}
		out[i] = ms
	}
	return out, nil
}

// ParseColor parses "#rrggbb" and "#rgb" color strings.
func ParseColor(s string) (color.NRGBA, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	switch len(s) {
	case 3:
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	case 6:
	default:
		return color.NRGBA{}, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.NRGBA{}, false
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, true
}
