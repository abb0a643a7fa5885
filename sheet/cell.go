package sheet

import (
	"strconv"
	"strings"
)

// Kind is the value type of a cell.
type Kind int

const (
	Empty Kind = iota
	String
	Number
	Bool
)

// Cell is a typed cell value. Text holds the raw value: numbers are in
// canonical decimal form and booleans are "TRUE" or "FALSE".
type Cell struct {
	Kind Kind
	Text string
}

// Str builds a string cell; an empty string yields an empty cell.
func Str(s string) Cell {
	if s == "" {
		return Cell{}
	}
	return Cell{Kind: String, Text: s}
}

// Num builds a number cell.
func Num(v float64) Cell {
	return Cell{Kind: Number, Text: strconv.FormatFloat(v, 'f', -1, 64)}
}

// Boolean builds a boolean cell.
func Boolean(v bool) Cell {
	if v {
		return Cell{Kind: Bool, Text: "TRUE"}
	}
	return Cell{Kind: Bool, Text: "FALSE"}
}

// IsTrue reports whether the cell holds boolean true. The string "TRUE" also
// counts, since checkbox edits arrive as text.
func (c Cell) IsTrue() bool {
	return (c.Kind == Bool || c.Kind == String) && strings.EqualFold(c.Text, "TRUE")
}

// Float returns the numeric value and whether the cell is numeric.
func (c Cell) Float() (float64, bool) {
	if c.Kind != Number {
		return 0, false
	}
	v, err := strconv.ParseFloat(c.Text, 64)
	return v, err == nil
}

// String implements fmt.Stringer.
func (c Cell) String() string { return c.Text }

// Texts flattens a row of cells into their raw text.
func Texts(row []Cell) []string {
	out := make([]string, len(row))
	for i, c := range row {
		out[i] = c.Text
	}
	return out
}

// Strs builds a row of string cells.
func Strs(values ...string) []Cell {
	row := make([]Cell, len(values))
	for i, v := range values {
		row[i] = Str(v)
	}
	return row
}

// IndexOf returns the 0-based position of the first cell whose text equals
// name, or -1.
func IndexOf(row []Cell, name string) int {
	for i, c := range row {
		if c.Text == name {
			return i
		}
	}
	return -1
}
