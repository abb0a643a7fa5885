package excel

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Positions in this package are 1-based, the way a spreadsheet UI shows them.

// CellName converts a 1-based row and column to an A1 reference (e.g. 1,1 → "A1").
func CellName(row, col int) string {
	return fmt.Sprintf("%s%d", ColumnName(col), row)
}

// ColumnName converts a 1-based column number to letters (1→A, 26→Z, 27→AA).
func ColumnName(n int) string {
	result := ""
	for n > 0 {
		n--
		result = string(rune('A'+(n%26))) + result
		n /= 26
	}
	return result
}

// ColumnNumber converts column letters to a 1-based number (A→1, AA→27).
// It returns 0 for anything that is not purely ASCII letters.
func ColumnNumber(name string) int {
	n := 0
	for _, r := range strings.ToUpper(name) {
		if r < 'A' || r > 'Z' {
			return 0
		}
		n = n*26 + int(r-'A'+1)
	}
	return n
}

// Range is a rectangular block of cells, inclusive on both ends.
type Range struct {
	Row, Col   int
	Rows, Cols int
}

// NewRange returns the block that starts at (row, col) and spans rows×cols.
func NewRange(row, col, rows, cols int) Range {
	return Range{Row: row, Col: col, Rows: rows, Cols: cols}
}

// Empty reports whether the range covers no cells.
func (r Range) Empty() bool {
	return r.Rows <= 0 || r.Cols <= 0
}

// LastRow is the 1-based index of the bottom row.
func (r Range) LastRow() int { return r.Row + r.Rows - 1 }

// LastCol is the 1-based index of the right-most column.
func (r Range) LastCol() int { return r.Col + r.Cols - 1 }

// TopLeft is the A1 reference of the first cell.
func (r Range) TopLeft() string { return CellName(r.Row, r.Col) }

// BottomRight is the A1 reference of the last cell.
func (r Range) BottomRight() string { return CellName(r.LastRow(), r.LastCol()) }

// String renders the range in A1 notation ("B9:B20", or "A1" for a single cell).
func (r Range) String() string {
	if r.Rows == 1 && r.Cols == 1 {
		return r.TopLeft()
	}
	return r.TopLeft() + ":" + r.BottomRight()
}

// ParseCell splits an A1 reference into its row and column.
func ParseCell(ref string) (row, col int, err error) {
	ref = strings.ReplaceAll(strings.TrimSpace(ref), "$", "")
	i := strings.IndexFunc(ref, unicode.IsDigit)
	if i <= 0 {
		return 0, 0, fmt.Errorf("invalid cell reference %q", ref)
	}
	col = ColumnNumber(ref[:i])
	row, err = strconv.Atoi(ref[i:])
	if err != nil || col == 0 || row <= 0 {
		return 0, 0, fmt.Errorf("invalid cell reference %q", ref)
	}
	return row, col, nil
}

// ParseRange parses "A1:O1" or "A1" into a Range.
func ParseRange(ref string) (Range, error) {
	first, last, found := strings.Cut(ref, ":")
	r1, c1, err := ParseCell(first)
	if err != nil {
		return Range{}, err
	}
	if !found {
		return NewRange(r1, c1, 1, 1), nil
	}
	r2, c2, err := ParseCell(last)
	if err != nil {
		return Range{}, err
	}
	if r2 < r1 {
		r1, r2 = r2, r1
	}
	if c2 < c1 {
		c1, c2 = c2, c1
	}
	return NewRange(r1, c1, r2-r1+1, c2-c1+1), nil
}
