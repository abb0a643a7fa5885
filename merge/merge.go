// Package merge copies a student's rows out of the shared lesson stores and
// joins report rows against the message table.
package merge

import (
	"errors"
	"fmt"

	"github.com/ManakiYoshihara/GAS-con-test/excel"
	"github.com/ManakiYoshihara/GAS-con-test/sheet"
)

// ErrHeaderNotFound is returned when an expected header is in neither of the
// rows searched.
var ErrHeaderNotFound = errors.New("header not found")

// HeaderRow locates name in row 1 or, failing that, row 2 of data and
// returns the 0-based header row and column.
func HeaderRow(data [][]sheet.Cell, name string) (row, col int, err error) {
	for r := 0; r < len(data) && r < 2; r++ {
		if c := sheet.IndexOf(data[r], name); c >= 0 {
			return r, c, nil
		}
	}
	return -1, -1, fmt.Errorf("%q: %w", name, ErrHeaderNotFound)
}

// EnsureHeader copies src's header row into dst when dst is empty. It
// reports whether a header was written.
func EnsureHeader(dst, src *sheet.Table, headerRow int) (bool, error) {
	last, err := dst.LastRow()
	if err != nil || last > 0 {
		return false, err
	}
	_, cols, err := src.Dimensions()
	if err != nil {
		return false, err
	}
	if cols == 0 {
		return false, nil
	}
	header, err := src.Row(headerRow, cols)
	if err != nil {
		return false, err
	}
	if _, err := dst.AppendRows([][]sheet.Cell{header}); err != nil {
		return false, fmt.Errorf("%s: header: %w", dst.Name(), err)
	}
	return true, nil
}

// AppendMatching appends every data row of src whose keyHeader cell equals
// keyValue to dst, in source order, as one block after dst's last row. The
// header may sit in row 1 or row 2 of src; if it is in neither the call
// fails with ErrHeaderNotFound and nothing is written.
func AppendMatching(src, dst *sheet.Table, keyHeader, keyValue string) (int, error) {
	data, err := src.DataRange()
	if err != nil {
		return 0, err
	}
	if len(data) == 0 {
		return 0, nil
	}
	header, col, err := HeaderRow(data, keyHeader)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", src.Name(), err)
	}

	var rows [][]sheet.Cell
	for _, row := range data[header+1:] {
		if row[col].Text == keyValue {
			rows = append(rows, row)
		}
	}
	if len(rows) == 0 {
		return 0, nil
	}
	if _, err := dst.AppendRows(rows); err != nil {
		return 0, fmt.Errorf("%s: append: %w", dst.Name(), err)
	}
	return len(rows), nil
}

// columnRange is the 1-based block of one column from row first to last.
func columnRange(col, first, last int) excel.Range {
	return excel.NewRange(first, col, last-first+1, 1)
}
