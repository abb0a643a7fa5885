// Package sorter orders lesson-record tables by named header columns.
package sorter

import (
	"github.com/ManakiYoshihara/GAS-con-test/excel"
	"github.com/ManakiYoshihara/GAS-con-test/sheet"
)

// Group lesson tables are ordered by subject, then by date.
var GroupKeys = []string{"教科", "日程"}

// Sort orders the data rows (row 2 onward) of t ascending by the named
// header-row columns, in priority order. Names missing from the header are
// ignored; when none resolve, or there is at most one data row, the table is
// left as is. It reports whether the rows were sorted.
func Sort(t *sheet.Table, names ...string) (bool, error) {
	rows, cols, err := t.Dimensions()
	if err != nil {
		return false, err
	}
	if rows <= 2 || cols < 1 || len(names) == 0 {
		return false, nil
	}
	header, err := t.Row(1, cols)
	if err != nil {
		return false, err
	}
	var keys []sheet.SortKey
	for _, name := range names {
		if i := sheet.IndexOf(header, name); i >= 0 {
			keys = append(keys, sheet.SortKey{Col: i + 1})
		}
	}
	if len(keys) == 0 {
		return false, nil
	}
	if err := t.SortRange(excel.NewRange(2, 1, rows-1, cols), keys...); err != nil {
		return false, err
	}
	return true, nil
}
