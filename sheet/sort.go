package sheet

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ManakiYoshihara/GAS-con-test/excel"
)

// SortKey orders rows by one 1-based column.
type SortKey struct {
	Col        int
	Descending bool
}

// SortRange reorders the rows of the block with a stable multi-key sort.
// Numbers order before text and blanks always go last. Cell styles move
// with their rows.
func (t *Table) SortRange(r excel.Range, keys ...SortKey) error {
	if r.Rows <= 1 || len(keys) == 0 {
		return nil
	}
	cells, err := t.Cells(r)
	if err != nil {
		return err
	}
	styles, err := t.styleIDs(r)
	if err != nil {
		return err
	}

	order := make([]int, len(cells))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ra, rb := cells[order[a]], cells[order[b]]
		for _, k := range keys {
			i := k.Col - r.Col
			if i < 0 || i >= r.Cols {
				continue
			}
			if c := compareCells(ra[i], rb[i], k.Descending); c != 0 {
				return c < 0
			}
		}
		return false
	})

	sortedCells := make([][]Cell, len(order))
	sortedStyles := make([][]int, len(order))
	for i, j := range order {
		sortedCells[i] = cells[j]
		sortedStyles[i] = styles[j]
	}
	if err := t.SetCells(r.Row, r.Col, sortedCells); err != nil {
		return err
	}
	return t.setStyleIDs(r.Row, r.Col, sortedStyles)
}

func compareCells(a, b Cell, desc bool) int {
	if a.Kind == Empty || b.Kind == Empty {
		switch {
		case a.Kind == b.Kind:
			return 0
		case a.Kind == Empty:
			return 1
		default:
			return -1
		}
	}
	var c int
	av, aNum := a.Float()
	bv, bNum := b.Float()
	switch {
	case aNum && bNum:
		switch {
		case av < bv:
			c = -1
		case av > bv:
			c = 1
		}
	case aNum:
		c = -1
	case bNum:
		c = 1
	default:
		c = strings.Compare(a.Text, b.Text)
	}
	if desc {
		return -c
	}
	return c
}

func (t *Table) styleIDs(r excel.Range) ([][]int, error) {
	out := make([][]int, max(r.Rows, 0))
	for i := range out {
		row := make([]int, max(r.Cols, 0))
		for j := range row {
			ref := excel.CellName(r.Row+i, r.Col+j)
			id, err := t.wb.file.GetCellStyle(t.sheet, ref)
			if err != nil {
				return nil, fmt.Errorf("%s!%s: style: %w", t.Name(), ref, err)
			}
			row[j] = id
		}
		out[i] = row
	}
	return out, nil
}

func (t *Table) setStyleIDs(row, col int, ids [][]int) error {
	for i, r := range ids {
		for j, id := range r {
			ref := excel.CellName(row+i, col+j)
			if err := t.wb.file.SetCellStyle(t.sheet, ref, ref, id); err != nil {
				return fmt.Errorf("%s!%s: style: %w", t.Name(), ref, err)
			}
		}
	}
	return nil
}
