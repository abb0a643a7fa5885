package sheet

import (
	"fmt"

	"github.com/ManakiYoshihara/GAS-con-test/excel"
)

// CopyTo deep-copies the table into dst under name. Values, formulas, styles,
// widths, heights, merges and conditional rules come along. The name must be
// free in dst.
func (t *Table) CopyTo(dst *Workbook, name string) (*Table, error) {
	if dst == t.wb {
		return t.copyWithin(name)
	}
	out, err := dst.NewTable(name)
	if err != nil {
		return nil, err
	}
	rows, cols, err := t.Extent()
	if err != nil {
		return nil, err
	}
	if dr, dc, err := t.Dimensions(); err == nil {
		rows, cols = max(rows, dr), max(cols, dc)
	}
	for r := 1; r <= rows; r++ {
		for c := 1; c <= cols; c++ {
			if err := t.copyCell(out, r, c); err != nil {
				return nil, err
			}
		}
		if h, err := t.RowHeight(r); err == nil {
			if err := out.SetRowHeight(r, h); err != nil {
				return nil, err
			}
		}
	}
	for c := 1; c <= cols; c++ {
		w, err := t.ColumnWidth(c)
		if err != nil {
			return nil, err
		}
		if err := out.SetColumnWidth(c, w); err != nil {
			return nil, err
		}
	}

	merges, err := t.wb.file.GetMergeCells(t.sheet, true)
	if err != nil {
		return nil, fmt.Errorf("%s: merged cells: %w", t.Name(), err)
	}
	for _, m := range merges {
		if err := dst.file.MergeCell(out.sheet, m.GetStartAxis(), m.GetEndAxis()); err != nil {
			return nil, fmt.Errorf("%s: merge %s:%s: %w", out.Name(), m.GetStartAxis(), m.GetEndAxis(), err)
		}
	}

	rules, err := t.Rules()
	if err != nil {
		return nil, err
	}
	var portable []Rule
	for _, r := range rules {
		if r.Kind != OtherRule {
			portable = append(portable, r)
		}
	}
	if _, err := out.AddRules(portable); err != nil {
		return nil, err
	}
	return out, nil
}

func (t *Table) copyCell(out *Table, row, col int) error {
	ref := excel.CellName(row, col)
	c, err := t.Cell(row, col)
	if err != nil {
		return err
	}
	formula, err := t.Formula(row, col)
	if err != nil {
		return err
	}
	if formula == "" {
		if err := out.SetCell(row, col, c); err != nil {
			return err
		}
	} else {
		// The cached result is kept as plain text under the formula.
		if err := out.wb.file.SetCellDefault(out.sheet, ref, c.Text); err != nil {
			return fmt.Errorf("%s!%s: %w", out.Name(), ref, err)
		}
		if err := out.SetFormula(row, col, formula); err != nil {
			return err
		}
	}
	id, err := t.wb.file.GetCellStyle(t.sheet, ref)
	if err != nil {
		return fmt.Errorf("%s!%s: style: %w", t.Name(), ref, err)
	}
	if id == 0 {
		return nil
	}
	imported, err := out.wb.styles.Import(t.wb.file, id)
	if err != nil {
		return fmt.Errorf("%s!%s: import style %d: %w", t.Name(), ref, id, err)
	}
	return out.wb.file.SetCellStyle(out.sheet, ref, ref, imported)
}

func (t *Table) copyWithin(name string) (*Table, error) {
	out, err := t.wb.NewTable(name)
	if err != nil {
		return nil, err
	}
	from, err := t.wb.file.GetSheetIndex(t.sheet)
	if err != nil {
		return nil, fmt.Errorf("copy %s: %w", t.Name(), err)
	}
	to, err := t.wb.file.GetSheetIndex(out.sheet)
	if err != nil {
		return nil, fmt.Errorf("copy %s: %w", t.Name(), err)
	}
	if err := t.wb.file.CopySheet(from, to); err != nil {
		return nil, fmt.Errorf("copy %s to %s: %w", t.Name(), name, err)
	}
	return out, nil
}
