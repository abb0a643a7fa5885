package sheet

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ManakiYoshihara/GAS-con-test/excel"
	"github.com/xuri/excelize/v2"
)

// Table is one named sheet inside a Workbook.
type Table struct {
	wb    *Workbook
	sheet string
}

// Name is the table name, with any stored escapes undone.
func (t *Table) Name() string { return TableName(t.sheet) }

// Workbook returns the store that holds the table.
func (t *Table) Workbook() *Workbook { return t.wb }

// Rename gives the table a new name.
func (t *Table) Rename(name string) error {
	target := SheetName(name)
	if err := t.wb.file.SetSheetName(t.sheet, target); err != nil {
		return fmt.Errorf("rename %q to %q: %w", t.Name(), name, err)
	}
	t.sheet = target
	return nil
}

// Dimensions returns the bounding box of cells holding a value or formula,
// counted from A1. An empty table is 0×0.
func (t *Table) Dimensions() (rows, cols int, err error) {
	data, err := t.wb.file.GetRows(t.sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return 0, 0, fmt.Errorf("%s: dimensions: %w", t.Name(), err)
	}
	for _, r := range data {
		cols = max(cols, len(r))
	}
	return len(data), cols, nil
}

// LastRow is the last row holding a value or formula, or 0.
func (t *Table) LastRow() (int, error) {
	rows, _, err := t.Dimensions()
	return rows, err
}

// Extent returns the size of the grid in use. Rows count every row that is
// stored in the sheet, including rows that only carry formatting or a custom
// height. Columns reach the rightmost stored cell, styled or not.
func (t *Table) Extent() (rows, cols int, err error) {
	it, err := t.wb.file.Rows(t.sheet)
	if err != nil {
		return 0, 0, fmt.Errorf("%s: extent: %w", t.Name(), err)
	}
	for it.Next() {
		rows++
		cells, err := it.Columns(excelize.Options{RawCellValue: true})
		if err != nil {
			_ = it.Close()
			return 0, 0, fmt.Errorf("%s: extent row %d: %w", t.Name(), rows, err)
		}
		cols = max(cols, len(cells))
	}
	if err := it.Close(); err != nil {
		return 0, 0, err
	}

	stored, err := t.wb.file.Cols(t.sheet)
	if err != nil {
		return 0, 0, fmt.Errorf("%s: extent: %w", t.Name(), err)
	}
	n := 0
	for stored.Next() {
		n++
	}
	return rows, max(cols, n), nil
}

// Cell reads one typed value. Formula cells yield their cached result, or an
// empty cell when none is cached. Formulas are never evaluated.
func (t *Table) Cell(row, col int) (Cell, error) {
	f := t.wb.file
	ref := excel.CellName(row, col)

	raw, err := f.GetCellValue(t.sheet, ref, excelize.Options{RawCellValue: true})
	if err != nil {
		return Cell{}, fmt.Errorf("%s!%s: %w", t.Name(), ref, err)
	}
	typ, err := f.GetCellType(t.sheet, ref)
	if err != nil {
		return Cell{}, fmt.Errorf("%s!%s: %w", t.Name(), ref, err)
	}
	return decode(raw, typ), nil
}

func decode(raw string, typ excelize.CellType) Cell {
	if raw == "" {
		return Cell{}
	}
	switch typ {
	case excelize.CellTypeBool:
		return Boolean(raw == "1" || strings.EqualFold(raw, "TRUE"))
	case excelize.CellTypeUnset, excelize.CellTypeNumber:
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			return Num(v)
		}
	}
	return Cell{Kind: String, Text: raw}
}

// Cells reads a block of typed values.
func (t *Table) Cells(r excel.Range) ([][]Cell, error) {
	out := make([][]Cell, max(r.Rows, 0))
	for i := range out {
		row := make([]Cell, max(r.Cols, 0))
		for j := range row {
			c, err := t.Cell(r.Row+i, r.Col+j)
			if err != nil {
				return nil, err
			}
			row[j] = c
		}
		out[i] = row
	}
	return out, nil
}

// Values reads a block as raw text.
func (t *Table) Values(r excel.Range) ([][]string, error) {
	cells, err := t.Cells(r)
	if err != nil {
		return nil, err
	}
	out := make([][]string, len(cells))
	for i, row := range cells {
		out[i] = Texts(row)
	}
	return out, nil
}

// Row reads one row from column 1 through cols.
func (t *Table) Row(row, cols int) ([]Cell, error) {
	cells, err := t.Cells(excel.NewRange(row, 1, 1, cols))
	if err != nil {
		return nil, err
	}
	return cells[0], nil
}

// DataRange reads the whole bounding box returned by Dimensions.
func (t *Table) DataRange() ([][]Cell, error) {
	rows, cols, err := t.Dimensions()
	if err != nil {
		return nil, err
	}
	return t.Cells(excel.NewRange(1, 1, rows, cols))
}

// SetCell writes one typed value, replacing any formula in the cell. The cell
// keeps its formatting.
func (t *Table) SetCell(row, col int, c Cell) error {
	f := t.wb.file
	ref := excel.CellName(row, col)
	var err error
	switch c.Kind {
	case Number:
		v, perr := strconv.ParseFloat(c.Text, 64)
		if perr != nil {
			err = f.SetCellStr(t.sheet, ref, c.Text)
			break
		}
		err = f.SetCellFloat(t.sheet, ref, v, -1, 64)
	case Bool:
		err = f.SetCellBool(t.sheet, ref, c.Text == "TRUE")
	case String:
		err = f.SetCellStr(t.sheet, ref, c.Text)
	default:
		err = f.SetCellValue(t.sheet, ref, nil)
	}
	if err != nil {
		return fmt.Errorf("%s!%s: %w", t.Name(), ref, err)
	}
	return nil
}

// SetCells writes a block of values with its top-left corner at (row, col).
func (t *Table) SetCells(row, col int, cells [][]Cell) error {
	for i, r := range cells {
		for j, c := range r {
			if err := t.SetCell(row+i, col+j, c); err != nil {
				return err
			}
		}
	}
	return nil
}

// AppendRows writes rows as one contiguous block after the last data row and
// returns the first row written.
func (t *Table) AppendRows(rows [][]Cell) (int, error) {
	last, err := t.LastRow()
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return last + 1, nil
	}
	return last + 1, t.SetCells(last+1, 1, rows)
}

// Formula returns the formula of a cell without the leading "=".
func (t *Table) Formula(row, col int) (string, error) {
	ref := excel.CellName(row, col)
	formula, err := t.wb.file.GetCellFormula(t.sheet, ref)
	if err != nil {
		return "", fmt.Errorf("%s!%s: %w", t.Name(), ref, err)
	}
	return formula, nil
}

// SetFormula installs a formula. A leading "=" is accepted and dropped.
func (t *Table) SetFormula(row, col int, formula string) error {
	ref := excel.CellName(row, col)
	if err := t.wb.file.SetCellFormula(t.sheet, ref, strings.TrimPrefix(formula, "=")); err != nil {
		return fmt.Errorf("%s!%s: %w", t.Name(), ref, err)
	}
	return nil
}

// ClearContents removes values and formulas in the block and keeps formatting.
func (t *Table) ClearContents(r excel.Range) error {
	for i := 0; i < r.Rows; i++ {
		for j := 0; j < r.Cols; j++ {
			if err := t.SetCell(r.Row+i, r.Col+j, Cell{}); err != nil {
				return err
			}
		}
	}
	return nil
}

// Clear removes values, formulas and formatting in the block.
func (t *Table) Clear(r excel.Range) error {
	if r.Empty() {
		return nil
	}
	if err := t.ClearContents(r); err != nil {
		return err
	}
	if err := t.wb.file.SetCellStyle(t.sheet, r.TopLeft(), r.BottomRight(), 0); err != nil {
		return fmt.Errorf("%s!%s: clear style: %w", t.Name(), r, err)
	}
	return nil
}

// ColumnWidth returns the width of a 1-based column.
func (t *Table) ColumnWidth(col int) (float64, error) {
	w, err := t.wb.file.GetColWidth(t.sheet, excel.ColumnName(col))
	if err != nil {
		return 0, fmt.Errorf("%s: column %d width: %w", t.Name(), col, err)
	}
	return w, nil
}

// SetColumnWidth sets the width of a 1-based column.
func (t *Table) SetColumnWidth(col int, width float64) error {
	name := excel.ColumnName(col)
	if err := t.wb.file.SetColWidth(t.sheet, name, name, width); err != nil {
		return fmt.Errorf("%s: column %d width: %w", t.Name(), col, err)
	}
	return nil
}

// RowHeight returns the height of a 1-based row.
func (t *Table) RowHeight(row int) (float64, error) {
	h, err := t.wb.file.GetRowHeight(t.sheet, row)
	if err != nil {
		return 0, fmt.Errorf("%s: row %d height: %w", t.Name(), row, err)
	}
	return h, nil
}

// SetRowHeight sets the height of a 1-based row.
func (t *Table) SetRowHeight(row int, height float64) error {
	if err := t.wb.file.SetRowHeight(t.sheet, row, height); err != nil {
		return fmt.Errorf("%s: row %d height: %w", t.Name(), row, err)
	}
	return nil
}
