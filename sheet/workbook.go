// Package sheet adapts xlsx workbooks into the tabular store the report
// pipeline works against: named tables addressed by 1-based rows and columns,
// with values, formulas, formats and conditional rules.
package sheet

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrNotFound is returned when a named table does not exist in a workbook.
var ErrNotFound = errors.New("table not found")

// Workbook is one tabular store backed by an .xlsx file.
type Workbook struct {
	path   string
	file   *excelize.File
	styles *StyleCache
}

// Open opens the workbook stored at path.
func Open(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return wrap(path, f), nil
}

// Create starts an empty workbook that will be written to path on Save.
// The workbook holds excelize's default "Sheet1" until a table is added.
func Create(path string) *Workbook {
	return wrap(path, excelize.NewFile())
}

func wrap(path string, f *excelize.File) *Workbook {
	return &Workbook{path: path, file: f, styles: NewStyleCache(f)}
}

// Path is the file the workbook is saved to.
func (w *Workbook) Path() string { return w.path }

// Name is the base name of the workbook file.
func (w *Workbook) Name() string { return filepath.Base(w.path) }

// File exposes the underlying excelize file.
func (w *Workbook) File() *excelize.File { return w.file }

// Save writes the workbook back to its path.
func (w *Workbook) Save() error {
	if err := w.file.SaveAs(w.path); err != nil {
		return fmt.Errorf("save %s: %w", w.path, err)
	}
	return nil
}

// Close releases the workbook without saving.
func (w *Workbook) Close() error {
	return w.file.Close()
}

// Tables lists the table names in tab order.
func (w *Workbook) Tables() []string {
	sheets := w.file.GetSheetList()
	names := make([]string, len(sheets))
	for i, s := range sheets {
		names[i] = TableName(s)
	}
	return names
}

// Has reports whether a table with the given name exists.
func (w *Workbook) Has(name string) bool {
	idx, err := w.file.GetSheetIndex(SheetName(name))
	return err == nil && idx >= 0
}

// Table returns the named table or an error wrapping ErrNotFound.
func (w *Workbook) Table(name string) (*Table, error) {
	if !w.Has(name) {
		return nil, fmt.Errorf("%s: table %q: %w", w.Name(), name, ErrNotFound)
	}
	return &Table{wb: w, sheet: SheetName(name)}, nil
}

// First returns the left-most table.
func (w *Workbook) First() (*Table, error) {
	sheets := w.file.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%s: first table: %w", w.Name(), ErrNotFound)
	}
	return &Table{wb: w, sheet: sheets[0]}, nil
}

// NewTable adds an empty table. It fails if the name is already taken.
func (w *Workbook) NewTable(name string) (*Table, error) {
	if w.Has(name) {
		return nil, fmt.Errorf("%s: table %q already exists", w.Name(), name)
	}
	if _, err := w.file.NewSheet(SheetName(name)); err != nil {
		return nil, fmt.Errorf("new table %q: %w", name, err)
	}
	return &Table{wb: w, sheet: SheetName(name)}, nil
}

// DeleteTable removes the named table. Deleting a missing table is a no-op.
func (w *Workbook) DeleteTable(name string) error {
	if !w.Has(name) {
		return nil
	}
	if err := w.file.DeleteSheet(SheetName(name)); err != nil {
		return fmt.Errorf("delete table %q: %w", name, err)
	}
	return nil
}

// MoveToFront makes the named table the left-most, active tab.
func (w *Workbook) MoveToFront(name string) error {
	sheets := w.file.GetSheetList()
	if len(sheets) == 0 {
		return fmt.Errorf("move table %q: %w", name, ErrNotFound)
	}
	target := SheetName(name)
	if sheets[0] != target {
		if err := w.file.MoveSheet(target, sheets[0]); err != nil {
			return fmt.Errorf("move table %q: %w", name, err)
		}
	}
	w.file.SetActiveSheet(0)
	return nil
}

// xlsx forbids some characters in sheet names that the upstream naming
// conventions use (e.g. "処理用（2025/03）"). They are stored as their
// full-width forms and translated back on read.
var (
	sheetNameEncoder = strings.NewReplacer(
		"/", "／", "\\", "＼", ":", "：", "?", "？", "*", "＊", "[", "［", "]", "］",
	)
	sheetNameDecoder = strings.NewReplacer(
		"／", "/", "＼", "\\", "：", ":", "？", "?", "＊", "*", "［", "[", "］", "]",
	)
)

// SheetName converts a table name into the name stored in the xlsx file.
// Formulas that reference another table must use this form.
func SheetName(table string) string {
	return sheetNameEncoder.Replace(table)
}

// TableName converts a stored sheet name back into its table name.
func TableName(sheet string) string {
	return sheetNameDecoder.Replace(sheet)
}
