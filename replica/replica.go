// Package replica produces the shared, presentation-only copy of a report
// table: values and formatting without formulas, trimmed to the source, with
// the fixed highlight rules layered on.
package replica

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ManakiYoshihara/GAS-con-test/config"
	"github.com/ManakiYoshihara/GAS-con-test/excel"
	"github.com/ManakiYoshihara/GAS-con-test/logging"
	"github.com/ManakiYoshihara/GAS-con-test/sheet"
)

// PlaceholderTable is the sheet the shared template ships with.
const PlaceholderTable = "月間報告"

// Options are the variant-dependent parts of replication.
type Options struct {
	FirstBodyRow  int
	GeneralColumn string
	TimeColumn    string
	TimeFormat    string
	DateColumn    string
	SubjectColumn string
	SubjectRules  []config.SubjectRule
	GridRows      int
}

// DefaultGridRows is the rule grid height when none is configured.
const DefaultGridRows = 1000

// OptionsFor derives replication options from a variant.
func OptionsFor(v config.Variant) Options {
	return Options{
		FirstBodyRow:  9,
		GeneralColumn: v.GeneralFormatColumn,
		TimeColumn:    v.TimeFormatColumn,
		TimeFormat:    v.TimeFormat,
		DateColumn:    v.DateColumn,
		SubjectColumn: v.SubjectColumn,
		SubjectRules:  v.SubjectRules,
		GridRows:      v.RuleGridRows,
	}
}

// Replicator copies report tables into the shared workbook.
type Replicator struct {
	opts Options
	log  *zap.Logger
}

// New creates a Replicator.
func New(opts Options, log *zap.Logger) *Replicator {
	if opts.FirstBodyRow <= 0 {
		opts.FirstBodyRow = 9
	}
	if opts.GridRows <= 0 {
		opts.GridRows = DefaultGridRows
	}
	return &Replicator{opts: opts, log: logging.OrNop(log)}
}

// Replicate makes the table called name in dst a value-and-format copy of
// src. The table is created by deep copy when absent and reused otherwise.
func (r *Replicator) Replicate(src *sheet.Table, dst *sheet.Workbook, name string) (*sheet.Table, error) {
	out, err := dst.Table(name)
	switch {
	case errors.Is(err, sheet.ErrNotFound):
		if out, err = src.CopyTo(dst, name); err != nil {
			return nil, err
		}
		if err := dst.MoveToFront(name); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	}

	rows, cols, err := src.Dimensions()
	if err != nil {
		return nil, err
	}
	box := excel.NewRange(1, 1, rows, cols)

	if err := r.copyBox(src, out, box); err != nil {
		return nil, fmt.Errorf("replicate %s: %w", name, err)
	}
	if err := trim(out, rows, cols); err != nil {
		return nil, fmt.Errorf("replicate %s: trim: %w", name, err)
	}
	if err := r.overrideFormats(out, rows); err != nil {
		return nil, fmt.Errorf("replicate %s: number formats: %w", name, err)
	}
	added, err := r.addRules(out, rows)
	if err != nil {
		return nil, fmt.Errorf("replicate %s: rules: %w", name, err)
	}
	if err := dst.DeleteTable(PlaceholderTable); err != nil {
		return nil, err
	}

	r.log.Debug("table replicated",
		zap.String("table", name),
		zap.Int("rows", rows),
		zap.Int("cols", cols),
		zap.Int("rules_added", added),
	)
	return out, nil
}

func (r *Replicator) copyBox(src, out *sheet.Table, box excel.Range) error {
	if box.Empty() {
		return nil
	}
	cells, err := src.Cells(box)
	if err != nil {
		return err
	}
	formats, err := src.Formats(box)
	if err != nil {
		return err
	}
	if err := out.ClearContents(box); err != nil {
		return err
	}
	if err := out.SetCells(box.Row, box.Col, cells); err != nil {
		return err
	}
	if err := out.SetFormats(box.Row, box.Col, formats); err != nil {
		return err
	}
	for c := 1; c <= box.Cols; c++ {
		w, err := src.ColumnWidth(c)
		if err != nil {
			return err
		}
		if err := out.SetColumnWidth(c, w); err != nil {
			return err
		}
	}
	for row := 1; row <= box.Rows; row++ {
		h, err := src.RowHeight(row)
		if err != nil {
			return err
		}
		if err := out.SetRowHeight(row, h); err != nil {
			return err
		}
	}
	return nil
}

// trim clears contents and formatting outside the rows×cols box.
func trim(t *sheet.Table, rows, cols int) error {
	maxRows, maxCols, err := t.Extent()
	if err != nil {
		return err
	}
	if dr, dc, err := t.Dimensions(); err == nil {
		maxRows, maxCols = max(maxRows, dr), max(maxCols, dc)
	}
	if maxRows > rows {
		if err := t.Clear(excel.NewRange(rows+1, 1, maxRows-rows, max(maxCols, cols))); err != nil {
			return err
		}
	}
	if maxCols > cols {
		if err := t.Clear(excel.NewRange(1, cols+1, rows, maxCols-cols)); err != nil {
			return err
		}
	}
	return nil
}

func (r *Replicator) overrideFormats(t *sheet.Table, rows int) error {
	first := r.opts.FirstBodyRow
	if rows < first {
		return nil
	}
	body := func(column string) excel.Range {
		return excel.NewRange(first, excel.ColumnNumber(column), rows-first+1, 1)
	}
	if r.opts.GeneralColumn != "" {
		if err := t.SetNumberFormat(body(r.opts.GeneralColumn), sheet.General, ""); err != nil {
			return err
		}
	}
	if r.opts.TimeColumn != "" {
		if err := t.SetNumberFormat(body(r.opts.TimeColumn), sheet.General, r.opts.TimeFormat); err != nil {
			return err
		}
	}
	return nil
}

// Rules returns the highlight rules for a table with rows rows. The ranges
// end on the rule grid, so tables that grow within it get identical rules.
func (r *Replicator) Rules(rows int) []sheet.Rule {
	first := r.opts.FirstBodyRow
	maxRow := r.opts.GridRows
	for maxRow < max(rows, first) {
		maxRow += r.opts.GridRows
	}
	column := func(name string) []string {
		return []string{excel.NewRange(first, excel.ColumnNumber(name), maxRow-first+1, 1).String()}
	}
	var rules []sheet.Rule
	if r.opts.DateColumn != "" {
		anchor := excel.CellName(first, excel.ColumnNumber(r.opts.DateColumn))
		rules = append(rules,
			sheet.Rule{Ranges: column(r.opts.DateColumn), Kind: sheet.FormulaRule, Expr: anchor + "=TODAY()", Background: "#D9EAD3"},
			sheet.Rule{Ranges: column(r.opts.DateColumn), Kind: sheet.FormulaRule, Expr: anchor + ">TODAY()", Background: "#FFF2CC"},
		)
	}
	if r.opts.SubjectColumn != "" {
		for _, s := range r.opts.SubjectRules {
			rules = append(rules, sheet.Rule{Ranges: column(r.opts.SubjectColumn), Kind: sheet.TextRule, Expr: s.Text, Background: s.Background})
		}
	}
	return rules
}

func (r *Replicator) addRules(t *sheet.Table, rows int) (int, error) {
	return t.AddRules(r.Rules(rows))
}
