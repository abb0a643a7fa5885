// Package processor walks table cells and hands their formulas to a
// pattern registry.
package processor

import (
	"fmt"

	"github.com/ManakiYoshihara/GAS-con-test/excel"
	"github.com/ManakiYoshihara/GAS-con-test/sheet"
)

// Processor applies registered formula handlers to tables.
type Processor struct {
	registry *Registry
}

// New creates a Processor with the given registry.
func New(registry *Registry) *Processor {
	return &Processor{registry: registry}
}

// ProcessRow runs the registry over the cells of a one-row range at the given
// 0-based column offsets. Other cells of the range are left untouched, as
// are cells without a formula. It returns the number of cells handled.
func (p *Processor) ProcessRow(t *sheet.Table, r excel.Range, offsets []int) (int, error) {
	handled := 0
	for _, off := range offsets {
		if off < 0 || off >= r.Cols {
			continue
		}
		row, col := r.Row, r.Col+off
		formula, err := t.Formula(row, col)
		if err != nil {
			return handled, err
		}
		if formula == "" {
			continue
		}

		ok, err := p.registry.Process(t, row, col, formula)
		if err != nil {
			return handled, fmt.Errorf("cell %s: %w", excel.CellName(row, col), err)
		}
		if ok {
			handled++
		}
	}

	return handled, nil
}
