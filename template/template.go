// Package template materializes per-period tables from their template tables.
// A table that already exists is never recreated or re-stamped.
package template

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.uber.org/zap"

	"github.com/ManakiYoshihara/GAS-con-test/config"
	"github.com/ManakiYoshihara/GAS-con-test/excel"
	"github.com/ManakiYoshihara/GAS-con-test/logging"
	"github.com/ManakiYoshihara/GAS-con-test/period"
	"github.com/ManakiYoshihara/GAS-con-test/processor"
	"github.com/ManakiYoshihara/GAS-con-test/sheet"
)

// Template table names.
const (
	PeriodTemplate = "処理用テンプレート"
	ReportTemplate = "月間報告テンプレート"
)

// Fixed cells of a report table.
const (
	YearCell        = "A1"
	MonthCell       = "C1"
	StudentCell     = "B3"
	AggregationCell = "A9"
)

// ErrTemplateMissing is returned when a table has to be created but its
// template is not available.
var ErrTemplateMissing = errors.New("template table missing")

// Supplier yields the template to copy from.
type Supplier func() (*sheet.Table, error)

// From supplies the named table of wb.
func From(wb *sheet.Workbook, name string) Supplier {
	return func() (*sheet.Table, error) {
		t, err := wb.Table(name)
		if errors.Is(err, sheet.ErrNotFound) {
			return nil, fmt.Errorf("%s in %s: %w", name, wb.Name(), ErrTemplateMissing)
		}
		return t, err
	}
}

// EnsureTable returns the table called name in dst, copying it from the
// supplied template when absent. created reports whether a copy was made.
func EnsureTable(dst *sheet.Workbook, name string, supply Supplier) (t *sheet.Table, created bool, err error) {
	if t, err := dst.Table(name); err == nil {
		return t, false, nil
	}
	tpl, err := supply()
	if err != nil {
		return nil, false, err
	}
	if tpl == nil {
		return nil, false, fmt.Errorf("%s: %w", name, ErrTemplateMissing)
	}
	t, err = tpl.CopyTo(dst, name)
	if err != nil {
		return nil, false, fmt.Errorf("materialize %s: %w", name, err)
	}
	return t, true, nil
}

// Materializer creates period and report tables for one variant.
type Materializer struct {
	variant     config.Variant
	placeholder *regexp.Regexp
	log         *zap.Logger
}

// NewMaterializer prepares a materializer for the configured variant.
func NewMaterializer(v config.Variant, log *zap.Logger) (*Materializer, error) {
	date, err := v.Placeholder()
	if err != nil {
		return nil, err
	}
	if _, err := excel.ParseRange(v.PeriodFormulaRange); err != nil {
		return nil, fmt.Errorf("period formula range: %w", err)
	}
	return &Materializer{variant: v, placeholder: DatePattern(date), log: logging.OrNop(log)}, nil
}

// DatePattern matches the formula literal DATE(y, m, d) for the given date,
// tolerating whitespace around the arguments.
func DatePattern(d time.Time) *regexp.Regexp {
	return regexp.MustCompile(fmt.Sprintf(`DATE\(\s*%d\s*,\s*%d\s*,\s*%d\s*\)`, d.Year(), int(d.Month()), d.Day()))
}

// MonthStart renders the first day of t's month as a DATE literal.
func MonthStart(t time.Time) string {
	return fmt.Sprintf("DATE(%d, %d, 1)", t.Year(), int(t.Month()))
}

// EnsurePeriodTable returns the processing table of p, copying it from the
// period template in the same workbook when absent. A fresh copy has its
// placeholder dates rewritten to the first day of now's month.
func (m *Materializer) EnsurePeriodTable(wb *sheet.Workbook, p period.Period, now time.Time) (*sheet.Table, error) {
	name := p.ProcessingTableName()
	t, created, err := EnsureTable(wb, name, From(wb, PeriodTemplate))
	if err != nil || !created {
		return t, err
	}

	registry := processor.NewRegistry()
	registry.Register(m.placeholder, processor.Rewrite(m.placeholder, MonthStart(now)))

	r, _ := excel.ParseRange(m.variant.PeriodFormulaRange)
	n, err := processor.New(registry).ProcessRow(t, r, m.variant.PeriodFormulaColumns)
	if err != nil {
		return nil, fmt.Errorf("%s: rewrite dates: %w", name, err)
	}
	m.log.Debug("period table created",
		zap.String("table", name),
		zap.Int("rewritten", n),
	)
	return t, nil
}

// EnsureReportTable returns the report table of p, copying it from the report
// template workbook when absent. A fresh copy is stamped with the period and
// the student and gets the aggregation formula over the period table. The
// table is moved to the front either way.
func (m *Materializer) EnsureReportTable(wb, templates *sheet.Workbook, p period.Period, student string) (*sheet.Table, error) {
	name := p.ReportTableName()
	t, created, err := EnsureTable(wb, name, From(templates, ReportTemplate))
	if err != nil {
		return nil, err
	}
	if created {
		if err := m.stamp(t, p, student); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		m.log.Debug("report table created", zap.String("table", name), zap.String("student", student))
	}
	if err := wb.MoveToFront(name); err != nil {
		return nil, err
	}
	return t, nil
}

func (m *Materializer) stamp(t *sheet.Table, p period.Period, student string) error {
	cells := []struct {
		ref   string
		value sheet.Cell
	}{
		{YearCell, sheet.Num(float64(p.Year))},
		{MonthCell, sheet.Str(p.MonthText())},
		{StudentCell, sheet.Str(student)},
	}
	for _, c := range cells {
		row, col, err := excel.ParseCell(c.ref)
		if err != nil {
			return err
		}
		if err := t.SetCell(row, col, c.value); err != nil {
			return err
		}
	}
	row, col, _ := excel.ParseCell(AggregationCell)
	return t.SetFormula(row, col, AggregationFormula(p, m.variant.AggregationEndColumn))
}

// AggregationFormula pulls the period table into the report body, e.g.
// ARRAYFORMULA('処理用（2025／03）'!A1:P).
func AggregationFormula(p period.Period, endColumn string) string {
	return fmt.Sprintf("ARRAYFORMULA('%s'!A1:%s)", sheet.SheetName(p.ProcessingTableName()), endColumn)
}
