package template

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManakiYoshihara/GAS-con-test/config"
	"github.com/ManakiYoshihara/GAS-con-test/period"
	"github.com/ManakiYoshihara/GAS-con-test/sheet"
)

func dataWorkbook(t *testing.T) *sheet.Workbook {
	t.Helper()
	wb := sheet.Create(filepath.Join(t.TempDir(), "data.xlsx"))
	t.Cleanup(func() { _ = wb.Close() })
	tpl, err := wb.NewTable(PeriodTemplate)
	require.NoError(t, err)
	require.NoError(t, wb.DeleteTable("Sheet1"))
	require.NoError(t, tpl.SetFormula(1, 1, `FILTER(個別指導記録用!A:A, 個別指導記録用!B:B>=DATE(2025, 3, 1))`))
	require.NoError(t, tpl.SetCell(1, 8, sheet.Str("memo")))
	require.NoError(t, tpl.SetFormula(1, 9, `EOMONTH(DATE(2025,3,1),0)+DATE( 2025 , 3 , 1 )`))
	require.NoError(t, tpl.SetFormula(1, 2, `DATE(2025, 3, 1)`))
	return wb
}

func reportTemplates(t *testing.T) *sheet.Workbook {
	t.Helper()
	wb := sheet.Create(filepath.Join(t.TempDir(), "templates.xlsx"))
	t.Cleanup(func() { _ = wb.Close() })
	tpl, err := wb.NewTable(ReportTemplate)
	require.NoError(t, err)
	require.NoError(t, tpl.SetCells(1, 1, [][]sheet.Cell{sheet.Strs("年", "", "月")}))
	return wb
}

func newMaterializer(t *testing.T, v config.Variant) *Materializer {
	t.Helper()
	m, err := NewMaterializer(v, nil)
	require.NoError(t, err)
	return m
}

func TestEnsurePeriodTableRewritesDates(t *testing.T) {
	wb := dataWorkbook(t)
	m := newMaterializer(t, config.Default().Variant)
	now := time.Date(2026, time.October, 18, 9, 0, 0, 0, time.Local)
	p := period.Period{Year: 2026, Month: time.October}

	tbl, err := m.EnsurePeriodTable(wb, p, now)
	require.NoError(t, err)
	assert.Equal(t, "処理用（2026/10）", tbl.Name())

	a1, err := tbl.Formula(1, 1)
	require.NoError(t, err)
	assert.Equal(t, `FILTER(個別指導記録用!A:A, 個別指導記録用!B:B>=DATE(2026, 10, 1))`, a1)

	i1, err := tbl.Formula(1, 9)
	require.NoError(t, err)
	assert.Equal(t, `EOMONTH(DATE(2026, 10, 1),0)+DATE(2026, 10, 1)`, i1)

	b1, err := tbl.Formula(1, 2)
	require.NoError(t, err)
	assert.Equal(t, `DATE(2025, 3, 1)`, b1, "offsets outside the list are skipped")

	h1, err := tbl.Cell(1, 8)
	require.NoError(t, err)
	assert.Equal(t, sheet.Str("memo"), h1)

	tpl, err := wb.Table(PeriodTemplate)
	require.NoError(t, err)
	orig, err := tpl.Formula(1, 1)
	require.NoError(t, err)
	assert.Contains(t, orig, "DATE(2025, 3, 1)", "template itself is untouched")
}

func TestEnsurePeriodTableIsIdempotent(t *testing.T) {
	wb := dataWorkbook(t)
	m := newMaterializer(t, config.Basic().Variant)
	p := period.Period{Year: 2025, Month: time.April}

	first, err := m.EnsurePeriodTable(wb, p, time.Date(2025, time.April, 2, 0, 0, 0, 0, time.Local))
	require.NoError(t, err)
	require.NoError(t, first.SetFormula(1, 1, "DATE(2025, 3, 1)"))

	second, err := m.EnsurePeriodTable(wb, p, time.Date(2025, time.May, 2, 0, 0, 0, 0, time.Local))
	require.NoError(t, err)
	formula, err := second.Formula(1, 1)
	require.NoError(t, err)
	assert.Equal(t, "DATE(2025, 3, 1)", formula, "an existing table is not rewritten")
	assert.Len(t, wb.Tables(), 2)
}

func TestEnsurePeriodTableWithoutTemplate(t *testing.T) {
	wb := sheet.Create(filepath.Join(t.TempDir(), "empty.xlsx"))
	defer wb.Close()
	m := newMaterializer(t, config.Default().Variant)

	_, err := m.EnsurePeriodTable(wb, period.Period{Year: 2025, Month: time.March}, time.Now())
	assert.ErrorIs(t, err, ErrTemplateMissing)
}

func TestEnsureReportTableStampsOnce(t *testing.T) {
	wb := dataWorkbook(t)
	templates := reportTemplates(t)
	m := newMaterializer(t, config.Default().Variant)
	p := period.Period{Year: 2025, Month: time.March}

	tbl, err := m.EnsureReportTable(wb, templates, p, "山田太郎")
	require.NoError(t, err)
	assert.Equal(t, "2025年03月度", wb.Tables()[0], "report table moves to the front")

	year, err := tbl.Cell(1, 1)
	require.NoError(t, err)
	assert.Equal(t, sheet.Num(2025), year)
	month, err := tbl.Cell(1, 3)
	require.NoError(t, err)
	assert.Equal(t, sheet.Str("03"), month)
	name, err := tbl.Cell(3, 2)
	require.NoError(t, err)
	assert.Equal(t, sheet.Str("山田太郎"), name)
	formula, err := tbl.Formula(9, 1)
	require.NoError(t, err)
	assert.Equal(t, "ARRAYFORMULA('処理用（2025／03）'!A1:P)", formula)

	require.NoError(t, tbl.SetCell(3, 2, sheet.Str("edited")))
	count := len(wb.Tables())

	again, err := m.EnsureReportTable(wb, templates, p, "山田太郎")
	require.NoError(t, err)
	assert.Len(t, wb.Tables(), count)
	name, err = again.Cell(3, 2)
	require.NoError(t, err)
	assert.Equal(t, sheet.Str("edited"), name, "second call never re-stamps")
}

func TestAggregationFormulaColumn(t *testing.T) {
	p := period.Period{Year: 2024, Month: time.December}
	assert.Equal(t, "ARRAYFORMULA('処理用（2024／12）'!A1:Z)", AggregationFormula(p, "Z"))
}

func TestDatePattern(t *testing.T) {
	re := DatePattern(time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC))
	assert.True(t, re.MatchString("DATE(2025,3,1)"))
	assert.True(t, re.MatchString("DATE( 2025 ,\t3 , 1 )"))
	assert.False(t, re.MatchString("DATE(2025, 3, 10)"))
	assert.False(t, re.MatchString("DATE(2025, 03, 1)"))
}
