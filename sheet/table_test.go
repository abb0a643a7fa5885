package sheet

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManakiYoshihara/GAS-con-test/excel"
)

func newTable(t *testing.T, name string) (*Workbook, *Table) {
	t.Helper()
	wb := Create(filepath.Join(t.TempDir(), "book.xlsx"))
	t.Cleanup(func() { _ = wb.Close() })
	tbl, err := wb.NewTable(name)
	require.NoError(t, err)
	require.NoError(t, wb.DeleteTable("Sheet1"))
	return wb, tbl
}

func TestCellsRoundTrip(t *testing.T) {
	_, tbl := newTable(t, "data")
	in := [][]Cell{
		{Str("eng"), Num(3), Boolean(true)},
		{Str("0012"), Num(2.5), Boolean(false)},
		{{}, Str("x"), Num(-1)},
	}
	require.NoError(t, tbl.SetCells(1, 1, in))

	got, err := tbl.Cells(excel.NewRange(1, 1, 3, 3))
	require.NoError(t, err)
	if diff := cmp.Diff(in, got); diff != "" {
		t.Errorf("cells mismatch (-want +got):\n%s", diff)
	}

	rows, cols, err := tbl.Dimensions()
	require.NoError(t, err)
	assert.Equal(t, 3, rows)
	assert.Equal(t, 3, cols)
}

func TestSheetNameEncoding(t *testing.T) {
	wb, _ := newTable(t, "data")
	_, err := wb.NewTable("処理用（2025/03）")
	require.NoError(t, err)

	assert.True(t, wb.Has("処理用（2025/03）"))
	assert.Contains(t, wb.Tables(), "処理用（2025/03）")
	assert.Equal(t, "処理用（2025／03）", SheetName("処理用（2025/03）"))

	_, err = wb.Table("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAppendRows(t *testing.T) {
	_, tbl := newTable(t, "log")
	require.NoError(t, tbl.SetCells(1, 1, [][]Cell{Strs("name", "subject")}))

	first, err := tbl.AppendRows([][]Cell{Strs("a", "eng"), Strs("a", "math")})
	require.NoError(t, err)
	assert.Equal(t, 2, first)

	first, err = tbl.AppendRows([][]Cell{Strs("b", "sci")})
	require.NoError(t, err)
	assert.Equal(t, 4, first)

	got, err := tbl.Values(excel.NewRange(1, 1, 4, 2))
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"name", "subject"}, {"a", "eng"}, {"a", "math"}, {"b", "sci"}}, got)
}

func TestFormulaValue(t *testing.T) {
	_, tbl := newTable(t, "calc")
	require.NoError(t, tbl.SetCells(1, 1, [][]Cell{{Num(1), Num(2)}}))
	require.NoError(t, tbl.SetFormula(1, 3, "=A1+B1"))

	formula, err := tbl.Formula(1, 3)
	require.NoError(t, err)
	assert.Equal(t, "A1+B1", formula)

	c, err := tbl.Cell(1, 3)
	require.NoError(t, err)
	assert.Equal(t, Cell{}, c, "formulas are not evaluated")

	// A formula installed over a value keeps it as the cached result.
	require.NoError(t, tbl.SetCell(1, 4, Num(3)))
	require.NoError(t, tbl.SetFormula(1, 4, "A1+B1"))
	c, err = tbl.Cell(1, 4)
	require.NoError(t, err)
	assert.Equal(t, "3", c.Text)

	require.NoError(t, tbl.SetCell(1, 3, Str("fixed")))
	formula, err = tbl.Formula(1, 3)
	require.NoError(t, err)
	assert.Empty(t, formula)
}

func TestOpenEndedArrayFormulaReadsEmpty(t *testing.T) {
	wb, tbl := newTable(t, "2026年01月度")
	src, err := wb.NewTable("処理用（2026/01）")
	require.NoError(t, err)
	require.NoError(t, src.SetCells(1, 1, [][]Cell{Strs("a", "b")}))
	require.NoError(t, tbl.SetFormula(9, 1, "ARRAYFORMULA('処理用（2026／01）'!A1:P)"))

	c, err := tbl.Cell(9, 1)
	require.NoError(t, err)
	assert.Equal(t, Cell{}, c)

	rows, cols, err := tbl.Dimensions()
	require.NoError(t, err)
	assert.Equal(t, 9, rows, "a formula cell counts without a cached result")
	assert.Equal(t, 1, cols)
}

func TestExtentCountsStyledColumns(t *testing.T) {
	_, tbl := newTable(t, "grid")
	require.NoError(t, tbl.SetCells(1, 1, [][]Cell{Strs("a", "b")}))
	require.NoError(t, tbl.SetFormats(3, 6, [][]Format{{{Background: "F4CCCC"}}}))

	rows, cols, err := tbl.Extent()
	require.NoError(t, err)
	assert.Equal(t, 3, rows)
	assert.Equal(t, 6, cols, "a styled cell without a value widens the grid")

	_, dataCols, err := tbl.Dimensions()
	require.NoError(t, err)
	assert.Equal(t, 2, dataCols)
}

func TestClear(t *testing.T) {
	_, tbl := newTable(t, "grid")
	require.NoError(t, tbl.SetCells(1, 1, [][]Cell{Strs("a", "b"), Strs("c", "d")}))
	require.NoError(t, tbl.SetFormats(1, 1, [][]Format{{{Background: "D9EAD3"}, {Background: "D9EAD3"}}}))

	require.NoError(t, tbl.ClearContents(excel.NewRange(1, 1, 1, 1)))
	f, err := tbl.Format(1, 1)
	require.NoError(t, err)
	assert.Equal(t, "D9EAD3", f.Background, "contents-only clear keeps the fill")

	require.NoError(t, tbl.Clear(excel.NewRange(1, 2, 2, 1)))
	f, err = tbl.Format(1, 2)
	require.NoError(t, err)
	assert.Empty(t, f.Background)

	got, err := tbl.Values(excel.NewRange(1, 1, 2, 2))
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"", ""}, {"c", ""}}, got)
}

func TestFormats(t *testing.T) {
	_, tbl := newTable(t, "styled")
	want := Format{Background: "F4CCCC", FontColor: "FF0000", Bold: true, FontSize: 14, Horizontal: "center", Wrap: true}
	require.NoError(t, tbl.SetFormats(2, 2, [][]Format{{want}}))

	got, err := tbl.Format(2, 2)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	require.NoError(t, tbl.SetNumberFormat(excel.NewRange(2, 2, 1, 1), 0, "hh:mm"))
	got, err = tbl.Format(2, 2)
	require.NoError(t, err)
	assert.Equal(t, "hh:mm", got.CustomNumFmt)
	assert.Equal(t, "F4CCCC", got.Background, "number format change keeps other attributes")
}

func TestNormalizeColor(t *testing.T) {
	assert.Equal(t, "D9EAD3", NormalizeColor("#d9ead3"))
	assert.Equal(t, "D9EAD3", NormalizeColor("FFD9EAD3"))
	assert.Equal(t, "", NormalizeColor(""))
}

func TestAddRulesDeduplicates(t *testing.T) {
	_, tbl := newTable(t, "report")
	rules := []Rule{
		{Ranges: []string{"J9:J20"}, Kind: FormulaRule, Expr: "J9=TODAY()", Background: "#D9EAD3"},
		{Ranges: []string{"J9:J20"}, Kind: FormulaRule, Expr: "J9>TODAY()", Background: "#FFF2CC"},
		{Ranges: []string{"M9:M20"}, Kind: TextRule, Expr: "英語", Background: "#F4CCCC"},
	}

	added, err := tbl.AddRules(rules)
	require.NoError(t, err)
	assert.Equal(t, 3, added)

	added, err = tbl.AddRules(rules)
	require.NoError(t, err)
	assert.Zero(t, added)

	got, err := tbl.Rules()
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, Rule{Ranges: []string{"J9:J20"}, Kind: FormulaRule, Expr: "J9=TODAY()", Background: "D9EAD3"}, got[0])
	assert.Equal(t, Rule{Ranges: []string{"M9:M20"}, Kind: TextRule, Expr: "英語", Background: "F4CCCC"}, got[2])
}

func TestAddRulesMergesSameRange(t *testing.T) {
	_, tbl := newTable(t, "report")
	_, err := tbl.AddRules([]Rule{{Ranges: []string{"J9:J20"}, Kind: FormulaRule, Expr: "J9=TODAY()", Background: "D9EAD3"}})
	require.NoError(t, err)
	_, err = tbl.AddRules([]Rule{{Ranges: []string{"J9:J20"}, Kind: FormulaRule, Expr: "J9>TODAY()", Background: "FFF2CC"}})
	require.NoError(t, err)

	got, err := tbl.Rules()
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestSortRange(t *testing.T) {
	_, tbl := newTable(t, "lessons")
	require.NoError(t, tbl.SetCells(1, 1, [][]Cell{
		Strs("math", "2024-02"),
		Strs("eng", "2024-01"),
		Strs("math", "2024-01"),
		{Str("eng")},
	}))
	require.NoError(t, tbl.SetFormats(1, 1, [][]Format{{{Bold: true}}}))

	require.NoError(t, tbl.SortRange(excel.NewRange(1, 1, 4, 2), SortKey{Col: 1}, SortKey{Col: 2}))

	got, err := tbl.Values(excel.NewRange(1, 1, 4, 2))
	require.NoError(t, err)
	want := [][]string{{"eng", "2024-01"}, {"eng", ""}, {"math", "2024-01"}, {"math", "2024-02"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("sorted rows mismatch (-want +got):\n%s", diff)
	}

	f, err := tbl.Format(4, 1)
	require.NoError(t, err)
	assert.True(t, f.Bold, "style follows its row")
}

func TestCopyToOtherWorkbook(t *testing.T) {
	src, tbl := newTable(t, "template")
	require.NoError(t, tbl.SetCells(1, 1, [][]Cell{{Num(2025), Str("月"), Str("03")}}))
	require.NoError(t, tbl.SetFormula(2, 1, "A1+1"))
	require.NoError(t, tbl.SetCell(2, 2, Num(2026)))
	require.NoError(t, tbl.SetFormula(2, 2, "A1+1"))
	require.NoError(t, tbl.SetFormats(1, 1, [][]Format{{{Background: "CFE2F3", Bold: true}}}))
	require.NoError(t, tbl.SetColumnWidth(2, 30))
	require.NoError(t, tbl.SetRowHeight(1, 40))
	_, err := tbl.AddRules([]Rule{{Ranges: []string{"C1:C5"}, Kind: TextRule, Expr: "数学", Background: "CFE2F3"}})
	require.NoError(t, err)

	dst, _ := newTable(t, "other")
	out, err := tbl.CopyTo(dst, "copy")
	require.NoError(t, err)

	got, err := out.Cells(excel.NewRange(1, 1, 1, 3))
	require.NoError(t, err)
	assert.Equal(t, [][]Cell{{Num(2025), Str("月"), Str("03")}}, got)

	formula, err := out.Formula(2, 1)
	require.NoError(t, err)
	assert.Equal(t, "A1+1", formula)
	cached, err := out.Cell(2, 2)
	require.NoError(t, err)
	assert.Equal(t, "2026", cached.Text, "cached result survives the copy")

	f, err := out.Format(1, 1)
	require.NoError(t, err)
	assert.Equal(t, "CFE2F3", f.Background)
	assert.True(t, f.Bold)

	w, err := out.ColumnWidth(2)
	require.NoError(t, err)
	assert.InDelta(t, 30, w, 0.01)
	h, err := out.RowHeight(1)
	require.NoError(t, err)
	assert.InDelta(t, 40, h, 0.01)

	rules, err := out.Rules()
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, "数学", rules[0].Expr)

	within, err := tbl.CopyTo(src, "copy")
	require.NoError(t, err)
	c, err := within.Cell(1, 1)
	require.NoError(t, err)
	assert.Equal(t, Num(2025), c)
}

func TestMoveToFront(t *testing.T) {
	wb, _ := newTable(t, "first")
	_, err := wb.NewTable("2025年03月度")
	require.NoError(t, err)

	require.NoError(t, wb.MoveToFront("2025年03月度"))
	assert.Equal(t, []string{"2025年03月度", "first"}, wb.Tables())

	front, err := wb.First()
	require.NoError(t, err)
	assert.Equal(t, "2025年03月度", front.Name())
}

func TestSaveAndReopen(t *testing.T) {
	wb, tbl := newTable(t, "data")
	require.NoError(t, tbl.SetCells(1, 1, [][]Cell{Strs("x")}))
	require.NoError(t, wb.Save())

	again, err := Open(wb.Path())
	require.NoError(t, err)
	defer again.Close()
	tbl, err = again.Table("data")
	require.NoError(t, err)
	c, err := tbl.Cell(1, 1)
	require.NoError(t, err)
	assert.Equal(t, Str("x"), c)
}
