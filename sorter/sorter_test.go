package sorter

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManakiYoshihara/GAS-con-test/excel"
	"github.com/ManakiYoshihara/GAS-con-test/sheet"
)

func table(t *testing.T, rows ...[]string) *sheet.Table {
	t.Helper()
	wb := sheet.Create(filepath.Join(t.TempDir(), "book.xlsx"))
	t.Cleanup(func() { _ = wb.Close() })
	tbl, err := wb.NewTable("集団授業記録用")
	require.NoError(t, err)
	for i, r := range rows {
		require.NoError(t, tbl.SetCells(i+1, 1, [][]sheet.Cell{sheet.Strs(r...)}))
	}
	return tbl
}

func body(t *testing.T, tbl *sheet.Table) [][]string {
	t.Helper()
	rows, cols, err := tbl.Dimensions()
	require.NoError(t, err)
	got, err := tbl.Values(excel.NewRange(2, 1, rows-1, cols))
	require.NoError(t, err)
	return got
}

func TestSortBySubjectThenDate(t *testing.T) {
	tbl := table(t,
		[]string{"教科", "日程"},
		[]string{"math", "2024-02"},
		[]string{"eng", "2024-01"},
		[]string{"math", "2024-01"},
	)

	sorted, err := Sort(tbl, GroupKeys...)
	require.NoError(t, err)
	assert.True(t, sorted)

	want := [][]string{{"eng", "2024-01"}, {"math", "2024-01"}, {"math", "2024-02"}}
	if diff := cmp.Diff(want, body(t, tbl)); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestSortIsStable(t *testing.T) {
	tbl := table(t,
		[]string{"名前", "教科"},
		[]string{"c", "数学"},
		[]string{"a", "英語"},
		[]string{"b", "数学"},
	)

	_, err := Sort(tbl, "教科", "日程")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"c", "数学"}, {"b", "数学"}, {"a", "英語"}}, body(t, tbl))
}

func TestSortSkips(t *testing.T) {
	one := table(t, []string{"教科"}, []string{"math"})
	sorted, err := Sort(one, GroupKeys...)
	require.NoError(t, err)
	assert.False(t, sorted, "a single data row is left alone")

	unknown := table(t, []string{"名前"}, []string{"b"}, []string{"a"})
	sorted, err = Sort(unknown, GroupKeys...)
	require.NoError(t, err)
	assert.False(t, sorted)
	assert.Equal(t, [][]string{{"b"}, {"a"}}, body(t, unknown))
}
