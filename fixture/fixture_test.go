package fixture

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManakiYoshihara/GAS-con-test/config"
	"github.com/ManakiYoshihara/GAS-con-test/domain"
	"github.com/ManakiYoshihara/GAS-con-test/merge"
	"github.com/ManakiYoshihara/GAS-con-test/sheet"
	"github.com/ManakiYoshihara/GAS-con-test/template"
)

func seed(t *testing.T, opts Options) *Env {
	t.Helper()
	env, err := Seed(t.TempDir(), opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = env.Drive.Close() })
	return env
}

func open(t *testing.T, env *Env, id string) *sheet.Workbook {
	t.Helper()
	path, err := env.Drive.Path(id)
	require.NoError(t, err)
	wb, err := sheet.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = wb.Close() })
	return wb
}

func TestSeedConfig(t *testing.T) {
	env := seed(t, Options{Students: 3, Unfoldered: 1})
	stores := env.Config.Stores
	for _, id := range []string{stores.Main, stores.Individual, stores.Group, stores.ReportTemplate, stores.SharedTemplate} {
		_, err := env.Drive.File(id)
		assert.NoError(t, err)
	}
	_, err := env.Drive.Folder(stores.TargetFolder)
	require.NoError(t, err)
	assert.Len(t, env.Folders, 2)
	require.NoError(t, env.Config.Validate())
}

func TestSeedStores(t *testing.T) {
	env := seed(t, Options{Students: 2, Lessons: 3, Now: time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)})

	indiv, err := open(t, env, env.Config.Stores.Individual).First()
	require.NoError(t, err)
	assert.Equal(t, domain.ResponsesTable, indiv.Name())
	header, err := indiv.Row(domain.SourceHeaderRow, len(individualHeaders))
	require.NoError(t, err)
	assert.Equal(t, individualHeaders, sheet.Texts(header))
	last, err := indiv.LastRow()
	require.NoError(t, err)
	assert.Equal(t, 2+2*3, last)

	groupWB := open(t, env, env.Config.Stores.Group)
	group, err := groupWB.First()
	require.NoError(t, err)
	header, err = group.Row(domain.GroupHeaderRow, len(groupHeaders))
	require.NoError(t, err)
	assert.Equal(t, domain.GroupKeyHeader, header[2].Text)
	assert.Equal(t, domain.GroupTriggerColumn, len(groupHeaders))
	date, err := group.Cell(3, 1)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(date.Text, "2025/06/"))
	assert.True(t, groupWB.Has(merge.MessageTable))

	main, err := open(t, env, env.Config.Stores.Main).Table(MainTable)
	require.NoError(t, err)
	box, err := main.Cell(2, domain.MainTriggerColumn)
	require.NoError(t, err)
	assert.Equal(t, sheet.Boolean(false), box)
}

func TestSeedTemplates(t *testing.T) {
	env := seed(t, Options{Students: 1, Variant: config.Basic()})
	wb := open(t, env, env.Config.Stores.ReportTemplate)
	for _, name := range []string{template.ReportTemplate, template.PeriodTemplate, domain.IndividualTable, domain.GroupTable} {
		assert.True(t, wb.Has(name), name)
	}

	proc, err := wb.Table(template.PeriodTemplate)
	require.NoError(t, err)
	formula, err := proc.Formula(1, 15)
	require.NoError(t, err)
	assert.Contains(t, formula, "DATE(2025, 3, 1)")
	formula, err = proc.Formula(1, 8)
	require.NoError(t, err)
	assert.Empty(t, formula, "offset 7 is not part of the basic variant")

	rep, err := wb.Table(template.ReportTemplate)
	require.NoError(t, err)
	header, err := rep.Row(8, len(ReportHeaders))
	require.NoError(t, err)
	assert.Equal(t, "内容", header[14].Text)
}

func TestSeedAnnouncements(t *testing.T) {
	env := seed(t, Options{Students: 2})
	for _, s := range env.Students {
		docs, err := env.Drive.FilesByName(env.Folders[s.Name], s.AnnouncementFileName())
		require.NoError(t, err)
		require.Len(t, docs, 1)
		path, err := env.Drive.Path(docs[0].ID)
		require.NoError(t, err)
		body, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(body), domain.AnnouncementToken)
	}
}
