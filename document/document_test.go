package document

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDoc(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "announce.txt")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestReplaceText(t *testing.T) {
	path := writeDoc(t, "今月の報告: [monthlysheet]\n再掲: [monthlysheet]\n")
	doc, err := Open(path)
	require.NoError(t, err)

	n, err := doc.ReplaceText(`\[monthlysheet\]`, "https://example.com/$1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.NoError(t, doc.SaveAndClose())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "今月の報告: https://example.com/$1\n再掲: https://example.com/$1\n", string(data))
}

func TestReplaceTextNoMatchLeavesFile(t *testing.T) {
	path := writeDoc(t, "nothing here")
	doc, err := Open(path)
	require.NoError(t, err)

	n, err := doc.ReplaceText(`\[monthlysheet\]`, "x")
	require.NoError(t, err)
	assert.Zero(t, n)
	require.NoError(t, os.Remove(path))
	require.NoError(t, doc.SaveAndClose(), "unchanged documents are not written")
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestReplaceTextBadPattern(t *testing.T) {
	doc, err := Open(writeDoc(t, "x"))
	require.NoError(t, err)
	_, err = doc.ReplaceText(`[`, "y")
	assert.Error(t, err)
}

func TestOpenMissing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.txt"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReplacerSinglePass(t *testing.T) {
	doc, err := Open(writeDoc(t, "{{name}} / [monthlysheet]"))
	require.NoError(t, err)

	n, err := NewReplacer().
		Add("{{name}}", "[monthlysheet]").
		Add("[monthlysheet]", "URL").
		Apply(doc)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "[monthlysheet] / URL", doc.Body())
}
