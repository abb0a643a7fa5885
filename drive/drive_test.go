package drive

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func openStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	c := &clock{t: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
	s, err := Open(t.TempDir(), append([]Option{WithClock(c.now)}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestFolders(t *testing.T) {
	s := openStore(t)
	root, err := s.CreateFolder("生徒フォルダ", "")
	require.NoError(t, err)
	_, err = s.CreateFolder("山田太郎さん", root.ID)
	require.NoError(t, err)
	sato, err := s.CreateFolder("佐藤花子さん（高2）", root.ID)
	require.NoError(t, err)

	folders, err := s.Folders(root.ID)
	require.NoError(t, err)
	require.Len(t, folders, 2)
	assert.Equal(t, "山田太郎さん", folders[0].Name)

	found, err := s.FindFolder(root.ID, "佐藤花子")
	require.NoError(t, err)
	assert.Equal(t, sato.ID, found.ID)

	_, err = s.FindFolder(root.ID, "鈴木")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.SetTrashed(sato.ID, true))
	_, err = s.FindFolder(root.ID, "佐藤花子")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.CreateFolder("x", "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestImportAndCopy(t *testing.T) {
	s := openStore(t)
	folder, err := s.CreateFolder("templates", "")
	require.NoError(t, err)

	src, err := s.Import(writeFile(t, "announce.txt", "see [monthlysheet]"), folder.ID, KindDocument)
	require.NoError(t, err)
	assert.Equal(t, "announce", src.Name)
	assert.Equal(t, SharingPrivate, src.Sharing)

	cp, err := s.CopyFile(src.ID, "copy", folder.ID)
	require.NoError(t, err)
	assert.Equal(t, KindDocument, cp.Kind)
	assert.NotEqual(t, src.ID, cp.ID)

	path, err := s.Path(cp.ID)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, ".txt"))
	body, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "see [monthlysheet]", string(body))

	_, err = s.CopyFile(folder.ID, "nope", folder.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFailedCopyLeavesNoEntry(t *testing.T) {
	s := openStore(t)
	folder, err := s.CreateFolder("templates", "")
	require.NoError(t, err)

	// Registered but never written, so there is no content to copy.
	empty, err := s.CreateFile("empty", folder.ID, KindWorkbook)
	require.NoError(t, err)
	_, err = s.CopyFile(empty.ID, "copy", folder.ID)
	require.Error(t, err)
	files, err := s.FilesByName(folder.ID, "copy")
	require.NoError(t, err)
	assert.Empty(t, files)

	_, err = s.Import(filepath.Join(t.TempDir(), "missing.xlsx"), folder.ID, KindWorkbook)
	require.Error(t, err)
	files, err = s.FilesByName(folder.ID, "missing")
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestFilesByNameNewestFirst(t *testing.T) {
	s := openStore(t)
	folder, err := s.CreateFolder("student", "")
	require.NoError(t, err)

	older, err := s.CreateFile("report", folder.ID, KindWorkbook)
	require.NoError(t, err)
	newer, err := s.CreateFile("report", folder.ID, KindWorkbook)
	require.NoError(t, err)
	_, err = s.CreateFile("other", folder.ID, KindWorkbook)
	require.NoError(t, err)

	files, err := s.FilesByName(folder.ID, "report")
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, newer.ID, files[0].ID)

	require.NoError(t, s.Touch(older.ID))
	files, err = s.FilesByName(folder.ID, "report")
	require.NoError(t, err)
	assert.Equal(t, older.ID, files[0].ID)
	assert.True(t, files[0].Updated.After(files[1].Updated))

	require.NoError(t, s.SetTrashed(older.ID, true))
	files, err = s.FilesByName(folder.ID, "report")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, newer.ID, files[0].ID)

	trashed, err := s.File(older.ID)
	require.NoError(t, err)
	assert.True(t, trashed.Trashed)
}

func TestSharingAndEditors(t *testing.T) {
	s := openStore(t)
	folder, err := s.CreateFolder("f", "")
	require.NoError(t, err)
	f, err := s.CreateFile("shared", folder.ID, KindWorkbook)
	require.NoError(t, err)

	require.NoError(t, s.SetSharing(f.ID, SharingAnyoneViewer))
	require.NoError(t, s.AddEditor(f.ID, "teacher@example.com"))
	require.NoError(t, s.AddEditor(f.ID, "teacher@example.com"))
	require.NoError(t, s.AddEditor(f.ID, "admin@example.com"))

	got, err := s.File(f.ID)
	require.NoError(t, err)
	assert.Equal(t, SharingAnyoneViewer, got.Sharing)

	editors, err := s.Editors(f.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"admin@example.com", "teacher@example.com"}, editors)

	assert.ErrorIs(t, s.SetSharing("missing", SharingPrivate), ErrNotFound)
	assert.ErrorIs(t, s.AddEditor("missing", "x@example.com"), ErrNotFound)
}

func TestURL(t *testing.T) {
	s := openStore(t)
	folder, err := s.CreateFolder("f", "")
	require.NoError(t, err)
	f, err := s.CreateFile("shared", folder.ID, KindWorkbook)
	require.NoError(t, err)

	u, err := s.URL(f.ID)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(u, "file://"))
	assert.True(t, strings.HasSuffix(u, f.ID+".xlsx"))

	hosted := openStore(t, WithBaseURL("https://drive.example.com/d/"))
	folder, err = hosted.CreateFolder("f", "")
	require.NoError(t, err)
	f, err = hosted.CreateFile("shared", folder.ID, KindWorkbook)
	require.NoError(t, err)
	u, err = hosted.URL(f.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://drive.example.com/d/"+f.ID, u)
}

func TestReopenKeepsIndex(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	require.NoError(t, err)
	folder, err := s.CreateFolder("persist", "")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(dir)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Folder(folder.ID)
	require.NoError(t, err)
	assert.Equal(t, "persist", got.Name)
}
