// Package drive is a local file and folder store. File contents live under
// the store root and their metadata (names, parents, trash, sharing,
// editors, timestamps) is indexed in SQLite.
package drive

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when an id or name does not resolve.
var ErrNotFound = errors.New("drive: not found")

// Kind tells folders from the two file kinds the store holds.
type Kind string

const (
	KindFolder   Kind = "folder"
	KindWorkbook Kind = "workbook"
	KindDocument Kind = "document"
)

func (k Kind) ext() string {
	switch k {
	case KindWorkbook:
		return ".xlsx"
	case KindDocument:
		return ".txt"
	}
	return ""
}

// Sharing is the link-sharing level of an entry.
type Sharing string

const (
	SharingPrivate      Sharing = "private"
	SharingAnyoneViewer Sharing = "anyone_with_link:view"
)

// Entry is one folder or file.
type Entry struct {
	ID      string
	Name    string
	Parent  string
	Kind    Kind
	Trashed bool
	Sharing Sharing
	Created time.Time
	Updated time.Time
}

// IsFolder reports whether the entry is a folder.
func (e Entry) IsFolder() bool { return e.Kind == KindFolder }

// Store is an open drive.
type Store struct {
	db      *sql.DB
	root    string
	baseURL string
	now     func() time.Time
	log     *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithBaseURL sets the prefix URL returns. An empty or "file://" base yields
// file URLs of the stored content.
func WithBaseURL(base string) Option {
	return func(s *Store) { s.baseURL = base }
}

// WithClock replaces time.Now for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the logger used for store events.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// Open opens the drive rooted at root, creating root/.drive/index.db and the
// object directory when missing.
func Open(root string, opts ...Option) (*Store, error) {
	s := &Store{root: root, baseURL: "file://", now: time.Now, log: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}

	if err := os.MkdirAll(s.objectDir(), 0o755); err != nil {
		return nil, fmt.Errorf("create drive directory: %w", err)
	}

	db, err := sql.Open("sqlite", filepath.Join(root, ".drive", "index.db"))
	if err != nil {
		return nil, fmt.Errorf("open drive index: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	for _, pragma := range []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA journal_mode = WAL",
		"PRAGMA foreign_keys = ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			s.log.Debug("sqlite pragma failed", zap.String("pragma", pragma), zap.Error(err))
		}
	}

	s.db = db
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS entries (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		parent TEXT NOT NULL DEFAULT '',
		kind TEXT NOT NULL,
		trashed INTEGER NOT NULL DEFAULT 0,
		sharing TEXT NOT NULL DEFAULT 'private',
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_entries_parent ON entries(parent);
	CREATE INDEX IF NOT EXISTS idx_entries_name ON entries(parent, name);

	CREATE TABLE IF NOT EXISTS editors (
		entry_id TEXT NOT NULL REFERENCES entries(id),
		email TEXT NOT NULL,
		UNIQUE(entry_id, email)
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create drive schema: %w", err)
	}
	return nil
}

// Close closes the index.
func (s *Store) Close() error {
	return s.db.Close()
}

// Root returns the directory the store lives in.
func (s *Store) Root() string { return s.root }

func (s *Store) objectDir() string {
	return filepath.Join(s.root, ".drive", "objects")
}

func (s *Store) stamp() int64 {
	return s.now().UTC().UnixNano()
}

const entryColumns = "id, name, parent, kind, trashed, sharing, created_at, updated_at"

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (Entry, error) {
	var (
		e                Entry
		trashed          int
		created, updated int64
	)
	if err := row.Scan(&e.ID, &e.Name, &e.Parent, &e.Kind, &trashed, &e.Sharing, &created, &updated); err != nil {
		return Entry{}, err
	}
	e.Trashed = trashed != 0
	e.Created = time.Unix(0, created).UTC()
	e.Updated = time.Unix(0, updated).UTC()
	return e, nil
}

func (s *Store) entry(id string) (Entry, error) {
	row := s.db.QueryRow("SELECT "+entryColumns+" FROM entries WHERE id = ?", id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Entry{}, fmt.Errorf("load entry %s: %w", id, err)
	}
	return e, nil
}

func (s *Store) list(query string, args ...any) ([]Entry, error) {
	rows, err := s.db.Query("SELECT "+entryColumns+" FROM entries WHERE "+query, args...)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) insert(name, parent string, kind Kind) (Entry, error) {
	now := s.stamp()
	e := Entry{
		ID:      uuid.NewString(),
		Name:    name,
		Parent:  parent,
		Kind:    kind,
		Sharing: SharingPrivate,
		Created: time.Unix(0, now).UTC(),
		Updated: time.Unix(0, now).UTC(),
	}
	_, err := s.db.Exec(
		"INSERT INTO entries ("+entryColumns+") VALUES (?, ?, ?, ?, 0, ?, ?, ?)",
		e.ID, e.Name, e.Parent, string(e.Kind), string(e.Sharing), now, now,
	)
	if err != nil {
		return Entry{}, fmt.Errorf("insert %s %q: %w", kind, name, err)
	}
	return e, nil
}

// CreateFolder adds a folder under parent. An empty parent makes a top-level
// folder.
func (s *Store) CreateFolder(name, parent string) (Entry, error) {
	if parent != "" {
		if _, err := s.Folder(parent); err != nil {
			return Entry{}, err
		}
	}
	return s.insert(name, parent, KindFolder)
}

// Folder returns a folder that is not trashed.
func (s *Store) Folder(id string) (Entry, error) {
	e, err := s.entry(id)
	if err != nil {
		return Entry{}, err
	}
	if !e.IsFolder() || e.Trashed {
		return Entry{}, fmt.Errorf("%w: folder %s", ErrNotFound, id)
	}
	return e, nil
}

// Folders lists the live child folders of parent in creation order.
func (s *Store) Folders(parent string) ([]Entry, error) {
	return s.list("parent = ? AND kind = ? AND trashed = 0 ORDER BY created_at, rowid",
		parent, string(KindFolder))
}

// FindFolder returns the first child folder of parent whose name contains
// the given text.
func (s *Store) FindFolder(parent, contains string) (Entry, error) {
	folders, err := s.Folders(parent)
	if err != nil {
		return Entry{}, err
	}
	for _, f := range folders {
		if strings.Contains(f.Name, contains) {
			return f, nil
		}
	}
	return Entry{}, fmt.Errorf("%w: folder containing %q in %s", ErrNotFound, contains, parent)
}

// File returns a file entry, trashed or not.
func (s *Store) File(id string) (Entry, error) {
	e, err := s.entry(id)
	if err != nil {
		return Entry{}, err
	}
	if e.IsFolder() {
		return Entry{}, fmt.Errorf("%w: file %s", ErrNotFound, id)
	}
	return e, nil
}

// FilesByName lists the live files named name in folder, most recently
// updated first.
func (s *Store) FilesByName(folder, name string) ([]Entry, error) {
	return s.list("parent = ? AND name = ? AND kind <> ? AND trashed = 0 ORDER BY updated_at DESC, rowid DESC",
		folder, name, string(KindFolder))
}

// CreateFile registers an empty file and returns it. The caller writes the
// content to Path.
func (s *Store) CreateFile(name, folder string, kind Kind) (Entry, error) {
	if kind == KindFolder {
		return Entry{}, fmt.Errorf("create file %q: kind %s is not a file kind", name, kind)
	}
	if _, err := s.Folder(folder); err != nil {
		return Entry{}, err
	}
	return s.insert(name, folder, kind)
}

// Import copies the file at path into folder. The entry is named after the
// file without its extension.
func (s *Store) Import(path, folder string, kind Kind) (Entry, error) {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	e, err := s.CreateFile(name, folder, kind)
	if err != nil {
		return Entry{}, err
	}
	if err := copyContent(path, s.contentPath(e)); err != nil {
		return Entry{}, s.discard(e, fmt.Errorf("import %s: %w", path, err))
	}
	s.log.Debug("file imported", zap.String("id", e.ID), zap.String("name", name))
	return e, nil
}

// CopyFile duplicates the content of srcID into a new file in folder.
func (s *Store) CopyFile(srcID, name, folder string) (Entry, error) {
	src, err := s.File(srcID)
	if err != nil {
		return Entry{}, err
	}
	e, err := s.CreateFile(name, folder, src.Kind)
	if err != nil {
		return Entry{}, err
	}
	if err := copyContent(s.contentPath(src), s.contentPath(e)); err != nil {
		return Entry{}, s.discard(e, fmt.Errorf("copy %s to %q: %w", srcID, name, err))
	}
	s.log.Debug("file copied", zap.String("src", srcID), zap.String("id", e.ID), zap.String("name", name))
	return e, nil
}

// discard removes an entry whose content could not be written, along with
// any partial content, and returns cause joined with cleanup failures.
func (s *Store) discard(e Entry, cause error) error {
	errs := []error{cause}
	if _, err := s.db.Exec("DELETE FROM entries WHERE id = ?", e.ID); err != nil {
		errs = append(errs, fmt.Errorf("discard %s: %w", e.ID, err))
	}
	if err := os.Remove(s.contentPath(e)); err != nil && !errors.Is(err, os.ErrNotExist) {
		errs = append(errs, fmt.Errorf("discard %s content: %w", e.ID, err))
	}
	return errors.Join(errs...)
}

func (s *Store) update(id, set string, args ...any) error {
	res, err := s.db.Exec("UPDATE entries SET "+set+" WHERE id = ?", append(args, id)...)
	if err != nil {
		return fmt.Errorf("update %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// SetTrashed moves an entry to or out of the trash.
func (s *Store) SetTrashed(id string, trashed bool) error {
	flag := 0
	if trashed {
		flag = 1
	}
	return s.update(id, "trashed = ?, updated_at = ?", flag, s.stamp())
}

// SetSharing changes the link-sharing level.
func (s *Store) SetSharing(id string, sharing Sharing) error {
	return s.update(id, "sharing = ?", string(sharing))
}

// Touch marks the entry as updated now.
func (s *Store) Touch(id string) error {
	return s.update(id, "updated_at = ?", s.stamp())
}

// AddEditor grants edit access. Adding an existing editor is a no-op.
func (s *Store) AddEditor(id, email string) error {
	if _, err := s.entry(id); err != nil {
		return err
	}
	if _, err := s.db.Exec("INSERT OR IGNORE INTO editors (entry_id, email) VALUES (?, ?)", id, email); err != nil {
		return fmt.Errorf("add editor %s to %s: %w", email, id, err)
	}
	return nil
}

// Editors lists the editors of an entry in alphabetical order.
func (s *Store) Editors(id string) ([]string, error) {
	rows, err := s.db.Query("SELECT email FROM editors WHERE entry_id = ? ORDER BY email", id)
	if err != nil {
		return nil, fmt.Errorf("list editors of %s: %w", id, err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, err
		}
		out = append(out, email)
	}
	return out, rows.Err()
}

// Path returns where the content of a file lives on disk.
func (s *Store) Path(id string) (string, error) {
	e, err := s.File(id)
	if err != nil {
		return "", err
	}
	return s.contentPath(e), nil
}

// URL returns the address a reader opens the file with.
func (s *Store) URL(id string) (string, error) {
	path, err := s.Path(id)
	if err != nil {
		return "", err
	}
	if s.baseURL == "" || s.baseURL == "file://" {
		abs, err := filepath.Abs(path)
		if err != nil {
			return "", err
		}
		return (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String(), nil
	}
	return strings.TrimSuffix(s.baseURL, "/") + "/" + id, nil
}

func (s *Store) contentPath(e Entry) string {
	return filepath.Join(s.objectDir(), e.ID+e.Kind.ext())
}

func copyContent(from, to string) error {
	in, err := os.Open(from)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(to)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
