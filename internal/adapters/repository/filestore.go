package repository

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/peterbourgon/diskv"
)

// tempDirName is created next to the document while a write is in flight.
const tempDirName = ".modelgate-tmp"

// fileStore reads and atomically rewrites a single JSON document.
// diskv stages each write in a temp dir on the same filesystem and renames
// it over the target, so readers never see a partial file.
type fileStore struct {
	path     string
	dir      string
	key      string
	filePerm os.FileMode
	dirPerm  os.FileMode
	indent   string
	disk     *diskv.Diskv
}

func newFileStore(path string, opts ...Option) (*fileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidPath)
	}
	key := filepath.Base(path)
	if key == "." || key == string(filepath.Separator) {
		return nil, fmt.Errorf("%w: %q names a directory", ErrInvalidPath, path)
	}
	s := &fileStore{
		path:     path,
		dir:      filepath.Dir(path),
		key:      key,
		filePerm: defaultFilePerm,
		dirPerm:  defaultDirPerm,
		indent:   "  ",
	}
	for _, opt := range opts {
		opt(s)
	}
	s.disk = diskv.New(diskv.Options{
		BasePath:     s.dir,
		TempDir:      filepath.Join(s.dir, tempDirName),
		Transform:    func(string) []string { return []string{} },
		CacheSizeMax: 0,
		PathPerm:     s.dirPerm,
		FilePerm:     s.filePerm,
	})
	return s, nil
}

// exists reports whether the document is present.
func (s *fileStore) exists() bool {
	return s.disk.Has(s.key)
}

// read returns the raw document. Missing documents surface os.ErrNotExist;
// a directory at the document path is ErrInvalidPath.
func (s *fileStore) read() ([]byte, error) {
	if fi, err := os.Stat(s.path); err == nil && fi.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrInvalidPath, s.path)
	}
	b, err := s.disk.Read(s.key)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	return b, nil
}

// readJSON decodes the document into v, rejecting unknown fields.
func (s *fileStore) readJSON(v any) error {
	b, err := s.read()
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrDecode, s.path, err)
	}
	return nil
}

// writeJSON encodes v and atomically replaces the document.
func (s *fileStore) writeJSON(v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", s.indent)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode %s: %w", s.path, err)
	}
	if err := os.MkdirAll(s.dir, s.dirPerm); err != nil {
		return fmt.Errorf("create %s: %w", s.dir, err)
	}
	if err := s.disk.Write(s.key, buf.Bytes()); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	// The staging dir is empty after the rename; leave nothing behind.
	_ = os.Remove(filepath.Join(s.dir, tempDirName))
	return nil
}
