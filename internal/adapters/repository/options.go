package repository

import "os"

// Default file modes.
const (
	defaultFilePerm os.FileMode = 0o644
	defaultDirPerm  os.FileMode = 0o755
)

// Option applies a configuration option to a fileStore.
type Option func(*fileStore)

// WithFilePerm sets the mode of written documents.
func WithFilePerm(perm os.FileMode) Option {
	return func(s *fileStore) {
		if perm != 0 {
			s.filePerm = perm
		}
	}
}

// WithDirPerm sets the mode of created directories.
func WithDirPerm(perm os.FileMode) Option {
	return func(s *fileStore) {
		if perm != 0 {
			s.dirPerm = perm
		}
	}
}

// WithIndent controls pretty-printing of JSON documents.
func WithIndent(indent string) Option {
	return func(s *fileStore) {
		s.indent = indent
	}
}
