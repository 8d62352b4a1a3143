package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrDecode      = errors.New("decode stored document")
	ErrNoArtifact  = errors.New("model artifact not found")
	ErrInvalidPath = errors.New("invalid store path")
)
