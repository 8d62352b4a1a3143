package metrics

import (
	"errors"
)

// Sentinel kinds for metrics errors.
var (
	ErrExportFailed = errors.New("metrics export failed")
	ErrPushFailed   = errors.New("metrics push failed")
)
