package dataset

import "errors"

// Sentinel kinds for dataset errors.
var (
	ErrMalformedData = errors.New("malformed dataset")
	ErrInvalidSplit  = errors.New("invalid train/test split")
)
