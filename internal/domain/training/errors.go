package training

import "errors"

// Sentinel kinds for training errors.
var (
	ErrEmptyTrainingSet = errors.New("empty training set")
	ErrInvalidParams    = errors.New("invalid training parameters")
	ErrFeatureMismatch  = errors.New("feature count mismatch")
)
