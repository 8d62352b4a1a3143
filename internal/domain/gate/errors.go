package gate

import "errors"

// Sentinel kinds for gate failures. Callers distinguish them with errors.Is.
//
// ErrRegression is the expected quality signal. The rest are infrastructure or
// contract faults.
var (
	ErrTraining       = errors.New("training failed")
	ErrInvalidScore   = errors.New("invalid score")
	ErrRegression     = errors.New("model regression detected")
	ErrCorruptHistory = errors.New("corrupt score history")
	ErrInvalidVersion = errors.New("invalid version tag")
)
