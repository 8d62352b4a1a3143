// Package model contains domain models passed between layers.
package model

// ScoreRecord is one evaluated model version and its score.
// Records are immutable once written to the history.
type ScoreRecord struct {
	Version string  `json:"version" yaml:"version"` // semantic-version-like tag, e.g. "1.1"
	Score   float64 `json:"score" yaml:"score"`     // accuracy in [0, 1]
}

// ScoreHistory is the chronological list of recorded scores.
// The last element is the current baseline.
type ScoreHistory []ScoreRecord

// Baseline returns the most recent record. ok is false for an empty history.
func (h ScoreHistory) Baseline() (rec ScoreRecord, ok bool) {
	if len(h) == 0 {
		return ScoreRecord{}, false
	}
	return h[len(h)-1], true
}

// Append returns a new history with rec added at the end.
// The receiver is never modified.
func (h ScoreHistory) Append(rec ScoreRecord) ScoreHistory {
	out := make(ScoreHistory, len(h), len(h)+1)
	copy(out, h)
	return append(out, rec)
}

// Len returns the number of records.
func (h ScoreHistory) Len() int { return len(h) }
