package gate

import (
	"fmt"
	"strings"

	"github.com/okian/modelgate/internal/domain/model"
	"golang.org/x/mod/semver"
)

// canonical turns "1.2" into "v1.2" so it can be compared with semver.
func canonical(version string) string {
	v := strings.TrimSpace(version)
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}

// ValidateVersion checks that version is semantic-version-like and, when the
// history baseline carries a comparable version, strictly newer than it.
func ValidateVersion(version string, h model.ScoreHistory) error {
	if strings.TrimSpace(version) == "" {
		return fmt.Errorf("%w: version must not be empty", ErrInvalidVersion)
	}
	v := canonical(version)
	if !semver.IsValid(v) {
		return fmt.Errorf("%w: %q is not a semantic version", ErrInvalidVersion, version)
	}

	base, ok := h.Baseline()
	if !ok {
		return nil
	}
	prev := canonical(base.Version)
	if !semver.IsValid(prev) {
		// Free-form tags from older histories cannot be ordered.
		return nil
	}
	if semver.Compare(v, prev) <= 0 {
		return fmt.Errorf("%w: %q is not newer than baseline %q", ErrInvalidVersion, version, base.Version)
	}
	return nil
}
