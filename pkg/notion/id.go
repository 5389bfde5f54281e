package notion

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// NormalizeID accepts an object id in any of the forms the remote hands out
// (dashed, undashed, or the trailing segment of a page URL) and returns the
// canonical dashed form.
func NormalizeID(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}
	if i := strings.LastIndexAny(s, "/-"); i >= 0 && len(s)-i-1 == 32 {
		// page URLs end in "<slug>-<32 hex>"
		s = s[i+1:]
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return "", fmt.Errorf("invalid object id %q: %w", raw, err)
	}
	return id.String(), nil
}
