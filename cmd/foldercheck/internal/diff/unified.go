package diff

import (
	"github.com/pmezard/go-difflib/difflib"
)

// DefaultContext is the number of unchanged lines shown around each hunk.
const DefaultContext = 3

// Unified renders previous→current as a unified diff. Because snapshot lines
// are sorted by path, a changed file appears as adjacent -/+ lines in one hunk.
// An empty string means the snapshots are identical.
func Unified(fromName, toName string, previous, current []string, context int) (string, error) {
	if context < 0 {
		context = DefaultContext
	}
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        withNewlines(previous),
		B:        withNewlines(current),
		FromFile: fromName,
		ToFile:   toName,
		Context:  context,
	})
}

func withNewlines(lines []string) []string {
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = line + "\n"
	}
	return out
}
