// Package diff compares two snapshots line by line.
//
// Lines are compared as whole strings, so a file whose content changed shows
// up once as removed (old digest) and once as added (new digest). There is no
// "modified" category.
package diff

// Result is the symmetric difference between two snapshots.
type Result struct {
	Added   []string `json:"added"`
	Removed []string `json:"removed"`
}

// Compute returns the lines only in current (Added) and only in previous
// (Removed). Each side keeps the order of its input.
func Compute(previous, current []string) Result {
	prevSet := make(map[string]struct{}, len(previous))
	for _, line := range previous {
		prevSet[line] = struct{}{}
	}
	curSet := make(map[string]struct{}, len(current))
	for _, line := range current {
		curSet[line] = struct{}{}
	}

	r := Result{Added: []string{}, Removed: []string{}}
	for _, line := range previous {
		if _, ok := curSet[line]; !ok {
			r.Removed = append(r.Removed, line)
		}
	}
	for _, line := range current {
		if _, ok := prevSet[line]; !ok {
			r.Added = append(r.Added, line)
		}
	}
	return r
}

// Empty reports whether nothing changed.
func (r Result) Empty() bool {
	return len(r.Added) == 0 && len(r.Removed) == 0
}

// TotalChanges returns the number of added plus removed lines.
func (r Result) TotalChanges() int {
	return len(r.Added) + len(r.Removed)
}
