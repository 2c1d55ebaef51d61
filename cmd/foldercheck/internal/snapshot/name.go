// Package snapshot names, selects, loads and persists snapshot files.
//
// A snapshot is a text file in the scanned root named checkresult-YYMMDDhhmmss.txt.
// Each line is "<digest> .<path>", sorted by path. The 12-digit timestamp in the
// name is both the collision discriminator and the ordering key: the snapshot with
// the numerically largest ID is the baseline for the next run.
package snapshot

import (
	"fmt"
	"path"
	"strconv"
	"time"
)

const (
	namePrefix = "checkresult-"
	nameSuffix = ".txt"

	// IDLen is the number of digits in a snapshot ID.
	IDLen = 12

	// NameLen is the exact length of a snapshot file name.
	NameLen = len(namePrefix) + IDLen + len(nameSuffix)

	idLayout = "060102150405"

	// tempPattern names the staging file a snapshot is written through.
	tempPattern = ".checkresult-*.tmp"
)

// ID is the 12-digit local timestamp embedded in a snapshot file name.
type ID string

// ParseName extracts the ID from a snapshot file name.
func ParseName(name string) (ID, bool) {
	if len(name) != NameLen {
		return "", false
	}
	if name[:len(namePrefix)] != namePrefix || name[NameLen-len(nameSuffix):] != nameSuffix {
		return "", false
	}
	digits := name[len(namePrefix) : len(namePrefix)+IDLen]
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return "", false
		}
	}
	return ID(digits), true
}

// IsName reports whether name follows the snapshot naming pattern.
func IsName(name string) bool {
	_, ok := ParseName(name)
	return ok
}

// IsTemp reports whether name is a staging file left by an in-flight write.
func IsTemp(name string) bool {
	ok, _ := path.Match(tempPattern, name)
	return ok
}

// IDFromTime formats t (in its own location) as a snapshot ID.
func IDFromTime(t time.Time) ID {
	return ID(t.Format(idLayout))
}

// Name returns the file name for id.
func (id ID) Name() string {
	return namePrefix + string(id) + nameSuffix
}

// Seq returns the numeric ordering key. Malformed IDs order first.
func (id ID) Seq() uint64 {
	n, err := strconv.ParseUint(string(id), 10, 64)
	if err != nil || len(id) != IDLen {
		return 0
	}
	return n
}

// Time interprets id as a timestamp in loc.
func (id ID) Time(loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(idLayout, string(id), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("snapshot id %q is not a timestamp: %w", string(id), err)
	}
	return t, nil
}

// NextID picks the ID for a new snapshot written at now.
//
// Normally that is simply now formatted. When a snapshot with the same or a
// later ID already exists (a re-run within the same second, or the clock went
// backwards) the ID is moved one second past latest, so the new snapshot still
// sorts last and becomes the next baseline. latest may be empty.
func NextID(now time.Time, latest ID) ID {
	candidate := IDFromTime(now)
	if latest == "" || candidate.Seq() > latest.Seq() {
		return candidate
	}
	if t, err := latest.Time(now.Location()); err == nil {
		if next := IDFromTime(t.Add(time.Second)); next.Seq() > latest.Seq() {
			return next
		}
	}
	// latest is digits but not a valid timestamp; keep the numeric order.
	if seq := latest.Seq(); seq+1 < 1e12 {
		return ID(fmt.Sprintf("%012d", seq+1))
	}
	return candidate
}
