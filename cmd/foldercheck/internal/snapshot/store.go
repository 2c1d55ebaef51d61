package snapshot

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"slices"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/albertocavalcante/foldercheck/internal/log"
)

var (
	// ErrSnapshotParse is returned when a selected snapshot cannot be read.
	ErrSnapshotParse = errors.New("snapshot cannot be read")

	// ErrSnapshotExists is returned when the name chosen for a new snapshot
	// is already taken, typically by a concurrent run.
	ErrSnapshotExists = errors.New("snapshot already exists")
)

// Store reads and writes snapshots in a root directory.
type Store struct {
	fsys   FS
	clock  Clock
	logger *slog.Logger
}

// NewStore creates a store over fsys. A nil clock means SystemClock.
func NewStore(fsys FS, clock Clock) *Store {
	if clock == nil {
		clock = SystemClock
	}
	return &Store{
		fsys:   fsys,
		clock:  clock,
		logger: log.Component("snapshot"),
	}
}

// Latest returns the snapshot name with the numerically largest ID.
// ok is false when names holds no snapshot; that is not an error, it means
// this is the first run.
func (s *Store) Latest(names []string) (name string, ok bool) {
	var best ID
	for _, n := range names {
		id, valid := ParseName(n)
		if !valid {
			continue
		}
		if !ok || id.Seq() > best.Seq() {
			best, name, ok = id, n, true
		}
	}
	return name, ok
}

// Load returns the lines of the named snapshot verbatim, except that a
// trailing "\r" is dropped from each line (see Decode).
func (s *Store) Load(name string) ([]string, error) {
	data, err := s.fsys.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSnapshotParse, name, err)
	}
	lines := Decode(data)
	s.logger.Debug("loaded snapshot", "name", name, "lines", len(lines))
	return lines, nil
}

// Write persists entries, which must already be sorted by path, as a new
// snapshot and returns its name. previous is the current baseline name (or
// empty) and keeps the new ID strictly after it.
func (s *Store) Write(entries []Entry, previous string) (string, error) {
	latest, _ := ParseName(previous)
	id := NextID(s.clock.Now(), latest)
	name := id.Name()

	if err := s.fsys.WriteFileExclusive(name, Encode(Lines(entries))); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("%w: %s", ErrSnapshotExists, name)
		}
		return "", fmt.Errorf("failed to write snapshot %s: %w", name, err)
	}

	s.logger.Info("wrote snapshot", "name", name, "entries", len(entries))
	return name, nil
}

// Info describes a stored snapshot.
type Info struct {
	Name        string    `json:"name"`
	ID          ID        `json:"id"`
	Time        time.Time `json:"time,omitzero"`
	Entries     int       `json:"entries"`
	Fingerprint string    `json:"fingerprint"`
}

// List describes every snapshot in names, oldest first. Snapshots with
// identical content share a fingerprint.
func (s *Store) List(names []string) ([]Info, error) {
	infos := make([]Info, 0, len(names))
	for _, name := range names {
		id, ok := ParseName(name)
		if !ok {
			continue
		}
		data, err := s.fsys.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrSnapshotParse, name, err)
		}
		info := Info{
			Name:        name,
			ID:          id,
			Entries:     len(Decode(data)),
			Fingerprint: Fingerprint(data),
		}
		if t, err := id.Time(time.Local); err == nil {
			info.Time = t
		}
		infos = append(infos, info)
	}
	slices.SortFunc(infos, func(a, b Info) int {
		switch {
		case a.ID.Seq() < b.ID.Seq():
			return -1
		case a.ID.Seq() > b.ID.Seq():
			return 1
		}
		return 0
	})
	return infos, nil
}

// Resolve maps a user reference (full name or bare ID) to a snapshot name
// among names.
func (s *Store) Resolve(names []string, ref string) (string, error) {
	want := ref
	if _, err := strconv.ParseUint(ref, 10, 64); err == nil && len(ref) == IDLen {
		want = ID(ref).Name()
	}
	if slices.Contains(names, want) {
		return want, nil
	}
	return "", fmt.Errorf("%w: no snapshot %q", ErrSnapshotParse, ref)
}

// Fingerprint is the xxHash64 of snapshot content, hex encoded.
func Fingerprint(data []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(data))
}
