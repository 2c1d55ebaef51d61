// Package check runs one integrity check: scan, hash, persist, compare.
package check

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/albertocavalcante/foldercheck/cmd/foldercheck/internal/diff"
	"github.com/albertocavalcante/foldercheck/cmd/foldercheck/internal/digest"
	"github.com/albertocavalcante/foldercheck/cmd/foldercheck/internal/scan"
	"github.com/albertocavalcante/foldercheck/cmd/foldercheck/internal/snapshot"
	"github.com/albertocavalcante/foldercheck/internal/log"
)

// Status is the terminal state of a run.
type Status int

const (
	// FirstRun means no earlier snapshot existed; only the new one was written.
	FirstRun Status = iota
	// NoChange means the new snapshot matches the previous one.
	NoChange
	// Changed means lines were added or removed since the previous snapshot.
	Changed
)

func (s Status) String() string {
	switch s {
	case FirstRun:
		return "first_run"
	case NoChange:
		return "no_change"
	case Changed:
		return "changed"
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler for JSON output.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Config configures a Checker.
type Config struct {
	// FS is the scanned root; snapshots are read from and written to it.
	FS snapshot.FS
	// Clock names new snapshots. Nil means the system clock.
	Clock     snapshot.Clock
	Workers   int
	Algorithm digest.Algorithm
	Exclude   []string
	Progress  digest.ProgressFunc
}

// Outcome describes a completed run.
type Outcome struct {
	Status   Status      `json:"status"`
	Snapshot string      `json:"snapshot"`
	Previous string      `json:"previous,omitempty"`
	Entries  int         `json:"entries"`
	Diff     diff.Result `json:"diff"`
}

// Checker runs checks against one root.
type Checker struct {
	scanner *scan.Scanner
	engine  *digest.Engine
	store   *snapshot.Store
	logger  *slog.Logger
}

// New creates a checker for cfg.
func New(cfg Config) *Checker {
	algorithm := cfg.Algorithm
	if algorithm == "" {
		algorithm = digest.DefaultAlgorithm
	}
	return &Checker{
		scanner: scan.New(cfg.FS, scan.WithExclude(cfg.Exclude...)),
		engine: digest.NewEngine(cfg.FS,
			digest.WithAlgorithm(algorithm),
			digest.WithWorkers(cfg.Workers),
			digest.WithProgress(cfg.Progress)),
		store:  snapshot.NewStore(cfg.FS, cfg.Clock),
		logger: log.Component("check"),
	}
}

// Run performs one check. Any failure before the new snapshot is written
// leaves the root untouched, so the last good snapshot stays the baseline.
func (c *Checker) Run(ctx context.Context) (*Outcome, error) {
	res, err := c.scanner.Scan(ctx)
	if err != nil {
		return nil, err
	}

	entries, err := c.engine.Hash(ctx, res.Entries)
	if err != nil {
		return nil, err
	}
	current := snapshot.Lines(entries)

	previous, found := c.store.Latest(res.Snapshots)
	if !found {
		name, err := c.store.Write(entries, "")
		if err != nil {
			return nil, err
		}
		c.logger.Info("first check complete", "snapshot", name, "entries", len(entries))
		return &Outcome{
			Status:   FirstRun,
			Snapshot: name,
			Entries:  len(entries),
			Diff:     diff.Result{Added: []string{}, Removed: []string{}},
		}, nil
	}

	// Load before writing: a broken baseline must not be superseded.
	prevLines, err := c.store.Load(previous)
	if err != nil {
		return nil, err
	}

	name, err := c.store.Write(entries, previous)
	if err != nil {
		return nil, err
	}

	result := diff.Compute(prevLines, current)
	status := Changed
	if result.Empty() {
		status = NoChange
	}
	c.logger.Info("check complete",
		"previous", previous,
		"snapshot", name,
		"added", len(result.Added),
		"removed", len(result.Removed))

	return &Outcome{
		Status:   status,
		Snapshot: name,
		Previous: previous,
		Entries:  len(entries),
		Diff:     result,
	}, nil
}

// History describes all snapshots in the root, oldest first.
func (c *Checker) History() ([]snapshot.Info, error) {
	names, err := c.scanner.Snapshots()
	if err != nil {
		return nil, err
	}
	return c.store.List(names)
}

// Comparison is the difference between two stored snapshots.
type Comparison struct {
	From     string      `json:"from"`
	To       string      `json:"to"`
	Previous []string    `json:"-"`
	Current  []string    `json:"-"`
	Diff     diff.Result `json:"diff"`
}

// Compare diffs two stored snapshots given by name or ID. An empty to
// means the latest snapshot.
func (c *Checker) Compare(from, to string) (*Comparison, error) {
	names, err := c.scanner.Snapshots()
	if err != nil {
		return nil, err
	}

	cmp := &Comparison{}
	if cmp.From, err = c.store.Resolve(names, from); err != nil {
		return nil, err
	}
	if to == "" {
		latest, ok := c.store.Latest(names)
		if !ok {
			return nil, fmt.Errorf("%w: no snapshots in root", snapshot.ErrSnapshotParse)
		}
		cmp.To = latest
	} else if cmp.To, err = c.store.Resolve(names, to); err != nil {
		return nil, err
	}

	if cmp.Previous, err = c.store.Load(cmp.From); err != nil {
		return nil, err
	}
	if cmp.Current, err = c.store.Load(cmp.To); err != nil {
		return nil, err
	}
	cmp.Diff = diff.Compute(cmp.Previous, cmp.Current)
	return cmp, nil
}
