// Package scan classifies the nodes of a directory tree into hashable entries.
package scan

import "errors"

var (
	// ErrRootInaccessible is returned when the root cannot be enumerated.
	ErrRootInaccessible = errors.New("root directory is not available")

	// ErrEntryUnreadable is returned when a node below the root cannot be
	// classified or read.
	ErrEntryUnreadable = errors.New("entry is unreadable")
)

// MarkerFile is never recorded and does not keep a directory from being empty.
const MarkerFile = ".DS_Store"

// Kind is the classification of a filesystem node.
type Kind int

const (
	File Kind = iota
	EmptyDirectory
	NonEmptyDirectory
)

func (k Kind) String() string {
	switch k {
	case File:
		return "file"
	case EmptyDirectory:
		return "empty_directory"
	case NonEmptyDirectory:
		return "directory"
	}
	return "unknown"
}

// Entry is a file or an empty directory leaf.
type Entry struct {
	// Path is slash-separated and relative to the root, e.g. "docs/a.txt".
	Path string
	Kind Kind
}

// Result is the outcome of a scan.
type Result struct {
	Entries []Entry
	// Snapshots holds the names of snapshot files found directly in the root.
	Snapshots []string
}
