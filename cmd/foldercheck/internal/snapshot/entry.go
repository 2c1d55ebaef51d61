package snapshot

import (
	"path/filepath"
	"strings"
)

// EmptyDirectoryDigest stands in for the digest of an empty directory leaf.
// It is 32 characters wide like a real digest and cannot be mistaken for hex.
const EmptyDirectoryDigest = "         empty_directory        "

// Entry is one hashed node of a snapshot.
type Entry struct {
	// Path is root-relative and starts with the platform separator, e.g. "/docs/a.txt".
	Path   string
	Digest string
}

// Line serializes e as it appears in a snapshot file (without newline).
func (e Entry) Line() string {
	return e.Digest + " ." + e.Path
}

// DisplayPath converts a slash-separated path relative to the root into the
// form stored in snapshot lines.
func DisplayPath(rel string) string {
	return string(filepath.Separator) + filepath.FromSlash(rel)
}

// Lines serializes entries in the given order.
func Lines(entries []Entry) []string {
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = e.Line()
	}
	return lines
}

// Encode renders lines as snapshot file content: one newline-terminated line each.
func Encode(lines []string) []byte {
	var b strings.Builder
	for _, line := range lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return []byte(b.String())
}

// Decode splits snapshot file content into lines. A trailing "\r" is dropped
// from each line so files edited on Windows still compare equal.
func Decode(data []byte) []string {
	text := string(data)
	if text == "" {
		return []string{}
	}
	text = strings.TrimSuffix(text, "\n")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
