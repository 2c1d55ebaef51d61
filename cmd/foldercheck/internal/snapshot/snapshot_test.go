package snapshot

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"testing/fstest"
	"time"
)

func fixedClock(t time.Time) Clock {
	return ClockFunc(func() time.Time { return t })
}

func TestParseName(t *testing.T) {
	tests := []struct {
		name   string
		wantID ID
		wantOK bool
	}{
		{"checkresult-230105093000.txt", "230105093000", true},
		{"checkresult-000000000000.txt", "000000000000", true},
		{"checkresult-23010509300a.txt", "", false},
		{"checkresult-2301050930.txt", "", false},
		{"checkresult-2301050930001.txt", "", false},
		{"Checkresult-230105093000.txt", "", false},
		{"checkresult-230105093000.log", "", false},
		{"checkresult-２３0105093000.txt", "", false},
		{"notes.txt", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := ParseName(tt.name)
			if ok != tt.wantOK || id != tt.wantID {
				t.Errorf("ParseName(%q) = (%q, %v), want (%q, %v)", tt.name, id, ok, tt.wantID, tt.wantOK)
			}
		})
	}
}

func TestNameLength(t *testing.T) {
	if NameLen != 28 {
		t.Fatalf("NameLen = %d, want 28", NameLen)
	}
	name := IDFromTime(time.Date(2023, 1, 5, 9, 30, 0, 0, time.Local)).Name()
	if name != "checkresult-230105093000.txt" {
		t.Errorf("Name() = %q", name)
	}
}

func TestIsTemp(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{".checkresult-123456.tmp", true},
		{".checkresult-.tmp", true},
		{"checkresult-230105093000.txt", false},
		{".checkresult-1.tmp.bak", false},
		{"notes.tmp", false},
	}
	for _, tt := range tests {
		if got := IsTemp(tt.name); got != tt.want {
			t.Errorf("IsTemp(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestNextID(t *testing.T) {
	now := time.Date(2023, 1, 5, 9, 30, 0, 0, time.Local)

	tests := []struct {
		name   string
		latest ID
		want   ID
	}{
		{"no previous", "", "230105093000"},
		{"previous is older", "230101120000", "230105093000"},
		{"same second", "230105093000", "230105093001"},
		{"clock behind", "230105093059", "230105093100"},
		{"previous not a timestamp", "991399999999", "991400000000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NextID(now, tt.latest); got != tt.want {
				t.Errorf("NextID(%v, %q) = %q, want %q", now, tt.latest, got, tt.want)
			}
		})
	}
}

func TestLatest(t *testing.T) {
	s := NewStore(NewMemFS(nil), nil)

	names := []string{
		"checkresult-230101120000.txt",
		"checkresult-230105093000.txt",
		"checkresult-230103000000.txt",
	}
	for i := range names {
		// Selection must not depend on listing order.
		rotated := append(slices.Clone(names[i:]), names[:i]...)
		got, ok := s.Latest(rotated)
		if !ok || got != "checkresult-230105093000.txt" {
			t.Errorf("Latest(%v) = (%q, %v)", rotated, got, ok)
		}
	}

	if _, ok := s.Latest(nil); ok {
		t.Error("Latest(nil) should report no snapshot")
	}
	if _, ok := s.Latest([]string{"readme.txt"}); ok {
		t.Error("Latest should ignore names outside the pattern")
	}
}

func TestEntryLine(t *testing.T) {
	e := Entry{Path: DisplayPath("docs/a.txt"), Digest: "0123456789abcdef0123456789abcdef"}
	want := "0123456789abcdef0123456789abcdef ." + string(filepath.Separator) + filepath.Join("docs", "a.txt")
	if got := e.Line(); got != want {
		t.Errorf("Line() = %q, want %q", got, want)
	}

	if len(EmptyDirectoryDigest) != 32 {
		t.Errorf("sentinel width = %d, want 32", len(EmptyDirectoryDigest))
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		data string
		want []string
	}{
		{"empty", "", []string{}},
		{"single", "a\n", []string{"a"}},
		{"no trailing newline", "a\nb", []string{"a", "b"}},
		{"crlf", "a\r\nb\r\n", []string{"a", "b"}},
		{"blank line kept", "a\n\nb\n", []string{"a", "", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Decode([]byte(tt.data)); !slices.Equal(got, tt.want) {
				t.Errorf("Decode(%q) = %q, want %q", tt.data, got, tt.want)
			}
		})
	}
}

func TestWriteLoadRoundTrip(t *testing.T) {
	fsys := NewMemFS(nil)
	s := NewStore(fsys, fixedClock(time.Date(2023, 1, 5, 9, 30, 0, 0, time.Local)))

	entries := []Entry{
		{Path: DisplayPath("a"), Digest: "11111111111111111111111111111111"},
		{Path: DisplayPath("b/c"), Digest: "22222222222222222222222222222222"},
		{Path: DisplayPath("empty"), Digest: EmptyDirectoryDigest},
	}

	name, err := s.Write(entries, "")
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if name != "checkresult-230105093000.txt" {
		t.Errorf("Write() name = %q", name)
	}

	lines, err := s.Load(name)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !slices.Equal(lines, Lines(entries)) {
		t.Errorf("Load() = %q, want %q", lines, Lines(entries))
	}
}

func TestWriteSameSecondBumpsID(t *testing.T) {
	fsys := NewMemFS(nil)
	s := NewStore(fsys, fixedClock(time.Date(2023, 1, 5, 9, 30, 0, 0, time.Local)))

	first, err := s.Write(nil, "")
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.Write(nil, first)
	if err != nil {
		t.Fatalf("second Write() error = %v", err)
	}
	if second != "checkresult-230105093001.txt" {
		t.Errorf("second Write() = %q", second)
	}

	got, _ := s.Latest([]string{first, second})
	if got != second {
		t.Errorf("Latest() = %q, want the newer snapshot %q", got, second)
	}
}

func TestWriteRefusesToOverwrite(t *testing.T) {
	existing := "checkresult-230105093000.txt"
	fsys := NewMemFS(fstest.MapFS{existing: {Data: []byte("keep\n")}})
	s := NewStore(fsys, fixedClock(time.Date(2023, 1, 5, 9, 30, 0, 0, time.Local)))

	// A concurrent run wrote the same name but we did not see it as previous.
	_, err := s.Write(nil, "")
	if !errors.Is(err, ErrSnapshotExists) {
		t.Fatalf("Write() error = %v, want ErrSnapshotExists", err)
	}

	data, _ := fsys.ReadFile(existing)
	if string(data) != "keep\n" {
		t.Errorf("existing snapshot modified: %q", data)
	}
}

func TestLoadDropsCarriageReturns(t *testing.T) {
	name := "checkresult-230105093000.txt"
	fsys := NewMemFS(fstest.MapFS{name: {Data: []byte("x .a\r\ny .b c\r\n")}})
	s := NewStore(fsys, nil)

	lines, err := s.Load(name)
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"x .a", "y .b c"}; !slices.Equal(lines, want) {
		t.Errorf("Load() = %q, want %q", lines, want)
	}
}

func TestLoadMissing(t *testing.T) {
	s := NewStore(NewMemFS(nil), nil)
	_, err := s.Load("checkresult-230105093000.txt")
	if !errors.Is(err, ErrSnapshotParse) {
		t.Errorf("Load() error = %v, want ErrSnapshotParse", err)
	}
}

func TestListAndResolve(t *testing.T) {
	fsys := NewMemFS(fstest.MapFS{
		"checkresult-230105093000.txt": {Data: []byte("x .a\ny .b\n")},
		"checkresult-230101120000.txt": {Data: []byte("x .a\n")},
		"checkresult-230103000000.txt": {Data: []byte("x .a\n")},
	})
	s := NewStore(fsys, nil)
	names := []string{
		"checkresult-230105093000.txt",
		"checkresult-230101120000.txt",
		"checkresult-230103000000.txt",
	}

	infos, err := s.List(names)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(infos) != 3 {
		t.Fatalf("List() returned %d infos", len(infos))
	}
	gotIDs := []ID{infos[0].ID, infos[1].ID, infos[2].ID}
	wantIDs := []ID{"230101120000", "230103000000", "230105093000"}
	if !slices.Equal(gotIDs, wantIDs) {
		t.Errorf("List() order = %v, want %v", gotIDs, wantIDs)
	}
	if infos[2].Entries != 2 {
		t.Errorf("Entries = %d, want 2", infos[2].Entries)
	}
	if infos[0].Fingerprint != infos[1].Fingerprint {
		t.Error("identical snapshots should share a fingerprint")
	}
	if infos[0].Fingerprint == infos[2].Fingerprint {
		t.Error("different snapshots should not share a fingerprint")
	}

	name, err := s.Resolve(names, "230103000000")
	if err != nil || name != "checkresult-230103000000.txt" {
		t.Errorf("Resolve(id) = (%q, %v)", name, err)
	}
	if _, err := s.Resolve(names, "230199000000"); err == nil {
		t.Error("Resolve() should fail for an unknown snapshot")
	}
}

func TestDirFSWriteFileExclusive(t *testing.T) {
	dir := t.TempDir()
	fsys := DirFS(dir)
	name := "checkresult-230105093000.txt"

	if err := fsys.WriteFileExclusive(name, []byte("a\n")); err != nil {
		t.Fatalf("WriteFileExclusive() error = %v", err)
	}
	if err := fsys.WriteFileExclusive(name, []byte("b\n")); err == nil {
		t.Fatal("second WriteFileExclusive() should fail")
	}

	data, err := fsys.ReadFile(name)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "a\n" {
		t.Errorf("content = %q, want %q", data, "a\n")
	}

	// No temp files may be left behind.
	children, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(children) != 1 {
		var names []string
		for _, c := range children {
			names = append(names, c.Name())
		}
		t.Errorf("directory holds %v, want only %s", names, name)
	}
}
