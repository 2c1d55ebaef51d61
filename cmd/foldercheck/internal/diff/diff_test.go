package diff

import (
	"bytes"
	"slices"
	"strings"
	"testing"
)

func TestCompute(t *testing.T) {
	tests := []struct {
		name        string
		previous    []string
		current     []string
		wantAdded   []string
		wantRemoved []string
	}{
		{
			name:        "pure addition and removal",
			previous:    []string{"d1 .a", "d2 .b"},
			current:     []string{"d1 .a", "d3 .c"},
			wantAdded:   []string{"d3 .c"},
			wantRemoved: []string{"d2 .b"},
		},
		{
			name:        "content change on same path",
			previous:    []string{"d1 .a"},
			current:     []string{"d2 .a"},
			wantAdded:   []string{"d2 .a"},
			wantRemoved: []string{"d1 .a"},
		},
		{
			name:        "identical",
			previous:    []string{"d1 .a", "d2 .b"},
			current:     []string{"d1 .a", "d2 .b"},
			wantAdded:   []string{},
			wantRemoved: []string{},
		},
		{
			name:        "order preserved",
			previous:    []string{"z .z", "a .a", "m .m"},
			current:     []string{"q .q", "b .b"},
			wantAdded:   []string{"q .q", "b .b"},
			wantRemoved: []string{"z .z", "a .a", "m .m"},
		},
		{
			name:        "both empty",
			wantAdded:   []string{},
			wantRemoved: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Compute(tt.previous, tt.current)
			if !slices.Equal(r.Added, tt.wantAdded) {
				t.Errorf("Added = %q, want %q", r.Added, tt.wantAdded)
			}
			if !slices.Equal(r.Removed, tt.wantRemoved) {
				t.Errorf("Removed = %q, want %q", r.Removed, tt.wantRemoved)
			}
		})
	}
}

func TestResultEmpty(t *testing.T) {
	if !Compute([]string{"x .a"}, []string{"x .a"}).Empty() {
		t.Error("identical snapshots should be empty")
	}
	r := Compute([]string{"x .a"}, []string{"y .a"})
	if r.Empty() {
		t.Error("changed snapshot should not be empty")
	}
	if r.TotalChanges() != 2 {
		t.Errorf("TotalChanges() = %d, want 2", r.TotalChanges())
	}
}

func TestReport(t *testing.T) {
	tests := []struct {
		name   string
		result Result
		want   string
	}{
		{
			name:   "both sections",
			result: Result{Added: []string{"d3 .c"}, Removed: []string{"d2 .b"}},
			want:   "Newly added:\nd3 .c\n\nRemoved:\nd2 .b\n",
		},
		{
			name:   "added only",
			result: Result{Added: []string{"d3 .c", "d4 .d"}},
			want:   "Newly added:\nd3 .c\nd4 .d\n",
		},
		{
			name:   "removed only",
			result: Result{Removed: []string{"d2 .b"}},
			want:   "Removed:\nd2 .b\n",
		},
		{
			name:   "nothing",
			result: Result{},
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := Report(&buf, tt.result, Style{}); err != nil {
				t.Fatal(err)
			}
			if buf.String() != tt.want {
				t.Errorf("Report() = %q, want %q", buf.String(), tt.want)
			}
		})
	}
}

func TestReportKeepsTabsInLines(t *testing.T) {
	var buf bytes.Buffer
	line := "d1 ./odd\tname"
	if err := Report(&buf, Result{Added: []string{line}}, Style{Color: true}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), line+"\n") {
		t.Errorf("Report() mangled line: %q", buf.String())
	}
}

func TestUnified(t *testing.T) {
	previous := []string{"d1 ./a", "d2 ./b", "d5 ./e"}
	current := []string{"d1 ./a", "d9 ./b", "d5 ./e"}

	out, err := Unified("old.txt", "new.txt", previous, current, 1)
	if err != nil {
		t.Fatalf("Unified() error = %v", err)
	}
	for _, want := range []string{"--- old.txt", "+++ new.txt", "-d2 ./b\n", "+d9 ./b\n", " d1 ./a\n"} {
		if !strings.Contains(out, want) {
			t.Errorf("Unified() missing %q in:\n%s", want, out)
		}
	}

	same, err := Unified("a", "b", previous, previous, DefaultContext)
	if err != nil {
		t.Fatal(err)
	}
	if same != "" {
		t.Errorf("Unified() of identical snapshots = %q, want empty", same)
	}
}
