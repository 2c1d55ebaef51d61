package watch

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/albertocavalcante/foldercheck/cmd/foldercheck/internal/check"
	"github.com/albertocavalcante/foldercheck/cmd/foldercheck/internal/diff"
)

func TestLogger_Ready(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggerConfig{Writer: &buf})

	logger.Ready(12, "/data/photos")

	output := buf.String()
	if !strings.Contains(output, "12 directories") {
		t.Errorf("expected directory count in output: %s", output)
	}
	if !strings.Contains(output, "/data/photos") {
		t.Errorf("expected path in output: %s", output)
	}
	if !strings.Contains(output, "ready") {
		t.Errorf("expected 'ready' in output: %s", output)
	}
}

func TestLogger_FileChanged(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		want    string
	}{
		{"verbose", true, "+ a/b.txt"},
		{"quiet", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLogger(LoggerConfig{Writer: &buf, Verbose: tt.verbose, NoColor: true})

			logger.FileChanged("a/b.txt", ChangeAdded)

			if tt.want == "" {
				if buf.Len() != 0 {
					t.Errorf("expected no output, got: %s", buf.String())
				}
				return
			}
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("expected %q in output: %s", tt.want, buf.String())
			}
		})
	}
}

func TestLogger_Checking(t *testing.T) {
	tests := []struct {
		paths []string
		want  string
	}{
		{nil, "checking..."},
		{[]string{"a.txt"}, "change to a.txt"},
		{[]string{"a", "b", "c"}, "3 changes"},
	}

	for _, tt := range tests {
		var buf bytes.Buffer
		NewLogger(LoggerConfig{Writer: &buf}).Checking(tt.paths)
		if !strings.Contains(buf.String(), tt.want) {
			t.Errorf("Checking(%v) output %q lacks %q", tt.paths, buf.String(), tt.want)
		}
	}
}

func TestLogger_Checked(t *testing.T) {
	tests := []struct {
		name    string
		outcome check.Outcome
		want    []string
	}{
		{
			name:    "first run",
			outcome: check.Outcome{Status: check.FirstRun, Snapshot: "checkresult-230105093000.txt", Entries: 4},
			want:    []string{"first check done", "4 entries", "checkresult-230105093000.txt"},
		},
		{
			name:    "no change",
			outcome: check.Outcome{Status: check.NoChange, Snapshot: "checkresult-230105093100.txt"},
			want:    []string{"no change", "checkresult-230105093100.txt"},
		},
		{
			name: "changed",
			outcome: check.Outcome{
				Status:   check.Changed,
				Previous: "checkresult-230105093000.txt",
				Diff:     diff.Result{Added: []string{"ab .\\/x"}, Removed: []string{}},
			},
			want: []string{"1 added, 0 removed", "Newly added:", "ab .\\/x"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLogger(LoggerConfig{Writer: &buf, NoColor: true})

			logger.Checked(&tt.outcome)

			for _, want := range tt.want {
				if !strings.Contains(buf.String(), want) {
					t.Errorf("expected %q in output: %s", want, buf.String())
				}
			}
		})
	}
}

func TestLogger_Error(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggerConfig{Writer: &buf, NoColor: true})

	logger.Error(errors.New("test error"))

	output := buf.String()
	if !strings.Contains(output, "error: test error") {
		t.Errorf("expected error message in output: %s", output)
	}
}

func TestLogger_ShutdownAndStats(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggerConfig{Writer: &buf})

	logger.Checked(&check.Outcome{Status: check.FirstRun})
	logger.Checked(&check.Outcome{Status: check.Changed})
	logger.Checked(&check.Outcome{Status: check.NoChange})
	logger.Error(errors.New("oops"))

	stats := logger.Stats()
	if stats.Checks != 3 || stats.Changed != 1 || stats.Errors != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}

	logger.Shutdown()
	if !strings.Contains(buf.String(), "3 checks, 1 with changes, 1 errors") {
		t.Errorf("expected counts in output: %s", buf.String())
	}
}

func decodeEvent(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var event map[string]any
	if err := json.Unmarshal(buf.Bytes(), &event); err != nil {
		t.Fatalf("failed to parse JSON %q: %v", buf.String(), err)
	}
	return event
}

func TestLogger_JSON_Ready(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(LoggerConfig{Writer: &buf, JSON: true}).Ready(7, "/data")

	event := decodeEvent(t, &buf)
	if event["event"] != "ready" {
		t.Errorf("expected event=ready, got %v", event["event"])
	}
	if event["dirs"].(float64) != 7 {
		t.Errorf("expected dirs=7, got %v", event["dirs"])
	}
}

func TestLogger_JSON_FileChanged(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(LoggerConfig{Writer: &buf, JSON: true}).FileChanged("a.txt", ChangeModified)

	event := decodeEvent(t, &buf)
	if event["event"] != "file_changed" || event["change"] != "~" {
		t.Errorf("unexpected event: %v", event)
	}
}

func TestLogger_JSON_Checked(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggerConfig{Writer: &buf, JSON: true})

	logger.Checked(&check.Outcome{
		Status:   check.Changed,
		Snapshot: "checkresult-230105093100.txt",
		Diff:     diff.Result{Added: []string{}, Removed: []string{"x"}},
	})

	event := decodeEvent(t, &buf)
	if event["event"] != "checked" {
		t.Fatalf("expected event=checked, got %v", event["event"])
	}
	outcome := event["outcome"].(map[string]any)
	if outcome["status"] != "changed" {
		t.Errorf("expected status=changed, got %v", outcome["status"])
	}
	removed := outcome["diff"].(map[string]any)["removed"].([]any)
	if len(removed) != 1 || removed[0] != "x" {
		t.Errorf("expected removed=[x], got %v", removed)
	}
}

func TestLogger_JSON_Error(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(LoggerConfig{Writer: &buf, JSON: true}).Error(errors.New("something failed"))

	event := decodeEvent(t, &buf)
	if event["event"] != "error" || event["error"] != "something failed" {
		t.Errorf("unexpected event: %v", event)
	}
}
