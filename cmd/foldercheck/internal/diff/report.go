package diff

import (
	"bufio"
	"io"

	"github.com/charmbracelet/lipgloss"
)

const (
	addedHeader   = "Newly added:"
	removedHeader = "Removed:"
)

// Style controls how report headers are rendered.
type Style struct {
	Color bool
}

var (
	addedStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	removedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
)

func (s Style) header(text string, style lipgloss.Style) string {
	if !s.Color {
		return text
	}
	return style.Render(text)
}

// Report writes the added section, a blank separator when both sections are
// present, then the removed section. Empty sections are omitted entirely.
// Nothing is written for an empty result.
func Report(w io.Writer, r Result, style Style) error {
	bw := bufio.NewWriter(w)

	if len(r.Added) > 0 {
		writeSection(bw, style.header(addedHeader, addedStyle), r.Added)
	}
	if len(r.Added) > 0 && len(r.Removed) > 0 {
		_ = bw.WriteByte('\n')
	}
	if len(r.Removed) > 0 {
		writeSection(bw, style.header(removedHeader, removedStyle), r.Removed)
	}

	return bw.Flush()
}

func writeSection(bw *bufio.Writer, header string, lines []string) {
	_, _ = bw.WriteString(header)
	_ = bw.WriteByte('\n')
	for _, line := range lines {
		_, _ = bw.WriteString(line)
		_ = bw.WriteByte('\n')
	}
}
