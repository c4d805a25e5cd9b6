package console

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/marcus/bizdesk/internal/models"
	"github.com/marcus/bizdesk/pkg/console/entityform"
)

// copyToClipboard copies text to the system clipboard.
// Uses pbcopy on macOS, xclip or xsel on Linux, clip.exe on Windows.
func copyToClipboard(text string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("pbcopy")
	case "linux":
		if _, err := exec.LookPath("xclip"); err == nil {
			cmd = exec.Command("xclip", "-selection", "clipboard")
		} else if _, err := exec.LookPath("xsel"); err == nil {
			cmd = exec.Command("xsel", "--clipboard", "--input")
		} else {
			return fmt.Errorf("no clipboard tool found (install xclip or xsel)")
		}
	case "windows":
		cmd = exec.Command("clip.exe")
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	cmd.Stdin = strings.NewReader(text)
	return cmd.Run()
}

// formatRecordAsMarkdown renders a record as a markdown list using the
// entity's columns, so the copy matches what the table shows.
func formatRecordAsMarkdown(e entityform.Entity, rec models.Record, currency string, label func(entityform.Column) string) string {
	var sb strings.Builder

	title := rec.DisplayName()
	if title == "" {
		title = e.Label
	}
	fmt.Fprintf(&sb, "# %s\n\n", title)

	for _, col := range e.Columns {
		v := col.Format(rec, currency)
		if v == "" {
			continue
		}
		fmt.Fprintf(&sb, "- **%s:** %s\n", label(col), v)
	}
	if phones := rec.Phones("phone_numbers"); len(phones) > 1 {
		sb.WriteString("\n## Phone numbers\n\n")
		for _, p := range phones {
			line := fmt.Sprintf("- %s (%s)", p.Number, p.Type)
			if p.IsPrimary {
				line += " *"
			}
			if p.Notes != "" {
				line += " " + p.Notes
			}
			sb.WriteString(line + "\n")
		}
	}
	if id := rec.ID(); id != "" {
		fmt.Fprintf(&sb, "\nid: `%s`\n", id)
	}
	return sb.String()
}
