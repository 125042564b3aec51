// Package display renders entry stores and directory scans for the
// terminal. Complex (protected) entries are dimmed the way the original
// editor grayed them out.
package display

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"github.com/pterm/pterm"

	"github.com/ezmatch/ezmatch/pkg/discovery"
	"github.com/ezmatch/ezmatch/pkg/matches"
)

var (
	dimStyle  = lipgloss.NewStyle().Faint(true)
	errStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	protected = "protected"
)

// Init disables color output when stdout is not a terminal, so piped
// output stays clean.
func Init() {
	if !isatty.IsTerminal(os.Stdout.Fd()) {
		pterm.DisableColor()
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// EntriesTable renders one file's entries with protected rows dimmed.
func EntriesTable(entries []*matches.Entry) (string, error) {
	data := pterm.TableData{{"TRIGGER", "REPLACE", ""}}
	for _, e := range entries {
		trigger, preview, flag := e.Trigger, e.Preview(), ""
		if e.IsComplex() {
			trigger = dimStyle.Render(trigger)
			preview = dimStyle.Render(preview)
			flag = dimStyle.Render(protected)
		}
		data = append(data, []string{trigger, preview, flag})
	}

	out, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return "", err
	}
	return out, nil
}

// FilesTable renders a directory scan.
func FilesTable(files []discovery.File) (string, error) {
	data := pterm.TableData{{"FILE", "ENTRIES", "PROTECTED", "STATUS"}}
	for _, f := range files {
		status := "ok"
		entries := fmt.Sprintf("%d", f.Entries)
		complexCount := fmt.Sprintf("%d", f.Complex)
		if f.Err != nil {
			status = errStyle.Render(f.Err.Error())
			entries, complexCount = "-", "-"
		}
		data = append(data, []string{f.DisplayName, entries, complexCount, status})
	}

	out, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return "", err
	}
	return out, nil
}
