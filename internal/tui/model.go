// Package tui is the full-screen match editor: browse one file's
// entries, add, rename and delete them, then save. Protected entries
// are shown dimmed and refuse every mutation key.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ezmatch/ezmatch/pkg/editor"
	"github.com/ezmatch/ezmatch/pkg/session"
)

type mode int

const (
	modeBrowse mode = iota
	modeAdd
	modeEdit
	modeConfirmDelete
	modeConfirmQuit
)

const (
	fieldTrigger = iota
	fieldReplace
)

// Model is the bubbletea model for one editing session.
type Model struct {
	sess *session.Session
	keys KeyMap

	mode   mode
	cursor int

	// form state for add/edit
	inputs  [2]textinput.Model
	focused int
	editID  string

	status  string
	statErr bool

	width  int
	height int

	quitting bool
}

// New builds the editor model over an open session.
func New(s *session.Session) Model {
	trigger := textinput.New()
	trigger.Placeholder = ":trigger"
	trigger.CharLimit = 128

	replace := textinput.New()
	replace.Placeholder = "replacement text"

	return Model{
		sess:   s,
		keys:   DefaultKeys,
		inputs: [2]textinput.Model{trigger, replace},
	}
}

// Run opens the editor and blocks until the user quits.
func Run(s *session.Session) error {
	_, err := tea.NewProgram(New(s), tea.WithAltScreen()).Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case modeBrowse:
			return m.updateBrowse(msg)
		case modeAdd, modeEdit:
			return m.updateForm(msg)
		case modeConfirmDelete:
			return m.updateConfirmDelete(msg)
		case modeConfirmQuit:
			return m.updateConfirmQuit(msg)
		}
	}
	return m, nil
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	entries := m.sess.Store().List()

	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.sess.State() == session.Dirty {
			m.mode = modeConfirmQuit
			return m, nil
		}
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(entries)-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keys.Add):
		m.openForm(modeAdd, "", "", "")

	case key.Matches(msg, m.keys.Edit):
		if len(entries) == 0 {
			return m, nil
		}
		e := entries[m.cursor]
		if e.IsComplex() {
			return m.fail("%q is protected and cannot be edited", e.Trigger), nil
		}
		m.openForm(modeEdit, e.ID, e.Trigger, e.Replace)

	case key.Matches(msg, m.keys.Delete):
		if len(entries) == 0 {
			return m, nil
		}
		e := entries[m.cursor]
		if e.IsComplex() {
			return m.fail("%q is protected and cannot be deleted", e.Trigger), nil
		}
		m.mode = modeConfirmDelete

	case key.Matches(msg, m.keys.Save):
		overwrote := m.sess.ExternallyModified()
		if err := m.sess.Persist(); err != nil {
			return m.fail("save failed: %v", err), nil
		}
		if overwrote {
			return m.ok("saved %s (overwrote external changes)", m.sess.Path()), nil
		}
		return m.ok("saved %s", m.sess.Path()), nil
	}

	return m, textinput.Blink
}

func (m *Model) openForm(target mode, id, trigger, replace string) {
	m.mode = target
	m.editID = id
	m.inputs[fieldTrigger].SetValue(trigger)
	m.inputs[fieldReplace].SetValue(replace)
	m.focused = fieldTrigger
	m.inputs[fieldTrigger].Focus()
	m.inputs[fieldReplace].Blur()
	m.status = ""
	m.statErr = false
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.mode = modeBrowse
		return m, nil

	case key.Matches(msg, m.keys.Tab):
		m.inputs[m.focused].Blur()
		m.focused = (m.focused + 1) % len(m.inputs)
		m.inputs[m.focused].Focus()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Submit):
		return m.submitForm()
	}

	var cmd tea.Cmd
	m.inputs[m.focused], cmd = m.inputs[m.focused].Update(msg)
	return m, cmd
}

func (m Model) submitForm() (tea.Model, tea.Cmd) {
	trigger := strings.TrimSpace(m.inputs[fieldTrigger].Value())
	replace := m.inputs[fieldReplace].Value()
	ed := m.sess.Editor()

	if m.mode == modeAdd {
		entry, err := ed.Add(trigger, replace, editor.Append)
		if err != nil {
			return m.fail("%v", err), nil
		}
		m.cursor = m.sess.Store().IndexOf(entry.ID)
		m.mode = modeBrowse
		return m.ok("added %q", trigger), nil
	}

	if _, err := ed.Update(m.editID, "trigger", trigger); err != nil {
		return m.fail("%v", err), nil
	}
	if _, err := ed.Update(m.editID, "replace", replace); err != nil {
		return m.fail("%v", err), nil
	}
	m.mode = modeBrowse
	return m.ok("updated %q", trigger), nil
}

func (m Model) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		entries := m.sess.Store().List()
		if m.cursor >= len(entries) {
			m.mode = modeBrowse
			return m, nil
		}
		e := entries[m.cursor]
		if err := m.sess.Editor().Delete(e.ID); err != nil {
			m.mode = modeBrowse
			return m.fail("%v", err), nil
		}
		if m.cursor > 0 && m.cursor >= m.sess.Store().Len() {
			m.cursor--
		}
		m.mode = modeBrowse
		return m.ok("deleted %q", e.Trigger), nil

	case key.Matches(msg, m.keys.Cancel):
		m.mode = modeBrowse
	}
	return m, nil
}

func (m Model) updateConfirmQuit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Save):
		if err := m.sess.Persist(); err != nil {
			m.mode = modeBrowse
			return m.fail("save failed: %v", err), nil
		}
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Confirm):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Cancel):
		m.mode = modeBrowse
	}
	return m, nil
}

func (m Model) ok(format string, args ...interface{}) Model {
	m.status = fmt.Sprintf(format, args...)
	m.statErr = false
	return m
}

func (m Model) fail(format string, args ...interface{}) Model {
	m.status = fmt.Sprintf(format, args...)
	m.statErr = true
	return m
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	state := cleanStyle.Render("clean")
	if m.sess.State() == session.Dirty {
		state = dirtyStyle.Render("unsaved changes")
	}
	b.WriteString(titleStyle.Render(m.sess.Path()) + "  " + state + "\n\n")

	switch m.mode {
	case modeAdd, modeEdit:
		b.WriteString(m.viewForm())
	case modeConfirmDelete:
		b.WriteString(m.viewList())
		b.WriteString("\ndelete this match? " +
			helpKeyStyle.Render("y") + " " + helpDescStyle.Render("yes") + "  " +
			helpKeyStyle.Render("esc") + " " + helpDescStyle.Render("no") + "\n")
	case modeConfirmQuit:
		b.WriteString(m.viewList())
		b.WriteString("\nquit with unsaved changes? " +
			helpKeyStyle.Render("s") + " " + helpDescStyle.Render("save and quit") + "  " +
			helpKeyStyle.Render("y") + " " + helpDescStyle.Render("discard") + "  " +
			helpKeyStyle.Render("esc") + " " + helpDescStyle.Render("cancel") + "\n")
	default:
		b.WriteString(m.viewList())
		b.WriteString("\n" + m.viewHelp() + "\n")
	}

	if m.status != "" {
		style := statusStyle
		if m.statErr {
			style = errorStyle
		}
		b.WriteString("\n" + style.Render(m.status) + "\n")
	}

	return b.String()
}

func (m Model) viewList() string {
	entries := m.sess.Store().List()
	if len(entries) == 0 {
		return helpDescStyle.Render("no matches; press a to add one") + "\n"
	}

	var b strings.Builder
	for i, e := range entries {
		marker := "  "
		if i == m.cursor {
			marker = "> "
		}

		line := fmt.Sprintf("%-24s %s", e.Trigger, e.Preview())
		switch {
		case e.IsComplex():
			line = protectedStyle.Render(line + "  (protected)")
		case i == m.cursor:
			line = selectedStyle.Render(line)
		}
		b.WriteString(marker + line + "\n")
	}
	return b.String()
}

func (m Model) viewForm() string {
	title := "new match"
	if m.mode == modeEdit {
		title = "edit match"
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(title) + "\n\n")
	for i, label := range []string{"trigger", "replace"} {
		b.WriteString(inputLabelStyle.Render(label) + "\n")
		view := m.inputs[i].View()
		if i == m.focused {
			view = inputFocusedStyle.Render(view)
		}
		b.WriteString(view + "\n\n")
	}
	b.WriteString(helpKeyStyle.Render("tab") + " " + helpDescStyle.Render("next field") + "  " +
		helpKeyStyle.Render("enter") + " " + helpDescStyle.Render("submit") + "  " +
		helpKeyStyle.Render("esc") + " " + helpDescStyle.Render("cancel") + "\n")
	return b.String()
}

func (m Model) viewHelp() string {
	parts := []string{
		helpKeyStyle.Render("↑/↓") + " " + helpDescStyle.Render("move"),
		helpKeyStyle.Render("a") + " " + helpDescStyle.Render("add"),
		helpKeyStyle.Render("e") + " " + helpDescStyle.Render("edit"),
		helpKeyStyle.Render("d") + " " + helpDescStyle.Render("delete"),
		helpKeyStyle.Render("s") + " " + helpDescStyle.Render("save"),
		helpKeyStyle.Render("q") + " " + helpDescStyle.Render("quit"),
	}
	return strings.Join(parts, "  ")
}
