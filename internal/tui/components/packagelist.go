// Package components holds small, reusable bubbletea sub-models shared by
// internal/tui's views: the package list, the progress bar, and the
// scrolling log/changelog view.
package components

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/manasm11/packtui/internal/pkgdb"
	"github.com/manasm11/packtui/internal/projection"
)

// PackageSelectedMsg is emitted whenever the highlighted row changes.
type PackageSelectedMsg struct {
	Handle pkgdb.Handle
}

// PackageActionMsg is emitted when the user triggers a package-level
// action from the list — the caller (internal/tui's root model) resolves
// it against the manager.
type PackageActionMsg struct {
	Action string // "toggle", "mark_remove", "changelog", "deps"
	Handle pkgdb.Handle
}

var (
	plSelectedPrefix = lipgloss.NewStyle().Foreground(lipgloss.Color("#7C3AED")).Bold(true)
	plSelectedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#E5E7EB")).Bold(true)
	plNormalStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#E5E7EB"))
	plDimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	plHeaderStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280")).Bold(true)

	plStatusStyles = map[projection.Status]lipgloss.Style{
		projection.Upgradable:       lipgloss.NewStyle().Foreground(lipgloss.Color("#06B6D4")),
		projection.MarkedForInstall: lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")),
		projection.MarkedForUpgrade: lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")),
		projection.MarkedForRemove:  lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")),
		projection.Keep:             lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B")),
		projection.Broken:           lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true),
	}
)

// PackageListModel renders the list projection's rows as a manually-laid
// out table, using projection.ColumnWidths for column sizing instead of
// bubbles/list, since each row needs its own style chosen by its projected
// status, which a generic list item can't express.
type PackageListModel struct {
	rows      []projection.PackageInfo
	widths    projection.ColumnWidths
	cursor    int
	scrollOff int
	width     int
	height    int
}

// NewPackageListModel creates an empty list.
func NewPackageListModel() PackageListModel {
	return PackageListModel{}
}

// SetRows replaces the projected rows and column widths, clamping the
// cursor back into range (called after every manager.RebuildList).
func (m *PackageListModel) SetRows(rows []projection.PackageInfo, widths projection.ColumnWidths) {
	m.rows = rows
	m.widths = widths
	if m.cursor >= len(rows) {
		m.cursor = len(rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.ensureVisible()
}

// SetSize updates the component's rendering box.
func (m *PackageListModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.ensureVisible()
}

// Selected returns the currently highlighted row, or false if the list is empty.
func (m PackageListModel) Selected() (projection.PackageInfo, bool) {
	if len(m.rows) == 0 || m.cursor < 0 || m.cursor >= len(m.rows) {
		return projection.PackageInfo{}, false
	}
	return m.rows[m.cursor], true
}

func (m *PackageListModel) ensureVisible() {
	if m.height <= 0 {
		return
	}
	if m.cursor < m.scrollOff {
		m.scrollOff = m.cursor
	}
	if m.cursor >= m.scrollOff+m.height {
		m.scrollOff = m.cursor - m.height + 1
	}
}

// Update handles navigation and action key bindings.
func (m PackageListModel) Update(msg tea.Msg) (PackageListModel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "j", "down":
		if m.cursor < len(m.rows)-1 {
			m.cursor++
			m.ensureVisible()
			return m, m.selectionCmd()
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
			m.ensureVisible()
			return m, m.selectionCmd()
		}
	case " ", "enter":
		if sel, ok := m.Selected(); ok {
			return m, actionCmd("toggle", sel.Handle)
		}
	case "d":
		if sel, ok := m.Selected(); ok {
			return m, actionCmd("mark_remove", sel.Handle)
		}
	case "c":
		if sel, ok := m.Selected(); ok {
			return m, actionCmd("changelog", sel.Handle)
		}
	case "i":
		if sel, ok := m.Selected(); ok {
			return m, actionCmd("deps", sel.Handle)
		}
	}
	return m, nil
}

func (m PackageListModel) selectionCmd() tea.Cmd {
	sel, ok := m.Selected()
	if !ok {
		return nil
	}
	return func() tea.Msg { return PackageSelectedMsg{Handle: sel.Handle} }
}

func actionCmd(action string, h pkgdb.Handle) tea.Cmd {
	return func() tea.Msg { return PackageActionMsg{Action: action, Handle: h} }
}

// View renders the header row plus every visible row, columns sized from
// the last SetRows call's ColumnWidths.
func (m PackageListModel) View() string {
	if m.width == 0 {
		return ""
	}
	if len(m.rows) == 0 {
		return plDimStyle.Render("  (no packages match the current filter)")
	}

	lines := []string{m.renderRow(headerRow(), plHeaderStyle, false)}

	end := m.scrollOff + m.height
	if m.height <= 0 || end > len(m.rows) {
		end = len(m.rows)
	}
	for i := m.scrollOff; i < end; i++ {
		lines = append(lines, m.renderDataRow(i))
	}
	return strings.Join(lines, "\n")
}

type rowText struct {
	name, section, installed, candidate, status string
}

func headerRow() rowText {
	return rowText{name: "Name", section: "Section", installed: "Installed", candidate: "Candidate", status: "Status"}
}

func (m PackageListModel) renderDataRow(i int) string {
	row := m.rows[i]
	rt := rowText{
		name:      row.DisplayName,
		section:   row.Section,
		installed: dash(row.InstalledVersion),
		candidate: dash(row.CandidateVersion),
		status:    row.Status.String(),
	}

	style := plNormalStyle
	if style2, ok := plStatusStyles[row.Status]; ok {
		style = style2
	}
	return m.renderRow(rt, style, i == m.cursor)
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func (m PackageListModel) renderRow(rt rowText, style lipgloss.Style, selected bool) string {
	prefix := "  "
	if selected {
		prefix = plSelectedPrefix.Render("> ")
		style = plSelectedStyle
	}

	line := fmt.Sprintf("%s%-*s  %-*s  %-*s  %-*s  %-*s",
		prefix,
		m.widths.Name, rt.name,
		m.widths.Section, rt.section,
		m.widths.InstalledVersion, rt.installed,
		m.widths.CandidateVersion, rt.candidate,
		m.widths.Status, rt.status,
	)

	if m.width > 0 && lipgloss.Width(line) > m.width {
		trimmed := []rune(line)
		if m.width > 1 {
			line = string(trimmed[:m.width-1]) + "…"
		} else {
			line = string(trimmed[:m.width])
		}
	}

	return style.Render(line)
}
