package components

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
)

// ScrollLineType classifies a scrolling-view line for coloring — used for
// changelog text and dependency listings, the two multi-line outputs that
// get rendered in a scrolling view.
type ScrollLineType int

const (
	ScrollInfo ScrollLineType = iota
	ScrollHighlight
	ScrollError
	ScrollMuted
)

// ScrollLine is a single line in a scrolling view.
type ScrollLine struct {
	Text string
	Type ScrollLineType
}

// ScrollViewModel is a scrolling, color-coded line viewer with follow
// (auto-scroll-to-bottom) and manual top/bottom navigation — the same
// shape as a streaming log view, generalized to any multi-line text this
// core surfaces (changelogs, solver diagnostics).
type ScrollViewModel struct {
	lines  []ScrollLine
	offset int
	width  int
	height int
	follow bool
}

var (
	scrollInfoStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#E5E7EB"))
	scrollHighlightStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#06B6D4"))
	scrollErrorStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#EF4444"))
	scrollMutedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#6B7280"))
)

// NewScrollViewModel creates an empty, bottom-following viewer.
func NewScrollViewModel() ScrollViewModel {
	return ScrollViewModel{follow: true}
}

// SetSize updates the viewport dimensions.
func (m *ScrollViewModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// SetLines replaces the displayed content, e.g. when a changelog fetch
// for a new package completes.
func (m *ScrollViewModel) SetLines(lines []ScrollLine) {
	m.lines = lines
	m.follow = true
	m.scrollToBottom()
}

// SetText is a convenience for plain multi-line text with a uniform type,
// word-wrapping each line to the viewport's width first so a long
// changelog or solver-diagnostic line doesn't get silently truncated.
func (m *ScrollViewModel) SetText(text string, typ ScrollLineType) {
	width := m.width - 1
	if width < 10 {
		width = 10
	}
	wrapped := wordwrap.String(text, width)

	var lines []ScrollLine
	for _, l := range strings.Split(wrapped, "\n") {
		lines = append(lines, ScrollLine{Text: l, Type: typ})
	}
	m.SetLines(lines)
}

// Clear empties the view.
func (m *ScrollViewModel) Clear() {
	m.lines = nil
	m.offset = 0
}

func (m *ScrollViewModel) scrollToBottom() {
	if len(m.lines) > m.height && m.height > 0 {
		m.offset = len(m.lines) - m.height
	} else {
		m.offset = 0
	}
}

// Update handles scroll keys: "G" jumps to bottom and resumes following,
// "g" jumps to top and stops following.
func (m ScrollViewModel) Update(msg tea.Msg) (ScrollViewModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "G":
			m.follow = true
			m.scrollToBottom()
		case "g":
			m.follow = false
			m.offset = 0
		case "up", "k":
			m.follow = false
			if m.offset > 0 {
				m.offset--
			}
		case "down", "j":
			m.offset++
			m.scrollClampDown()
		}
	}
	return m, nil
}

func (m *ScrollViewModel) scrollClampDown() {
	maxOffset := len(m.lines) - m.height
	if maxOffset < 0 {
		maxOffset = 0
	}
	if m.offset > maxOffset {
		m.offset = maxOffset
	}
}

// View renders the visible window of lines.
func (m ScrollViewModel) View() string {
	if m.height <= 0 || m.width <= 0 {
		return ""
	}
	if len(m.lines) == 0 {
		return scrollMutedStyle.Render("  (empty)")
	}

	visibleEnd := m.offset + m.height
	if visibleEnd > len(m.lines) {
		visibleEnd = len(m.lines)
	}
	start := m.offset
	if start < 0 {
		start = 0
	}

	var rendered []string
	for i := start; i < visibleEnd; i++ {
		rendered = append(rendered, m.renderLine(m.lines[i]))
	}
	for len(rendered) < m.height {
		rendered = append(rendered, "")
	}
	return strings.Join(rendered, "\n")
}

func (m ScrollViewModel) renderLine(line ScrollLine) string {
	var style lipgloss.Style
	switch line.Type {
	case ScrollHighlight:
		style = scrollHighlightStyle
	case ScrollError:
		style = scrollErrorStyle
	case ScrollMuted:
		style = scrollMutedStyle
	default:
		style = scrollInfoStyle
	}

	text := line.Text
	maxWidth := m.width - 1
	if maxWidth > 0 && len(text) > maxWidth {
		text = text[:maxWidth-1] + "…"
	}
	return style.Render(fmt.Sprintf(" %s", text))
}
