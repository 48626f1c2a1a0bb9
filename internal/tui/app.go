// Package tui is the bubbletea presentation layer consuming
// internal/manager's upward API: a single package list view with overlays
// for search, preview, progress, and scrolling text.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/manasm11/packtui/internal/manager"
	"github.com/manasm11/packtui/internal/pkgdb"
	"github.com/manasm11/packtui/internal/progress"
	"github.com/manasm11/packtui/internal/projection"
	"github.com/manasm11/packtui/internal/toggle"
	"github.com/manasm11/packtui/internal/tui/components"
)

// mode selects which overlay the root model currently renders on top of
// the package list; the package list stays the one constant view and
// everything else (search, preview, progress, scroll) layers on top of it.
type mode int

const (
	modeList mode = iota
	modeSearch
	modePreview
	modeProgress
	modeScroll
)

// refreshDoneMsg/planDoneMsg/commitDoneMsg/changelogDoneMsg carry the
// result of a manager call run as a tea.Cmd back into Update: the blocking
// call runs inside the Cmd, and its result arrives as a Msg.
type refreshDoneMsg struct{ err error }
type planDoneMsg struct{ err error }
type commitDoneMsg struct{ err error }
type changelogDoneMsg struct {
	lines []string
}
type depsDoneMsg struct {
	forward []pkgdb.DepEdge
	reverse []pkgdb.DepEdge
}
type progressTickMsg struct{}

// App is the root bubbletea model.
type App struct {
	mgr *manager.Manager

	list       components.PackageListModel
	search     textinput.Model
	scroll     components.ScrollViewModel
	progBar    components.ProgressBarModel
	progState  *progress.SharedState
	committing bool

	mode       mode
	pendingH   pkgdb.Handle
	preview    toggle.MarkPreview
	statusMsg  string
	statusErr  bool
	width      int
	height     int
	quitting   bool
}

// New builds the root model over mgr, which must already have Load
// called: cache load is an external blocking point and happens once
// before the event loop starts, not inside Update.
func New(mgr *manager.Manager) App {
	search := textinput.New()
	search.Placeholder = "search packages (prefix match, space-separated terms)"
	search.CharLimit = 128

	scroll := components.NewScrollViewModel()

	a := App{
		mgr:    mgr,
		list:   components.NewPackageListModel(),
		search: search,
		scroll: scroll,
		mode:   modeList,
	}
	a.list.SetRows(mgr.List(), projection.NewColumnWidths())
	return a
}

func (a App) Init() tea.Cmd {
	return nil
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		contentHeight := a.height - 4
		if contentHeight < 0 {
			contentHeight = 0
		}
		a.list.SetSize(a.width, contentHeight)
		a.scroll.SetSize(a.width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case refreshDoneMsg:
		a.list.SetRows(a.mgr.List(), a.mgr.Widths())
		if msg.err != nil {
			a.setStatus(msg.err.Error(), true)
		} else {
			a.setStatus("refreshed", false)
		}
		return a, nil

	case planDoneMsg:
		a.list.SetRows(a.mgr.List(), a.mgr.Widths())
		if msg.err != nil {
			a.setStatus(msg.err.Error(), true)
		}
		return a, nil

	case commitDoneMsg:
		a.committing = false
		a.mode = modeList
		a.list.SetRows(a.mgr.List(), a.mgr.Widths())
		if msg.err != nil {
			a.setStatus(msg.err.Error(), true)
		} else {
			a.setStatus("commit complete", false)
		}
		return a, nil

	case progressTickMsg:
		if !a.committing {
			return a, nil
		}
		snap := a.progState.Read()
		a.progBar.SetTotal(snap.TotalSteps)
		a.progBar.SetDone(snap.StepsDone)
		return a, tickProgress()

	case changelogDoneMsg:
		a.mode = modeScroll
		a.scroll.SetText(strings.Join(msg.lines, "\n"), components.ScrollInfo)
		return a, nil

	case depsDoneMsg:
		a.mode = modeScroll
		a.scroll.Clear()
		a.scroll.SetText(formatDeps(msg.forward, msg.reverse), components.ScrollInfo)
		return a, nil

	case components.PackageSelectedMsg:
		return a, nil

	case components.PackageActionMsg:
		return a.handlePackageAction(msg)
	}

	return a, nil
}

func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch a.mode {
	case modeSearch:
		return a.handleSearchKey(msg)
	case modePreview:
		return a.handlePreviewKey(msg)
	case modeScroll:
		if msg.String() == "esc" || msg.String() == "q" {
			a.mode = modeList
			return a, nil
		}
		var cmd tea.Cmd
		a.scroll, cmd = a.scroll.Update(msg)
		return a, cmd
	case modeProgress:
		return a, nil
	}

	switch msg.String() {
	case "ctrl+c", "q":
		a.quitting = true
		return a, tea.Quit
	case "/":
		a.mode = modeSearch
		a.search.Focus()
		return a, textinput.Blink
	case "esc":
		a.mgr.ClearSearch()
		a.list.SetRows(a.mgr.List(), a.mgr.Widths())
		return a, nil
	case "r":
		return a, a.refreshCmd()
	case "p":
		return a, a.planCmd()
	case "x":
		cmd := a.startCommit()
		return a, cmd
	case "u":
		a.mgr.MarkAllUpgradable()
		a.list.SetRows(a.mgr.List(), a.mgr.Widths())
		return a, nil
	case "R":
		a.mgr.Reset()
		a.list.SetRows(a.mgr.List(), a.mgr.Widths())
		a.setStatus("reset", false)
		return a, nil
	case "1":
		return a.applyFilter(projection.CategoryAll)
	case "2":
		return a.applyFilter(projection.CategoryUpgradable)
	case "3":
		return a.applyFilter(projection.CategoryMarkedChanges)
	case "4":
		return a.applyFilter(projection.CategoryInstalled)
	case "5":
		return a.applyFilter(projection.CategoryNotInstalled)
	case "enter", "c":
		if sel, ok := a.list.Selected(); ok && msg.String() == "c" {
			return a, a.changelogCmd(sel.Handle)
		}
	}

	var cmd tea.Cmd
	a.list, cmd = a.list.Update(msg)
	return a, cmd
}

func (a App) applyFilter(c projection.Category) (tea.Model, tea.Cmd) {
	a.mgr.ApplyFilter(c)
	a.list.SetRows(a.mgr.List(), a.mgr.Widths())
	return a, nil
}

func (a App) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.mode = modeList
		a.search.Blur()
		a.mgr.ClearSearch()
		a.list.SetRows(a.mgr.List(), a.mgr.Widths())
		return a, nil
	case "enter":
		a.mode = modeList
		a.search.Blur()
		if err := a.mgr.SetSearchQuery(context.Background(), a.search.Value()); err != nil {
			a.setStatus(err.Error(), true)
		}
		a.list.SetRows(a.mgr.List(), a.mgr.Widths())
		return a, nil
	}
	var cmd tea.Cmd
	a.search, cmd = a.search.Update(msg)
	return a, cmd
}

func (a App) handlePreviewKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "y":
		a.mode = modeList
		return a, nil
	case "esc", "n":
		// Esc on the preview modal rolls back the just-performed mark rather
		// than interrupting anything mid-flight.
		a.mgr.Unmark(a.pendingH)
		a.list.SetRows(a.mgr.List(), a.mgr.Widths())
		a.mode = modeList
		return a, nil
	}
	return a, nil
}

func (a App) handlePackageAction(msg components.PackageActionMsg) (tea.Model, tea.Cmd) {
	switch msg.Action {
	case "toggle":
		result, err := a.mgr.Toggle(context.Background(), msg.Handle)
		if err != nil {
			a.setStatus(err.Error(), true)
			return a, nil
		}
		a.list.SetRows(a.mgr.List(), a.mgr.Widths())
		if result.IsMarked() && len(result.Additional) > 0 {
			a.pendingH = msg.Handle
			a.preview = a.mgr.BuildMarkPreview(msg.Handle, result.Additional)
			a.mode = modePreview
		} else if result.IsNoChange() {
			a.setStatus("not pulled in by any of your requests", false)
		}
		return a, nil
	case "mark_remove":
		a.mgr.MarkRemove(msg.Handle)
		a.list.SetRows(a.mgr.List(), a.mgr.Widths())
		return a, nil
	case "changelog":
		return a, a.changelogCmd(msg.Handle)
	case "deps":
		return a, a.depsCmd(msg.Handle)
	}
	return a, nil
}

func (a *App) setStatus(msg string, isErr bool) {
	a.statusMsg = msg
	a.statusErr = isErr
}

func (a App) refreshCmd() tea.Cmd {
	return func() tea.Msg {
		err := a.mgr.Refresh(context.Background())
		return refreshDoneMsg{err: err}
	}
}

func (a App) planCmd() tea.Cmd {
	return func() tea.Msg {
		_, err := a.mgr.ComputePlan(context.Background())
		return planDoneMsg{err: err}
	}
}

func (a App) changelogCmd(h pkgdb.Handle) tea.Cmd {
	return func() tea.Msg {
		lines := a.mgr.FetchChangelog(context.Background(), h)
		return changelogDoneMsg{lines: lines}
	}
}

func (a App) depsCmd(h pkgdb.Handle) tea.Cmd {
	return func() tea.Msg {
		return depsDoneMsg{
			forward: a.mgr.GetDependencies(h),
			reverse: a.mgr.GetReverseDependencies(h),
		}
	}
}

// startCommit starts the transaction on its own goroutine-free Cmd (bubbletea
// runs Cmds concurrently already); progress is polled via progState, the
// one shared mutable cell between the commit goroutine and the UI.
func (a *App) startCommit() tea.Cmd {
	a.progState = progress.NewSharedState(0)
	a.committing = true
	a.mode = modeProgress
	a.progBar = components.NewProgressBarModel(0, a.width)
	sink := a.progState
	return tea.Batch(
		func() tea.Msg {
			err := a.mgr.Commit(context.Background(), sink)
			return commitDoneMsg{err: err}
		},
		tickProgress(),
	)
}

func tickProgress() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(time.Time) tea.Msg { return progressTickMsg{} })
}

func (a App) View() string {
	if a.quitting {
		return ""
	}

	header := lipgloss.NewStyle().Bold(true).Foreground(Primary).Render("packtui") +
		"  " + SubtitleStyle.Render(fmt.Sprintf("%d packages", a.mgr.PackageCount()))

	var content string
	switch a.mode {
	case modeSearch:
		content = lipgloss.JoinVertical(lipgloss.Left, a.list.View(), "", "search: "+a.search.View())
	case modePreview:
		content = lipgloss.JoinVertical(lipgloss.Left, a.list.View(), "", a.renderPreview())
	case modeProgress:
		content = a.progBar.View()
	case modeScroll:
		content = a.scroll.View()
	default:
		content = a.list.View()
	}

	status := a.renderStatusBar()
	return lipgloss.JoinVertical(lipgloss.Left, header, content, status)
}

func (a App) renderPreview() string {
	p := a.preview
	style := HelpStyle
	if row, ok := a.list.Selected(); ok {
		style = lipgloss.NewStyle().Foreground(StatusColor(row.Status))
	}
	return style.Render(fmt.Sprintf(
		"this will also pull in %d package(s), +%s download — enter to accept, esc to roll back",
		len(p.Additional), projection.FormatSize(p.AdditionalBytes),
	))
}

func (a App) renderStatusBar() string {
	help := "j/k: move  space: toggle  d: remove  /: search  p: plan  x: commit  r: refresh  q: quit"
	if a.statusMsg != "" {
		style := SubtitleStyle
		if a.statusErr {
			style = lipgloss.NewStyle().Foreground(Danger)
		}
		help = style.Render(a.statusMsg) + "  |  " + help
	}
	return StatusBar.Width(a.width).Render(help)
}

func formatDeps(forward, reverse []pkgdb.DepEdge) string {
	out := "Dependencies:\n"
	for _, d := range forward {
		out += fmt.Sprintf("  %s %s\n", d.Kind, d.Target)
	}
	out += "\nReverse dependencies:\n"
	for _, d := range reverse {
		out += fmt.Sprintf("  %s %s\n", d.Kind, d.Target)
	}
	return out
}
