// Package tui provides the interactive terminal plot of a viewer's network.
//
// The model is driven by the bubbletea event loop. All data loading runs in
// tea.Cmds; the session itself is safe to read from the loop while a refresh
// is in flight.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/perspectr/perspectr/internal/clipboard"
	"github.com/perspectr/perspectr/internal/network"
	"github.com/perspectr/perspectr/internal/profile"
	"github.com/perspectr/perspectr/internal/view"
	"github.com/perspectr/perspectr/internal/viewport"
)

const (
	panelWidth   = 34
	headerHeight = 1
	footerHeight = 2
	borderSize   = 1

	// PanFraction is the share of the span moved by one pan step.
	PanFraction = 0.1
	// ZoomStep is the factor applied by one zoom step.
	ZoomStep = 1.25

	defaultWidth  = 100
	defaultHeight = 30
)

// refreshedMsg reports the end of a load or refresh.
type refreshedMsg struct {
	epoch int
	err   error
}

// copiedMsg reports the outcome of a copy-contact request.
type copiedMsg struct {
	text string
	err  error
}

// Model is the bubbletea model over a view.Session.
type Model struct {
	ctx     context.Context
	session *view.Session

	width  int
	height int

	spinner spinner.Model
	help    help.Model

	state view.State
	frame *Frame

	// notice is a one-line message from the last copy request.
	notice   string
	copyText func(string) error

	quitting bool
}

// New creates a model. Init triggers the first load.
func New(ctx context.Context, session *view.Session) Model {
	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = titleStyle

	m := Model{
		ctx:      ctx,
		session:  session,
		width:    defaultWidth,
		height:   defaultHeight,
		spinner:  sp,
		help:     help.New(),
		copyText: clipboard.Copy,
	}
	m.redraw()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.load(m.session.Load))
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, keys.Refresh):
			cmd = m.load(m.session.Refresh)
		case key.Matches(msg, keys.Clear):
			m.session.ClearSelection()
			m.notice = ""
		case key.Matches(msg, keys.Copy):
			cmd = m.copySelected()
		case key.Matches(msg, keys.Left):
			m.pan(-PanFraction, 0)
		case key.Matches(msg, keys.Right):
			m.pan(PanFraction, 0)
		case key.Matches(msg, keys.Up):
			m.pan(0, PanFraction)
		case key.Matches(msg, keys.Down):
			m.pan(0, -PanFraction)
		case key.Matches(msg, keys.ZoomIn):
			m.zoom(ZoomStep)
		case key.Matches(msg, keys.ZoomOut):
			m.zoom(1 / ZoomStep)
		}

	case tea.MouseMsg:
		m.handleMouse(msg)

	case copiedMsg:
		if msg.err != nil {
			m.notice = "copy failed: " + msg.err.Error()
		} else {
			m.notice = "copied " + msg.text
		}

	case refreshedMsg:
		// Errors are kept on the session state and shown in the status line.

	case spinner.TickMsg:
		m.spinner, cmd = m.spinner.Update(msg)
	}

	m.redraw()
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	plot := plotStyle.Render(strings.Join(m.frame.Lines, "\n"))
	body := lipgloss.JoinHorizontal(lipgloss.Top, plot, m.renderPanel())

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(body)
	b.WriteString("\n")
	b.WriteString(m.renderStatus())
	b.WriteString("\n")
	b.WriteString(m.help.View(keys))
	return b.String()
}

// load runs fn (Load or Refresh) off the event loop.
func (m Model) load(fn func(context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		err := fn(ctx)
		return refreshedMsg{epoch: m.session.State().Epoch, err: err}
	}
}

// copySelected copies the selected member's contact off the event loop.
func (m *Model) copySelected() tea.Cmd {
	sel := m.session.State().Selected
	if sel == nil {
		return nil
	}
	text, err := clipboard.Contact(*sel)
	if err != nil {
		m.notice = err.Error()
		return nil
	}
	copyText := m.copyText
	return func() tea.Msg {
		return copiedMsg{text: text, err: copyText(text)}
	}
}

// pan and zoom go through Session.Relayout like any external range change.
func (m *Model) pan(fx, fy float64) {
	rect := m.session.State().Rect.Pan(fx, fy)
	m.session.Relayout(viewport.FullRelayout(rect))
}

func (m *Model) zoom(factor float64) {
	rect := m.session.State().Rect.Zoom(factor)
	m.session.Relayout(viewport.FullRelayout(rect))
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	if msg.Action != tea.MouseActionPress {
		return
	}
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.zoom(ZoomStep)
	case tea.MouseButtonWheelDown:
		m.zoom(1 / ZoomStep)
	case tea.MouseButtonLeft:
		col, row := m.plotCell(msg.X, msg.Y)
		if idx := m.frame.Grid.IndexAt(col, row); idx >= 0 {
			m.session.ClickIn(m.state.Nodes, idx)
		}
	}
}

// plotCell converts screen coordinates to plot cell coordinates.
func (m Model) plotCell(x, y int) (col, row int) {
	return x - borderSize, y - headerHeight - borderSize
}

// plotSize is the number of plot cells that fit beside the panel.
func (m Model) plotSize() (cols, rows int) {
	cols = m.width - panelWidth - 2*borderSize
	rows = m.height - headerHeight - footerHeight - 2*borderSize
	return max(cols, 1), max(rows, 1)
}

// redraw re-reads session state and rebuilds the plot and its hit grid.
func (m *Model) redraw() {
	m.state = m.session.State()
	cols, rows := m.plotSize()
	selectedID := ""
	if m.state.Selected != nil {
		selectedID = m.state.Selected.ID
	}
	m.frame = RenderPlot(m.state.Nodes, m.state.Markers, m.state.Rect, selectedID, cols, rows)
}

func (m Model) renderHeader() string {
	title := titleStyle.Render("Your Perspectr Network")
	if m.state.Viewer.Name != "" {
		title += statusStyle.Render("  " + m.state.Viewer.Name)
	}
	return title
}

func (m Model) renderStatus() string {
	var parts []string
	if m.state.Loading {
		parts = append(parts, m.spinner.View()+" loading")
	}
	parts = append(parts,
		fmt.Sprintf("epoch %d", m.state.Epoch),
		fmt.Sprintf("%d nodes", len(m.state.Nodes)),
		m.state.Rect.String(),
	)
	if m.state.Failures > 0 {
		parts = append(parts, fmt.Sprintf("%d profiles unavailable", m.state.Failures))
	}
	status := statusStyle.Render(strings.Join(parts, " · "))
	if m.state.Err != nil {
		status += " " + errorStyle.Render(errorText(m.state.Err))
	}
	if m.notice != "" {
		status += " " + labelStyle.Render(m.notice)
	}
	return status
}

func (m Model) renderPanel() string {
	if m.state.Selected == nil {
		return panelStyle.Render(labelStyle.Render("Click a point to see who it is."))
	}
	return panelStyle.Render(PanelText(*m.state.Selected))
}

// PanelText formats the detail panel for a selected node.
func PanelText(n network.Node) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(n.Name))
	b.WriteString("\n")
	if n.Degraded {
		b.WriteString(placeholderStyle.Render("Profile unavailable"))
		return b.String()
	}
	fields := []struct{ label, value string }{
		{"Email", n.Email},
		{"Instagram", instagramHandle(n.Instagram)},
		{"Discord", n.Discord},
	}
	for _, f := range fields {
		b.WriteString("\n")
		b.WriteString(labelStyle.Render(f.label + ": "))
		b.WriteString(f.value)
	}
	return b.String()
}

func instagramHandle(url string) string {
	if url == "" {
		return ""
	}
	return "@" + profile.InstagramUsername(url)
}

func errorText(err error) string {
	if view.IsEmbeddingError(err) {
		return "could not load network; showing previous data"
	}
	return err.Error()
}

// Run starts the interactive program and blocks until the viewer quits.
func Run(ctx context.Context, session *view.Session) error {
	p := tea.NewProgram(New(ctx, session),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	_, err := p.Run()
	return err
}
