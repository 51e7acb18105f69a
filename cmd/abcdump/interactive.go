package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/abcdump/decoder"
	"github.com/wippyai/abcdump/render"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// listHeight is the number of entries shown at once in the list view.
const listHeight = 20

type entryKind int

const (
	entryStub entryKind = iota
	entryMethod
)

type entry struct {
	label  string
	info   string
	blob   int
	method uint32
	kind   entryKind
	failed bool
}

type viewState int

const (
	stateList viewState = iota
	stateFilter
	stateView
)

type interactiveModel struct {
	err      error
	res      *decoder.Result
	filename string
	opts     decoder.Options
	entries  []entry
	visible  []int // indices into entries after filtering
	filter   textinput.Model
	viewer   viewport.Model
	title    string
	selected int
	offset   int
	state    viewState
}

type loadedMsg struct {
	err error
	res *decoder.Result
}

func newInteractiveModel(filename string, opts decoder.Options) *interactiveModel {
	ti := textinput.New()
	ti.Prompt = "/"
	ti.Placeholder = "filter methods"
	ti.Width = 40

	return &interactiveModel{
		filename: filename,
		opts:     opts,
		filter:   ti,
		viewer:   viewport.New(80, listHeight),
		state:    stateList,
	}
}

func (m *interactiveModel) Init() tea.Cmd {
	return m.load
}

func (m *interactiveModel) load() tea.Msg {
	res, err := decoder.DecodeFile(m.filename, m.opts)
	return loadedMsg{res: res, err: err}
}

func (m *interactiveModel) buildEntries() {
	m.entries = []entry{{kind: entryStub, label: "interface stub", info: fmt.Sprintf("%d blobs", len(m.res.Models))}}

	for bi, model := range m.res.Models {
		for i := range model.Bodies {
			body := &model.Bodies[i]
			m.entries = append(m.entries, entry{
				kind:   entryMethod,
				blob:   bi,
				method: body.Method,
				label:  model.MethodLabel(body.Method),
				info:   fmt.Sprintf("%d bytes", len(body.Code)),
				failed: body.Err != nil,
			})
		}
	}
	m.applyFilter()
}

func (m *interactiveModel) applyFilter() {
	q := strings.ToLower(m.filter.Value())
	m.visible = m.visible[:0]
	for i, e := range m.entries {
		if q == "" || strings.Contains(strings.ToLower(e.label), q) {
			m.visible = append(m.visible, i)
		}
	}
	m.selected = 0
	m.offset = 0
}

func (m *interactiveModel) open() {
	if len(m.visible) == 0 {
		return
	}
	e := m.entries[m.visible[m.selected]]

	var content string
	switch e.kind {
	case entryStub:
		content = m.res.Stub
		if content == "" {
			content = "(no public declarations)"
		}
		m.title = "interface stub"
	case entryMethod:
		content = render.MethodIL(m.res.Models[e.blob], e.method)
		m.title = e.label
	}
	m.viewer.SetContent(content)
	m.viewer.GotoTop()
	m.state = stateView
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.viewer.Width = msg.Width
		m.viewer.Height = max(msg.Height-4, 1)

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.res = msg.res
		m.buildEntries()

	case tea.KeyMsg:
		if m.state == stateFilter {
			switch msg.String() {
			case "enter", "esc":
				m.filter.Blur()
				m.state = stateList
				return m, nil
			}
			var cmd tea.Cmd
			m.filter, cmd = m.filter.Update(msg)
			m.applyFilter()
			return m, cmd
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit

		case "up", "k":
			if m.state == stateList && m.selected > 0 {
				m.selected--
				if m.selected < m.offset {
					m.offset = m.selected
				}
			}

		case "down", "j":
			if m.state == stateList && m.selected < len(m.visible)-1 {
				m.selected++
				if m.selected >= m.offset+listHeight {
					m.offset = m.selected - listHeight + 1
				}
			}

		case "/":
			if m.state == stateList && m.res != nil {
				m.state = stateFilter
				return m, m.filter.Focus()
			}

		case "enter":
			if m.state == stateList && m.res != nil {
				m.open()
				return m, nil
			}

		case "esc":
			if m.state == stateView {
				m.state = stateList
				return m, nil
			}
		}
	}

	if m.state == stateView {
		var cmd tea.Cmd
		m.viewer, cmd = m.viewer.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *interactiveModel) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}
	if m.res == nil {
		return "Decoding " + m.filename + "..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("abcdump"))
	b.WriteString(" ")
	b.WriteString(m.filename)
	b.WriteString("\n\n")

	if m.state == stateView {
		b.WriteString(labelStyle.Render(m.title))
		b.WriteString("\n")
		b.WriteString(m.viewer.View())
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ scroll • esc back • q quit"))
		return b.String()
	}

	b.WriteString(infoStyle.Render(fmt.Sprintf("%d methods with bodies • %d symbols • %d diagnostics",
		len(m.entries)-1, len(m.res.Symbols), len(m.res.Diagnostics))))
	b.WriteString("\n")
	if m.state == stateFilter || m.filter.Value() != "" {
		b.WriteString(m.filter.View())
		b.WriteString("\n")
	}
	b.WriteString("\n")

	end := min(m.offset+listHeight, len(m.visible))
	for i := m.offset; i < end; i++ {
		e := m.entries[m.visible[i]]
		line := e.label + "  " + infoStyle.Render(e.info)
		if e.failed {
			line += " " + errorStyle.Render("decode error")
		}
		if i == m.selected {
			b.WriteString(selectedStyle.Render("> " + e.label))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	if len(m.visible) == 0 {
		b.WriteString(helpStyle.Render("  no matches"))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("↑/↓ select • enter open • / filter • q quit"))
	return b.String()
}

func runInteractive(filename string, opts decoder.Options) error {
	p := tea.NewProgram(newInteractiveModel(filename, opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
