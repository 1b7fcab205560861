// Package tui provides a terminal user interface for opb2midi
package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/opbtools/opb2midi/pkg/converter"
	"github.com/opbtools/opb2midi/pkg/opb"
)

// AdLib-gold color scheme
var (
	amber      = lipgloss.Color("#FFB000")
	paleYellow = lipgloss.Color("#FFE08A")
	silverGray = lipgloss.Color("#C0C0C0")
	darkGray   = lipgloss.Color("#333333")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(amber).
			Background(darkGray).
			Padding(0, 2).
			MarginBottom(1)

	menuStyle = lipgloss.NewStyle().
			Foreground(silverGray).
			PaddingLeft(2)

	selectedStyle = lipgloss.NewStyle().
			Foreground(amber).
			Bold(true).
			PaddingLeft(2)

	statusStyle = lipgloss.NewStyle().
			Foreground(paleYellow).
			PaddingTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(amber).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			MarginTop(1)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(amber).
			Padding(1, 2)
)

// State represents the current TUI state
type State int

const (
	StateMenu State = iota
	StateFilePicker
	StateWorking
	StateResult
)

// Action is a menu operation
type Action int

const (
	ActionConvert Action = iota
	ActionInspect
	ActionExit
)

// MenuItem represents a menu option
type MenuItem struct {
	Title       string
	Description string
	Action      Action
}

var menuItems = []MenuItem{
	{Title: "OPB → MIDI", Description: "Convert an OPB register capture to a MIDI file", Action: ActionConvert},
	{Title: "Inspect OPB", Description: "Show header, instrument, dictionary and track details", Action: ActionInspect},
	{Title: "Exit", Description: "Exit the application", Action: ActionExit},
}

// Model represents the TUI model
type Model struct {
	state        State
	menuIndex    int
	filePicker   filepicker.Model
	spinner      spinner.Model
	selectedFile string
	action       Action
	outputFile   string
	summary      converter.Summary
	err          error
	width        int
	height       int
}

// workDoneMsg signals that the selected operation finished
type workDoneMsg struct {
	outputFile string
	summary    converter.Summary
	err        error
}

// New creates a new TUI model
func New() Model {
	fp := filepicker.New()
	fp.AllowedTypes = []string{".opb"}
	fp.CurrentDirectory, _ = os.Getwd()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(amber)

	return Model{
		state:      StateMenu,
		filePicker: fp,
		spinner:    s,
	}
}

// Init initializes the TUI model
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick)
}

// Update handles TUI updates
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.state == StateFilePicker {
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			switch keyMsg.String() {
			case "esc":
				m.state = StateMenu
				return m, nil
			case "q", "ctrl+c":
				return m, tea.Quit
			}
		}

		var cmd tea.Cmd
		m.filePicker, cmd = m.filePicker.Update(msg)

		if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
			m.selectedFile = path
			m.state = StateWorking
			return m, tea.Batch(m.spinner.Tick, m.performAction())
		}

		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.filePicker.SetHeight(msg.Height - 10)
		return m, nil

	case tea.KeyMsg:
		switch m.state {
		case StateMenu:
			return m.updateMenu(msg)
		case StateResult:
			return m.updateResult(msg)
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case workDoneMsg:
		m.state = StateResult
		m.outputFile = msg.outputFile
		m.summary = msg.summary
		m.err = msg.err
		return m, nil
	}

	return m, nil
}

func (m Model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.menuIndex > 0 {
			m.menuIndex--
		}
	case "down", "j":
		if m.menuIndex < len(menuItems)-1 {
			m.menuIndex++
		}
	case "enter":
		item := menuItems[m.menuIndex]
		if item.Action == ActionExit {
			return m, tea.Quit
		}
		m.action = item.Action
		m.state = StateFilePicker
		return m, m.filePicker.Init()
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) updateResult(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		m.state = StateMenu
		m.err = nil
		return m, nil
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) performAction() tea.Cmd {
	input := m.selectedFile
	action := m.action
	return func() tea.Msg {
		conv := converter.New()
		switch action {
		case ActionInspect:
			data, err := os.ReadFile(input)
			if err != nil {
				return workDoneMsg{err: err}
			}
			sum, err := conv.Inspect(data)
			return workDoneMsg{summary: sum, err: err}
		default:
			output := strings.TrimSuffix(input, filepath.Ext(input)) + ".mid"
			err := conv.ConvertFile(input, output)
			return workDoneMsg{outputFile: output, err: err}
		}
	}
}

// View renders the TUI
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("opb2midi"))
	b.WriteString("\n\n")

	switch m.state {
	case StateMenu:
		for i, item := range menuItems {
			line := fmt.Sprintf("%s  %s", item.Title, helpStyle.Render(item.Description))
			if i == m.menuIndex {
				b.WriteString(selectedStyle.Render("> " + line))
			} else {
				b.WriteString(menuStyle.Render("  " + line))
			}
			b.WriteString("\n")
		}
		b.WriteString(helpStyle.Render("↑/↓: navigate • enter: select • q: quit"))

	case StateFilePicker:
		b.WriteString(statusStyle.Render("Select an .opb file:"))
		b.WriteString("\n\n")
		b.WriteString(m.filePicker.View())
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("esc: back • q: quit"))

	case StateWorking:
		b.WriteString(fmt.Sprintf("%s Working on %s...", m.spinner.View(), filepath.Base(m.selectedFile)))

	case StateResult:
		if m.err != nil {
			b.WriteString(errorStyle.Render("Error: " + m.err.Error()))
		} else if m.action == ActionInspect {
			b.WriteString(boxStyle.Render(renderSummary(m.summary)))
		} else {
			b.WriteString(successStyle.Render("Wrote " + m.outputFile))
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("enter: menu • q: quit"))
	}

	return b.String()
}

func renderSummary(s converter.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Format:      %s\n", s.Format)
	fmt.Fprintf(&b, "Instruments: %d\n", s.Instruments)
	fmt.Fprintf(&b, "Dictionary:  %d entries\n", s.Chunks)
	fmt.Fprintf(&b, "Commands:    %d\n", s.Commands)
	fmt.Fprintf(&b, "Duration:    %.3fs\n", s.Duration)
	for _, tr := range s.Tracks {
		name := fmt.Sprintf("channel %d", tr.Channel)
		if tr.Channel == opb.GlobalTrack {
			name = "global"
		}
		fmt.Fprintf(&b, "  %-10s %d commands\n", name, tr.Commands)
	}
	return strings.TrimRight(b.String(), "\n")
}

// Run starts the TUI
func Run() error {
	p := tea.NewProgram(New(), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
