// Package tui is the terminal front end of the guided contract builder.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"studioflow/internal/config"
	"studioflow/internal/domain/services"
	guidedSvc "studioflow/internal/domain/services/guided"
	"studioflow/internal/service/contract"
	"studioflow/internal/service/guided"
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F7B801"))
	assistantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#CCCCCC"))
	userStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#5B8DEF")).Bold(true)
	hintStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	suggestStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true)
	boxStyle       = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#444444")).Padding(0, 1)
)

// suggestionsMsg carries AI suggestions for the question at cursor
type suggestionsMsg struct {
	cursor      int
	suggestions [3]string
}

// savedMsg reports the result of writing the draft
type savedMsg struct {
	path string
	err  error
}

// Options configures the guided TUI
type Options struct {
	ProviderName string
	OutputPath   string
	Suggester    services.TextSuggester
	Logger       *slog.Logger
}

// Model drives a guided.Builder from the keyboard
type Model struct {
	builder   *guided.Builder
	opts      Options
	input     textinput.Model
	spinner   spinner.Model
	loading   bool
	offered   [3]string
	nextOffer int
	status    string
	failed    bool
	width     int
	height    int
}

// New creates the TUI model over a fresh builder
func New(cat *guided.Catalog, opts Options) *Model {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.OutputPath == "" {
		opts.OutputPath = "contract-draft.md"
	}

	ti := textinput.New()
	ti.Placeholder = "type an answer, or add <addon>"
	ti.CharLimit = config.MaxGuidedAnswerLength
	ti.Width = 60
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &Model{
		builder: guided.NewBuilder(cat),
		opts:    opts,
		input:   ti,
		spinner: sp,
		width:   80,
		height:  24,
	}
}

// Init starts the cursor blinking
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles key presses and async results
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.input.Width = max(20, msg.Width-6)
		return m, nil

	case suggestionsMsg:
		m.loading = false
		// The user moved on while the request was in flight
		if msg.cursor != m.builder.Cursor() {
			return m, nil
		}
		m.offered = msg.suggestions
		m.nextOffer = 0
		m.builder.SetSuggestions(msg.suggestions)
		if msg.suggestions[0] == "" {
			m.setStatus("No suggestions available.", false)
		} else {
			m.setStatus("Tab cycles suggestions; Enter on a blank line takes the first.", false)
		}
		return m, nil

	case savedMsg:
		if msg.err != nil {
			m.opts.Logger.Error("write draft failed", "path", msg.path, "error", msg.err)
			m.setStatus("Could not write the draft: "+msg.err.Error(), true)
			return m, nil
		}
		m.opts.Logger.Info("draft written", "path", msg.path)
		m.setStatus("Draft written to "+msg.path, false)
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return m, tea.Quit

	case tea.KeyEnter:
		answer := m.input.Value()
		m.input.Reset()
		m.submit(answer)
		return m, nil

	case tea.KeyCtrlZ:
		if !m.builder.Undo() {
			m.setStatus("Nothing to undo.", false)
		} else {
			m.clearOffer()
		}
		return m, nil

	case tea.KeyCtrlY:
		if !m.builder.Redo() {
			m.setStatus("Nothing to redo.", false)
		} else {
			m.clearOffer()
		}
		return m, nil

	case tea.KeyCtrlG:
		return m, m.requestSuggestions()

	case tea.KeyTab:
		if m.offered[m.nextOffer] != "" {
			m.input.SetValue(m.offered[m.nextOffer])
			m.input.CursorEnd()
			m.nextOffer = (m.nextOffer + 1) % len(m.offered)
			if m.offered[m.nextOffer] == "" {
				m.nextOffer = 0
			}
		}
		return m, nil

	case tea.KeyCtrlS:
		if m.builder.Phase() != guidedSvc.PhaseReview {
			m.setStatus("Answer the remaining questions before saving.", true)
			return m, nil
		}
		return m, m.saveDraft()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) submit(answer string) {
	cursor := m.builder.Cursor()
	m.builder.Submit(answer)
	if m.builder.Cursor() != cursor || m.builder.Phase() == guidedSvc.PhaseReview {
		m.clearOffer()
	}
	m.status = ""
}

func (m *Model) clearOffer() {
	m.offered = [3]string{}
	m.nextOffer = 0
	m.builder.SetSuggestions(m.offered)
	m.status = ""
}

func (m *Model) setStatus(text string, failed bool) {
	m.status = text
	m.failed = failed
}

// requestSuggestions asks the AI for answers to the current question off the UI loop
func (m *Model) requestSuggestions() tea.Cmd {
	q := m.builder.Current()
	if q == nil || m.opts.Suggester == nil || m.loading {
		return nil
	}
	m.loading = true

	cursor := m.builder.Cursor()
	question := q.Prompt
	known := m.builder.Known()
	suggester := m.opts.Suggester

	fetch := func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return suggestionsMsg{cursor: cursor, suggestions: suggester.SuggestAnswers(ctx, question, known)}
	}
	return tea.Batch(fetch, m.spinner.Tick)
}

// saveDraft renders the contract to a markdown file
func (m *Model) saveDraft() tea.Cmd {
	draft := m.builder.Draft(m.opts.ProviderName)
	path := m.opts.OutputPath

	return func() tea.Msg {
		var b strings.Builder
		fmt.Fprintf(&b, "# %s\n\n", draft.Title)
		if draft.ClientName != "" {
			fmt.Fprintf(&b, "Client: %s", draft.ClientName)
			if draft.ClientEmail != "" {
				fmt.Fprintf(&b, " <%s>", draft.ClientEmail)
			}
			b.WriteString("\n\n")
		}
		b.WriteString(contract.Render(draft.Body, draft.Variables))
		b.WriteString("\n")
		return savedMsg{path: path, err: os.WriteFile(path, []byte(b.String()), 0o644)}
	}
}

// View draws the transcript above the input line
func (m *Model) View() string {
	view := m.builder.View("")

	header := titleStyle.Render("StudioFlow · guided contract")
	footer := hintStyle.Render("enter answer · ctrl+g suggest · tab use suggestion · ctrl+z undo · ctrl+y redo · ctrl+s save · esc quit")

	var prompt string
	switch {
	case m.loading:
		prompt = m.spinner.View() + " thinking…"
	case m.status != "" && m.failed:
		prompt = errorStyle.Render(m.status)
	case m.status != "":
		prompt = hintStyle.Render(m.status)
	}

	var offers []string
	for _, s := range m.offered {
		if s != "" {
			offers = append(offers, suggestStyle.Render("• "+s))
		}
	}

	// Leave room for header, input box, offers, status and footer
	reserved := 8 + len(offers)
	lines := transcriptLines(view.Transcript, max(20, m.width-4))
	if avail := m.height - reserved; avail > 0 && len(lines) > avail {
		lines = lines[len(lines)-avail:]
	}

	sections := []string{header, strings.Join(lines, "\n")}
	if len(offers) > 0 {
		sections = append(sections, strings.Join(offers, "\n"))
	}
	sections = append(sections, boxStyle.Render(m.input.View()))
	if prompt != "" {
		sections = append(sections, prompt)
	}
	sections = append(sections, footer)
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func transcriptLines(transcript []guidedSvc.Message, width int) []string {
	var lines []string
	for _, msg := range transcript {
		style, prefix := assistantStyle, ""
		if msg.Role == guidedSvc.RoleUser {
			style, prefix = userStyle, "› "
		}
		rendered := style.Width(width).Render(prefix + msg.Text)
		lines = append(lines, strings.Split(rendered, "\n")...)
	}
	return lines
}
