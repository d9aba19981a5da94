package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"kernelrag/internal/domain"
	"kernelrag/internal/pipeline"
	"kernelrag/internal/session"
)

// Asker is the TUI-facing subset of the query pipeline.
type Asker interface {
	Ask(ctx context.Context, question string) pipeline.Result
}

// Model is the Bubble Tea model for the chat client.
type Model struct {
	pipe        Asker
	session     *session.Session
	stages      <-chan pipeline.Stage
	input       textinput.Model
	viewport    viewport.Model
	status      string
	waiting     bool
	ready       bool
	lastContext string
	showContext bool
}

type resultMsg struct {
	result pipeline.Result
}

type stageMsg struct {
	stage pipeline.Stage
}

// New creates the chat model. stages carries the pipeline's progress events;
// pass the channel the pipeline's observer writes to.
func New(pipe Asker, sess *session.Session, stages <-chan pipeline.Stage) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask about the Kernel (e.g. 'Explain AUDIT config')"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		pipe:     pipe,
		session:  sess,
		stages:   stages,
		input:    ti,
		viewport: vp,
		status:   "Type a question. 'exit' or 'quit' to leave.",
	}
}

func (m Model) Init() tea.Cmd { return tea.Batch(textinput.Blink, m.listenStages()) }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, qh := inputBoxStyle.GetFrameSize()
		_, th := transcriptStyle.GetFrameSize()
		reserved := 2 + qh + 1 // header, input frame, status
		vh := msg.Height - reserved - th
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width-transcriptStyle.GetHorizontalFrameSize())
		m.viewport.Height = vh
		m.refreshTranscript()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		if msg.Type == tea.KeyCtrlO {
			if m.lastContext != "" {
				m.showContext = !m.showContext
				m.refreshTranscript()
			}
			return m, nil
		}
		if msg.String() == "enter" && !m.waiting {
			q := strings.TrimSpace(m.input.Value())
			if q == "" {
				// Blank input: ignore and re-prompt.
				return m, nil
			}
			if isQuitWord(q) {
				return m, tea.Quit
			}
			m.input.SetValue("")
			m.session.Append(domain.RoleUser, q)
			m.waiting = true
			m.status = "Reading docs..."
			m.refreshTranscript()
			return m, m.ask(q)
		}
	case stageMsg:
		if m.waiting {
			m.status = stageStatus(msg.stage)
		}
		return m, m.listenStages()
	case resultMsg:
		m.waiting = false
		m.session.Append(domain.RoleAssistant, msg.result.Message())
		m.lastContext = msg.result.Context
		m.showContext = false
		switch {
		case msg.result.Failure != pipeline.FailureNone:
			m.status = msg.result.Message()
		case m.lastContext != "":
			m.status = "Done. ctrl+o shows the retrieved context."
		default:
			m.status = "Done. Ask another question."
		}
		m.refreshTranscript()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := headerStyle.Render("Linux Kernel RAG Assistant")
	transcript := transcriptStyle.Render(m.viewport.View())
	input := inputBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	return header + "\n" + transcript + "\n" + input + "\n" + status
}

func (m *Model) refreshTranscript() {
	var b strings.Builder
	for i, msg := range m.session.Messages() {
		if i > 0 {
			b.WriteString("\n\n")
		}
		switch msg.Role {
		case domain.RoleUser:
			b.WriteString(userStyle.Render("you: ") + msg.Content)
		default:
			b.WriteString(assistantStyle.Render("assistant: ") + msg.Content)
		}
	}
	if m.showContext && m.lastContext != "" {
		b.WriteString("\n\n")
		b.WriteString(contextStyle.Render("Retrieved context:"))
		b.WriteString("\n")
		b.WriteString(m.lastContext)
	}
	m.viewport.SetContent(b.String())
	m.viewport.GotoBottom()
}

func (m Model) ask(question string) tea.Cmd {
	return func() tea.Msg {
		return resultMsg{result: m.pipe.Ask(context.Background(), question)}
	}
}

func (m Model) listenStages() tea.Cmd {
	if m.stages == nil {
		return nil
	}
	return func() tea.Msg {
		return stageMsg{stage: <-m.stages}
	}
}

func stageStatus(stage pipeline.Stage) string {
	switch stage {
	case pipeline.StageEmbedding:
		return "Generating query vector..."
	case pipeline.StageRetrieval:
		return "Searching index..."
	case pipeline.StageAnswering:
		return "Synthesizing answer..."
	}
	return "Working..."
}

func isQuitWord(s string) bool {
	switch strings.ToLower(s) {
	case "exit", "quit":
		return true
	}
	return false
}

var (
	headerStyle     = lipgloss.NewStyle().Bold(true)
	transcriptStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputBoxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	statusStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	userStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	assistantStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	contextStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Bold(true)
)

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
