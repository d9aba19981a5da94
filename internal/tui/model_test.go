package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kernelrag/internal/pipeline"
	"kernelrag/internal/session"
)

type stubAsker struct {
	result pipeline.Result
}

func (s *stubAsker) Ask(ctx context.Context, question string) pipeline.Result {
	return s.result
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out
}

func newReadyModel(t *testing.T, result pipeline.Result) Model {
	t.Helper()
	m := New(&stubAsker{result: result}, session.New(), nil)
	return update(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})
}

func TestResult_ContextHiddenUntilToggled(t *testing.T) {
	m := newReadyModel(t, pipeline.Result{})
	m = update(t, m, resultMsg{result: pipeline.Result{
		Answer:  "It enables auditing.",
		Context: "doc A\n\n---\n\ndoc B",
	}})

	view := m.View()
	assert.Contains(t, view, "It enables auditing.")
	assert.NotContains(t, view, "doc A")
	assert.Contains(t, m.status, "ctrl+o")

	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlO})
	view = m.View()
	assert.Contains(t, view, "doc A")
	assert.Contains(t, view, "doc B")

	// Second toggle hides it again.
	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlO})
	assert.NotContains(t, m.View(), "doc A")
}

func TestResult_NewAnswerResetsContextView(t *testing.T) {
	m := newReadyModel(t, pipeline.Result{})
	m = update(t, m, resultMsg{result: pipeline.Result{Answer: "first", Context: "old context"}})
	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlO})
	require.Contains(t, m.View(), "old context")

	m = update(t, m, resultMsg{result: pipeline.Result{Answer: "second", Context: "new context"}})
	view := m.View()
	assert.NotContains(t, view, "old context")
	assert.NotContains(t, view, "new context", "a fresh answer starts with the context collapsed")

	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlO})
	assert.Contains(t, m.View(), "new context")
}

func TestToggleWithoutContextIsInert(t *testing.T) {
	m := newReadyModel(t, pipeline.Result{})
	m = update(t, m, resultMsg{result: pipeline.Result{Failure: pipeline.FailureNoContext}})

	before := m.View()
	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlO})
	assert.Equal(t, before, m.View())
}

func TestResult_FailureMessageInTranscript(t *testing.T) {
	m := newReadyModel(t, pipeline.Result{})
	m = update(t, m, resultMsg{result: pipeline.Result{Failure: pipeline.FailureVectorization}})

	assert.Contains(t, m.View(), "Failed to vectorize question.")
	assert.True(t, strings.Contains(m.status, "Failed to vectorize question."))
}
