// app.go — bubbletea model for the terminal research client.
//
// The model owns no conversation state of its own: View re-projects the
// session on every frame via Entries(), and controller changes arrive as
// refreshMsg through the program's Send.
package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/multi-agent/go-research-ui/internal/render"
	"github.com/multi-agent/go-research-ui/internal/session"
)

// refreshMsg signals that the session changed and the view is stale.
type refreshMsg struct{}

// submitDoneMsg carries the outcome of an async submit.
type submitDoneMsg struct{ err error }

type appModel struct {
	ctrl   *session.Controller
	input  textinput.Model
	effort session.Effort
	width  int
	height int
	status string
}

func newAppModel(ctrl *session.Controller, effort session.Effort) appModel {
	ti := textinput.New()
	ti.Placeholder = "Ask a research question..."
	ti.CharLimit = 2000
	ti.Focus()

	return appModel{
		ctrl:   ctrl,
		input:  ti,
		effort: effort,
		width:  100,
		height: 30,
	}
}

func (m appModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case refreshMsg:
		return m, nil

	case submitDoneMsg:
		if msg.err != nil {
			m.status = "submit failed: " + msg.err.Error()
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "esc":
			if m.ctrl.Loading() {
				return m, m.cancelCmd()
			}
			return m, tea.Quit

		case "tab":
			m.effort = nextEffort(m.effort)
			return m, nil

		case "ctrl+y":
			m.status = m.copyLastAnswer()
			return m, nil

		case "enter":
			text := strings.TrimSpace(m.input.Value())
			if text == "" {
				return m, nil
			}
			if m.ctrl.Loading() {
				m.status = "a turn is in flight — esc to cancel it first"
				return m, nil
			}
			m.input.Reset()
			m.status = ""
			return m, m.submitCmd(text)
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m appModel) submitCmd(text string) tea.Cmd {
	ctrl, effort := m.ctrl, m.effort
	return func() tea.Msg {
		_, err := ctrl.Submit(context.Background(), text, effort)
		return submitDoneMsg{err: err}
	}
}

func (m appModel) cancelCmd() tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		ctrl.Cancel(context.Background())
		return refreshMsg{}
	}
}

func (m appModel) copyLastAnswer() string {
	msgs := m.ctrl.Transcript()
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == session.RoleAssistant {
			if render.Copy(msgs[i].Content) {
				return "answer copied"
			}
			return "clipboard unavailable"
		}
	}
	return "no answer to copy yet"
}

func nextEffort(e session.Effort) session.Effort {
	switch e {
	case session.EffortLow:
		return session.EffortMedium
	case session.EffortMedium:
		return session.EffortHigh
	default:
		return session.EffortLow
	}
}

// ========================================
// View
// ========================================

func (m appModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Research Agent"))
	b.WriteString(statusStyle.Render(fmt.Sprintf("  effort: %s  state: %s", m.effort, m.ctrl.State())))
	b.WriteString("\n\n")

	for _, entry := range m.ctrl.Entries() {
		b.WriteString(m.renderEntry(entry))
	}

	if m.status != "" {
		b.WriteString(errorStyle.Render(m.status))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("enter send · tab effort · esc cancel/quit · ctrl+y copy answer · ctrl+c quit"))
	return b.String()
}

func (m appModel) renderEntry(entry session.Entry) string {
	var b strings.Builder

	switch entry.Role {
	case session.RoleHuman:
		b.WriteString(humanStyle.Render("❯ " + entry.Content))
		b.WriteString("\n\n")

	case session.RoleAssistant:
		for _, step := range entry.Activity {
			b.WriteString(activityTitleStyle.Render("• " + step.Title))
			if step.Data != "" {
				b.WriteString(activityDataStyle.Render(": " + step.Data))
			}
			b.WriteString("\n")
		}
		if entry.Pending {
			b.WriteString(pendingStyle.Render("thinking..."))
			b.WriteString("\n\n")
			break
		}
		if entry.Content != "" {
			b.WriteString(render.Markdown(entry.Content, m.width-2))
			b.WriteString("\n")
		}
		if entry.Auxiliary != nil {
			b.WriteString(renderVideos(entry.Auxiliary))
			b.WriteString("\n")
		}
	}

	return b.String()
}

func renderVideos(results *session.YouTubeResults) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("YouTube results for %q (%d total)\n", results.Query, results.TotalResults))
	for _, v := range results.Videos {
		b.WriteString(videoTitleStyle.Render(v.Title))
		b.WriteString("\n")
		meta := []string{}
		if v.Channel != "" {
			meta = append(meta, v.Channel)
		}
		if v.Duration != "" {
			meta = append(meta, v.Duration)
		}
		if v.ViewCount != "" {
			meta = append(meta, v.ViewCount+" views")
		}
		if len(meta) > 0 {
			b.WriteString(statusStyle.Render(strings.Join(meta, " · ")))
			b.WriteString("\n")
		}
		if v.VideoID != "" {
			b.WriteString(statusStyle.Render("https://youtube.com/watch?v=" + v.VideoID))
			b.WriteString("\n")
		}
	}
	return videoPanelStyle.Render(strings.TrimRight(b.String(), "\n"))
}
