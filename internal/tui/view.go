package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
)

const (
	sidebarWidth    = 26
	minSidebarWidth = 60 // terminal width below which the sidebar is hidden
	headerHeight    = 2
	statusHeight    = 1
)

func (m Model) showSidebar() bool {
	return m.sidebar && m.width >= minSidebarWidth
}

// bodyWidth is the outer width of the subject panel.
func (m Model) bodyWidth() int {
	w := m.width
	if m.showSidebar() {
		w -= sidebarWidth
	}
	return max(w, 10)
}

// layout sizes the viewport to the window and re-renders its content.
func (m *Model) layout() {
	frameW := m.styles.Subject.GetHorizontalFrameSize()
	frameH := m.styles.Subject.GetVerticalFrameSize()
	helpH := lipgloss.Height(m.help.View(m.keys))

	m.viewport.Width = max(m.bodyWidth()-frameW, 1)
	m.viewport.Height = max(m.height-headerHeight-statusHeight-helpH-frameH, 1)
	m.viewport.SetContent(m.subjectText())
}

func (m Model) subjectText() string {
	if !m.snap.has {
		return ""
	}
	text := m.snap.item.Subject
	if m.wrap {
		text = wordwrap.String(text, m.viewport.Width)
	}
	return text
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	body := m.renderBody()
	if m.showSidebar() {
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, m.renderSidebar())
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		body,
		m.renderStatus(),
		m.help.View(m.keys),
	)
}

func (m Model) renderHeader() string {
	name := filepath.Base(m.reviewer.Path())
	title := m.styles.Title.Render("stager") + m.styles.Muted.Render(" · ") + name
	if m.reviewer.Lenient() {
		title += m.styles.Muted.Render(" (repaired encoding)")
	}

	progress := "0 / 0"
	if m.snap.has {
		progress = fmt.Sprintf("%d / %d", m.snap.item.Position, m.snap.item.Total)
	}
	progress = m.styles.Progress.Render(progress)

	gap := max(m.width-lipgloss.Width(title)-lipgloss.Width(progress), 1)
	line1 := title + strings.Repeat(" ", gap) + progress

	stage := m.styles.Muted.Render("(blank)")
	if m.snap.has && strings.TrimSpace(m.snap.item.Label) != "" {
		stage = m.styles.Label(m.snap.item.Label)
	}
	line2 := "Current Stage: " + stage

	return line1 + "\n" + line2
}

func (m Model) renderBody() string {
	w := m.bodyWidth() - m.styles.Subject.GetHorizontalBorderSize()
	if !m.snap.has {
		done := m.styles.Done.Render("All rows labeled. Nothing left to review.")
		return m.styles.Subject.
			Width(w).
			Height(m.viewport.Height).
			Render(done)
	}
	return m.styles.Subject.Width(w).Render(m.viewport.View())
}

func (m Model) renderSidebar() string {
	var b strings.Builder

	for i, lb := range m.keys.Labels {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(m.styles.Label(lb.Category))
		b.WriteString("\n  ")
		b.WriteString(m.styles.SidebarKey.Render(strings.Join(lb.Binding.Keys(), ", ")))
	}

	b.WriteString("\n")
	b.WriteString(m.styles.Divider.Render(strings.Repeat("─", sidebarWidth-4)))
	for _, kb := range []struct {
		name string
		keys []string
	}{
		{"skip", m.keys.Skip.Keys()},
		{"back", m.keys.Back.Keys()},
		{"save", m.keys.Save.Keys()},
		{"quit", m.keys.Quit.Keys()},
	} {
		b.WriteString("\n")
		fmt.Fprintf(&b, "%-5s", kb.name)
		b.WriteString(m.styles.SidebarKey.Render(strings.Join(kb.keys, ", ")))
	}

	return m.styles.Sidebar.
		Width(sidebarWidth - m.styles.Sidebar.GetHorizontalBorderSize()).
		Render(b.String())
}

func (m Model) renderStatus() string {
	switch {
	case m.busy:
		return m.styles.Muted.Render("Saving...")
	case m.confirmQuit:
		save := strings.Join(m.keys.Save.Keys(), "/")
		return m.styles.StatusErr.Render(fmt.Sprintf("Unsaved labels. Press %s to save or quit again to discard.", save))
	case m.lastErr != nil || m.snap.dirty:
		return m.styles.StatusErr.Render(m.snap.status)
	case strings.HasPrefix(m.snap.status, "Saved"):
		return m.styles.StatusOK.Render(m.snap.status)
	default:
		return m.styles.Status.Render(m.snap.status)
	}
}
