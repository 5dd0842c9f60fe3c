package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"dlcini/internal/docs"
	"dlcini/internal/model"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57"))
	dimmedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	normalStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("81"))
	adviceStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("208")) // Orange

	borderColor = lipgloss.Color("63")
	activeColor = lipgloss.Color("205")
)

func (m AppModel) View() string {
	if m.ShowHelp {
		return m.renderHelpDialog()
	}
	if m.Loading {
		return fmt.Sprintf("\n  %s Reading %s...\n", m.Spinner.View(), m.editor.Path())
	}

	// Subtracting 6 for borders of both panels plus a small buffer
	netWidth := m.WindowSize.Width - 6
	if netWidth < 40 {
		netWidth = 40
	}
	leftWidth := netWidth / 2
	rightWidth := netWidth - leftWidth

	// Title, footer and the panel borders
	interiorHeight := m.WindowSize.Height - 8
	if interiorHeight < 6 {
		interiorHeight = 6
	}

	left := m.renderEntries(leftWidth, interiorHeight)
	right := m.renderDetails(rightWidth, interiorHeight)

	title := titleStyle.Render("dlcini " + model.Version)
	return title + "\n" + lipgloss.JoinHorizontal(lipgloss.Top, left, right) + "\n" + m.renderFooter()
}

func (m AppModel) renderEntries(width, height int) string {
	var sb strings.Builder
	header := fmt.Sprintf("[dlc] %d entries", len(m.Config.Entries))
	if m.Filter != "" {
		header = fmt.Sprintf("[dlc] %d of %d match %q", len(m.Entries), len(m.Config.Entries), m.Filter)
	}
	sb.WriteString(headerStyle.Render(header))
	sb.WriteString("\n\n")

	if len(m.Entries) == 0 {
		sb.WriteString(dimmedStyle.Render("  no entries, press a to add one"))
	}

	start, end := visibleRange(m.SelectedIdx, len(m.Entries), height-2)
	for i := start; i < end; i++ {
		e := m.Entries[i]
		icon := model.IconInFile
		if e.ID == m.ConfirmRemove {
			icon = model.IconRemoved
		}
		line := truncate(fmt.Sprintf("%s %-10s %s", icon, e.ID, e.Name), width-2)
		style := normalStyle
		if i == m.SelectedIdx && m.Focus == panelEntries {
			style = selectedStyle
		}
		sb.WriteString(style.Render(line))
		sb.WriteString("\n")
	}

	color := borderColor
	if m.Focus == panelEntries {
		color = activeColor
	}
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Border(lipgloss.NormalBorder()).
		BorderForeground(color).
		Render(strings.TrimSuffix(sb.String(), "\n"))
}

func (m AppModel) renderDetails(width, height int) string {
	var sb strings.Builder
	sb.WriteString(headerStyle.Render("[steam]"))
	sb.WriteString("\n\n")
	sb.WriteString(truncate("File:      "+m.Config.Path, width-2) + "\n")
	appid := m.Config.AppID
	if appid == "" {
		appid = dimmedStyle.Render("(not set)")
	}
	sb.WriteString("appid:     " + appid + "\n")
	icon := model.IconLocked
	if m.Config.UnlockAll {
		icon = model.IconUnlocked
	}
	fmt.Fprintf(&sb, "unlockall: %s %v\n", icon, m.Config.UnlockAll)

	used := 6
	if len(m.Results) > 0 {
		sb.WriteString("\n")
		sb.WriteString(headerStyle.Render(fmt.Sprintf("Store results (%d)", len(m.Results))))
		sb.WriteString("\n")
		used += 2

		present := make(map[string]bool, len(m.Config.Entries))
		for _, e := range m.Config.Entries {
			present[e.ID] = true
		}
		start, end := visibleRange(m.ResultIdx, len(m.Results), height-used)
		for i := start; i < end; i++ {
			c := m.Results[i]
			icon := model.IconNew
			if present[c.AppID] {
				icon = model.IconInFile
			}
			line := fmt.Sprintf("%s %-10s %s", icon, c.AppID, c.Name)
			if c.Price != "" {
				line += "  " + c.Price
			}
			line = truncate(line, width-2)
			style := normalStyle
			if present[c.AppID] {
				style = dimmedStyle
			}
			if i == m.ResultIdx && m.Focus == panelResults {
				style = selectedStyle
			}
			sb.WriteString(style.Render(line))
			sb.WriteString("\n")
		}
	} else if m.Config.AppID != "" {
		sb.WriteString("\n")
		sb.WriteString(adviceStyle.Render("Press d to look up the DLCs of this app."))
	}

	color := borderColor
	if m.Focus == panelResults {
		color = activeColor
	}
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Border(lipgloss.NormalBorder()).
		BorderForeground(color).
		Render(strings.TrimSuffix(sb.String(), "\n"))
}

func (m AppModel) renderFooter() string {
	var status string
	switch {
	case m.ConfirmRemove != "":
		status = adviceStyle.Render(fmt.Sprintf("Remove DLC %s? (y/n)", m.ConfirmRemove))
	case m.Input != inputNone:
		status = m.InputBuffer.View()
	case m.Busy != "":
		status = m.Spinner.View() + " " + m.Busy + "..."
	case m.Err != nil:
		status = errorStyle.Render("Error: " + m.Err.Error())
	case m.Status != "":
		status = statusStyle.Render(m.Status)
	}
	return status + "\n" + m.Help.View(m.keys)
}

func helpDialogSize(size tea.WindowSizeMsg) (int, int) {
	w := size.Width * 80 / 100
	if w < 40 {
		w = 40
	}
	h := size.Height - 6
	if h < 10 {
		h = 10
	}
	return w, h
}

func (m AppModel) renderHelpDialog() string {
	w, h := helpDialogSize(m.WindowSize)
	dialog := lipgloss.NewStyle().
		Width(w).
		Height(h).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Padding(0, 1).
		Render(m.HelpViewport.View())

	return lipgloss.Place(m.WindowSize.Width, m.WindowSize.Height,
		lipgloss.Center, lipgloss.Center,
		dialog,
	)
}

// renderHelp renders the help markdown for the terminal, falling back to the
// raw text when glamour fails.
func renderHelp(width int) string {
	text := docs.Help()
	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath("dracula"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return text
	}
	out, err := r.Render(text)
	if err != nil {
		return text
	}
	return out
}

// visibleRange returns the window of rows to draw so that selected stays
// roughly centered.
func visibleRange(selected, total, visible int) (int, int) {
	if visible < 1 {
		visible = 1
	}
	if total <= visible {
		return 0, total
	}
	start := 0
	if selected >= visible/2 {
		start = selected - visible/2
	}
	if start+visible > total {
		start = total - visible
	}
	return start, start + visible
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n < 4 || len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func (m AppModel) Init() tea.Cmd {
	return tea.Batch(m.loadCmd(""), m.Spinner.Tick)
}
