package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/jask/biovalue/internal/nav"
)

const appName = "biovalue"

// renderHeader draws the app name and the tab bar on one full-width line.
func (a *App) renderHeader() string {
	var tabs []string
	for _, t := range nav.AllTabs() {
		info := t.Info()
		label := string(info.Hotkey) + " " + info.Icon + " " + info.ShortTitle
		switch {
		case t == a.navState.Current:
			tabs = append(tabs, activeTabStyle.Render(label))
		case a.navState.InTransition && t == a.navState.Pending:
			tabs = append(tabs, pendingTabStyle.Render(label))
		default:
			tabs = append(tabs, inactiveTabStyle.Render(label))
		}
	}
	line := headerAppStyle.Render(appName) + "  " + tabSepStyle.Render(" ") + strings.Join(tabs, tabSepStyle.Render("│"))
	if a.width <= 0 {
		return headerBarStyle.Render(line)
	}
	return headerBarStyle.Width(a.width).Render(line)
}

// renderSection frames a tab body under its localized title.
func (a *App) renderSection(t nav.Tab, content string) string {
	width := a.contentWidth()
	header := titleStyle.Render(a.loc.TabTitle(t)) + "  " + descStyle.Render(a.loc.TabDescription(t))
	sep := sepStyle.Render(strings.Repeat("─", width))
	return boxStyle.Width(width + 2).Render(header + "\n" + sep + "\n" + content)
}

func (a *App) contentWidth() int {
	if a.width <= 0 {
		return 80
	}
	return max(40, a.width-6)
}

func (a *App) renderFooter(bindings []key.Binding) string {
	// every character carries the footer background
	bg := colorMantle
	keyStyle := helpKeyStyle.Background(bg)
	descStyle := helpDescStyle.Background(bg)
	space := lipgloss.NewStyle().Background(bg).Render(" ")
	sep := lipgloss.NewStyle().Background(bg).Render("  ")

	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		if !b.Enabled() {
			continue
		}
		help := b.Help()
		if help.Key == "" && help.Desc == "" {
			continue
		}
		parts = append(parts, keyStyle.Render(help.Key)+space+descStyle.Render(help.Desc))
	}
	content := strings.Join(parts, sep)
	if a.width <= 0 {
		return footerStyle.Render(content)
	}
	return footerStyle.Width(a.width).Render(content)
}

func (a *App) renderStatus() string {
	flat := strings.ReplaceAll(a.status, "\n", " ")
	if a.width <= 0 {
		return statusBarStyle.Render(flat)
	}
	return statusBarStyle.Width(a.width).Render(flat)
}

// placeWithFooter pins the status line and footer to the bottom of the
// terminal.
func (a *App) placeWithFooter(body, status, footer string) string {
	if a.height <= 0 {
		return body + "\n\n" + status + "\n" + footer
	}
	contentHeight := max(1, a.height-2)
	if lipgloss.Height(body) >= contentHeight {
		return body + "\n" + status + "\n" + footer
	}
	main := lipgloss.Place(a.width, contentHeight, lipgloss.Left, lipgloss.Top, body)
	// full-width lines so earlier frames do not ghost through
	lines := splitLines(main)
	for i, line := range lines {
		lines[i] = padRight(line, a.width)
	}
	return strings.Join(lines, "\n") + "\n" + status + "\n" + footer
}

// composeModal centers the modal over the placed base view.
func (a *App) composeModal(base, status, footer, modal string) string {
	view := a.placeWithFooter(base, status, footer)
	box := modalStyle.Render(modal)
	if a.height <= 0 || a.width <= 0 {
		return view + "\n\n" + box
	}
	lines := splitLines(box)
	targetHeight := max(1, a.height-2)
	x := max(0, (a.width-maxLineWidth(lines))/2)
	y := max(0, (targetHeight-len(lines))/2)
	return overlayAt(view, box, x, y, a.width, targetHeight)
}

// overlayAt composites overlay on top of base at column x, row y.
func overlayAt(base, overlay string, x, y, width, height int) string {
	baseLines := splitLines(base)
	overlayLines := splitLines(overlay)
	overlayWidth := maxLineWidth(overlayLines)
	for i, line := range overlayLines {
		row := y + i
		if row < 0 || row >= len(baseLines) || row >= height {
			continue
		}
		target := padRight(baseLines[row], width)
		left := ansi.Truncate(target, x, "")
		if w := ansi.StringWidth(left); w < x {
			left += strings.Repeat(" ", x-w)
		}
		line = padRight(line, overlayWidth)
		right := ansi.TruncateLeft(target, x+ansi.StringWidth(line), "")
		baseLines[row] = left + line + right
	}
	return strings.Join(baseLines, "\n")
}

func splitLines(s string) []string {
	if s == "" {
		return []string{""}
	}
	return strings.Split(s, "\n")
}

func maxLineWidth(lines []string) int {
	m := 0
	for _, line := range lines {
		m = max(m, ansi.StringWidth(line))
	}
	return m
}

func padRight(s string, width int) string {
	w := ansi.StringWidth(s)
	if width <= 0 || w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return ansi.Truncate(s, width, "…")
}
