// Package reportui provides the Bubble Tea report viewer.
package reportui

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/testlens/internal/model"
	"github.com/verte-zerg/testlens/internal/narrative"
	"github.com/verte-zerg/testlens/internal/report"
	"github.com/verte-zerg/testlens/internal/stats"
)

type tabKind int

const (
	tabOverview tabKind = iota
	tabGroups
	tabTime
	tabFeedback
)

type tab struct {
	title  string
	kind   tabKind
	groups model.GroupedStats
}

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
)

// Model implements the Bubble Tea report viewer.
type Model struct {
	doc report.Document

	tabs        []tab
	activeTab   int
	viewports   []viewport.Model
	groupTable  table.Model
	sortWeakest bool

	width  int
	height int
}

// NewModel constructs a viewer for one report document.
func NewModel(doc report.Document) *Model {
	s := doc.Summary
	m := &Model{
		doc: doc,
		tabs: []tab{
			{title: "Overview", kind: tabOverview},
			{title: "Subjects", kind: tabGroups, groups: s.BySubject()},
			{title: "Chapters", kind: tabGroups, groups: s.ByChapter()},
			{title: "Difficulty", kind: tabGroups, groups: s.ByDifficulty()},
		},
	}
	if s.ByConcept().Len() > 0 {
		m.tabs = append(m.tabs, tab{title: "Concepts", kind: tabGroups, groups: s.ByConcept()})
	}
	m.tabs = append(m.tabs,
		tab{title: "Time", kind: tabTime},
		tab{title: "Feedback", kind: tabFeedback},
	)
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
	m.groupTable = table.New(table.WithColumns(groupColumns(0)), table.WithHeight(1))
	m.groupTable.SetStyles(groupTableStyles())
	m.renderTabContents()
	return m
}

// Run shows the viewer in the alternate screen until the user quits.
func Run(doc report.Document) error {
	_, err := tea.NewProgram(NewModel(doc), tea.WithAltScreen()).Run()
	return err
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderTabContents()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.String() == "q" {
			return m, tea.Quit
		}
		switch msg.String() {
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l", "tab":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "s":
			if m.currentTab().kind == tabGroups {
				m.sortWeakest = !m.sortWeakest
				m.loadGroupTable()
			}
			return m, nil
		case "g", "home":
			if m.currentTab().kind == tabGroups {
				m.groupTable.GotoTop()
			} else {
				m.viewports[m.activeTab].GotoTop()
			}
			return m, nil
		case "G", "end":
			if m.currentTab().kind == tabGroups {
				m.groupTable.GotoBottom()
			} else {
				m.viewports[m.activeTab].GotoBottom()
			}
			return m, nil
		default:
			if m.currentTab().kind == tabGroups {
				var cmd tea.Cmd
				m.groupTable, cmd = m.groupTable.Update(msg)
				return m, cmd
			}
			var cmd tea.Cmd
			m.viewports[m.activeTab], cmd = m.viewports[m.activeTab].Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(bodyHeight), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) currentTab() tab {
	return m.tabs[m.activeTab]
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	if tabsHeight < 1 {
		tabsHeight = 1
	}
	headerHeight = tabsHeight + 1
	footerHeight = 1
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = bodyHeight
	}
	m.groupTable.SetColumns(groupColumns(m.width))
	m.groupTable.SetWidth(m.width)
	m.groupTable.SetHeight(max(1, bodyHeight-1))
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	next := (m.activeTab + delta + count) % count
	m.activeTab = next
	if m.currentTab().kind == tabGroups {
		m.loadGroupTable()
		m.groupTable.Focus()
	} else {
		m.groupTable.Blur()
	}
}

func (m *Model) loadGroupTable() {
	groups := m.currentTab().groups
	entries := groups.Entries()
	if m.sortWeakest {
		entries = stats.Weakest(groups, 0)
	}
	rows := make([]table.Row, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, table.Row{
			e.Key,
			fmt.Sprintf("%d", e.Stats.TotalQuestions),
			fmt.Sprintf("%d", e.Stats.CorrectCount),
			fmt.Sprintf("%d", e.Stats.AttemptedCount),
			narrative.Percent(e.Stats.Accuracy),
			fmt.Sprintf("%.1fs", e.Stats.AverageTimeSeconds),
		})
	}
	m.groupTable.SetRows(rows)
	m.groupTable.GotoTop()
}

func groupColumns(width int) []table.Column {
	fixed := []table.Column{
		{Title: "Questions", Width: 9},
		{Title: "Correct", Width: 7},
		{Title: "Attempted", Width: 9},
		{Title: "Accuracy", Width: 9},
		{Title: "Avg time", Width: 8},
	}
	used := 0
	for _, c := range fixed {
		used += c.Width + 1
	}
	nameWidth := max(12, width-used-2)
	return append([]table.Column{{Title: "Name", Width: nameWidth}}, fixed...)
}

func groupTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, t := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(t.title))
		} else {
			parts = append(parts, inactiveNavStyle.Render(t.title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	id := m.doc.Identity
	student := id.StudentName
	if student == "" {
		student = "unknown student"
	}
	line := "Student: " + student
	if id.TestName != "" {
		line += "  Test: " + id.TestName
	}
	return padLines(m.renderTabs(), m.width) + "\n" + headerStyle.Render(truncateLine(line, m.width))
}

func (m *Model) renderFooter() string {
	help := "Nav: left/right  Scroll: up/down/pgup/pgdn  Quit: q"
	if m.currentTab().kind == tabGroups {
		order := "weakest first"
		if m.sortWeakest {
			order = "record order"
		}
		help = "Nav: left/right  Rows: up/down  Sort " + order + ": s  Quit: q"
	}
	return headerStyle.Render(truncateLine(help, m.width))
}

func (m *Model) renderBody(height int) string {
	t := m.currentTab()
	if t.kind == tabGroups {
		if t.groups.Len() == 0 {
			return fitLines("No groups in this view.", m.width, height)
		}
		return fitLines(tableMutedStyle.Render(m.groupTable.View()), m.width, height)
	}
	return fitLines(m.viewports[m.activeTab].View(), m.width, height)
}

func (m *Model) renderTabContents() {
	width := m.width
	if width <= 0 {
		width = 80
	}
	for i, t := range m.tabs {
		switch t.kind {
		case tabOverview:
			m.viewports[i].SetContent(renderOverview(m.doc, width))
		case tabTime:
			m.viewports[i].SetContent(renderTime(m.doc.Summary, width))
		case tabFeedback:
			m.viewports[i].SetContent(renderFeedback(m.doc, width))
		}
	}
	if m.currentTab().kind == tabGroups {
		m.loadGroupTable()
	}
}

func renderOverview(doc report.Document, width int) string {
	s := doc.Summary
	if s.Empty() {
		return "No question data in this record."
	}
	overall := s.Overall()
	cards := []string{
		metricCard("Questions", fmt.Sprintf("%d", overall.TotalQuestions)),
		metricCard("Correct", fmt.Sprintf("%d", overall.CorrectCount)),
		metricCard("Accuracy", narrative.Percent(overall.Accuracy)),
		metricCard("Attempted", fmt.Sprintf("%d", overall.AttemptedCount)),
		metricCard("Avg time", narrative.FormatDuration(overall.AverageTimeSeconds)),
	}
	var summary string
	if width < 80 {
		summary = strings.Join(cards, "\n")
	} else {
		row1 := lipgloss.JoinHorizontal(lipgloss.Top, cards[0], cards[1], cards[2])
		row2 := lipgloss.JoinHorizontal(lipgloss.Top, cards[3], cards[4])
		summary = lipgloss.JoinVertical(lipgloss.Left, row1, row2)
	}

	lines := []string{summary, "", "Accuracy by subject"}
	lines = append(lines, barLines(s.BySubject(), width))
	if n := len(doc.Skipped); n > 0 {
		lines = append(lines, "", errorStyle.Render(fmt.Sprintf("%d entries were skipped as malformed.", n)))
	}
	if doc.UnknownDifficulty > 0 {
		lines = append(lines, headerStyle.Render(fmt.Sprintf("%d questions had an unrecognized difficulty.", doc.UnknownDifficulty)))
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\n")
}

func barLines(groups model.GroupedStats, width int) string {
	bars := make([]report.Bar, 0, groups.Len())
	for _, e := range groups.Entries() {
		bars = append(bars, report.Bar{Label: e.Key, Ratio: e.Stats.Accuracy})
	}
	var buf bytes.Buffer
	if err := report.BarChart(&buf, "", bars, width, true); err != nil {
		return fmt.Sprintf("Failed to render chart: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func renderTime(s model.PerformanceSummary, width int) string {
	if s.Empty() {
		return "No question data in this record."
	}
	buckets := s.TimeBuckets()
	bars := make([]report.Bar, 0, len(buckets))
	for _, b := range buckets {
		bars = append(bars, report.Bar{Label: fmt.Sprintf("%s (%d)", b.Label, b.TotalQuestions), Ratio: b.Accuracy})
	}
	var buf bytes.Buffer
	if err := report.BarChart(&buf, "Accuracy by time spent", bars, width, true); err != nil {
		return fmt.Sprintf("Failed to render chart: %v", err)
	}
	ta := s.TimeAccuracy()
	lines := []string{
		strings.TrimRight(buf.String(), "\n"),
		"",
		"Average time on correct answers:   " + narrative.FormatDuration(ta.AvgCorrectSeconds),
		"Average time on incorrect answers: " + narrative.FormatDuration(ta.AvgIncorrectSeconds),
	}
	return strings.Join(lines, "\n")
}

func renderFeedback(doc report.Document, width int) string {
	if doc.NarrativeErr != nil {
		return errorStyle.Render(report.Wrap("Feedback unavailable: "+doc.NarrativeErr.Error(), width))
	}
	text := strings.TrimSpace(doc.Narrative)
	if text == "" {
		return "No feedback was generated for this report."
	}
	return report.Wrap(text, width)
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func padLines(s string, width int) string {
	if width <= 0 || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	return strings.Join(lines, "\n")
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
