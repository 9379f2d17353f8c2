// Package statsui provides the Bubble Tea ranking browser.
package statsui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/retrostats/internal/model"
	"github.com/verte-zerg/retrostats/internal/stats"
)

const (
	inputSystem = iota
	inputExclude
	inputMinimum
)

const (
	rankColWidth   = 4
	systemColWidth = 12
	playedColWidth = 7
	timeColWidth   = 9
	minGameWidth   = 12
)

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
	headerStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
)

// Settings holds the filters applied to the loaded sessions.
type Settings struct {
	System  string
	Exclude []string
	Minimum int64
}

func (s Settings) filter() stats.Filter {
	return stats.Filter{System: s.System, Exclude: s.Exclude}
}

// Model implements the Bubble Tea ranking browser.
type Model struct {
	sessions []model.Session
	settings Settings
	titles   stats.TitleFunc

	report stats.Report
	ranked []model.Stats

	tabs      []model.Criterion
	activeTab int
	rankTable table.Model

	width  int
	height int

	filterMode   bool
	filterInputs []textinput.Model
	filterIndex  int
	filterError  string
}

// NewModel constructs a browser over sessions, starting on the given criterion.
func NewModel(sessions []model.Session, settings Settings, titles stats.TitleFunc, start model.Criterion) *Model {
	m := &Model{
		sessions: sessions,
		settings: settings,
		titles:   titles,
		tabs:     append([]model.Criterion(nil), model.Criteria...),
	}
	for i, c := range m.tabs {
		if c == start {
			m.activeTab = i
		}
	}
	m.initInputs()
	m.rankTable = newRankTable()
	m.refreshReport()
	return m
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
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.filterMode {
			return m.updateFilter(msg)
		}
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "left", "h":
			m.moveTab(-1)
			return m, nil
		case "right", "l", "tab":
			m.moveTab(1)
			return m, nil
		case "/":
			return m.startFilter()
		case "g", "home":
			m.rankTable.GotoTop()
			return m, nil
		case "G", "end":
			m.rankTable.GotoBottom()
			return m, nil
		default:
			var cmd tea.Cmd
			m.rankTable, cmd = m.rankTable.Update(msg)
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
	body := fitLines(m.renderBody(), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

// Criterion returns the criterion of the active tab.
func (m *Model) Criterion() model.Criterion {
	return m.tabs[m.activeTab]
}

// Ranked returns the entries shown on the active tab.
func (m *Model) Ranked() []model.Stats {
	return m.ranked
}

func (m *Model) initInputs() {
	m.filterInputs = []textinput.Model{
		newFilterInput("System: "),
		newFilterInput("Exclude (comma separated): "),
		newFilterInput("Minimum session (s): "),
	}
	m.setInputsFromSettings()
}

func newFilterInput(prompt string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.CharLimit = 0
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

func (m *Model) setInputsFromSettings() {
	m.filterInputs[inputSystem].SetValue(m.settings.System)
	m.filterInputs[inputExclude].SetValue(strings.Join(m.settings.Exclude, ","))
	m.filterInputs[inputMinimum].SetValue(strconv.FormatInt(m.settings.Minimum, 10))
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
	m.rankTable.SetColumns(rankColumns(m.width))
	m.rankTable.SetWidth(m.width)
	m.rankTable.SetHeight(maxInt(1, bodyHeight-1))
	for i := range m.filterInputs {
		promptWidth := lipgloss.Width(m.filterInputs[i].Prompt)
		m.filterInputs[i].Width = maxInt(10, m.width-promptWidth-2)
	}
	m.applyRows()
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	if count == 0 {
		return
	}
	next := m.activeTab + delta
	if next < 0 {
		next = count - 1
	}
	if next >= count {
		next = 0
	}
	m.activeTab = next
	m.rerank()
}

func (m *Model) refreshReport() {
	m.report = stats.Rebuild(m.sessions, m.settings.Minimum)
	m.rerank()
}

func (m *Model) rerank() {
	m.ranked = m.report.Rank(m.Criterion(), m.settings.filter())
	m.applyRows()
	m.rankTable.GotoTop()
}

func (m *Model) applyRows() {
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.rankTable.SetRows(buildRows(m.ranked, m.titles, gameColWidth(width)))
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab.Label()))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab.Label()))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	return m.renderTabs() + "\n" + m.renderSettingsSummary()
}

func (m *Model) renderSettingsSummary() string {
	system := m.settings.System
	if system == "" {
		system = "all"
	}
	exclude := "none"
	if m.settings.System == "" && len(m.settings.Exclude) > 0 {
		exclude = strings.Join(m.settings.Exclude, ",")
	}
	var sessions int
	var total int64
	for _, s := range m.ranked {
		sessions += s.TimesPlayed
		total += s.TotalTimePlayed
	}
	summary := fmt.Sprintf("Settings: system=%s  exclude=%s  minimum=%ds  games=%d  sessions=%d  played=%s",
		system, exclude, m.settings.Minimum, len(m.ranked), sessions, stats.FormatDuration(float64(total)))
	return headerStyle.Render(stats.Truncate(summary, m.width))
}

func (m *Model) renderFooter() string {
	if m.filterMode {
		return headerStyle.Render("tab/shift+tab: next field  enter: apply  esc: cancel")
	}
	return headerStyle.Render("Nav: left/right  Scroll: up/down/pgup/pgdn  Settings: /  Quit: q")
}

func (m *Model) renderBody() string {
	if m.filterMode {
		lines := []string{"Settings (enter to apply, esc to cancel)"}
		for _, input := range m.filterInputs {
			lines = append(lines, input.View())
		}
		if m.filterError != "" {
			lines = append(lines, errorStyle.Render(m.filterError))
		}
		return strings.Join(lines, "\n")
	}
	if len(m.ranked) == 0 {
		return "No sessions found."
	}
	return tableMutedStyle.Render(m.rankTable.View())
}

func (m *Model) startFilter() (tea.Model, tea.Cmd) {
	m.filterMode = true
	m.filterError = ""
	m.setInputsFromSettings()
	return m, m.setFilterIndex(0)
}

func (m *Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.filterMode = false
		m.filterError = ""
		return m, nil
	case tea.KeyEnter:
		if err := m.applyFilter(); err != nil {
			m.filterError = err.Error()
			return m, nil
		}
		m.filterMode = false
		m.filterError = ""
		m.refreshReport()
		return m, nil
	case tea.KeyTab:
		return m, m.setFilterIndex(m.filterIndex + 1)
	case tea.KeyShiftTab:
		return m, m.setFilterIndex(m.filterIndex - 1)
	}
	var cmd tea.Cmd
	m.filterInputs[m.filterIndex], cmd = m.filterInputs[m.filterIndex].Update(msg)
	return m, cmd
}

func (m *Model) setFilterIndex(idx int) tea.Cmd {
	count := len(m.filterInputs)
	if idx < 0 {
		idx = count - 1
	}
	if idx >= count {
		idx = 0
	}
	m.filterIndex = idx
	var cmd tea.Cmd
	for i := range m.filterInputs {
		if i == m.filterIndex {
			cmd = m.filterInputs[i].Focus()
		} else {
			m.filterInputs[i].Blur()
		}
	}
	return cmd
}

func (m *Model) applyFilter() error {
	minInput := strings.TrimSpace(m.filterInputs[inputMinimum].Value())
	var minimum int64
	if minInput != "" {
		parsed, err := strconv.ParseInt(minInput, 10, 64)
		if err != nil || parsed < 0 {
			return fmt.Errorf("invalid minimum (use 0 or positive integer)")
		}
		minimum = parsed
	}
	m.settings = Settings{
		System:  strings.TrimSpace(m.filterInputs[inputSystem].Value()),
		Exclude: SplitList(m.filterInputs[inputExclude].Value()),
		Minimum: minimum,
	}
	return nil
}

func newRankTable() table.Model {
	t := table.New(
		table.WithColumns(rankColumns(80)),
		table.WithHeight(1),
	)
	t.SetStyles(rankTableStyles())
	t.Focus()
	return t
}

func rankColumns(width int) []table.Column {
	return []table.Column{
		{Title: "#", Width: rankColWidth},
		{Title: "Game", Width: gameColWidth(width)},
		{Title: "System", Width: systemColWidth},
		{Title: "Played", Width: playedColWidth},
		{Title: "Total", Width: timeColWidth},
		{Title: "Average", Width: timeColWidth},
		{Title: "Median", Width: timeColWidth},
	}
}

func gameColWidth(width int) int {
	// One column of cell padding per column.
	fixed := rankColWidth + systemColWidth + playedColWidth + 3*timeColWidth + 7
	return maxInt(minGameWidth, width-fixed)
}

func buildRows(entries []model.Stats, titles stats.TitleFunc, gameWidth int) []table.Row {
	rows := make([]table.Row, 0, len(entries))
	for i, s := range entries {
		title := s.Game
		if titles != nil {
			title = titles(s.Game, s.System)
		}
		rows = append(rows, table.Row{
			strconv.Itoa(i + 1),
			stats.Truncate(title, gameWidth),
			s.System,
			strconv.Itoa(s.TimesPlayed),
			stats.FormatDuration(float64(s.TotalTimePlayed)),
			stats.FormatDuration(s.AverageSessionTime),
			stats.FormatDuration(s.MedianSessionTime),
		})
	}
	return rows
}

func rankTableStyles() table.Styles {
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

// SplitList splits a comma separated list, dropping empty items.
func SplitList(input string) []string {
	parts := strings.Split(input, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
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
