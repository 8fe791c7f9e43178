package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/n0roo/content-locator/internal/aggregate"
	"github.com/n0roo/content-locator/internal/render"
	"github.com/n0roo/content-locator/internal/report"
)

// BuildFunc produces a fresh report.
type BuildFunc func(ctx context.Context) *report.Report

// chrome is the number of screen rows used outside the group list
const chrome = 10

const helpLine = "  [1-6] bucket  [tab/←/→] cycle  [↑/↓] move  [enter] expand  [r] rebuild  [q] quit"

// Model browses one report bucket at a time
type Model struct {
	build   BuildFunc
	report  *report.Report
	loading bool
	spinner spinner.Model

	currentTab int
	cursor     map[report.BucketName]int
	expanded   map[string]bool

	width, height int
	ready         bool
}

type reportMsg struct {
	report *report.Report
}

// NewModel returns a model that builds its first report on Init
func NewModel(build BuildFunc) Model {
	sp := spinner.New(spinner.WithSpinner(spinner.MiniDot))
	sp.Style = base.Foreground(accent)

	return Model{
		build:    build,
		loading:  true,
		spinner:  sp,
		cursor:   map[report.BucketName]int{},
		expanded: map[string]bool{},
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.load)
}

func (m Model) load() tea.Msg {
	return reportMsg{report: m.build(context.Background())}
}

func (m Model) bucketName() report.BucketName {
	return report.BucketNames[m.currentTab]
}

func (m Model) bucket() *report.Bucket {
	if m.report == nil {
		return nil
	}
	return m.report.Bucket(m.bucketName())
}

// groupID identifies a group across buckets for the expanded set
func groupID(bucket report.BucketName, key string) string {
	return string(bucket) + "\x00" + key
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg.String())

	case tea.WindowSizeMsg:
		m.width, m.height, m.ready = msg.Width, msg.Height, true

	case reportMsg:
		m.report, m.loading = msg.report, false
		m.clampCursors()

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

func (m Model) handleKey(key string) (tea.Model, tea.Cmd) {
	n := len(report.BucketNames)
	name := m.bucketName()

	switch key {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "tab", "right", "l":
		m.currentTab = (m.currentTab + 1) % n
	case "shift+tab", "left", "h":
		m.currentTab = (m.currentTab + n - 1) % n
	case "up", "k":
		m.cursor[name] = max(m.cursor[name]-1, 0)
	case "down", "j":
		if b := m.bucket(); b != nil {
			m.cursor[name] = min(m.cursor[name]+1, max(len(b.Groups)-1, 0))
		}
	case "enter", " ":
		if b := m.bucket(); b != nil && len(b.Groups) > 0 {
			id := groupID(name, b.Groups[m.cursor[name]].Key)
			m.expanded[id] = !m.expanded[id]
		}
	case "r":
		// 빌드 중이면 무시
		if m.loading {
			return m, nil
		}
		m.loading = true
		return m, tea.Batch(m.spinner.Tick, m.load)
	default:
		if len(key) == 1 && key[0] >= '1' && int(key[0]-'1') < n {
			m.currentTab = int(key[0] - '1')
		}
	}
	return m, nil
}

// clampCursors keeps cursors inside buckets that shrank after a rebuild
func (m Model) clampCursors() {
	for _, b := range m.report.Buckets {
		if m.cursor[b.Name] >= len(b.Groups) {
			m.cursor[b.Name] = max(len(b.Groups)-1, 0)
		}
	}
}

func (m Model) View() string {
	if !m.ready {
		return "\n  Loading..."
	}

	body := fmt.Sprintf("  %s Scanning content...", m.spinner.View())
	if m.report != nil {
		body = m.bucketView()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.statusBar(),
		m.tabBar()+"\n",
		body,
		m.footer(),
	)
}

func (m Model) statusBar() string {
	width := max(m.width, 60)

	var right string
	if m.loading {
		right = m.spinner.View() + " Scanning..."
	} else if m.report != nil {
		right = fmt.Sprintf("%d documents · built %s", m.report.Documents, m.report.GeneratedAt.Format("15:04:05"))
	}

	left := base.Bold(true).Render("Content Locator")
	right = dimStyle.Render(right)
	fill := max(width-2-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return barStyle.Width(width).Render(left + strings.Repeat(" ", fill) + right)
}

func (m Model) tabBar() string {
	labels := make([]string, len(report.BucketNames))
	for i, name := range report.BucketNames {
		style := tabOff
		if i == m.currentTab {
			style = tabOn
		}
		labels[i] = style.Render(fmt.Sprintf("%d %s", i+1, name.Title()))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, labels...)
}

func (m Model) footer() string {
	var lines []string
	if m.report != nil {
		for _, w := range m.report.Warnings {
			lines = append(lines, warnStyle.Render("  ! "+w))
		}
	}
	lines = append(lines, keysStyle.Render(helpLine))
	return strings.Join(lines, "\n")
}

// visibleGroups returns the [start, end) window of groups that fits the
// screen, keeping the cursor roughly centered.
func (m Model) visibleGroups(total int) (int, int) {
	rows := m.height - chrome
	if rows <= 0 || total <= rows {
		return 0, total
	}
	start := min(max(m.cursor[m.bucketName()]-rows/2, 0), total-rows)
	return start, start + rows
}

func (m Model) bucketView() string {
	bk := m.bucket()
	if bk == nil {
		return failStyle.Render("  unknown bucket")
	}

	out := []string{headingStyle.Render(fmt.Sprintf("%s (%d)", bk.Title, bk.Total()))}
	if len(bk.Groups) == 0 {
		out = append(out, dimStyle.Render("  "+render.EmptyMessage(*bk)))
		return strings.Join(out, "\n")
	}

	start, end := m.visibleGroups(len(bk.Groups))
	for i, g := range bk.Groups[start:end] {
		open := m.expanded[groupID(bk.Name, g.Key)]
		marker := "+"
		if open {
			marker = "-"
		}

		line := fmt.Sprintf("%s %s %s", marker, g.Key, totalStyle.Render(fmt.Sprintf("(%d)", g.Total)))
		if start+i == m.cursor[bk.Name] {
			out = append(out, cursorStyle.Render(line))
		} else {
			out = append(out, rowStyle.Render(line))
		}

		if open {
			for _, e := range g.Entries {
				out = append(out, entryIndent.Render(entryLine(e)))
			}
		}
	}
	if end-start < len(bk.Groups) {
		out = append(out, dimStyle.Render(fmt.Sprintf("  %d-%d of %d", start+1, end, len(bk.Groups))))
	}
	return strings.Join(out, "\n") + "\n"
}

func entryLine(e aggregate.Entry) string {
	parts := []string{
		statusMark(e.Status),
		e.Title,
		fmt.Sprintf("×%d", e.Count),
		metaStyle.Render(e.Type + "/" + e.Status),
	}
	for _, u := range []string{e.ViewURL, e.EditURL} {
		if u != "" {
			parts = append(parts, urlStyle.Render(u))
		}
	}
	return strings.Join(parts, "  ")
}

// Run starts the TUI on the alternate screen
func Run(build BuildFunc) error {
	_, err := tea.NewProgram(NewModel(build), tea.WithAltScreen()).Run()
	return err
}
