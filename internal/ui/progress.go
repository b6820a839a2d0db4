package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/linuxmatters/temblor/internal/cli"
)

// Progress reports one finished item of a task
type Progress struct {
	Done   int
	Total  int
	Item   string // name of the item just finished
	Detail string // short result, e.g. "12 traces"
	Failed bool
}

// Complete signals the end of a task with summary lines
type Complete struct {
	Lines    [][2]string
	Duration time.Duration
}

// quitTimerMsg is sent when it's time to quit after showing completion
type quitTimerMsg struct{}

// taskModel implements the Bubbletea model for a counted task
type taskModel struct {
	title           string
	progress        progress.Model
	lastUpdate      Progress
	failures        int
	complete        *Complete
	startTime       time.Time
	width           int
	minDisplayTime  time.Duration // Minimum time to show UI
	completionDelay time.Duration // Time to show completion screen
}

// NewTaskModel creates a progress UI for a task such as "Scanning files"
func NewTaskModel(title string) tea.Model {
	p := progress.New(
		progress.WithGradient(string(cli.QuakeRust), string(cli.QuakeAmber)),
		progress.WithWidth(40),
		progress.WithoutPercentage(), // Hide built-in percentage display
	)

	return &taskModel{
		title:           title,
		progress:        p,
		startTime:       time.Now(),
		minDisplayTime:  300 * time.Millisecond,
		completionDelay: time.Second,
	}
}

// Init initializes the model
func (m *taskModel) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m *taskModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.progress.Width = max(10, min(msg.Width-30, 50))
		return m, nil

	case Progress:
		m.lastUpdate = msg
		if msg.Failed {
			m.failures++
		}
		return m, nil

	case Complete:
		m.complete = &msg

		// If total time is less than minDisplayTime, extend completion delay
		delay := m.completionDelay
		if elapsed := time.Since(m.startTime); elapsed < m.minDisplayTime {
			delay += m.minDisplayTime - elapsed
		}

		return m, tea.Tick(delay, func(t time.Time) tea.Msg {
			return quitTimerMsg{}
		})

	case quitTimerMsg:
		return m, tea.Quit

	case tea.KeyMsg:
		// Allow any key to skip the completion screen delay
		if m.complete != nil {
			return m, tea.Quit
		}
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}

	return m, nil
}

// View renders the UI
func (m *taskModel) View() string {
	if m.complete != nil {
		return m.renderComplete()
	}
	return m.renderProgress()
}

// Percent of the task finished
func (m *taskModel) Percent() float64 {
	if m.lastUpdate.Total <= 0 {
		return 0
	}
	return min(1, float64(m.lastUpdate.Done)/float64(m.lastUpdate.Total))
}

func (m *taskModel) renderProgress() string {
	var s strings.Builder

	s.WriteString(lipgloss.NewStyle().Bold(true).Foreground(cli.QuakeRust).Render(cli.AppTitle))
	s.WriteString("\n")
	s.WriteString(lipgloss.NewStyle().Faint(true).Render(m.title))
	s.WriteString("\n\n")

	s.WriteString("Progress: ")
	s.WriteString(m.progress.ViewAs(m.Percent()))
	s.WriteString(fmt.Sprintf("  %d%%\n\n", int(m.Percent()*100)))

	labelStyle := lipgloss.NewStyle().Faint(true)
	s.WriteString(labelStyle.Render("Done:     "))
	s.WriteString(fmt.Sprintf("%d of %d", m.lastUpdate.Done, m.lastUpdate.Total))
	if m.failures > 0 {
		s.WriteString(cli.HighlightStyle.Render(fmt.Sprintf("  (%d with problems)", m.failures)))
	}
	s.WriteString("\n")
	s.WriteString(labelStyle.Render("Elapsed:  "))
	s.WriteString(formatDuration(time.Since(m.startTime)))

	if m.lastUpdate.Item != "" {
		s.WriteString("\n")
		s.WriteString(labelStyle.Render("Last:     "))
		s.WriteString(truncate(m.lastUpdate.Item, max(20, m.width-30)))
		if m.lastUpdate.Detail != "" {
			s.WriteString(labelStyle.Render("  " + m.lastUpdate.Detail))
		}
	}

	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(cli.QuakeRust).
		Padding(1, 2).
		Render(s.String())
}

func (m *taskModel) renderComplete() string {
	summary := &cli.Summary{Title: m.title + " complete"}
	for _, l := range m.complete.Lines {
		summary.Add(l[0], l[1])
	}
	summary.Add("Time", formatDuration(m.complete.Duration))

	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#4A9B4A")).
		Padding(1, 2).
		Render(summary.Render()) + "\n"
}

func formatDuration(d time.Duration) string {
	if d == 0 {
		return "0s"
	}
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

// truncate shortens s to n runes, keeping the tail
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return "…" + string(r[len(r)-n+1:])
}
