package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// Title and description shared by the banner, help and TUI
const (
	AppTitle       = "Temblor 〰"
	AppDescription = "Scan, plan and read seismic waveform archives into analysis-ready time series."
)

// Color palette
var (
	primaryColor   = QuakeRust
	accentColor    = QuakeAmber
	successColor   = lipgloss.Color("#4A9B4A") // Green
	mutedColor     = lipgloss.Color("#888888") // Gray
	highlightColor = lipgloss.Color("#FFFF00") // Yellow
	textColor      = lipgloss.Color("#FFFFFF") // White
)

// Styles
var (
	// Title style - bold rust
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginBottom(1)

	// Subtitle style - muted gray
	SubtitleStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Italic(true)

	// Section header style
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accentColor).
			MarginTop(1).
			MarginBottom(1)

	// Success message style
	SuccessStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(successColor)

	// Error message style
	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	// Highlight style for important values
	HighlightStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(highlightColor)

	// Key-value pair styles
	KeyStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	ValueStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(textColor)

	// Box style for framed content
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor).
			Padding(1, 2).
			MarginTop(1).
			MarginBottom(1)

	tableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(accentColor).
				Padding(0, 1)

	tableCellStyle = lipgloss.NewStyle().
			Padding(0, 1)
)

// Output destinations, replaceable in tests
var (
	Stdout io.Writer = os.Stdout
	Stderr io.Writer = os.Stderr
)

// PrintBanner prints the application banner
func PrintBanner() {
	fmt.Fprintln(Stdout, TitleStyle.Render(AppTitle))
	fmt.Fprintln(Stdout, SubtitleStyle.Render(AppDescription))
	fmt.Fprintln(Stdout)
}

// PrintVersion prints version information
func PrintVersion(version string) {
	fmt.Fprintln(Stdout, TitleStyle.Render(AppTitle))
	fmt.Fprintf(Stdout, "%s %s\n", KeyStyle.Render("Version:"), ValueStyle.Render(version))
	fmt.Fprintln(Stdout)
}

// PrintError prints an error message
func PrintError(message string) {
	fmt.Fprintf(Stderr, "%s %s\n", ErrorStyle.Render("Error:"), message)
}

// PrintWarning prints a warning message
func PrintWarning(message string) {
	fmt.Fprintf(Stderr, "%s %s\n", HighlightStyle.Render("Warning:"), message)
}

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	fmt.Fprintf(Stdout, "%s %s\n", SuccessStyle.Render("✓"), message)
}

// PrintInfo prints an informational message
func PrintInfo(key, value string) {
	fmt.Fprintf(Stdout, "%s %s\n", KeyStyle.Render(key+":"), ValueStyle.Render(value))
}

// PrintSection prints a section header
func PrintSection(title string) {
	fmt.Fprintln(Stdout, HeaderStyle.Render(title))
}

// FormatDuration formats a duration nicely
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%.0fms", d.Seconds()*1000)
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

// FormatSeconds formats a span of recorded data
func FormatSeconds(s float64) string {
	switch {
	case s < 120:
		return fmt.Sprintf("%.1fs", s)
	case s < 7200:
		return fmt.Sprintf("%.1fm", s/60)
	default:
		return fmt.Sprintf("%.1fh", s/3600)
	}
}

// FormatBytes formats bytes into human-readable format
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// PrintBox prints content in a styled box
func PrintBox(content string) {
	fmt.Fprintln(Stdout, BoxStyle.Render(content))
}

// RenderTable lays out rows under headers with a rounded border
func RenderTable(headers []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(QuakeBasalt)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			return tableCellStyle
		})
	return t.String()
}

// PrintTable prints rows under headers
func PrintTable(headers []string, rows [][]string) {
	fmt.Fprintln(Stdout, RenderTable(headers, rows))
}

// Summary is a titled list of key/value lines shown in a box
type Summary struct {
	Title string
	Lines [][2]string
}

// Add appends a key/value line
func (s *Summary) Add(key, value string) {
	s.Lines = append(s.Lines, [2]string{key, value})
}

// Render lays out the summary with keys padded to a common width
func (s *Summary) Render() string {
	var b strings.Builder

	b.WriteString(SuccessStyle.Render("✓ " + s.Title))
	b.WriteString("\n\n")

	width := 0
	for _, l := range s.Lines {
		width = max(width, len(l[0])+1)
	}
	for i, l := range s.Lines {
		b.WriteString(KeyStyle.Render(fmt.Sprintf("%-*s ", width, l[0]+":")))
		b.WriteString(ValueStyle.Render(l[1]))
		if i < len(s.Lines)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// PrintSummary prints a summary in a box
func PrintSummary(s *Summary) {
	PrintBox(s.Render())
}
