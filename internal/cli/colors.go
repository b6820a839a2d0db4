package cli

import "github.com/charmbracelet/lipgloss"

// Seismogram colour palette
// Shared colours for consistent branding across CLI and TUI
var (
	// Core colours (deep to bright)
	QuakeAmber  = lipgloss.Color("#FFB000") // Amber trace ink
	QuakeOchre  = lipgloss.Color("#E07B00") // Ochre
	QuakeRust   = lipgloss.Color("#B7410E") // Rust red
	QuakeBasalt = lipgloss.Color("#3C4650") // Basalt grey

	// Accent colours
	SlateGray = lipgloss.Color("#8A9BA8") // Subtle text
)
