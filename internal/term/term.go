// Package term provides color state, level styles, and terminal detection.
//
// Styles are package-level because both logging and display render with
// them. [Configure] sets them once during startup; when colors are disabled
// the renderer uses the Ascii profile and every style renders plain text.
package term

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"

	"github.com/backmassage/silk2mp3/internal/config"
)

// Level styles. Plain until [Configure] enables colors.
var (
	Red     = lipgloss.NewStyle()
	Green   = lipgloss.NewStyle()
	Yellow  = lipgloss.NewStyle()
	Blue    = lipgloss.NewStyle()
	Cyan    = lipgloss.NewStyle()
	Magenta = lipgloss.NewStyle()

	enabled bool
)

// Configure resolves the color mode and rebuilds the package-level styles.
// Call once during startup (from [logging.NewLogger]).
func Configure(mode config.ColorMode) {
	enabled = resolve(mode)

	r := lipgloss.NewRenderer(os.Stdout)
	if enabled {
		r.SetColorProfile(termenv.ANSI256)
	} else {
		r.SetColorProfile(termenv.Ascii)
	}

	bold := r.NewStyle().Bold(enabled)
	Red = bold.Foreground(lipgloss.Color("9"))
	Green = bold.Foreground(lipgloss.Color("10"))
	Yellow = bold.Foreground(lipgloss.Color("11"))
	Blue = bold.Foreground(lipgloss.Color("12"))
	Cyan = bold.Foreground(lipgloss.Color("14"))
	Magenta = bold.Foreground(lipgloss.Color("13"))
}

// Enabled reports whether colors are currently active.
func Enabled() bool { return enabled }

// resolve determines whether colors should be enabled based on the configured
// mode, TTY detection, and the NO_COLOR env var (https://no-color.org).
func resolve(mode config.ColorMode) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	default: // ColorAuto
		return IsTerminal(os.Stdout) &&
			os.Getenv("NO_COLOR") == "" &&
			strings.ToLower(os.Getenv("TERM")) != "dumb"
	}
}

// IsTerminal reports whether f is attached to a TTY.
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
