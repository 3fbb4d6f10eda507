package terminal

import "github.com/charmbracelet/lipgloss"

var (
	colorBorder   = lipgloss.Color("#3a3a3a")
	colorAccent   = lipgloss.Color("#ffb000")
	colorText     = lipgloss.Color("#ffffff")
	colorMuted    = lipgloss.Color("#808080")
	colorSubtitle = lipgloss.Color("#64d2ff")
	colorDesc     = lipgloss.Color("#d0d0d0")
)

// theme holds the panel styles, bound to the renderer of the output they are drawn to.
type theme struct {
	Panel       lipgloss.Style
	Header      lipgloss.Style
	Title       lipgloss.Style
	Subtitle    lipgloss.Style
	Description lipgloss.Style
	Footer      lipgloss.Style
}

func newTheme(r *lipgloss.Renderer, width int) theme {
	return theme{
		Panel: r.NewStyle().
			Width(width).
			Padding(0, 1).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder),
		Header: r.NewStyle().
			Foreground(colorAccent).
			Bold(true),
		Title: r.NewStyle().
			Foreground(colorText).
			Bold(true),
		Subtitle: r.NewStyle().
			Foreground(colorSubtitle).
			Italic(true),
		Description: r.NewStyle().
			Foreground(colorDesc),
		Footer: r.NewStyle().
			Foreground(colorMuted),
	}
}
