package common

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
)

const (
	// === Primary UI Colors ===
	COLOR_ACCENT    = "69" // ANSI 69 (#5f87ff) - Primary accent: borders, selections, header
	COLOR_SECONDARY = "75" // ANSI 75 (#5fafff) - Secondary accent: timestamps, counters

	// === Text Colors ===
	COLOR_WHITE = "255" // ANSI 255 (#eeeeee) - Primary text, post content
	COLOR_MUTED = "245" // ANSI 245 (#8a8a8a) - Tertiary text, disabled, hints
	COLOR_DIM   = "240" // ANSI 240 (#585858) - Very dim text, borders, separators

	// === Semantic Colors ===
	COLOR_USERNAME = "48"  // ANSI 48 (#00ff87) - Usernames stand out
	COLOR_SUCCESS  = "48"  // ANSI 48 (#00ff87) - Success messages (same as username for cohesion)
	COLOR_ERROR    = "196" // ANSI 196 (#ff0000) - Errors, delete actions, warnings
	COLOR_CRITICAL = "9"   // ANSI 9 (#ff5555) - Critical errors, terminal size warnings
	COLOR_WARNING  = "214" // ANSI 214 (#ffaf00) - Pending entries, unread badge (amber)
	COLOR_LIKED    = "204" // ANSI 204 (#ff5f87) - Liked hearts

	// === Section/Title Colors ===
	COLOR_CAPTION = "170" // ANSI 170 (#d75fd7) - Section captions, titles
	COLOR_HELP    = "245" // ANSI 245 (#8a8a8a) - Help text (same as muted)

	// === ANSI Escape Sequences (for inline coloring without breaking backgrounds) ===
	ANSI_WARNING_START = "\033[38;5;214m" // Start warning color (orange/yellow)
	ANSI_COLOR_RESET   = "\033[39m"       // Reset foreground to default
)

var (
	HelpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color(COLOR_HELP)).Padding(0, 2)
	CaptionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(COLOR_CAPTION)).Padding(0, 0, 1, 0)

	// === Shared List Styles ===

	// ListItemStyle is the base style for unselected list items
	ListItemStyle = lipgloss.NewStyle()

	// ListItemSelectedStyle is for the selected item text (highlighted color + bold)
	ListItemSelectedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color(COLOR_USERNAME)).
				Bold(true)

	// ListEmptyStyle is for empty list messages
	ListEmptyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(COLOR_DIM)).
			Italic(true)

	// ListStatusStyle is for status messages (success, info)
	ListStatusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(COLOR_SUCCESS))

	// ListErrorStyle is for error messages
	ListErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(COLOR_ERROR))

	// ListBadgeStyle is for inline badges like [pending], [saved]
	ListBadgeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(COLOR_DIM))

	// PendingStyle marks entries the server has not confirmed yet
	PendingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(COLOR_WARNING)).
			Italic(true)

	// AuthorStyle renders author handles
	AuthorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(COLOR_USERNAME)).
			Bold(true)

	// CounterStyle renders like/comment counters
	CounterStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(COLOR_SECONDARY))

	LikedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(COLOR_LIKED))
)

const (
	// ListSelectedPrefix is the indicator shown before selected items
	ListSelectedPrefix = "› "
	// ListUnselectedPrefix is the spacing for unselected items (same width as selected)
	ListUnselectedPrefix = "  "
)

// Prefix returns the list prefix for a row
func Prefix(selected bool) string {
	if selected {
		return ListSelectedPrefix
	}
	return ListUnselectedPrefix
}

// Heart renders the like marker with its counter
func Heart(liked bool, count int) string {
	if liked {
		return LikedStyle.Render("♥") + " " + CounterStyle.Render(strconv.Itoa(count))
	}
	return "♡ " + CounterStyle.Render(strconv.Itoa(count))
}

// SavedMark renders the bookmark badge
func SavedMark(saved bool) string {
	if saved {
		return ListStatusStyle.Render("[saved]")
	}
	return ""
}
