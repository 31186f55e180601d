package header

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/deemkeen/feedsync/domain"
	"github.com/deemkeen/feedsync/ui/common"
	"github.com/deemkeen/feedsync/util"
	"github.com/mattn/go-runewidth"
)

type Model struct {
	Width       int
	Viewer      domain.ActorRef
	UnreadCount int
	Connected   bool
	Toast       string
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(tea.Msg) (Model, tea.Cmd) {
	return m, nil
}

func (m Model) View() string {
	return GetHeaderStyle(m.Viewer, m.Width, m.UnreadCount, m.Connected, m.Toast)
}

func GetHeaderStyle(viewer domain.ActorRef, width int, unreadCount int, connected bool, toast string) string {
	// Single-line header with manual spacing

	leftTextPlain := fmt.Sprintf("📰 %s", viewer.Handle())
	badgePlain := ""

	// Add notification badge if there are unread notifications
	if unreadCount > 0 {
		badgePlain = fmt.Sprintf(" [%d]", unreadCount)
		leftTextPlain += badgePlain
	}

	centerText := util.GetNameAndVersion()
	if toast != "" {
		centerText = "⚠ " + toast
	}

	rightText := "○ offline"
	if connected {
		rightText = "● live"
	}

	// Calculate display widths using plain text (without ANSI codes)
	leftLen := runewidth.StringWidth(leftTextPlain)
	rightLen := runewidth.StringWidth(rightText)

	// The toast gives way to the fixed parts on narrow terminals
	maxCenter := width - leftLen - rightLen - common.HeaderTotalPadding - 2
	centerText = util.TruncateWidth(centerText, max(maxCenter, 0))
	centerLen := runewidth.StringWidth(centerText)

	// Calculate spacing to distribute evenly
	totalTextLen := leftLen + centerLen + rightLen
	totalSpacing := max(width-totalTextLen-common.HeaderTotalPadding, 2)

	// Split spacing: half before center, half after
	leftSpacing := totalSpacing / 2
	rightSpacing := totalSpacing - leftSpacing

	// Raw ANSI codes for the badge so lipgloss keeps the background
	leftText := fmt.Sprintf("📰 %s", viewer.Handle())
	if unreadCount > 0 {
		leftText += common.ANSI_WARNING_START + badgePlain + common.ANSI_COLOR_RESET
	}

	header := fmt.Sprintf("  %s%s%s%s%s  ",
		leftText,
		strings.Repeat(" ", leftSpacing),
		centerText,
		strings.Repeat(" ", rightSpacing),
		rightText,
	)

	background := common.COLOR_ACCENT
	if toast != "" {
		background = common.COLOR_ERROR
	}

	// Apply background and foreground to the entire header line
	return lipgloss.NewStyle().
		Width(width).
		MaxWidth(width).
		Background(lipgloss.Color(background)).
		Foreground(lipgloss.Color(common.COLOR_WHITE)).
		Bold(true).
		Render(header)
}
