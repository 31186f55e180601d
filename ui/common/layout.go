package common

// Layout constants for the TUI
// These values are derived from the actual styling applied to components

const (
	// HeaderHeight is the height of the header bar (single line with Inline(true))
	HeaderHeight = 1

	// HeaderNewline is the newline added after the header in View()
	HeaderNewline = 1

	// FooterHeight is the height of the help/footer text
	FooterHeight = 1

	// PanelMarginVertical is the vertical margin applied to the panel (Margin(1) = 1 top + 1 bottom)
	PanelMarginVertical = 2

	// PanelBorderWidth is total horizontal space taken by the panel border and margin
	PanelBorderWidth = 4

	// HeaderTotalPadding is the total horizontal padding for header content (2 spaces each side)
	HeaderTotalPadding = 4

	// DefaultItemHeight is the estimated height of a single list item in lines
	DefaultItemHeight = 3

	// MinItemsPerPage is the minimum number of items to show per page
	MinItemsPerPage = 3

	// ComposerWidth is the width of the comment composer input
	ComposerWidth = 60

	// MaxContentTruncateWidth is the maximum width for truncating post content
	// This prevents very long lines on wide terminals
	MaxContentTruncateWidth = 150

	// NotificationRefreshSeconds is the interval for polling the unread count
	NotificationRefreshSeconds = 30

	// ToastSeconds is how long an error toast stays in the header
	ToastSeconds = 6

	// MinWidth and MinHeight are the smallest terminal the layout supports
	MinWidth  = 70
	MinHeight = 20
)

// VerticalLayoutOffset returns the total vertical space taken by header, footer, and margins
// Use this to calculate available height for panel content
func VerticalLayoutOffset() int {
	return HeaderHeight + HeaderNewline + PanelMarginVertical + FooterHeight
}

// CalculateAvailableHeight returns the height available for panel content
// after accounting for header, footer, and panel margins
func CalculateAvailableHeight(totalHeight int) int {
	return totalHeight - VerticalLayoutOffset()
}

// CalculatePanelWidth returns the content width of the single panel
func CalculatePanelWidth(totalWidth int) int {
	return totalWidth - PanelBorderWidth
}

// CalculateItemsPerPage returns the number of items that fit in the available height
// based on the estimated item height
func CalculateItemsPerPage(availableHeight, itemHeight int) int {
	if itemHeight <= 0 {
		itemHeight = DefaultItemHeight
	}
	items := availableHeight / itemHeight
	if items < MinItemsPerPage {
		return MinItemsPerPage
	}
	return items
}

// ContentWidth bounds the width used for truncating a line of content
func ContentWidth(panelWidth int) int {
	w := panelWidth - 4
	if w > MaxContentTruncateWidth {
		return MaxContentTruncateWidth
	}
	if w < 10 {
		return 10
	}
	return w
}

// ScrollWindow keeps selected inside [offset, offset+perPage) and returns
// the new offset.
func ScrollWindow(selected, offset, perPage int) int {
	if selected < offset {
		return selected
	}
	if selected >= offset+perPage {
		return selected - perPage + 1
	}
	return offset
}

// AtEnd reports whether the last item of a list of n is inside the visible
// window. It drives the infinite scroll trigger.
func AtEnd(n, offset, perPage int) bool {
	return n == 0 || offset+perPage >= n
}
