package header

import (
	"strings"
	"testing"

	"github.com/deemkeen/feedsync/domain"
	"github.com/deemkeen/feedsync/ui/common"
)

var viewer = domain.ActorRef{Id: "7", Username: "testuser"}

func TestGetHeaderStyle_NoNotifications(t *testing.T) {
	result := GetHeaderStyle(viewer, 120, 0, true, "")

	// Should contain username
	if !strings.Contains(result, "@testuser") {
		t.Errorf("Header should contain username, got: %s", result)
	}

	// Should contain version
	if !strings.Contains(result, "feedsync / ") {
		t.Errorf("Header should contain version, got: %s", result)
	}

	// Should show the live push channel
	if !strings.Contains(result, "live") {
		t.Errorf("Header should show connection state, got: %s", result)
	}

	// Should NOT contain notification badge
	if strings.Contains(result, "[0]") {
		t.Errorf("Header should not contain notification badge when count is 0")
	}
}

func TestGetHeaderStyle_WithNotifications(t *testing.T) {
	result := GetHeaderStyle(viewer, 120, 5, false, "")

	// Should contain notification badge with count
	if !strings.Contains(result, "[5]") {
		t.Errorf("Header should contain notification badge [5], got: %s", result)
	}

	// Badge should have warning color ANSI codes
	if !strings.Contains(result, common.ANSI_WARNING_START) {
		t.Errorf("Badge should have warning color ANSI code")
	}

	// Should have color reset after badge
	if !strings.Contains(result, common.ANSI_COLOR_RESET) {
		t.Errorf("Badge should be followed by color reset ANSI code")
	}

	if !strings.Contains(result, "offline") {
		t.Errorf("Header should show the disconnected state, got: %s", result)
	}
}

func TestGetHeaderStyle_ToastReplacesVersion(t *testing.T) {
	result := GetHeaderStyle(viewer, 120, 0, true, "like post failed: status 500")

	if !strings.Contains(result, "like post failed") {
		t.Errorf("Header should show the toast, got: %s", result)
	}
	if strings.Contains(result, "feedsync / ") {
		t.Errorf("Toast should replace the version, got: %s", result)
	}
}

func TestGetHeaderStyle_LongToastIsTruncated(t *testing.T) {
	toast := strings.Repeat("very long failure ", 20)
	result := GetHeaderStyle(viewer, 80, 3, true, toast)

	if !strings.Contains(result, "[3]") {
		t.Errorf("Badge must survive a long toast, got: %s", result)
	}
	if !strings.Contains(result, "live") {
		t.Errorf("Connection state must survive a long toast, got: %s", result)
	}
}

func TestGetHeaderStyle_WidthHandling(t *testing.T) {
	// Test with different widths
	widths := []int{80, 120, 150}
	for _, width := range widths {
		result := GetHeaderStyle(viewer, width, 0, false, "")

		// Header should contain the main elements regardless of width
		if !strings.Contains(result, "@testuser") {
			t.Errorf("Header with width %d should contain username", width)
		}
		if !strings.Contains(result, "feedsync / ") {
			t.Errorf("Header with width %d should contain version", width)
		}
	}
}

func TestGetHeaderStyle_LargeNotificationCount(t *testing.T) {
	result := GetHeaderStyle(viewer, 120, 99, true, "")

	// Should handle large notification counts
	if !strings.Contains(result, "[99]") {
		t.Errorf("Header should contain notification badge [99], got: %s", result)
	}
}
