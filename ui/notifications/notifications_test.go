package notifications

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/deemkeen/feedsync/domain"
	"github.com/deemkeen/feedsync/ui/common"
	"github.com/deemkeen/feedsync/ui/uitest"
)

func notification(id string, read bool) domain.Notification {
	return domain.Notification{
		Id:        id,
		Type:      domain.NotificationLike,
		Sender:    domain.ActorRef{Id: "u" + id, Username: "user" + id},
		Message:   "liked your post",
		IsRead:    read,
		CreatedAt: time.Now(),
	}
}

// loaded returns a model whose store holds the backend's first page
func loaded(t *testing.T, backend *uitest.Backend) (Model, *common.Session) {
	t.Helper()
	session, _ := uitest.NewSession(backend)
	model := InitialModel(session, 100, 40)

	msg, ok := uitest.Exec(model.loadNotifications(true)).(common.LoadedMsg)
	if !ok {
		t.Fatalf("Expected LoadedMsg")
	}
	model, _ = model.Update(msg)
	return model, session
}

func TestInitialModel(t *testing.T) {
	session, _ := uitest.NewSession(&uitest.Backend{})
	model := InitialModel(session, 100, 40)

	if model.Width != 100 || model.Height != 40 {
		t.Errorf("Expected 100x40, got %dx%d", model.Width, model.Height)
	}
	if model.isActive != false {
		t.Errorf("Expected isActive false initially, got %v", model.isActive)
	}
	if len(model.Notifications) != 0 {
		t.Errorf("Expected empty notifications list initially")
	}
}

func TestUpdate_ActivateViewMsg(t *testing.T) {
	session, _ := uitest.NewSession(&uitest.Backend{})
	model := InitialModel(session, 100, 40)

	newModel, cmd := model.Update(common.ActivateViewMsg{})

	if !newModel.isActive {
		t.Errorf("Expected isActive true after ActivateViewMsg")
	}
	if cmd == nil {
		t.Errorf("Expected cmd to load notifications")
	}
}

func TestUpdate_DeactivateViewMsg(t *testing.T) {
	session, _ := uitest.NewSession(&uitest.Backend{})
	model := InitialModel(session, 100, 40)
	model.isActive = true

	newModel, cmd := model.Update(common.DeactivateViewMsg{})

	if newModel.isActive != false {
		t.Errorf("Expected isActive false after DeactivateViewMsg")
	}
	if cmd != nil {
		t.Errorf("Expected no cmd after DeactivateViewMsg")
	}
}

func TestUpdate_LoadSyncsUnreadCount(t *testing.T) {
	model, _ := loaded(t, &uitest.Backend{
		NotificationData: []domain.Notification{notification("1", false), notification("2", true)},
		Unread:           7,
	})

	if len(model.Notifications) != 2 {
		t.Errorf("Expected 2 notifications, got %d", len(model.Notifications))
	}
	// The server's count wins over the page's
	if model.UnreadCount != 7 {
		t.Errorf("Expected unread count 7, got %d", model.UnreadCount)
	}
}

func TestUpdate_RefreshTickStopsWhenInactive(t *testing.T) {
	session, _ := uitest.NewSession(&uitest.Backend{})
	model := InitialModel(session, 100, 40)

	_, cmd := model.Update(refreshTickMsg{})
	if cmd != nil {
		t.Errorf("Expected ticker chain to stop while inactive")
	}

	model.isActive = true
	_, cmd = model.Update(refreshTickMsg{})
	if cmd == nil {
		t.Errorf("Expected unread refresh while active")
	}
}

func TestUpdate_KeyboardNavigation(t *testing.T) {
	model, _ := loaded(t, &uitest.Backend{NotificationData: []domain.Notification{
		notification("1", true), notification("2", true), notification("3", true),
	}})

	// Test down navigation
	newModel, _ := model.Update(uitest.Key("j"))
	if newModel.Selected != 1 {
		t.Errorf("Expected selected 1 after 'j', got %d", newModel.Selected)
	}

	// Test up navigation
	newModel, _ = newModel.Update(uitest.Key("k"))
	if newModel.Selected != 0 {
		t.Errorf("Expected selected 0 after 'k', got %d", newModel.Selected)
	}

	// Test down with arrow key
	newModel, _ = model.Update(tea.KeyMsg{Type: tea.KeyDown})
	if newModel.Selected != 1 {
		t.Errorf("Expected selected 1 after down arrow, got %d", newModel.Selected)
	}

	// Try to go up from 0 (should stay at 0)
	newModel, _ = model.Update(tea.KeyMsg{Type: tea.KeyUp})
	if newModel.Selected != 0 {
		t.Errorf("Expected selected to stay at 0 when at top")
	}
}

func TestMarkReadUpdatesBadge(t *testing.T) {
	backend := &uitest.Backend{NotificationData: []domain.Notification{notification("1", false), notification("2", false)}, Unread: 2}
	model, _ := loaded(t, backend)

	model, cmd := model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	model, _ = model.Update(uitest.Exec(cmd))

	if model.Notifications[0].IsRead != true {
		t.Errorf("Expected first notification read")
	}
	if model.UnreadCount != 1 {
		t.Errorf("Expected unread 1, got %d", model.UnreadCount)
	}

	model, cmd = model.Update(uitest.Key("a"))
	model, _ = model.Update(uitest.Exec(cmd))
	if model.UnreadCount != 0 {
		t.Errorf("Expected unread 0 after mark all, got %d", model.UnreadCount)
	}
}

func TestDeleteAndDeleteAll(t *testing.T) {
	backend := &uitest.Backend{NotificationData: []domain.Notification{
		notification("1", false), notification("2", true), notification("3", true),
	}, Unread: 1}
	model, _ := loaded(t, backend)

	model, cmd := model.Update(uitest.Key("d"))
	model, _ = model.Update(uitest.Exec(cmd))
	if len(model.Notifications) != 2 || model.UnreadCount != 0 {
		t.Errorf("Expected 2 read notifications left, got %d (unread %d)", len(model.Notifications), model.UnreadCount)
	}

	model, cmd = model.Update(uitest.Key("D"))
	model, _ = model.Update(uitest.Exec(cmd))
	if len(model.Notifications) != 0 {
		t.Errorf("Expected empty list, got %d", len(model.Notifications))
	}
}

func TestView_EmptyNotifications(t *testing.T) {
	session, _ := uitest.NewSession(&uitest.Backend{})
	model := InitialModel(session, 100, 40)

	view := model.View()
	if !strings.Contains(view, "No notifications yet") {
		t.Errorf("Should render the empty message, got: %s", view)
	}
}

func TestView_WithNotifications(t *testing.T) {
	model, _ := loaded(t, &uitest.Backend{NotificationData: []domain.Notification{notification("1", false)}, Unread: 1})

	view := model.View()
	if !strings.Contains(view, "@user1") {
		t.Errorf("View should render the sender, got: %s", view)
	}
	if !strings.Contains(view, "1 unread") {
		t.Errorf("View should render the unread count, got: %s", view)
	}
}
