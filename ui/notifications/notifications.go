package notifications

import (
	"fmt"
	"log"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/deemkeen/feedsync/domain"
	"github.com/deemkeen/feedsync/feed"
	"github.com/deemkeen/feedsync/pagination"
	"github.com/deemkeen/feedsync/store"
	"github.com/deemkeen/feedsync/ui/common"
	"github.com/deemkeen/feedsync/util"
)

const notificationHeight = 2

type Model struct {
	Session       *common.Session
	Notifications []domain.Notification
	Selected      int
	Offset        int
	Width         int
	Height        int
	isActive      bool
	UnreadCount   int
	trigger       pagination.ScrollTrigger
}

type refreshTickMsg struct{}

func InitialModel(session *common.Session, width, height int) Model {
	return Model{
		Session:       session,
		Notifications: []domain.Notification{},
		Width:         width,
		Height:        height,
	}
}

func (m Model) Init() tea.Cmd {
	return nil // Don't start commands - model starts inactive
}

func (m Model) perPage() int {
	return common.CalculateItemsPerPage(common.CalculateAvailableHeight(m.Height)-2, notificationHeight)
}

func (m *Model) refresh() {
	m.Notifications = m.Session.Store.Notifications()
	m.UnreadCount = m.Session.Store.Unread()
	// Keep selection within bounds
	if m.Selected >= len(m.Notifications) {
		m.Selected = len(m.Notifications) - 1
	}
	if m.Selected < 0 {
		m.Selected = 0
	}
	m.Offset = common.ScrollWindow(m.Selected, min(m.Offset, m.Selected), m.perPage())
}

func (m Model) loadNotifications(refresh bool) tea.Cmd {
	loader, ctx := m.Session.Loader, m.Session.Ctx
	return common.LoadCmd(func() feed.Result {
		return loader.LoadNotifications(ctx, refresh)
	})
}

func (m *Model) loadMore() tea.Cmd {
	if !m.trigger.Observe(common.AtEnd(len(m.Notifications), m.Offset, m.perPage())) {
		return nil
	}
	if !m.Session.Store.Cursor(store.NotificationsKey).CanLoadMore() {
		return nil
	}
	return m.loadNotifications(false)
}

// inbox runs one inbox call off the loop. Failures reach the user through
// the bus, so the result is only a store refresh.
func (m Model) inbox(call func(*feed.Inbox) error) tea.Cmd {
	inbox := m.Session.Inbox
	return func() tea.Msg {
		if err := call(inbox); err != nil {
			log.Printf("Notifications: %v", err)
		}
		return common.StoreChangedMsg{}
	}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case common.ActivateViewMsg:
		m.isActive = true
		m.trigger.Reset()
		m.refresh()
		return m, tea.Batch(m.loadNotifications(true), tickRefresh())

	case common.DeactivateViewMsg:
		m.isActive = false
		return m, nil

	case common.LoadedMsg:
		if msg.Result.Key != store.NotificationsKey {
			return m, nil
		}
		before := len(m.Notifications)
		m.refresh()
		if len(m.Notifications) > before {
			m.trigger.Reset()
		}
		return m, nil

	case common.StoreChangedMsg, common.BusMsg:
		m.refresh()
		return m, nil

	case refreshTickMsg:
		if m.isActive {
			loader, ctx := m.Session.Loader, m.Session.Ctx
			return m, tea.Batch(func() tea.Msg {
				loader.RefreshUnread(ctx)
				return common.StoreChangedMsg{}
			}, tickRefresh())
		}
		return m, nil // Stop ticker chain when inactive

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if m.Selected > 0 {
				m.Selected--
				m.Offset = common.ScrollWindow(m.Selected, m.Offset, m.perPage())
			}
			return m, m.loadMore()
		case "down", "j":
			if m.Selected < len(m.Notifications)-1 {
				m.Selected++
				m.Offset = common.ScrollWindow(m.Selected, m.Offset, m.perPage())
			}
			return m, m.loadMore()
		case "r":
			m.Selected, m.Offset = 0, 0
			m.trigger.Reset()
			return m, m.loadNotifications(true)
		case "a":
			// Mark all as read
			return m, m.inbox(func(i *feed.Inbox) error {
				return i.MarkAllRead(m.Session.Ctx)
			})
		case "D":
			return m, m.inbox(func(i *feed.Inbox) error {
				return i.DeleteAll(m.Session.Ctx)
			})
		}

		if m.Selected >= len(m.Notifications) {
			return m, nil
		}
		notif := m.Notifications[m.Selected]
		switch msg.String() {
		case "enter":
			if notif.IsRead {
				return m, nil
			}
			return m, m.inbox(func(i *feed.Inbox) error {
				return i.MarkRead(m.Session.Ctx, notif.Id)
			})
		case "d":
			return m, m.inbox(func(i *feed.Inbox) error {
				return i.Delete(m.Session.Ctx, notif.Id)
			})
		}
	}
	return m, nil
}

func (m Model) View() string {
	var s strings.Builder

	// Header
	title := fmt.Sprintf("🔔 Notifications (%d unread)", m.UnreadCount)
	s.WriteString(common.CaptionStyle.Render(title))
	s.WriteString("\n")

	if len(m.Notifications) == 0 {
		s.WriteString(common.ListEmptyStyle.Render("No notifications yet."))
		return s.String()
	}

	// Calculate visible range
	start := m.Offset
	end := min(start+m.perPage(), len(m.Notifications))
	width := common.ContentWidth(m.Width)

	// Render notifications
	for i := start; i < end; i++ {
		notif := m.Notifications[i]
		selected := i == m.Selected

		// Format notification
		line1 := util.TruncateWidth(notif.Summary(), width-12)
		timeAgo := util.FormatTimeAgo(notif.CreatedAt)

		style := common.ListItemStyle
		if selected {
			style = common.ListItemSelectedStyle
		}
		if !notif.IsRead {
			style = style.Bold(true).Foreground(lipgloss.Color(common.COLOR_USERNAME))
		}
		s.WriteString(common.Prefix(selected) + style.Render(line1) + "  " + common.ListBadgeStyle.Render(timeAgo))
		s.WriteString("\n")

		// Show message preview for everything but follows (indented)
		if notif.Message != "" && notif.Type != domain.NotificationFollow {
			preview := util.TruncateWidth(notif.Message, min(60, width))
			s.WriteString("  " + common.ListBadgeStyle.Render("\""+preview+"\""))
		}
		s.WriteString("\n")
	}

	// Pagination info
	if len(m.Notifications) > m.perPage() {
		pageInfo := fmt.Sprintf("Showing %d-%d of %d", start+1, end, len(m.Notifications))
		s.WriteString("\n" + common.ListBadgeStyle.Render(pageInfo))
	}

	return s.String()
}

// tickRefresh returns a command that triggers an unread refresh after a delay
func tickRefresh() tea.Cmd {
	return tea.Tick(common.NotificationRefreshSeconds*time.Second, func(t time.Time) tea.Msg {
		return refreshTickMsg{}
	})
}
