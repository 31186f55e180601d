package common

import (
	"context"
	"errors"
	"log"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/deemkeen/feedsync/comments"
	"github.com/deemkeen/feedsync/feed"
	"github.com/deemkeen/feedsync/mutation"
	"github.com/deemkeen/feedsync/notify"
	"github.com/deemkeen/feedsync/store"
)

type SessionState uint

const (
	FeedView SessionState = iota
	ReelsView
	CommentsView
	NotificationsView
)

func (s SessionState) String() string {
	switch s {
	case FeedView:
		return "feed"
	case ReelsView:
		return "reels"
	case CommentsView:
		return "comments"
	case NotificationsView:
		return "notifications"
	default:
		return "unknown"
	}
}

// Session bundles the engine every view drives. All fields are shared
// between views; the store and controller are safe for concurrent use.
type Session struct {
	Ctx        context.Context
	Store      *store.Store
	Controller *mutation.Controller
	Loader     *feed.Loader
	Inbox      *feed.Inbox
}

// ActivateViewMsg is sent when a view becomes active (visible)
type ActivateViewMsg struct{}

// DeactivateViewMsg is sent when a view becomes inactive (hidden)
type DeactivateViewMsg struct{}

// OutcomeMsg carries a finished mutation request back into the loop
type OutcomeMsg struct {
	Outcome mutation.Outcome
}

// SettledMsg is broadcast after the controller reconciled an outcome
type SettledMsg struct {
	Settlement mutation.Settlement
}

// LoadedMsg is sent when a page load finished or was skipped
type LoadedMsg struct {
	Result feed.Result
}

// BusMsg wraps one event received from the notification bus
type BusMsg struct {
	Event notify.Event
}

// StoreChangedMsg asks views to re-read the store
type StoreChangedMsg struct{}

// OpenCommentsMsg is sent when user presses Enter on a post or reel
type OpenCommentsMsg struct {
	ParentId string
	Title    string
}

// BackMsg returns from the comments view to where it was opened
type BackMsg struct{}

// ErrorMsg is shown as a dismissible toast in the header
type ErrorMsg struct {
	Text string
}

// RunTask starts a mutation task off the loop. err comes from the
// controller call that produced the task; actions on unconfirmed comments
// are silently ignored.
func RunTask(task mutation.Task, err error) tea.Cmd {
	if err != nil {
		if errors.Is(err, comments.ErrTemporaryID) {
			log.Printf("Ignoring action on unconfirmed comment")
			return nil
		}
		return ErrorCmd(err)
	}
	return func() tea.Msg {
		return OutcomeMsg{Outcome: task()}
	}
}

func ErrorCmd(err error) tea.Cmd {
	return func() tea.Msg {
		return ErrorMsg{Text: err.Error()}
	}
}

// LoadCmd runs a loader call off the loop
func LoadCmd(load func() feed.Result) tea.Cmd {
	return func() tea.Msg {
		return LoadedMsg{Result: load()}
	}
}

// WaitForEvent blocks on the bus subscription until the next event. It must
// be re-issued after each BusMsg.
func WaitForEvent(events <-chan notify.Event) tea.Cmd {
	return func() tea.Msg {
		e, ok := <-events
		if !ok {
			return nil
		}
		return BusMsg{Event: e}
	}
}

// StoreChanged is a tea.Cmd body for commands whose effect is already in
// the store.
func StoreChanged() tea.Msg {
	return StoreChangedMsg{}
}
