package notify

import "github.com/deemkeen/feedsync/domain"

// EventKind enumerates everything the bus can carry
type EventKind int

const (
	KindNotificationAdded EventKind = iota
	KindNotificationsChanged
	KindCallInvite
	KindCallResponse
	KindMutationFailed
	KindAuthLost
	KindConnection
)

func (k EventKind) String() string {
	switch k {
	case KindNotificationAdded:
		return "notification-added"
	case KindNotificationsChanged:
		return "notifications-changed"
	case KindCallInvite:
		return "call-invite"
	case KindCallResponse:
		return "call-response"
	case KindMutationFailed:
		return "mutation-failed"
	case KindAuthLost:
		return "auth-lost"
	case KindConnection:
		return "connection"
	default:
		return "unknown"
	}
}

// Event is a typed bus payload
type Event interface {
	Kind() EventKind
}

// NotificationAdded fires once per newly stored pushed notification
type NotificationAdded struct {
	Notification domain.Notification
	Unread       int
}

func (NotificationAdded) Kind() EventKind { return KindNotificationAdded }

// NotificationsChanged fires after read or delete changes to the list
type NotificationsChanged struct {
	Unread int
}

func (NotificationsChanged) Kind() EventKind { return KindNotificationsChanged }

type CallInvite struct {
	Invite domain.CallInvite
}

func (CallInvite) Kind() EventKind { return KindCallInvite }

type CallResponse struct {
	Response domain.CallResponse
}

func (CallResponse) Kind() EventKind { return KindCallResponse }

// MutationFailed is the dismissible error for a rolled back user action
type MutationFailed struct {
	Op       string
	EntityId string
	Err      error
}

func (MutationFailed) Kind() EventKind { return KindMutationFailed }

func (e MutationFailed) Message() string {
	if e.Err == nil {
		return e.Op + " failed"
	}
	return e.Op + " failed: " + e.Err.Error()
}

// AuthLost fires when the server rejected our credentials
type AuthLost struct {
	Err error
}

func (AuthLost) Kind() EventKind { return KindAuthLost }

// Connection reports push channel state changes
type Connection struct {
	Connected bool
	Err       error
}

func (Connection) Kind() EventKind { return KindConnection }
