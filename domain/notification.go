package domain

import (
	"fmt"
	"time"
)

// NotificationType represents the type of notification
type NotificationType string

const (
	NotificationLike         NotificationType = "like"
	NotificationComment      NotificationType = "comment"
	NotificationFollow       NotificationType = "follow"
	NotificationStoryView    NotificationType = "story-view"
	NotificationMention      NotificationType = "mention"
	NotificationSystem       NotificationType = "system"
	NotificationCallInvite   NotificationType = "call-invite"
	NotificationCallResponse NotificationType = "call-response"
)

// NotificationTypes lists every type a push payload may carry
var NotificationTypes = []NotificationType{
	NotificationLike,
	NotificationComment,
	NotificationFollow,
	NotificationStoryView,
	NotificationMention,
	NotificationSystem,
	NotificationCallInvite,
	NotificationCallResponse,
}

// Notification represents a user notification
type Notification struct {
	Id              string           `json:"id"`
	Type            NotificationType `json:"type"`
	Title           string           `json:"title"`
	Message         string           `json:"message"`
	Sender          ActorRef         `json:"sender"`
	RelatedEntityId string           `json:"relatedEntityId,omitempty"`
	IsRead          bool             `json:"isRead"`
	CreatedAt       time.Time        `json:"createdAt"`
}

func (n Notification) Key() string {
	return n.Id
}

// IsCallSignal reports whether the notification also drives call signaling
func (n Notification) IsCallSignal() bool {
	return n.Type == NotificationCallInvite || n.Type == NotificationCallResponse
}

// ActorHandle returns the formatted @user string
func (n *Notification) ActorHandle() string {
	if n.Sender.Id == "" && n.Sender.Username == "" {
		return ""
	}
	return n.Sender.Handle()
}

// TypeLabel returns a human-readable label for the notification type
func (n *Notification) TypeLabel() string {
	switch n.Type {
	case NotificationLike:
		return "liked your post"
	case NotificationComment:
		return "commented on your post"
	case NotificationFollow:
		return "followed you"
	case NotificationStoryView:
		return "viewed your story"
	case NotificationMention:
		return "mentioned you"
	case NotificationCallInvite:
		return "is calling you"
	case NotificationCallResponse:
		return "answered your call"
	case NotificationSystem:
		return n.Title
	default:
		return ""
	}
}

// TypeIcon returns an emoji icon for the notification type
func (n *Notification) TypeIcon() string {
	switch n.Type {
	case NotificationLike:
		return "❤️"
	case NotificationComment:
		return "💬"
	case NotificationFollow:
		return "👤"
	case NotificationStoryView:
		return "👁"
	case NotificationMention:
		return "@"
	case NotificationCallInvite, NotificationCallResponse:
		return "📞"
	case NotificationSystem:
		return "ℹ"
	default:
		return "•"
	}
}

// Summary returns a one-line summary of the notification
func (n *Notification) Summary() string {
	if handle := n.ActorHandle(); handle != "" {
		return fmt.Sprintf("%s %s %s", n.TypeIcon(), handle, n.TypeLabel())
	}
	return fmt.Sprintf("%s %s", n.TypeIcon(), n.TypeLabel())
}
