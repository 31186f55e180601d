// Package notify is the in-process event bus. It turns push payloads into
// typed notifications, keeps the notification list and unread counter in the
// store, and fans typed events out to subscribers.
package notify

import (
	"log"
	"sync"

	"github.com/deemkeen/feedsync/domain"
	"github.com/deemkeen/feedsync/store"
)

// subscriberBuffer is the per-subscriber queue length. Publishing never
// blocks: events for a full queue are dropped.
const subscriberBuffer = 64

type subscriber struct {
	ch    chan Event
	kinds map[EventKind]struct{}
}

func (s *subscriber) wants(k EventKind) bool {
	if len(s.kinds) == 0 {
		return true
	}
	_, ok := s.kinds[k]
	return ok
}

// Bus is safe for concurrent use
type Bus struct {
	store *store.Store

	mu     sync.Mutex
	nextId int
	subs   map[int]*subscriber
}

func NewBus(s *store.Store) *Bus {
	return &Bus{
		store: s,
		subs:  make(map[int]*subscriber),
	}
}

// Subscribe returns a channel receiving the given kinds, or every kind when
// none are given. cancel closes the channel.
func (b *Bus) Subscribe(kinds ...EventKind) (<-chan Event, func()) {
	sub := &subscriber{
		ch:    make(chan Event, subscriberBuffer),
		kinds: make(map[EventKind]struct{}, len(kinds)),
	}
	for _, k := range kinds {
		sub.kinds[k] = struct{}{}
	}

	b.mu.Lock()
	id := b.nextId
	b.nextId++
	b.subs[id] = sub
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			close(sub.ch)
		})
	}
	return sub.ch, cancel
}

// Publish delivers e to every interested subscriber without blocking
func (b *Bus) Publish(e Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, sub := range b.subs {
		if !sub.wants(e.Kind()) {
			continue
		}
		select {
		case sub.ch <- e:
		default:
			log.Printf("Bus: subscriber %d is full, dropping %s event", id, e.Kind())
		}
	}
}

// Deliver stores a parsed notification and emits its events. A duplicate id
// is ignored and reported as false.
func (b *Bus) Deliver(n domain.Notification, raw []byte) bool {
	if !b.store.Apply(store.PrependNotification{Notification: n}) {
		log.Printf("Bus: notification %s already delivered", n.Id)
		return false
	}
	b.Publish(NotificationAdded{Notification: n, Unread: b.store.Unread()})

	switch n.Type {
	case domain.NotificationCallInvite:
		b.Publish(CallInvite{Invite: callInvite(n, raw)})
	case domain.NotificationCallResponse:
		b.Publish(CallResponse{Response: callResponse(n, raw)})
	}
	return true
}

// HandlePush parses one push frame and delivers it
func (b *Bus) HandlePush(raw []byte) error {
	n, err := ParsePush(raw)
	if err != nil {
		log.Printf("Bus: dropping malformed push: %v", err)
		return err
	}
	b.Deliver(n, raw)
	return nil
}

// MarkRead flips one notification to read. The returned transition undoes
// it if the server rejects the request.
func (b *Bus) MarkRead(id string) (store.RestoreNotificationReads, bool) {
	var undo store.RestoreNotificationReads
	ok := b.changed(store.MarkNotificationRead{Id: id, Undo: &undo})
	return undo, ok
}

func (b *Bus) MarkAllRead() (store.RestoreNotificationReads, bool) {
	var undo store.RestoreNotificationReads
	ok := b.changed(store.MarkAllNotificationsRead{Undo: &undo})
	return undo, ok
}

// RestoreReads applies the inverse of a failed read marker
func (b *Bus) RestoreReads(undo store.RestoreNotificationReads) bool {
	return b.changed(undo)
}

// Delete removes one notification. Call it after the server acknowledged.
func (b *Bus) Delete(id string) bool {
	return b.changed(store.RemoveNotification{Id: id})
}

// DeleteAll removes every notification. Call it after the server acknowledged.
func (b *Bus) DeleteAll() bool {
	return b.changed(store.ClearNotifications{})
}

// SyncUnread installs the server's unread count
func (b *Bus) SyncUnread(count int) bool {
	return b.changed(store.SetUnread{Count: count})
}

// ClearOnAuthLoss drops all notification state and announces the loss
func (b *Bus) ClearOnAuthLoss(err error) {
	b.store.Apply(store.ClearNotifications{})
	b.Publish(AuthLost{Err: err})
	b.Publish(NotificationsChanged{Unread: 0})
}

// SetConnected reports a push channel state change
func (b *Bus) SetConnected(connected bool, err error) {
	b.Publish(Connection{Connected: connected, Err: err})
}

func (b *Bus) changed(t store.Transition) bool {
	if !b.store.Apply(t) {
		return false
	}
	b.Publish(NotificationsChanged{Unread: b.store.Unread()})
	return true
}
