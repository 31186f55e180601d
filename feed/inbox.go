package feed

import (
	"context"
	"log"

	"github.com/deemkeen/feedsync/mutation"
	"github.com/deemkeen/feedsync/notify"
	"github.com/deemkeen/feedsync/store"
)

// NotificationAPI is the write side of the notification endpoints
type NotificationAPI interface {
	MarkNotificationRead(ctx context.Context, id string) error
	MarkAllNotificationsRead(ctx context.Context) error
	DeleteNotification(ctx context.Context, id string) error
	DeleteAllNotifications(ctx context.Context) error
}

// Inbox pairs notification requests with their local bus updates. Read
// markers apply locally first and are undone when the request fails;
// deletions wait for the server's ack.
type Inbox struct {
	api NotificationAPI
	bus *notify.Bus
}

func NewInbox(api NotificationAPI, bus *notify.Bus) *Inbox {
	return &Inbox{api: api, bus: bus}
}

func (i *Inbox) MarkRead(ctx context.Context, id string) error {
	undo, ok := i.bus.MarkRead(id)
	if !ok {
		return nil
	}
	kind, err := i.settle("mark read", i.api.MarkNotificationRead(ctx, id))
	i.restoreUnlessApplied(kind, undo)
	return err
}

func (i *Inbox) MarkAllRead(ctx context.Context) error {
	undo, ok := i.bus.MarkAllRead()
	if !ok {
		return nil
	}
	kind, err := i.settle("mark all read", i.api.MarkAllNotificationsRead(ctx))
	i.restoreUnlessApplied(kind, undo)
	return err
}

func (i *Inbox) Delete(ctx context.Context, id string) error {
	kind, err := i.settle("delete", i.api.DeleteNotification(ctx, id))
	if applied(kind) {
		i.bus.Delete(id)
	}
	return err
}

func (i *Inbox) DeleteAll(ctx context.Context) error {
	kind, err := i.settle("delete all", i.api.DeleteAllNotifications(ctx))
	if applied(kind) {
		i.bus.DeleteAll()
	}
	return err
}

// restoreUnlessApplied rolls a read marker back. An auth loss already
// cleared the list, so there is nothing to restore.
func (i *Inbox) restoreUnlessApplied(kind mutation.ErrorKind, undo store.RestoreNotificationReads) {
	if applied(kind) || kind == mutation.ErrorAuth {
		return
	}
	i.bus.RestoreReads(undo)
}

func applied(kind mutation.ErrorKind) bool {
	return kind == mutation.ErrorNone || kind == mutation.ErrorConflict
}

// settle classifies a request error; only ErrorOther is returned to the
// caller.
func (i *Inbox) settle(op string, err error) (mutation.ErrorKind, error) {
	kind := mutation.Classify(err)
	switch kind {
	case mutation.ErrorNone, mutation.ErrorConflict:
		return kind, nil
	case mutation.ErrorAuth:
		i.bus.ClearOnAuthLoss(err)
		return kind, nil
	case mutation.ErrorNetwork:
		log.Printf("Inbox: %s unavailable: %v", op, err)
		return kind, nil
	default:
		log.Printf("Inbox: %s failed: %v", op, err)
		i.bus.Publish(notify.MutationFailed{Op: "notification " + op, Err: err})
		return kind, err
	}
}
