// Package feed loads server pages into the store through the pagination
// guard.
package feed

import (
	"context"
	"log"

	"github.com/deemkeen/feedsync/domain"
	"github.com/deemkeen/feedsync/mutation"
	"github.com/deemkeen/feedsync/notify"
	"github.com/deemkeen/feedsync/pagination"
	"github.com/deemkeen/feedsync/store"
)

// Fetcher is the read side of the backend
type Fetcher interface {
	Feed(ctx context.Context, page int) (pagination.Page[domain.Post], error)
	Reels(ctx context.Context, page int) (pagination.Page[domain.Reel], error)
	Comments(ctx context.Context, parentId string, page int) (pagination.Page[domain.Comment], error)
	Post(ctx context.Context, id string) (domain.Post, error)
	SavedIds(ctx context.Context) ([]string, error)
	Notifications(ctx context.Context, page int) (pagination.Page[domain.Notification], error)
	UnreadCount(ctx context.Context) (int, error)
}

// Loader is safe for concurrent use; the store serializes fetches per
// collection.
type Loader struct {
	store *store.Store
	fetch Fetcher
	bus   *notify.Bus
	hold  store.HoldFunc
}

// New wires a loader. hold protects locally interacted fields from page
// merges and may be nil.
func New(s *store.Store, f Fetcher, bus *notify.Bus, hold store.HoldFunc) *Loader {
	return &Loader{store: s, fetch: f, bus: bus, hold: hold}
}

// Result describes one load attempt
type Result struct {
	Key     store.CollectionKey
	Page    int
	Skipped bool
	Err     error
}

// begin claims the next page of key, or reports Skipped when a fetch is
// already running or the collection is exhausted.
func (l *Loader) begin(key store.CollectionKey, refresh bool) (int, bool) {
	claim := &store.BeginLoad{Key: key, Refresh: refresh}
	if !l.store.Apply(claim) {
		return 0, false
	}
	return claim.Page, true
}

// fail releases the guard and reconciles err. Network failures degrade to
// an unchanged collection and are not reported.
func (l *Loader) fail(key store.CollectionKey, page int, err error) Result {
	l.store.Apply(store.FailLoad{Key: key})

	switch mutation.Classify(err) {
	case mutation.ErrorNetwork:
		log.Printf("Loader: %s page %d unavailable: %v", key, page, err)
		return Result{Key: key, Page: page}
	case mutation.ErrorAuth:
		log.Printf("Loader: %s page %d rejected, authentication lost: %v", key, page, err)
		if l.bus != nil {
			l.bus.ClearOnAuthLoss(err)
		}
		return Result{Key: key, Page: page}
	default:
		log.Printf("Loader: %s page %d failed: %v", key, page, err)
		return Result{Key: key, Page: page, Err: err}
	}
}

// LoadFeed fetches page 0 when refresh is set and the next page otherwise
func (l *Loader) LoadFeed(ctx context.Context, refresh bool) Result {
	page, ok := l.begin(store.FeedKey, refresh)
	if !ok {
		return Result{Key: store.FeedKey, Skipped: true}
	}
	res, err := l.fetch.Feed(ctx, page)
	if err != nil {
		return l.fail(store.FeedKey, page, err)
	}
	l.store.Apply(store.MergePosts{Page: page, Posts: res.Items, HasMore: res.HasMore(), Hold: l.hold})
	return Result{Key: store.FeedKey, Page: page}
}

func (l *Loader) LoadReels(ctx context.Context, refresh bool) Result {
	page, ok := l.begin(store.ReelsKey, refresh)
	if !ok {
		return Result{Key: store.ReelsKey, Skipped: true}
	}
	res, err := l.fetch.Reels(ctx, page)
	if err != nil {
		return l.fail(store.ReelsKey, page, err)
	}
	l.store.Apply(store.MergeReels{Page: page, Reels: res.Items, HasMore: res.HasMore(), Hold: l.hold})
	return Result{Key: store.ReelsKey, Page: page}
}

func (l *Loader) LoadComments(ctx context.Context, parentId string, refresh bool) Result {
	key := store.CommentsKey(parentId)
	page, ok := l.begin(key, refresh)
	if !ok {
		return Result{Key: key, Skipped: true}
	}
	res, err := l.fetch.Comments(ctx, parentId, page)
	if err != nil {
		return l.fail(key, page, err)
	}
	l.store.Apply(store.MergeComments{ParentId: parentId, Page: page, Comments: res.Items, HasMore: res.HasMore(), Hold: l.hold})
	return Result{Key: key, Page: page}
}

// LoadNotifications merges a notification page. The unread counter is
// recomputed from page 0 and then synced with the server's count.
func (l *Loader) LoadNotifications(ctx context.Context, refresh bool) Result {
	page, ok := l.begin(store.NotificationsKey, refresh)
	if !ok {
		return Result{Key: store.NotificationsKey, Skipped: true}
	}
	res, err := l.fetch.Notifications(ctx, page)
	if err != nil {
		return l.fail(store.NotificationsKey, page, err)
	}
	l.store.Apply(store.MergeNotifications{Page: page, Notifications: res.Items, HasMore: res.HasMore()})
	if page == 0 {
		// A missing count keeps the one recomputed from the page just loaded
		if n, kind := l.unreadCount(ctx); kind == mutation.ErrorNone {
			l.setUnread(n)
		}
	}
	if l.bus != nil {
		l.bus.Publish(notify.NotificationsChanged{Unread: l.store.Unread()})
	}
	return Result{Key: store.NotificationsKey, Page: page}
}

// RefreshUnread installs the server's unread count. An unreachable server
// reads as zero unread; any other failure keeps the last known count.
func (l *Loader) RefreshUnread(ctx context.Context) {
	n, kind := l.unreadCount(ctx)
	switch kind {
	case mutation.ErrorNone:
		l.setUnread(n)
	case mutation.ErrorNetwork:
		l.setUnread(0)
	}
}

// unreadCount fetches the server's count. An auth loss has already cleared
// notification state when it returns.
func (l *Loader) unreadCount(ctx context.Context) (int, mutation.ErrorKind) {
	n, err := l.fetch.UnreadCount(ctx)
	if err == nil {
		return n, mutation.ErrorNone
	}
	kind := mutation.Classify(err)
	if kind == mutation.ErrorAuth && l.bus != nil {
		l.bus.ClearOnAuthLoss(err)
		return 0, kind
	}
	log.Printf("Loader: unread count unavailable: %v", err)
	return 0, kind
}

func (l *Loader) setUnread(n int) {
	if l.bus != nil {
		l.bus.SyncUnread(n)
	} else {
		l.store.Apply(store.SetUnread{Count: n})
	}
}

// LoadSaved replaces the saved set with the server's list. Ids with a save
// in flight or inside the grace window keep their local membership.
func (l *Loader) LoadSaved(ctx context.Context) error {
	ids, err := l.fetch.SavedIds(ctx)
	if err != nil {
		switch mutation.Classify(err) {
		case mutation.ErrorNetwork:
			log.Printf("Loader: saved list unavailable: %v", err)
			return nil
		case mutation.ErrorAuth:
			if l.bus != nil {
				l.bus.ClearOnAuthLoss(err)
			}
			return nil
		}
		return err
	}
	l.store.Apply(store.ReplaceSaved{Ids: ids, Hold: l.hold})
	return nil
}

// RefreshPost refetches one cached post. Held like fields are kept.
func (l *Loader) RefreshPost(ctx context.Context, id string) error {
	p, err := l.fetch.Post(ctx, id)
	if err != nil {
		if mutation.Classify(err) == mutation.ErrorNetwork {
			return nil
		}
		return err
	}
	l.store.Apply(store.RefreshPost{Post: p, Hold: l.hold})
	return nil
}
