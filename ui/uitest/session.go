// Package uitest builds a complete in-memory session for view tests: a real
// store, controller, loader, inbox and bus over scripted backends.
package uitest

import (
	"context"
	"fmt"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/deemkeen/feedsync/domain"
	"github.com/deemkeen/feedsync/feed"
	"github.com/deemkeen/feedsync/mutation"
	"github.com/deemkeen/feedsync/notify"
	"github.com/deemkeen/feedsync/pagination"
	"github.com/deemkeen/feedsync/store"
	"github.com/deemkeen/feedsync/ui/common"
)

var Viewer = domain.ActorRef{Id: "me", Username: "me"}

// Backend answers every request from memory. Err, when set, fails all calls.
type Backend struct {
	mu sync.Mutex

	Err              error
	Posts            []domain.Post
	ReelData         []domain.Reel
	CommentData      map[string][]domain.Comment
	NotificationData []domain.Notification
	Unread           int
	Saved            []string
	PageSize         int

	Calls  []string
	nextId int64
}

func (b *Backend) record(format string, args ...any) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Calls = append(b.Calls, fmt.Sprintf(format, args...))
	return b.Err
}

// CallCount returns how many requests were made
func (b *Backend) CallCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.Calls)
}

func page[T any](all []T, n, size int) pagination.Page[T] {
	if size <= 0 {
		size = len(all) + 1
	}
	start := min(n*size, len(all))
	end := min(start+size, len(all))
	more := end < len(all)
	return pagination.Page[T]{Items: append([]T(nil), all[start:end]...), Number: n, HasNext: &more}
}

func (b *Backend) SetPostLike(ctx context.Context, postId string, like bool) (mutation.LikeResult, error) {
	return mutation.LikeResult{}, b.record("like post %s %v", postId, like)
}

func (b *Backend) SetReelLike(ctx context.Context, reelId string, like bool) (mutation.LikeResult, error) {
	return mutation.LikeResult{}, b.record("like reel %s %v", reelId, like)
}

func (b *Backend) SetCommentLike(ctx context.Context, commentId string, like bool) (mutation.LikeResult, error) {
	return mutation.LikeResult{}, b.record("like comment %s %v", commentId, like)
}

func (b *Backend) SetSaved(ctx context.Context, id string, saved bool) error {
	return b.record("save %s %v", id, saved)
}

func (b *Backend) CreateComment(ctx context.Context, parentId, content string) (domain.Comment, error) {
	if err := b.record("comment %s", parentId); err != nil {
		return domain.Comment{}, err
	}
	b.mu.Lock()
	b.nextId++
	id := b.nextId + 1000
	b.mu.Unlock()
	return domain.Comment{
		Id:        domain.ServerCommentID(id),
		ParentId:  parentId,
		Author:    Viewer,
		Content:   content,
		CreatedAt: time.Now(),
	}, nil
}

func (b *Backend) EditComment(ctx context.Context, commentId, content string) (domain.Comment, error) {
	return domain.Comment{Id: domain.CommentID(commentId), Content: content}, b.record("edit comment %s", commentId)
}

func (b *Backend) DeleteComment(ctx context.Context, commentId string) error {
	return b.record("delete comment %s", commentId)
}

func (b *Backend) DeletePost(ctx context.Context, postId string) error {
	return b.record("delete post %s", postId)
}

func (b *Backend) Feed(ctx context.Context, n int) (pagination.Page[domain.Post], error) {
	if err := b.record("feed %d", n); err != nil {
		return pagination.Page[domain.Post]{}, err
	}
	return page(b.Posts, n, b.PageSize), nil
}

func (b *Backend) Reels(ctx context.Context, n int) (pagination.Page[domain.Reel], error) {
	if err := b.record("reels %d", n); err != nil {
		return pagination.Page[domain.Reel]{}, err
	}
	return page(b.ReelData, n, b.PageSize), nil
}

func (b *Backend) Comments(ctx context.Context, parentId string, n int) (pagination.Page[domain.Comment], error) {
	if err := b.record("comments %s %d", parentId, n); err != nil {
		return pagination.Page[domain.Comment]{}, err
	}
	return page(b.CommentData[parentId], n, b.PageSize), nil
}

func (b *Backend) Post(ctx context.Context, id string) (domain.Post, error) {
	if err := b.record("post %s", id); err != nil {
		return domain.Post{}, err
	}
	for _, p := range b.Posts {
		if p.Id == id {
			return p, nil
		}
	}
	return domain.Post{}, fmt.Errorf("post %s not found", id)
}

func (b *Backend) SavedIds(ctx context.Context) ([]string, error) {
	return append([]string(nil), b.Saved...), b.record("saved")
}

func (b *Backend) Notifications(ctx context.Context, n int) (pagination.Page[domain.Notification], error) {
	if err := b.record("notifications %d", n); err != nil {
		return pagination.Page[domain.Notification]{}, err
	}
	return page(b.NotificationData, n, b.PageSize), nil
}

func (b *Backend) UnreadCount(ctx context.Context) (int, error) {
	return b.Unread, b.record("unread")
}

func (b *Backend) MarkNotificationRead(ctx context.Context, id string) error {
	return b.record("read %s", id)
}

func (b *Backend) MarkAllNotificationsRead(ctx context.Context) error {
	return b.record("read all")
}

func (b *Backend) DeleteNotification(ctx context.Context, id string) error {
	return b.record("delete notification %s", id)
}

func (b *Backend) DeleteAllNotifications(ctx context.Context) error {
	return b.record("delete all notifications")
}

// NewSession wires a session over backend with a zero grace window
func NewSession(backend *Backend) (*common.Session, *notify.Bus) {
	s := store.New(Viewer.Id)
	bus := notify.NewBus(s)
	ctrl := mutation.NewController(s, backend, bus, Viewer, 0)
	return &common.Session{
		Ctx:        context.Background(),
		Store:      s,
		Controller: ctrl,
		Loader:     feed.New(s, backend, bus, ctrl.Holds),
		Inbox:      feed.NewInbox(backend, bus),
	}, bus
}

// Post builds a feed post
func Post(id string, likes int) domain.Post {
	return domain.Post{
		Id:         id,
		Author:     domain.ActorRef{Id: "a-" + id, Username: "author" + id},
		Caption:    "caption " + id,
		TotalLikes: likes,
		CreatedAt:  time.Now().Add(-time.Hour),
	}
}

// Exec runs cmd synchronously and returns its message, or nil for a nil cmd
func Exec(cmd tea.Cmd) tea.Msg {
	if cmd == nil {
		return nil
	}
	return cmd()
}

// Key builds a rune key press
func Key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}
