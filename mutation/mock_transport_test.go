package mutation

import (
	"context"
	"errors"
	"sync"

	"github.com/deemkeen/feedsync/domain"
	"github.com/deemkeen/feedsync/notify"
)

// statusErr mimics the HTTP transport's status error
type statusErr struct{ code int }

func (e statusErr) Error() string   { return "status error" }
func (e statusErr) StatusCode() int { return e.code }

// netErr mimics an unreachable server
type netErr struct{}

func (netErr) Error() string     { return "connection refused" }
func (netErr) Unreachable() bool { return true }

var errBoom = errors.New("boom")

// mockTransport records calls and returns canned results
type mockTransport struct {
	mu sync.Mutex

	likeResult LikeResult
	created    domain.Comment
	edited     domain.Comment
	err        error
	block      chan struct{}

	calls []string
}

func (m *mockTransport) record(call string, ctx context.Context) error {
	m.mu.Lock()
	m.calls = append(m.calls, call)
	block := m.block
	err := m.err
	m.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func (m *mockTransport) SetPostLike(ctx context.Context, postId string, like bool) (LikeResult, error) {
	if err := m.record("post-like", ctx); err != nil {
		return LikeResult{}, err
	}
	return m.likeResult, nil
}

func (m *mockTransport) SetReelLike(ctx context.Context, reelId string, like bool) (LikeResult, error) {
	if err := m.record("reel-like", ctx); err != nil {
		return LikeResult{}, err
	}
	return m.likeResult, nil
}

func (m *mockTransport) SetCommentLike(ctx context.Context, commentId string, like bool) (LikeResult, error) {
	if err := m.record("comment-like", ctx); err != nil {
		return LikeResult{}, err
	}
	return m.likeResult, nil
}

func (m *mockTransport) SetSaved(ctx context.Context, id string, saved bool) error {
	return m.record("save", ctx)
}

func (m *mockTransport) CreateComment(ctx context.Context, parentId, content string) (domain.Comment, error) {
	if err := m.record("create-comment", ctx); err != nil {
		return domain.Comment{}, err
	}
	return m.created, nil
}

func (m *mockTransport) EditComment(ctx context.Context, commentId, content string) (domain.Comment, error) {
	if err := m.record("edit-comment", ctx); err != nil {
		return domain.Comment{}, err
	}
	return m.edited, nil
}

func (m *mockTransport) DeleteComment(ctx context.Context, commentId string) error {
	return m.record("delete-comment", ctx)
}

func (m *mockTransport) DeletePost(ctx context.Context, postId string) error {
	return m.record("delete-post", ctx)
}

// mockNotifier records published events
type mockNotifier struct {
	events    []notify.Event
	authLosts int
}

func (n *mockNotifier) Publish(e notify.Event) {
	n.events = append(n.events, e)
}

func (n *mockNotifier) ClearOnAuthLoss(err error) {
	n.authLosts++
}
