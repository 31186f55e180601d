package feedview

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/deemkeen/feedsync/domain"
	"github.com/deemkeen/feedsync/mutation"
	"github.com/deemkeen/feedsync/ui/common"
	"github.com/deemkeen/feedsync/ui/uitest"
)

func posts(n int) []domain.Post {
	out := make([]domain.Post, n)
	for i := range out {
		out[i] = uitest.Post(string(rune('a'+i)), i)
	}
	return out
}

// loaded activates the view and runs loads until no more are issued
func loaded(t *testing.T, backend *uitest.Backend) (Model, *common.Session) {
	t.Helper()
	session, _ := uitest.NewSession(backend)
	m := InitialModel(session, 100, 40)

	m, cmd := m.Update(common.ActivateViewMsg{})
	for cmd != nil {
		msg := uitest.Exec(cmd)
		if _, ok := msg.(common.LoadedMsg); !ok {
			t.Fatalf("Expected LoadedMsg, got %T", msg)
		}
		m, cmd = m.Update(msg)
	}
	return m, session
}

func settle(t *testing.T, m Model, session *common.Session, cmd tea.Cmd) (Model, mutation.Settlement) {
	t.Helper()
	out, ok := uitest.Exec(cmd).(common.OutcomeMsg)
	if !ok {
		t.Fatalf("Expected OutcomeMsg")
	}
	s := session.Controller.Settle(out.Outcome)
	m, _ = m.Update(common.SettledMsg{Settlement: s})
	return m, s
}

func TestActivateLoadsFeed(t *testing.T) {
	m, _ := loaded(t, &uitest.Backend{Posts: posts(3)})

	if len(m.Posts) != 3 {
		t.Fatalf("Expected 3 posts, got %d", len(m.Posts))
	}
	if !strings.Contains(m.View(), "@authora") {
		t.Errorf("View should render authors, got: %s", m.View())
	}
}

func TestScrollingFetchesNextPagesOnce(t *testing.T) {
	backend := &uitest.Backend{Posts: posts(5), PageSize: 2}
	m, _ := loaded(t, backend)

	// The window is taller than the feed, so every page was pulled in
	if len(m.Posts) != 5 {
		t.Fatalf("Expected all 5 posts, got %d", len(m.Posts))
	}
	calls := backend.CallCount()

	// Moving around the exhausted list never fetches again
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	if cmd != nil {
		t.Errorf("Expected no fetch once the feed is exhausted")
	}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	if backend.CallCount() != calls {
		t.Errorf("Expected %d calls, got %d", calls, backend.CallCount())
	}
}

func TestLikeIsOptimisticAndCommits(t *testing.T) {
	m, session := loaded(t, &uitest.Backend{Posts: posts(2)})

	m, cmd := m.Update(uitest.Key("l"))
	if !m.Posts[0].IsLiked || m.Posts[0].TotalLikes != 1 {
		t.Fatalf("Expected optimistic like, got %+v", m.Posts[0].Post)
	}
	if len(m.Posts[0].RecentLikedBy) != 1 || m.Posts[0].RecentLikedBy[0].Id != uitest.Viewer.Id {
		t.Errorf("Expected viewer at head of likers, got %+v", m.Posts[0].RecentLikedBy)
	}

	m, s := settle(t, m, session, cmd)
	if s.State != mutation.Committed {
		t.Errorf("Expected committed, got %s", s.State)
	}
	if !m.Posts[0].IsLiked || m.Posts[0].TotalLikes != 1 {
		t.Errorf("Commit should keep the optimistic like, got %+v", m.Posts[0].Post)
	}
}

func TestLikeFailureRollsBack(t *testing.T) {
	backend := &uitest.Backend{Posts: posts(2)}
	m, session := loaded(t, backend)
	backend.Err = errors.New("boom")

	m, cmd := m.Update(uitest.Key("l"))
	m, s := settle(t, m, session, cmd)

	if s.State != mutation.RolledBack {
		t.Errorf("Expected rolled back, got %s", s.State)
	}
	if m.Posts[0].IsLiked || m.Posts[0].TotalLikes != 0 || len(m.Posts[0].RecentLikedBy) != 0 {
		t.Errorf("Expected original like state, got %+v", m.Posts[0].Post)
	}
}

func TestSaveToggle(t *testing.T) {
	m, session := loaded(t, &uitest.Backend{Posts: posts(1)})

	m, cmd := m.Update(uitest.Key("s"))
	if !m.Posts[0].IsSaved {
		t.Fatalf("Expected optimistic save")
	}
	m, _ = settle(t, m, session, cmd)
	if !session.Store.IsSaved("a") {
		t.Errorf("Expected post to stay saved")
	}
}

func TestComposerCreatesPendingComment(t *testing.T) {
	m, session := loaded(t, &uitest.Backend{Posts: posts(1)})

	m, _ = m.Update(uitest.Key("c"))
	if !m.Composing() {
		t.Fatalf("Expected composer to open")
	}
	m, _ = m.Update(uitest.Key("nice shot"))
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.Composing() {
		t.Errorf("Composer should close after sending")
	}

	list := session.Store.Comments("a")
	if len(list) != 1 || !list[0].IsOptimistic || !list[0].Id.IsTemporary() {
		t.Fatalf("Expected one optimistic comment, got %+v", list)
	}
	if m.Posts[0].TotalComments != 1 {
		t.Errorf("Expected comment count 1, got %d", m.Posts[0].TotalComments)
	}

	m, _ = settle(t, m, session, cmd)
	list = session.Store.Comments("a")
	if len(list) != 1 || list[0].IsOptimistic || list[0].Id.IsTemporary() {
		t.Errorf("Expected the confirmed comment in place, got %+v", list)
	}
	if m.Posts[0].TotalComments != 1 {
		t.Errorf("Confirmation must not bump the count again, got %d", m.Posts[0].TotalComments)
	}
}

func TestComposerEscapeCancels(t *testing.T) {
	m, session := loaded(t, &uitest.Backend{Posts: posts(1)})

	m, _ = m.Update(uitest.Key("c"))
	m, _ = m.Update(uitest.Key("draft"))
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})

	if m.Composing() || cmd != nil {
		t.Errorf("Expected composer closed without a command")
	}
	if len(session.Store.Comments("a")) != 0 {
		t.Errorf("Cancelled draft must not create a comment")
	}
}

func TestDeletePostWaitsForAck(t *testing.T) {
	m, session := loaded(t, &uitest.Backend{Posts: posts(2)})

	m, cmd := m.Update(uitest.Key("x"))
	if len(m.Posts) != 2 {
		t.Fatalf("Post must stay until the server acknowledges")
	}
	m, _ = settle(t, m, session, cmd)
	if len(m.Posts) != 1 || m.Posts[0].Id != "b" {
		t.Errorf("Expected only post b left, got %+v", m.Posts)
	}
}

func TestEnterOpensComments(t *testing.T) {
	m, _ := loaded(t, &uitest.Backend{Posts: posts(1)})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	msg, ok := uitest.Exec(cmd).(common.OpenCommentsMsg)
	if !ok || msg.ParentId != "a" {
		t.Errorf("Expected OpenCommentsMsg for a, got %#v", msg)
	}
}
