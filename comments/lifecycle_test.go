package comments

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/deemkeen/feedsync/domain"
	"github.com/deemkeen/feedsync/store"
)

var me = domain.ActorRef{Id: "me", Username: "me"}

func setupStore(t *testing.T, totalComments int, existing ...domain.Comment) *store.Store {
	t.Helper()
	s := store.New(me.Id)
	s.Apply(store.MergePosts{Page: 0, Posts: []domain.Post{{Id: "p1", TotalComments: totalComments}}})
	s.Apply(store.MergeComments{ParentId: "p1", Page: 0, Comments: existing})
	return s
}

func countTemp(list []domain.Comment) int {
	n := 0
	for _, c := range list {
		if strings.HasPrefix(string(c.Id), domain.TempCommentPrefix) {
			n++
		}
	}
	return n
}

func TestCreateInsertsOptimisticAtHead(t *testing.T) {
	s := setupStore(t, 1, domain.Comment{Id: "10", ParentId: "p1"})

	c, tr := Create("p1", me, "hello", time.Now())
	s.Apply(tr)

	if !c.Id.IsTemporary() {
		t.Errorf("Expected a temporary id, got %s", c.Id)
	}
	list := s.Comments("p1")
	if len(list) != 2 || list[0].Id != c.Id {
		t.Fatalf("Expected optimistic comment at head, got %+v", list)
	}
	if !list[0].IsOptimistic || !list[0].IsPending {
		t.Error("Expected optimistic and pending flags")
	}
	if n, _ := s.CommentCount("p1"); n != 2 {
		t.Errorf("Expected totalComments 2, got %d", n)
	}
}

func TestCreateThenDiscardLeavesNoResidue(t *testing.T) {
	s := setupStore(t, 4, domain.Comment{Id: "1"}, domain.Comment{Id: "2"})

	c, tr := Create("p1", me, "oops", time.Now())
	s.Apply(tr)
	s.Apply(Discard("p1", c))

	list := s.Comments("p1")
	if countTemp(list) != 0 {
		t.Errorf("Expected no temporary comments, got %+v", list)
	}
	if len(list) != 2 {
		t.Errorf("Expected 2 comments, got %d", len(list))
	}
	if n, _ := s.CommentCount("p1"); n != 4 {
		t.Errorf("Expected totalComments restored to 4, got %d", n)
	}

	if s.Apply(Discard("p1", c)) {
		t.Error("Expected a second discard to be a no-op")
	}
	if n, _ := s.CommentCount("p1"); n != 4 {
		t.Errorf("Expected totalComments still 4, got %d", n)
	}
}

func TestConfirmReplacesInPlace(t *testing.T) {
	s := setupStore(t, 0)

	c, tr := Create("p1", me, "hi", time.Now())
	s.Apply(tr)
	s.Apply(Confirm("p1", c, domain.Comment{Id: "999", Author: me, Content: "hi", CreatedAt: c.CreatedAt}))

	list := s.Comments("p1")
	if countTemp(list) != 0 {
		t.Errorf("Expected zero temp entries, got %+v", list)
	}
	n999 := 0
	for _, it := range list {
		if it.Id == "999" {
			n999++
			if it.IsOptimistic || it.IsPending {
				t.Error("Expected confirmed comment to drop optimistic flags")
			}
			if it.ParentId != "p1" {
				t.Errorf("Expected parent p1, got %q", it.ParentId)
			}
		}
	}
	if n999 != 1 {
		t.Errorf("Expected exactly one 999, got %d", n999)
	}
	if n, _ := s.CommentCount("p1"); n != 1 {
		t.Errorf("Expected totalComments 1, got %d", n)
	}
}

func TestConfirmMatchesByAuthorAndCreation(t *testing.T) {
	s := setupStore(t, 0)
	c, tr := Create("p1", me, "hi", time.Now())
	s.Apply(tr)

	lost := c
	lost.Id = "temp_other"
	s.Apply(Confirm("p1", lost, domain.Comment{Id: "5", Author: me}))

	list := s.Comments("p1")
	if len(list) != 1 || list[0].Id != "5" {
		t.Errorf("Expected the optimistic entry to be replaced, got %+v", list)
	}
}

func TestConfirmWhenAlreadyListed(t *testing.T) {
	s := setupStore(t, 1, domain.Comment{Id: "999", ParentId: "p1"})
	c, tr := Create("p1", me, "hi", time.Now())
	s.Apply(tr)

	s.Apply(Confirm("p1", c, domain.Comment{Id: "999"}))

	list := s.Comments("p1")
	if len(list) != 1 || list[0].Id != "999" {
		t.Errorf("Expected a single 999, got %+v", list)
	}
}

func TestConfirmWithoutOptimisticEntry(t *testing.T) {
	s := setupStore(t, 0, domain.Comment{Id: "1"})
	pending := domain.Comment{Id: "temp_gone", Author: me, CreatedAt: time.Now()}

	s.Apply(Confirm("p1", pending, domain.Comment{Id: "2"}))
	list := s.Comments("p1")
	if len(list) != 2 || list[0].Id != "2" {
		t.Errorf("Expected confirmed comment at head, got %+v", list)
	}

	if s.Apply(Confirm("p1", pending, domain.Comment{Id: "2"})) {
		t.Error("Expected confirming a listed id to be a no-op")
	}
}

func TestDeleteConfirmed(t *testing.T) {
	s := setupStore(t, 1, domain.Comment{Id: "7"})
	tr, err := Delete("p1", "7")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	s.Apply(tr)
	if len(s.Comments("p1")) != 0 {
		t.Error("Expected comment removed")
	}
	if n, _ := s.CommentCount("p1"); n != 0 {
		t.Errorf("Expected totalComments 0, got %d", n)
	}

	tr, _ = Delete("p1", "7")
	s.Apply(tr)
	if n, _ := s.CommentCount("p1"); n != 0 {
		t.Errorf("Expected totalComments to stay 0, got %d", n)
	}
}

func TestTemporaryIdsAreRejected(t *testing.T) {
	tmp := domain.NewTempCommentID()

	if _, err := Delete("p1", tmp); !errors.Is(err, ErrTemporaryID) {
		t.Errorf("Delete: expected ErrTemporaryID, got %v", err)
	}
	if _, err := Edit("p1", tmp, "x"); !errors.Is(err, ErrTemporaryID) {
		t.Errorf("Edit: expected ErrTemporaryID, got %v", err)
	}
	if _, err := SetPending("p1", tmp, true); !errors.Is(err, ErrTemporaryID) {
		t.Errorf("SetPending: expected ErrTemporaryID, got %v", err)
	}
}

func TestEditOnlyTouchesContent(t *testing.T) {
	orig := domain.Comment{Id: "3", Content: "before", TotalLikes: 2, IsLiked: true}
	s := setupStore(t, 1, orig)

	tr, err := Edit("p1", "3", "after")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	s.Apply(tr)

	got, _ := s.Comment("p1", "3")
	if got.Content != "after" {
		t.Errorf("Expected content 'after', got %q", got.Content)
	}
	if got.TotalLikes != 2 || !got.IsLiked {
		t.Error("Expected like state untouched")
	}
	if n, _ := s.CommentCount("p1"); n != 1 {
		t.Errorf("Expected totalComments unchanged, got %d", n)
	}
}
