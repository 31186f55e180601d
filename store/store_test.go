package store

import (
	"testing"
	"time"

	"github.com/deemkeen/feedsync/domain"
)

func post(id string, likes int) domain.Post {
	return domain.Post{Id: id, TotalLikes: likes, CreatedAt: time.Now()}
}

func notification(id string, read bool) domain.Notification {
	return domain.Notification{Id: id, Type: domain.NotificationLike, IsRead: read, CreatedAt: time.Now()}
}

func TestMergePostsPages(t *testing.T) {
	s := New("me")
	s.Apply(MergePosts{Page: 0, Posts: []domain.Post{post("a", 0), post("b", 0)}, HasMore: true})
	s.Apply(MergePosts{Page: 1, Posts: []domain.Post{post("c", 0), post("a", 99)}, HasMore: false})

	feed := s.Feed()
	if len(feed) != 3 {
		t.Fatalf("Expected 3 posts, got %d", len(feed))
	}
	if feed[0].Id != "a" || feed[1].Id != "b" || feed[2].Id != "c" {
		t.Errorf("Unexpected order: %s %s %s", feed[0].Id, feed[1].Id, feed[2].Id)
	}
	if feed[0].TotalLikes != 0 {
		t.Errorf("Expected repeated id to be ignored, got %d likes", feed[0].TotalLikes)
	}

	c := s.Cursor(FeedKey)
	if c.Page != 1 || c.HasMore || !c.Loaded {
		t.Errorf("Unexpected cursor: %+v", c)
	}
}

func TestMergePostsRefreshKeepsHeldLikes(t *testing.T) {
	s := New("me")
	s.Apply(MergePosts{Page: 0, Posts: []domain.Post{post("a", 1)}})
	s.Apply(PatchPost{Id: "a", Patch: func(p domain.Post) domain.Post {
		p.TotalLikes = 2
		p.IsLiked = true
		return p
	}})

	hold := HoldFunc(func(f Field, id string) bool { return f == FieldLike && id == "a" })
	s.Apply(MergePosts{Page: 0, Posts: []domain.Post{{Id: "a", TotalLikes: 1, Caption: "fresh"}}, Hold: hold})

	p, _ := s.Post("a")
	if p.TotalLikes != 2 || !p.IsLiked {
		t.Errorf("Expected held like state to survive, got %d/%v", p.TotalLikes, p.IsLiked)
	}
	if p.Caption != "fresh" {
		t.Errorf("Expected other fields to refresh, got caption %q", p.Caption)
	}
}

func TestRefreshPostRespectsHold(t *testing.T) {
	s := New("me")
	s.Apply(MergePosts{Page: 0, Posts: []domain.Post{post("a", 5)}})

	held := HoldFunc(func(Field, string) bool { return true })
	s.Apply(RefreshPost{Post: post("a", 1), Hold: held})
	if p, _ := s.Post("a"); p.TotalLikes != 5 {
		t.Errorf("Expected held likes 5, got %d", p.TotalLikes)
	}

	s.Apply(RefreshPost{Post: post("a", 1)})
	if p, _ := s.Post("a"); p.TotalLikes != 1 {
		t.Errorf("Expected refreshed likes 1, got %d", p.TotalLikes)
	}

	if s.Apply(RefreshPost{Post: post("missing", 1)}) {
		t.Error("Expected refresh of unknown post to be a no-op")
	}
}

func TestPatchPostClampsCounters(t *testing.T) {
	s := New("me")
	s.Apply(MergePosts{Page: 0, Posts: []domain.Post{post("a", 0)}})
	s.Apply(PatchPost{Id: "a", Patch: func(p domain.Post) domain.Post {
		p.TotalLikes = -3
		p.TotalComments = -1
		return p
	}})
	p, _ := s.Post("a")
	if p.TotalLikes != 0 || p.TotalComments != 0 {
		t.Errorf("Expected counters clamped to zero, got %d/%d", p.TotalLikes, p.TotalComments)
	}
}

func TestEditCommentsAdjustsParentCount(t *testing.T) {
	s := New("me")
	p := post("a", 0)
	p.TotalComments = 1
	s.Apply(MergePosts{Page: 0, Posts: []domain.Post{p}})

	s.Apply(EditComments{ParentId: "a", Edit: func(list []domain.Comment) ([]domain.Comment, int, bool) {
		return append([]domain.Comment{{Id: "1", ParentId: "a"}}, list...), 1, true
	}})
	if n, _ := s.CommentCount("a"); n != 2 {
		t.Errorf("Expected 2 comments, got %d", n)
	}

	s.Apply(EditComments{ParentId: "a", Edit: func(list []domain.Comment) ([]domain.Comment, int, bool) {
		return nil, -5, true
	}})
	if n, _ := s.CommentCount("a"); n != 0 {
		t.Errorf("Expected count clamped to 0, got %d", n)
	}
}

func TestEditCommentsDedupes(t *testing.T) {
	s := New("me")
	s.Apply(EditComments{ParentId: "a", Edit: func([]domain.Comment) ([]domain.Comment, int, bool) {
		return []domain.Comment{{Id: "1"}, {Id: "1"}, {Id: "2"}}, 0, true
	}})
	if got := len(s.Comments("a")); got != 2 {
		t.Errorf("Expected 2 unique comments, got %d", got)
	}
}

func TestMergeCommentsRefreshKeepsOptimistic(t *testing.T) {
	s := New("me")
	s.Apply(MergeComments{ParentId: "a", Page: 0, Comments: []domain.Comment{{Id: "1"}}})
	s.Apply(EditComments{ParentId: "a", Edit: func(list []domain.Comment) ([]domain.Comment, int, bool) {
		tmp := domain.Comment{Id: "temp_x", IsOptimistic: true, IsPending: true}
		return append([]domain.Comment{tmp}, list...), 0, true
	}})

	s.Apply(MergeComments{ParentId: "a", Page: 0, Comments: []domain.Comment{{Id: "2"}, {Id: "1"}}})

	list := s.Comments("a")
	if len(list) != 3 || list[0].Id != "temp_x" || list[1].Id != "2" || list[2].Id != "1" {
		t.Errorf("Unexpected list after refresh: %+v", list)
	}
}

func TestMergeCommentsKeepsHeldLikes(t *testing.T) {
	s := New("me")
	s.Apply(MergeComments{ParentId: "a", Page: 0, Comments: []domain.Comment{{Id: "7", TotalLikes: 2}, {Id: "8", TotalLikes: 1}}})
	s.Apply(PatchComment{ParentId: "a", Id: "7", Patch: func(c domain.Comment) domain.Comment {
		c.IsLiked = true
		c.TotalLikes = 3
		return c
	}})
	s.Apply(PatchComment{ParentId: "a", Id: "8", Patch: func(c domain.Comment) domain.Comment {
		c.IsLiked = true
		c.TotalLikes = 2
		return c
	}})

	hold := HoldFunc(func(f Field, id string) bool { return f == FieldCommentLike && id == CommentRef("a", "7") })
	s.Apply(MergeComments{ParentId: "a", Page: 0, Comments: []domain.Comment{{Id: "7", TotalLikes: 2}, {Id: "8", TotalLikes: 1}}, Hold: hold})

	if c, _ := s.Comment("a", "7"); !c.IsLiked || c.TotalLikes != 3 {
		t.Errorf("Expected held comment to keep its like, got %v %d", c.IsLiked, c.TotalLikes)
	}
	if c, _ := s.Comment("a", "8"); c.IsLiked || c.TotalLikes != 1 {
		t.Errorf("Expected server values for comment 8, got %v %d", c.IsLiked, c.TotalLikes)
	}
}

func TestSeedCommentsOnlyFillsEmptyParents(t *testing.T) {
	s := New("me")
	seed := []domain.Comment{{Id: "1"}, {Id: "temp_y", IsOptimistic: true}}

	if !s.Apply(SeedComments{ParentId: "a", Comments: seed}) {
		t.Fatal("Expected seed to apply to an empty parent")
	}
	if list := s.Comments("a"); len(list) != 1 || list[0].Id != "1" {
		t.Errorf("Expected only the confirmed comment to be seeded, got %+v", list)
	}

	s.Apply(MergeComments{ParentId: "b", Page: 0, Comments: nil})
	if s.Apply(SeedComments{ParentId: "b", Comments: seed}) {
		t.Error("Expected seed to skip a parent that was already loaded")
	}
}

func TestSavedSet(t *testing.T) {
	s := New("me")
	if !s.Apply(SetSaved{Id: "a", Saved: true}) {
		t.Fatal("Expected save to change the set")
	}
	if s.Apply(SetSaved{Id: "a", Saved: true}) {
		t.Error("Expected repeated save to be a no-op")
	}
	if !s.IsSaved("a") {
		t.Error("Expected a to be saved")
	}

	hold := HoldFunc(func(f Field, id string) bool { return f == FieldSave && (id == "a" || id == "c") })
	s.Apply(ReplaceSaved{Ids: []string{"b", "c"}, Hold: hold})

	if !s.IsSaved("a") {
		t.Error("Expected held a to stay saved")
	}
	if !s.IsSaved("b") {
		t.Error("Expected b from the server list")
	}
	if s.IsSaved("c") {
		t.Error("Expected held c to stay unsaved")
	}
}

func TestRemovePost(t *testing.T) {
	s := New("me")
	s.Apply(MergePosts{Page: 0, Posts: []domain.Post{post("a", 0), post("b", 0)}})
	s.Apply(MergeComments{ParentId: "a", Page: 0, Comments: []domain.Comment{{Id: "1"}}})

	if !s.Apply(RemovePost{Id: "a"}) {
		t.Fatal("Expected removal")
	}
	if _, ok := s.Post("a"); ok {
		t.Error("Expected post a to be gone")
	}
	if len(s.Feed()) != 1 {
		t.Errorf("Expected 1 post left, got %d", len(s.Feed()))
	}
	if len(s.Comments("a")) != 0 {
		t.Error("Expected comments of a to be dropped")
	}
}

func TestPrependNotificationDedupes(t *testing.T) {
	s := New("me")
	n := notification("n1", false)

	if !s.Apply(PrependNotification{Notification: n}) {
		t.Fatal("Expected first delivery to apply")
	}
	if s.Apply(PrependNotification{Notification: n}) {
		t.Error("Expected duplicate delivery to be a no-op")
	}
	if len(s.Notifications()) != 1 {
		t.Errorf("Expected 1 notification, got %d", len(s.Notifications()))
	}
	if s.Unread() != 1 {
		t.Errorf("Expected unread 1, got %d", s.Unread())
	}

	s.Apply(PrependNotification{Notification: notification("n2", true)})
	if s.Unread() != 1 {
		t.Errorf("Expected read notification not to count, got %d", s.Unread())
	}
	if s.Notifications()[0].Id != "n2" {
		t.Error("Expected newest notification first")
	}
}

func TestNotificationReadAndDelete(t *testing.T) {
	s := New("me")
	for _, n := range []domain.Notification{notification("a", false), notification("b", false), notification("c", true)} {
		s.Apply(PrependNotification{Notification: n})
	}
	if s.Unread() != 2 {
		t.Fatalf("Expected unread 2, got %d", s.Unread())
	}

	s.Apply(MarkNotificationRead{Id: "a"})
	if s.Apply(MarkNotificationRead{Id: "a"}) {
		t.Error("Expected marking twice to be a no-op")
	}
	if s.Unread() != 1 {
		t.Errorf("Expected unread 1, got %d", s.Unread())
	}

	s.Apply(RemoveNotification{Id: "c"})
	if s.Unread() != 1 {
		t.Errorf("Expected removing a read notification to keep unread 1, got %d", s.Unread())
	}
	s.Apply(RemoveNotification{Id: "b"})
	if s.Unread() != 0 {
		t.Errorf("Expected unread 0, got %d", s.Unread())
	}

	s.Apply(PrependNotification{Notification: notification("d", false)})
	s.Apply(MarkAllNotificationsRead{})
	if s.Unread() != 0 {
		t.Errorf("Expected unread 0 after mark all, got %d", s.Unread())
	}
	for _, n := range s.Notifications() {
		if !n.IsRead {
			t.Errorf("Expected %s to be read", n.Id)
		}
	}

	s.Apply(ClearNotifications{})
	if len(s.Notifications()) != 0 || s.Unread() != 0 {
		t.Error("Expected notifications cleared")
	}
}

func TestRestoreNotificationReads(t *testing.T) {
	s := New("me")
	for _, n := range []domain.Notification{notification("a", false), notification("b", false), notification("c", true)} {
		s.Apply(PrependNotification{Notification: n})
	}

	var undo RestoreNotificationReads
	s.Apply(MarkNotificationRead{Id: "a", Undo: &undo})
	if len(undo.Ids) != 1 || undo.Ids[0] != "a" || undo.Unread != 1 {
		t.Fatalf("Unexpected undo %+v", undo)
	}
	if !s.Apply(undo) {
		t.Fatal("Expected restore to change state")
	}
	if n, _ := s.Notification("a"); n.IsRead {
		t.Error("Expected a unread again")
	}
	if s.Unread() != 2 {
		t.Errorf("Expected unread 2, got %d", s.Unread())
	}

	var all RestoreNotificationReads
	s.Apply(MarkAllNotificationsRead{Undo: &all})
	if all.Unread != 2 || len(all.Ids) != 2 {
		t.Fatalf("Expected undo of two entries, got %+v", all)
	}
	s.Apply(RemoveNotification{Id: "b"})
	s.Apply(all)
	if s.Unread() != 2 {
		t.Errorf("Expected unread 2, got %d", s.Unread())
	}
	if n, _ := s.Notification("a"); n.IsRead {
		t.Error("Expected a unread after restoring mark all")
	}
	if n, _ := s.Notification("c"); !n.IsRead {
		t.Error("Expected c to stay read")
	}
}

func TestSetUnreadFloorsAtZero(t *testing.T) {
	s := New("me")
	s.Apply(SetUnread{Count: -4})
	if s.Unread() != 0 {
		t.Errorf("Expected 0, got %d", s.Unread())
	}
}

func TestBeginAndFailLoad(t *testing.T) {
	s := New("me")
	begin := &BeginLoad{Key: FeedKey}
	if !s.Apply(begin) || begin.Page != 0 {
		t.Fatalf("Expected to claim page 0, got %d", begin.Page)
	}
	if s.Apply(&BeginLoad{Key: FeedKey}) {
		t.Error("Expected a second claim to be refused while loading")
	}
	s.Apply(FailLoad{Key: FeedKey})
	if s.Cursor(FeedKey).Loading {
		t.Error("Expected loading cleared")
	}
	if s.Cursor(FeedKey).Loaded {
		t.Error("Expected a failed first page to leave the collection unloaded")
	}
}

func TestSnapshotDerivesViewerState(t *testing.T) {
	s := New("me")
	s.Apply(MergePosts{Page: 0, Posts: []domain.Post{post("a", 0)}})
	s.Apply(MergeReels{Page: 0, Reels: []domain.Reel{{Id: "r", LikedBy: []string{"x", "me"}}}})
	s.Apply(SetSaved{Id: "r", Saved: true})

	snap := s.Snapshot()
	if len(snap.Feed) != 1 || snap.Feed[0].IsSaved {
		t.Errorf("Unexpected feed view: %+v", snap.Feed)
	}
	if len(snap.Reels) != 1 {
		t.Fatalf("Expected 1 reel, got %d", len(snap.Reels))
	}
	r := snap.Reels[0]
	if r.TotalLikes != 2 || !r.IsLiked || !r.IsSaved {
		t.Errorf("Unexpected reel view: %+v", r)
	}
}
