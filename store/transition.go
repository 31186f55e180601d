package store

import (
	"github.com/deemkeen/feedsync/domain"
	"github.com/deemkeen/feedsync/pagination"
)

// Transition is one atomic change to the store. The set of transitions is
// closed: every implementation lives in this package.
type Transition interface {
	Kind() string
	apply(s *Store) bool
}

// MergePosts folds a feed page into the feed. Held like fields of posts that
// are already cached survive a page 0 replace.
type MergePosts struct {
	Page    int
	Posts   []domain.Post
	HasMore bool
	Hold    HoldFunc
}

func (MergePosts) Kind() string { return "merge-posts" }

func (t MergePosts) apply(s *Store) bool {
	incoming := make([]domain.Post, 0, len(t.Posts))
	for _, p := range t.Posts {
		p = p.Clone()
		if cur, ok := s.posts[p.Id]; ok && t.Hold.holds(FieldLike, p.Id) {
			p = p.WithLikeFields(cur.LikeFields())
		}
		incoming = append(incoming, p)
	}

	merged := pagination.MergePage(s.feedLocked(), t.Page, incoming)

	s.posts = make(map[string]domain.Post, len(merged))
	s.feed = make([]string, 0, len(merged))
	for _, p := range merged {
		s.posts[p.Id] = p
		s.feed = append(s.feed, p.Id)
	}
	s.cursors[FeedKey] = s.cursors[FeedKey].Done(t.Page, t.HasMore)
	return true
}

// MergeReels folds a reels page into the reel list
type MergeReels struct {
	Page    int
	Reels   []domain.Reel
	HasMore bool
	Hold    HoldFunc
}

func (MergeReels) Kind() string { return "merge-reels" }

func (t MergeReels) apply(s *Store) bool {
	incoming := make([]domain.Reel, 0, len(t.Reels))
	for _, r := range t.Reels {
		r = r.Clone()
		if cur, ok := s.reels[r.Id]; ok && t.Hold.holds(FieldLike, r.Id) {
			r.LikedBy = append([]string(nil), cur.LikedBy...)
		}
		incoming = append(incoming, r)
	}

	merged := pagination.MergePage(s.reelsLocked(), t.Page, incoming)

	s.reels = make(map[string]domain.Reel, len(merged))
	s.reelOrder = make([]string, 0, len(merged))
	for _, r := range merged {
		s.reels[r.Id] = r
		s.reelOrder = append(s.reelOrder, r.Id)
	}
	s.cursors[ReelsKey] = s.cursors[ReelsKey].Done(t.Page, t.HasMore)
	return true
}

// MergeComments folds a page of server comments into a parent's list.
// Unconfirmed comments stay at the head across a page 0 replace so their
// settlement still finds them. Held like fields of cached comments survive.
type MergeComments struct {
	ParentId string
	Page     int
	Comments []domain.Comment
	HasMore  bool
	Hold     HoldFunc
}

func (MergeComments) Kind() string { return "merge-comments" }

func (t MergeComments) apply(s *Store) bool {
	existing := s.comments[t.ParentId]
	incoming := t.Comments
	if t.Hold != nil && len(existing) > 0 {
		incoming = make([]domain.Comment, len(t.Comments))
		for i, c := range t.Comments {
			if t.Hold.holds(FieldCommentLike, CommentRef(t.ParentId, c.Id)) {
				if j := indexComment(existing, c.Id); j >= 0 {
					c.IsLiked = existing[j].IsLiked
					c.TotalLikes = existing[j].TotalLikes
				}
			}
			incoming[i] = c
		}
	}

	var merged []domain.Comment
	if t.Page == 0 {
		var optimistic []domain.Comment
		for _, c := range existing {
			if c.IsOptimistic {
				optimistic = append(optimistic, c)
			}
		}
		merged = pagination.MergePage(optimistic, 1, incoming)
	} else {
		merged = pagination.MergePage(existing, t.Page, incoming)
	}
	s.comments[t.ParentId] = merged

	key := CommentsKey(t.ParentId)
	s.cursors[key] = s.cursors[key].Done(t.Page, t.HasMore)
	return true
}

// SeedComments installs a restored backup for a parent that has no loaded
// list yet. It never overrides server data.
type SeedComments struct {
	ParentId string
	Comments []domain.Comment
}

func (SeedComments) Kind() string { return "seed-comments" }

func (t SeedComments) apply(s *Store) bool {
	if s.cursors[CommentsKey(t.ParentId)].Loaded || len(s.comments[t.ParentId]) > 0 {
		return false
	}
	var seeded []domain.Comment
	for _, c := range t.Comments {
		if c.Id.IsTemporary() {
			continue
		}
		c.IsOptimistic = false
		c.IsPending = false
		seeded = append(seeded, c)
	}
	if len(seeded) == 0 {
		return false
	}
	s.comments[t.ParentId] = pagination.MergePage[domain.Comment](nil, 0, seeded)
	return true
}

// MergeNotifications folds a notification page. Unread, when set, is the
// server's unread count.
type MergeNotifications struct {
	Page          int
	Notifications []domain.Notification
	HasMore       bool
	Unread        *int
}

func (MergeNotifications) Kind() string { return "merge-notifications" }

func (t MergeNotifications) apply(s *Store) bool {
	s.notifications = pagination.MergePage(s.notifications, t.Page, t.Notifications)
	if t.Unread != nil {
		s.unread = clamp(*t.Unread)
	} else if t.Page == 0 {
		s.unread = countUnread(s.notifications)
	}
	s.cursors[NotificationsKey] = s.cursors[NotificationsKey].Done(t.Page, t.HasMore)
	return true
}

// BeginLoad claims the next fetch of a collection. After a successful Apply,
// Page holds the page to request.
type BeginLoad struct {
	Key     CollectionKey
	Refresh bool
	Page    int
}

func (*BeginLoad) Kind() string { return "begin-load" }

func (t *BeginLoad) apply(s *Store) bool {
	next, page, ok := s.cursors[t.Key].Begin(t.Refresh)
	if !ok {
		return false
	}
	s.cursors[t.Key] = next
	t.Page = page
	return true
}

// FailLoad clears the loading flag after a failed fetch
type FailLoad struct {
	Key CollectionKey
}

func (FailLoad) Kind() string { return "fail-load" }

func (t FailLoad) apply(s *Store) bool {
	c := s.cursors[t.Key]
	if !c.Loading {
		return false
	}
	s.cursors[t.Key] = c.Fail()
	return true
}

// PatchPost replaces a cached post with Patch(post)
type PatchPost struct {
	Id    string
	Patch func(domain.Post) domain.Post
}

func (PatchPost) Kind() string { return "patch-post" }

func (t PatchPost) apply(s *Store) bool {
	p, ok := s.posts[t.Id]
	if !ok {
		return false
	}
	next := t.Patch(p.Clone())
	next.Id = t.Id
	next.TotalLikes = clamp(next.TotalLikes)
	next.TotalComments = clamp(next.TotalComments)
	s.posts[t.Id] = next
	return true
}

// RefreshPost overwrites a cached post with an externally fetched copy.
// Held like fields keep their local values.
type RefreshPost struct {
	Post domain.Post
	Hold HoldFunc
}

func (RefreshPost) Kind() string { return "refresh-post" }

func (t RefreshPost) apply(s *Store) bool {
	cur, ok := s.posts[t.Post.Id]
	if !ok {
		return false
	}
	next := t.Post.Clone()
	if t.Hold.holds(FieldLike, next.Id) {
		next = next.WithLikeFields(cur.LikeFields())
	}
	s.posts[next.Id] = next
	return true
}

// RemovePost drops a post and its comments after a confirmed delete
type RemovePost struct {
	Id string
}

func (RemovePost) Kind() string { return "remove-post" }

func (t RemovePost) apply(s *Store) bool {
	if _, ok := s.posts[t.Id]; !ok {
		return false
	}
	delete(s.posts, t.Id)
	if i := indexString(s.feed, t.Id); i >= 0 {
		s.feed = append(s.feed[:i:i], s.feed[i+1:]...)
	}
	delete(s.comments, t.Id)
	delete(s.cursors, CommentsKey(t.Id))
	return true
}

// PatchReel replaces a cached reel with Patch(reel)
type PatchReel struct {
	Id    string
	Patch func(domain.Reel) domain.Reel
}

func (PatchReel) Kind() string { return "patch-reel" }

func (t PatchReel) apply(s *Store) bool {
	r, ok := s.reels[t.Id]
	if !ok {
		return false
	}
	next := t.Patch(r.Clone())
	next.Id = t.Id
	next.TotalComments = clamp(next.TotalComments)
	s.reels[t.Id] = next
	return true
}

// PatchComment replaces one comment in place
type PatchComment struct {
	ParentId string
	Id       domain.CommentID
	Patch    func(domain.Comment) domain.Comment
}

func (PatchComment) Kind() string { return "patch-comment" }

func (t PatchComment) apply(s *Store) bool {
	list := s.comments[t.ParentId]
	i := indexComment(list, t.Id)
	if i < 0 {
		return false
	}
	next := t.Patch(list[i])
	next.TotalLikes = clamp(next.TotalLikes)

	updated := append([]domain.Comment(nil), list...)
	updated[i] = next
	s.comments[t.ParentId] = updated
	return true
}

// EditComments rewrites a parent's comment list and shifts the parent's
// totalComments by the returned delta, floored at zero. Edit returns
// changed=false to leave everything untouched.
type EditComments struct {
	ParentId string
	Edit     func(list []domain.Comment) (next []domain.Comment, delta int, changed bool)
}

func (EditComments) Kind() string { return "edit-comments" }

func (t EditComments) apply(s *Store) bool {
	current := append([]domain.Comment(nil), s.comments[t.ParentId]...)
	next, delta, changed := t.Edit(current)
	if !changed {
		return false
	}
	s.comments[t.ParentId] = pagination.MergePage[domain.Comment](nil, 0, next)

	if delta != 0 {
		if p, ok := s.posts[t.ParentId]; ok {
			p.TotalComments = clamp(p.TotalComments + delta)
			s.posts[t.ParentId] = p
		} else if r, ok := s.reels[t.ParentId]; ok {
			r.TotalComments = clamp(r.TotalComments + delta)
			s.reels[t.ParentId] = r
		}
	}
	return true
}

// SetSaved sets membership of Id in the saved set
type SetSaved struct {
	Id    string
	Saved bool
}

func (SetSaved) Kind() string { return "set-saved" }

func (t SetSaved) apply(s *Store) bool {
	if s.saved.Has(t.Id) == t.Saved {
		return false
	}
	if t.Saved {
		s.saved.Add(t.Id)
	} else {
		s.saved.Remove(t.Id)
	}
	return true
}

// ReplaceSaved installs the server's saved list. Held ids keep their local
// membership.
type ReplaceSaved struct {
	Ids  []string
	Hold HoldFunc
}

func (ReplaceSaved) Kind() string { return "replace-saved" }

func (t ReplaceSaved) apply(s *Store) bool {
	next := domain.NewSavedIdSet(t.Ids...)
	for id := range s.saved {
		if t.Hold.holds(FieldSave, id) {
			next.Add(id)
		}
	}
	for id := range next {
		if t.Hold.holds(FieldSave, id) && !s.saved.Has(id) {
			next.Remove(id)
		}
	}
	s.saved = next
	return true
}

// PrependNotification adds a pushed notification. A known id is a no-op.
type PrependNotification struct {
	Notification domain.Notification
}

func (PrependNotification) Kind() string { return "prepend-notification" }

func (t PrependNotification) apply(s *Store) bool {
	if indexNotification(s.notifications, t.Notification.Id) >= 0 {
		return false
	}
	s.notifications = append([]domain.Notification{t.Notification}, s.notifications...)
	if !t.Notification.IsRead {
		s.unread++
	}
	return true
}

// MarkNotificationRead flips one entry to read. When Undo is set it receives
// the inverse transition.
type MarkNotificationRead struct {
	Id   string
	Undo *RestoreNotificationReads
}

func (MarkNotificationRead) Kind() string { return "mark-notification-read" }

func (t MarkNotificationRead) apply(s *Store) bool {
	i := indexNotification(s.notifications, t.Id)
	if i < 0 || s.notifications[i].IsRead {
		return false
	}
	updated := append([]domain.Notification(nil), s.notifications...)
	updated[i].IsRead = true
	s.notifications = updated
	before := s.unread
	s.unread = clamp(s.unread - 1)
	if t.Undo != nil {
		*t.Undo = RestoreNotificationReads{Ids: []string{t.Id}, Unread: before - s.unread}
	}
	return true
}

// MarkAllNotificationsRead flips every entry to read and zeroes the counter.
// When Undo is set it receives the inverse transition.
type MarkAllNotificationsRead struct {
	Undo *RestoreNotificationReads
}

func (MarkAllNotificationsRead) Kind() string { return "mark-all-notifications-read" }

func (t MarkAllNotificationsRead) apply(s *Store) bool {
	changed := s.unread != 0
	var flipped []string
	updated := make([]domain.Notification, len(s.notifications))
	for i, n := range s.notifications {
		if !n.IsRead {
			changed = true
			flipped = append(flipped, n.Id)
		}
		n.IsRead = true
		updated[i] = n
	}
	s.notifications = updated
	if t.Undo != nil {
		*t.Undo = RestoreNotificationReads{Ids: flipped, Unread: s.unread}
	}
	s.unread = 0
	return changed
}

// RestoreNotificationReads reverses a read marker the server rejected: Ids
// still cached and read become unread again and the counter rises by Unread.
type RestoreNotificationReads struct {
	Ids    []string
	Unread int
}

func (RestoreNotificationReads) Kind() string { return "restore-notification-reads" }

func (t RestoreNotificationReads) apply(s *Store) bool {
	changed := false
	var updated []domain.Notification
	for _, id := range t.Ids {
		i := indexNotification(s.notifications, id)
		if i < 0 || !s.notifications[i].IsRead {
			continue
		}
		if updated == nil {
			updated = append([]domain.Notification(nil), s.notifications...)
		}
		updated[i].IsRead = false
		changed = true
	}
	if updated != nil {
		s.notifications = updated
	}
	if t.Unread > 0 {
		s.unread += t.Unread
		changed = true
	}
	return changed
}

type RemoveNotification struct {
	Id string
}

func (RemoveNotification) Kind() string { return "remove-notification" }

func (t RemoveNotification) apply(s *Store) bool {
	i := indexNotification(s.notifications, t.Id)
	if i < 0 {
		return false
	}
	if !s.notifications[i].IsRead {
		s.unread = clamp(s.unread - 1)
	}
	s.notifications = append(s.notifications[:i:i], s.notifications[i+1:]...)
	return true
}

// ClearNotifications empties the list and the unread counter
type ClearNotifications struct{}

func (ClearNotifications) Kind() string { return "clear-notifications" }

func (ClearNotifications) apply(s *Store) bool {
	if len(s.notifications) == 0 && s.unread == 0 {
		return false
	}
	s.notifications = nil
	s.unread = 0
	delete(s.cursors, NotificationsKey)
	return true
}

// SetUnread installs the server's unread count
type SetUnread struct {
	Count int
}

func (SetUnread) Kind() string { return "set-unread" }

func (t SetUnread) apply(s *Store) bool {
	n := clamp(t.Count)
	if s.unread == n {
		return false
	}
	s.unread = n
	return true
}

func clamp(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

func countUnread(list []domain.Notification) int {
	n := 0
	for _, it := range list {
		if !it.IsRead {
			n++
		}
	}
	return n
}
