// Package store keeps the normalized client-side cache of posts, reels,
// comments, notifications and saved ids. All writes go through Apply.
package store

import (
	"log"
	"sync"

	"github.com/deemkeen/feedsync/domain"
	"github.com/deemkeen/feedsync/pagination"
)

// CollectionKey names one paginated collection
type CollectionKey string

const (
	FeedKey          CollectionKey = "feed"
	ReelsKey         CollectionKey = "reels"
	NotificationsKey CollectionKey = "notifications"
)

// CommentsKey is the collection of comments under parentId
func CommentsKey(parentId string) CollectionKey {
	return CollectionKey("comments:" + parentId)
}

// Field is a group of entity fields owned by local interactions
type Field int

const (
	FieldLike Field = iota
	FieldSave
	// FieldCommentLike is keyed by CommentRef
	FieldCommentLike
)

// CommentRef addresses a comment across parents
func CommentRef(parentId string, id domain.CommentID) string {
	return parentId + "/" + string(id)
}

// HoldFunc reports whether local edits to field of id must survive
// externally sourced updates.
type HoldFunc func(field Field, id string) bool

func (h HoldFunc) holds(field Field, id string) bool {
	return h != nil && h(field, id)
}

// Store is the entity cache. The zero value is not usable, use New.
type Store struct {
	mu sync.RWMutex

	viewer string

	posts map[string]domain.Post
	feed  []string

	reels     map[string]domain.Reel
	reelOrder []string

	comments map[string][]domain.Comment

	notifications []domain.Notification
	unread        int

	saved   domain.SavedIdSet
	cursors map[CollectionKey]pagination.Cursor
}

// New creates an empty store for the viewer identified by viewerId
func New(viewerId string) *Store {
	return &Store{
		viewer:   viewerId,
		posts:    make(map[string]domain.Post),
		reels:    make(map[string]domain.Reel),
		comments: make(map[string][]domain.Comment),
		saved:    domain.NewSavedIdSet(),
		cursors:  make(map[CollectionKey]pagination.Cursor),
	}
}

// Apply runs t atomically and reports whether anything changed
func (s *Store) Apply(t Transition) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed := t.apply(s)
	if !changed {
		log.Printf("Store: %s was a no-op", t.Kind())
	}
	return changed
}

func (s *Store) Viewer() string {
	return s.viewer
}

// Post returns a copy of the cached post
func (s *Store) Post(id string) (domain.Post, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.posts[id]
	if !ok {
		return domain.Post{}, false
	}
	return p.Clone(), true
}

// Feed returns the feed posts in display order
func (s *Store) Feed() []domain.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.feedLocked()
}

func (s *Store) feedLocked() []domain.Post {
	out := make([]domain.Post, 0, len(s.feed))
	for _, id := range s.feed {
		out = append(out, s.posts[id].Clone())
	}
	return out
}

func (s *Store) Reel(id string) (domain.Reel, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reels[id]
	if !ok {
		return domain.Reel{}, false
	}
	return r.Clone(), true
}

func (s *Store) Reels() []domain.Reel {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reelsLocked()
}

func (s *Store) reelsLocked() []domain.Reel {
	out := make([]domain.Reel, 0, len(s.reelOrder))
	for _, id := range s.reelOrder {
		out = append(out, s.reels[id].Clone())
	}
	return out
}

// Comments returns the comment list of a parent, newest first
func (s *Store) Comments(parentId string) []domain.Comment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Comment(nil), s.comments[parentId]...)
}

func (s *Store) Comment(parentId string, id domain.CommentID) (domain.Comment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := indexComment(s.comments[parentId], id)
	if i < 0 {
		return domain.Comment{}, false
	}
	return s.comments[parentId][i], true
}

// CommentCount returns the parent's totalComments, or false when the parent
// is not cached.
func (s *Store) CommentCount(parentId string) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.posts[parentId]; ok {
		return p.TotalComments, true
	}
	if r, ok := s.reels[parentId]; ok {
		return r.TotalComments, true
	}
	return 0, false
}

func (s *Store) Notifications() []domain.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Notification(nil), s.notifications...)
}

func (s *Store) Notification(id string) (domain.Notification, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := indexNotification(s.notifications, id)
	if i < 0 {
		return domain.Notification{}, false
	}
	return s.notifications[i], true
}

func (s *Store) Unread() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.unread
}

// IsSaved is the only source of a post's or reel's saved state
func (s *Store) IsSaved(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saved.Has(id)
}

func (s *Store) SavedIds() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saved.Ids()
}

func (s *Store) Cursor(key CollectionKey) pagination.Cursor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cursors[key]
}

func indexComment(list []domain.Comment, id domain.CommentID) int {
	for i, c := range list {
		if c.Id == id {
			return i
		}
	}
	return -1
}

func indexNotification(list []domain.Notification, id string) int {
	for i, n := range list {
		if n.Id == id {
			return i
		}
	}
	return -1
}

func indexString(list []string, id string) int {
	for i, v := range list {
		if v == id {
			return i
		}
	}
	return -1
}
