package store

import (
	"github.com/deemkeen/feedsync/domain"
	"github.com/deemkeen/feedsync/pagination"
)

// PostView is a post with its derived viewer state
type PostView struct {
	domain.Post
	IsSaved bool `json:"isSaved"`
}

// ReelView is a reel with its derived viewer state
type ReelView struct {
	domain.Reel
	TotalLikes int  `json:"totalLikes"`
	IsLiked    bool `json:"isLiked"`
	IsSaved    bool `json:"isSaved"`
}

// Snapshot is a read-only copy of the whole store
type Snapshot struct {
	Viewer        string                              `json:"viewer"`
	Feed          []PostView                          `json:"feed"`
	Reels         []ReelView                          `json:"reels"`
	Comments      map[string][]domain.Comment         `json:"comments"`
	Notifications []domain.Notification               `json:"notifications"`
	Unread        int                                 `json:"unread"`
	Saved         []string                            `json:"saved"`
	Cursors       map[CollectionKey]pagination.Cursor `json:"cursors"`
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Viewer:        s.viewer,
		Feed:          make([]PostView, 0, len(s.feed)),
		Reels:         make([]ReelView, 0, len(s.reelOrder)),
		Comments:      make(map[string][]domain.Comment, len(s.comments)),
		Notifications: append([]domain.Notification{}, s.notifications...),
		Unread:        s.unread,
		Saved:         s.saved.Ids(),
		Cursors:       make(map[CollectionKey]pagination.Cursor, len(s.cursors)),
	}
	for _, p := range s.feedLocked() {
		snap.Feed = append(snap.Feed, PostView{Post: p, IsSaved: s.saved.Has(p.Id)})
	}
	for _, r := range s.reelsLocked() {
		snap.Reels = append(snap.Reels, ReelView{
			Reel:       r,
			TotalLikes: r.TotalLikes(),
			IsLiked:    r.LikedByActor(s.viewer),
			IsSaved:    s.saved.Has(r.Id),
		})
	}
	for parent, list := range s.comments {
		snap.Comments[parent] = append([]domain.Comment(nil), list...)
	}
	for k, c := range s.cursors {
		snap.Cursors[k] = c
	}
	return snap
}

// PostViews returns the feed with derived saved state
func (s *Store) PostViews() []PostView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]PostView, 0, len(s.feed))
	for _, p := range s.feedLocked() {
		out = append(out, PostView{Post: p, IsSaved: s.saved.Has(p.Id)})
	}
	return out
}

// ReelViews returns the reels with derived viewer state
func (s *Store) ReelViews() []ReelView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ReelView, 0, len(s.reelOrder))
	for _, r := range s.reelsLocked() {
		out = append(out, ReelView{
			Reel:       r,
			TotalLikes: r.TotalLikes(),
			IsLiked:    r.LikedByActor(s.viewer),
			IsSaved:    s.saved.Has(r.Id),
		})
	}
	return out
}
