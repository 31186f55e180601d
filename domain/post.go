package domain

import "time"

// MaxRecentLikers bounds Post.RecentLikedBy
const MaxRecentLikers = 5

// Post is a feed entry. Whether the viewer saved it lives in SavedIdSet, not here.
type Post struct {
	Id            string     `json:"id"`
	Author        ActorRef   `json:"author"`
	Caption       string     `json:"caption"`
	Media         []string   `json:"media,omitempty"`
	TotalLikes    int        `json:"totalLikes"`
	RecentLikedBy []ActorRef `json:"recentLikedBy"`
	TotalComments int        `json:"totalComments"`
	IsLiked       bool       `json:"isLiked"`
	CreatedAt     time.Time  `json:"createdAt"`
}

func (p Post) Key() string {
	return p.Id
}

// Clone returns a copy that shares no slices with p
func (p Post) Clone() Post {
	c := p
	if p.Media != nil {
		c.Media = append([]string(nil), p.Media...)
	}
	if p.RecentLikedBy != nil {
		c.RecentLikedBy = append([]ActorRef(nil), p.RecentLikedBy...)
	}
	return c
}

// LikeFields is the part of a post owned by like toggling.
type LikeFields struct {
	TotalLikes    int
	RecentLikedBy []ActorRef
	IsLiked       bool
}

func (p Post) LikeFields() LikeFields {
	return LikeFields{
		TotalLikes:    p.TotalLikes,
		RecentLikedBy: append([]ActorRef(nil), p.RecentLikedBy...),
		IsLiked:       p.IsLiked,
	}
}

func (p Post) WithLikeFields(f LikeFields) Post {
	c := p.Clone()
	c.TotalLikes = f.TotalLikes
	c.RecentLikedBy = append([]ActorRef(nil), f.RecentLikedBy...)
	c.IsLiked = f.IsLiked
	return c
}
