package domain

import "time"

// Reel is a short video entry. Its like count is always the size of LikedBy.
type Reel struct {
	Id            string    `json:"id"`
	Author        ActorRef  `json:"author"`
	Caption       string    `json:"caption"`
	VideoURL      string    `json:"videoUrl"`
	LikedBy       []string  `json:"likedBy"`
	TotalComments int       `json:"totalComments"`
	CreatedAt     time.Time `json:"createdAt"`
}

func (r Reel) Key() string {
	return r.Id
}

func (r Reel) TotalLikes() int {
	return len(r.LikedBy)
}

// LikedByActor reports whether actorId is in the liker set
func (r Reel) LikedByActor(actorId string) bool {
	for _, id := range r.LikedBy {
		if id == actorId {
			return true
		}
	}
	return false
}

func (r Reel) Clone() Reel {
	c := r
	if r.LikedBy != nil {
		c.LikedBy = append([]string(nil), r.LikedBy...)
	}
	return c
}
