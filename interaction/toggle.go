// Package interaction holds the counter arithmetic behind like and save toggles.
// Every function is pure and returns a new value.
package interaction

import "github.com/deemkeen/feedsync/domain"

// ToggleLike flips the viewer's like on a post.
//
// Unliking decrements with a floor of zero and drops the actor from
// RecentLikedBy. Liking increments, moves the actor to the head of
// RecentLikedBy and truncates it to domain.MaxRecentLikers.
func ToggleLike(p domain.Post, actor domain.ActorRef, currentlyLiked bool) domain.Post {
	p = p.Clone()
	if currentlyLiked {
		p.TotalLikes = decrement(p.TotalLikes)
	} else {
		p.TotalLikes++
	}
	p.RecentLikedBy = recentLikers(p.RecentLikedBy, actor, !currentlyLiked)
	p.IsLiked = !currentlyLiked
	return p
}

// SetRecentLiker puts actor at the head of RecentLikedBy when liked, or drops
// it otherwise. Counters are left alone.
func SetRecentLiker(p domain.Post, actor domain.ActorRef, liked bool) domain.Post {
	p = p.Clone()
	p.RecentLikedBy = recentLikers(p.RecentLikedBy, actor, liked)
	return p
}

func recentLikers(list []domain.ActorRef, actor domain.ActorRef, liked bool) []domain.ActorRef {
	rest := withoutActor(list, actor.Id)
	if !liked {
		return rest
	}
	out := append([]domain.ActorRef{actor}, rest...)
	if len(out) > domain.MaxRecentLikers {
		out = out[:domain.MaxRecentLikers]
	}
	return out
}

// ToggleReelLike adds or removes actorId from the reel's liker set
func ToggleReelLike(r domain.Reel, actorId string) domain.Reel {
	r = r.Clone()
	if r.LikedByActor(actorId) {
		likers := r.LikedBy[:0]
		for _, id := range r.LikedBy {
			if id != actorId {
				likers = append(likers, id)
			}
		}
		r.LikedBy = likers
		return r
	}
	r.LikedBy = append([]string{actorId}, r.LikedBy...)
	return r
}

// ToggleCommentLike flips the viewer's like on a comment
func ToggleCommentLike(c domain.Comment) domain.Comment {
	if c.IsLiked {
		c.TotalLikes = decrement(c.TotalLikes)
		c.IsLiked = false
		return c
	}
	c.TotalLikes++
	c.IsLiked = true
	return c
}

// ToggleSave flips membership of id and returns the new state
func ToggleSave(set domain.SavedIdSet, id string) bool {
	if set.Has(id) {
		set.Remove(id)
		return false
	}
	set.Add(id)
	return true
}

// Clamp floors a server-supplied counter at zero
func Clamp(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

func decrement(n int) int {
	return Clamp(n - 1)
}

func withoutActor(actors []domain.ActorRef, actorId string) []domain.ActorRef {
	out := make([]domain.ActorRef, 0, len(actors))
	for _, a := range actors {
		if a.Id != actorId {
			out = append(out, a)
		}
	}
	return out
}
