package transport

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/deemkeen/feedsync/domain"
	"github.com/deemkeen/feedsync/pagination"
)

// flexID accepts a JSON string, a number, or an object carrying an id
type flexID string

func (id *flexID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		*id = ""
		return nil
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = flexID(s)
		return nil
	case b[0] == '{':
		var obj struct {
			Id flexID `json:"id"`
		}
		if err := json.Unmarshal(b, &obj); err != nil {
			return err
		}
		*id = obj.Id
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id is neither string nor number: %s", b)
	}
	*id = flexID(n.String())
	return nil
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// flexTime accepts RFC3339 and zone-less timestamps
type flexTime time.Time

func (t *flexTime) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil || s == "" {
		*t = flexTime{}
		return nil
	}
	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			*t = flexTime(parsed)
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", s)
}

type wireActor struct {
	Id             flexID `json:"id"`
	Username       string `json:"username"`
	DisplayName    string `json:"displayName"`
	FullName       string `json:"fullName"`
	AvatarURL      string `json:"avatarUrl"`
	ProfilePicture string `json:"profilePicture"`
}

func (a wireActor) model() domain.ActorRef {
	ref := domain.ActorRef{
		Id:          string(a.Id),
		Username:    a.Username,
		DisplayName: a.DisplayName,
		AvatarURL:   a.AvatarURL,
	}
	if ref.DisplayName == "" {
		ref.DisplayName = a.FullName
	}
	if ref.AvatarURL == "" {
		ref.AvatarURL = a.ProfilePicture
	}
	return ref
}

type wirePost struct {
	Id            flexID      `json:"id"`
	Author        wireActor   `json:"author"`
	Caption       string      `json:"caption"`
	Content       string      `json:"content"`
	Media         []string    `json:"media"`
	TotalLikes    int         `json:"totalLikes"`
	RecentLikedBy []wireActor `json:"recentLikedBy"`
	TotalComments int         `json:"totalComments"`
	IsLiked       bool        `json:"isLiked"`
	CreatedAt     flexTime    `json:"createdAt"`
}

func (p wirePost) model() domain.Post {
	post := domain.Post{
		Id:            string(p.Id),
		Author:        p.Author.model(),
		Caption:       p.Caption,
		Media:         p.Media,
		TotalLikes:    max(p.TotalLikes, 0),
		TotalComments: max(p.TotalComments, 0),
		IsLiked:       p.IsLiked,
		CreatedAt:     time.Time(p.CreatedAt),
	}
	if post.Caption == "" {
		post.Caption = p.Content
	}
	for i, a := range p.RecentLikedBy {
		if i == domain.MaxRecentLikers {
			break
		}
		post.RecentLikedBy = append(post.RecentLikedBy, a.model())
	}
	return post
}

type wireReel struct {
	Id            flexID    `json:"id"`
	Author        wireActor `json:"author"`
	Caption       string    `json:"caption"`
	VideoURL      string    `json:"videoUrl"`
	LikedBy       []flexID  `json:"likedBy"`
	TotalComments int       `json:"totalComments"`
	CreatedAt     flexTime  `json:"createdAt"`
}

func (r wireReel) model() domain.Reel {
	reel := domain.Reel{
		Id:            string(r.Id),
		Author:        r.Author.model(),
		Caption:       r.Caption,
		VideoURL:      r.VideoURL,
		TotalComments: max(r.TotalComments, 0),
		CreatedAt:     time.Time(r.CreatedAt),
	}
	seen := make(map[flexID]struct{}, len(r.LikedBy))
	for _, id := range r.LikedBy {
		if _, dup := seen[id]; dup || id == "" {
			continue
		}
		seen[id] = struct{}{}
		reel.LikedBy = append(reel.LikedBy, string(id))
	}
	return reel
}

type wireComment struct {
	Id         flexID    `json:"id"`
	Author     wireActor `json:"author"`
	Content    string    `json:"content"`
	TotalLikes int       `json:"totalLikes"`
	IsLiked    bool      `json:"isLiked"`
	CreatedAt  flexTime  `json:"createdAt"`
}

func (c wireComment) model(parentId string) domain.Comment {
	return domain.Comment{
		Id:         domain.CommentID(c.Id),
		ParentId:   parentId,
		Author:     c.Author.model(),
		Content:    c.Content,
		TotalLikes: max(c.TotalLikes, 0),
		IsLiked:    c.IsLiked,
		CreatedAt:  time.Time(c.CreatedAt),
	}
}

type wireSaved struct {
	Id     flexID `json:"id"`
	PostId flexID `json:"postId"`
}

func (s wireSaved) target() string {
	if s.PostId != "" {
		return string(s.PostId)
	}
	return string(s.Id)
}

// wirePage is the paginated list envelope
type wirePage[T any] struct {
	Content    []T   `json:"content"`
	HasNext    *bool `json:"hasNext"`
	TotalPages int   `json:"totalPages"`
	Page       int   `json:"page"`
}

func convertPage[W any, T any](w wirePage[W], requested int, convert func(W) T) pagination.Page[T] {
	items := make([]T, 0, len(w.Content))
	for _, it := range w.Content {
		items = append(items, convert(it))
	}
	return pagination.Page[T]{
		Items:      items,
		Number:     requested,
		HasNext:    w.HasNext,
		TotalPages: w.TotalPages,
	}
}
