package domain

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TempCommentPrefix marks ids minted locally for comments the server has not confirmed
const TempCommentPrefix = "temp_"

// CommentID is either a server integer rendered in decimal or a temporary local id
type CommentID string

// NewTempCommentID mints a fresh temporary id
func NewTempCommentID() CommentID {
	return CommentID(TempCommentPrefix + uuid.New().String())
}

// ServerCommentID converts a server-assigned integer id
func ServerCommentID(n int64) CommentID {
	return CommentID(strconv.FormatInt(n, 10))
}

func (id CommentID) IsTemporary() bool {
	return strings.HasPrefix(string(id), TempCommentPrefix)
}

func (id CommentID) String() string {
	return string(id)
}

// Comment belongs to a post or reel identified by ParentId
type Comment struct {
	Id           CommentID `json:"id"`
	ParentId     string    `json:"parentId"`
	Author       ActorRef  `json:"author"`
	Content      string    `json:"content"`
	TotalLikes   int       `json:"totalLikes"`
	IsLiked      bool      `json:"isLiked"`
	CreatedAt    time.Time `json:"createdAt"`
	IsOptimistic bool      `json:"isOptimistic,omitempty"`
	IsPending    bool      `json:"isPending,omitempty"`
}

func (c Comment) Key() string {
	return string(c.Id)
}
