package mutation

import (
	"context"

	"github.com/deemkeen/feedsync/domain"
)

// LikeResult carries the canonical like state when the server sends one
type LikeResult struct {
	IsLiked    *bool `json:"isLiked,omitempty"`
	TotalLikes *int  `json:"totalLikes,omitempty"`
}

// Transport is the request side of every mutation. Implementations must
// honour ctx cancellation.
type Transport interface {
	SetPostLike(ctx context.Context, postId string, like bool) (LikeResult, error)
	SetReelLike(ctx context.Context, reelId string, like bool) (LikeResult, error)
	SetCommentLike(ctx context.Context, commentId string, like bool) (LikeResult, error)
	SetSaved(ctx context.Context, id string, saved bool) error
	CreateComment(ctx context.Context, parentId, content string) (domain.Comment, error)
	EditComment(ctx context.Context, commentId, content string) (domain.Comment, error)
	DeleteComment(ctx context.Context, commentId string) error
	DeletePost(ctx context.Context, postId string) error
}
