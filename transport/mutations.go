package transport

import (
	"context"
	"net/http"

	"github.com/deemkeen/feedsync/domain"
	"github.com/deemkeen/feedsync/mutation"
)

var _ mutation.Transport = (*Client)(nil)

func likeMethod(like bool) string {
	if like {
		return http.MethodPost
	}
	return http.MethodDelete
}

func (c *Client) setLike(ctx context.Context, path string, like bool) (mutation.LikeResult, error) {
	var res mutation.LikeResult
	err := c.do(ctx, likeMethod(like), path, nil, nil, &res)
	return res, err
}

func (c *Client) SetPostLike(ctx context.Context, postId string, like bool) (mutation.LikeResult, error) {
	return c.setLike(ctx, "/posts/"+seg(postId)+"/likes", like)
}

func (c *Client) SetReelLike(ctx context.Context, reelId string, like bool) (mutation.LikeResult, error) {
	return c.setLike(ctx, "/reels/"+seg(reelId)+"/likes", like)
}

func (c *Client) SetCommentLike(ctx context.Context, commentId string, like bool) (mutation.LikeResult, error) {
	return c.setLike(ctx, "/comments/"+seg(commentId)+"/likes", like)
}

func (c *Client) SetSaved(ctx context.Context, id string, saved bool) error {
	return c.do(ctx, likeMethod(saved), "/posts/"+seg(id)+"/save", nil, nil, nil)
}

type commentBody struct {
	Content string `json:"content"`
}

func (c *Client) CreateComment(ctx context.Context, parentId, content string) (domain.Comment, error) {
	var w wireComment
	if err := c.do(ctx, http.MethodPost, "/posts/"+seg(parentId)+"/comments", nil, commentBody{content}, &w); err != nil {
		return domain.Comment{}, err
	}
	return w.model(parentId), nil
}

func (c *Client) EditComment(ctx context.Context, commentId, content string) (domain.Comment, error) {
	var w wireComment
	if err := c.do(ctx, http.MethodPut, "/comments/"+seg(commentId), nil, commentBody{content}, &w); err != nil {
		return domain.Comment{}, err
	}
	return w.model(""), nil
}

func (c *Client) DeleteComment(ctx context.Context, commentId string) error {
	return c.do(ctx, http.MethodDelete, "/comments/"+seg(commentId), nil, nil, nil)
}

func (c *Client) DeletePost(ctx context.Context, postId string) error {
	return c.do(ctx, http.MethodDelete, "/posts/"+seg(postId), nil, nil, nil)
}
