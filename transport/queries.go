package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/deemkeen/feedsync/domain"
	"github.com/deemkeen/feedsync/notify"
	"github.com/deemkeen/feedsync/pagination"
	"github.com/tidwall/gjson"
)

func (c *Client) Feed(ctx context.Context, page int) (pagination.Page[domain.Post], error) {
	var w wirePage[wirePost]
	if err := c.do(ctx, http.MethodGet, "/feed", pageQuery(page, c.pageSize), nil, &w); err != nil {
		return pagination.Page[domain.Post]{}, err
	}
	return convertPage(w, page, wirePost.model), nil
}

func (c *Client) Reels(ctx context.Context, page int) (pagination.Page[domain.Reel], error) {
	var w wirePage[wireReel]
	if err := c.do(ctx, http.MethodGet, "/reels", pageQuery(page, c.pageSize), nil, &w); err != nil {
		return pagination.Page[domain.Reel]{}, err
	}
	return convertPage(w, page, wireReel.model), nil
}

func (c *Client) Comments(ctx context.Context, parentId string, page int) (pagination.Page[domain.Comment], error) {
	var w wirePage[wireComment]
	if err := c.do(ctx, http.MethodGet, "/posts/"+seg(parentId)+"/comments", pageQuery(page, c.pageSize), nil, &w); err != nil {
		return pagination.Page[domain.Comment]{}, err
	}
	return convertPage(w, page, func(wc wireComment) domain.Comment {
		return wc.model(parentId)
	}), nil
}

// Post fetches a single post for an out-of-band refresh
func (c *Client) Post(ctx context.Context, id string) (domain.Post, error) {
	var w wirePost
	if err := c.do(ctx, http.MethodGet, "/posts/"+seg(id), nil, nil, &w); err != nil {
		return domain.Post{}, err
	}
	return w.model(), nil
}

// SavedIds reduces the saved list to post ids
func (c *Client) SavedIds(ctx context.Context) ([]string, error) {
	var items []wireSaved
	if err := c.do(ctx, http.MethodGet, "/saved", nil, nil, &items); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(items))
	for _, it := range items {
		if id := it.target(); id != "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (c *Client) Notifications(ctx context.Context, page int) (pagination.Page[domain.Notification], error) {
	var w wirePage[json.RawMessage]
	if err := c.do(ctx, http.MethodGet, "/notifications", pageQuery(page, c.pageSize), nil, &w); err != nil {
		return pagination.Page[domain.Notification]{}, err
	}

	items := make([]domain.Notification, 0, len(w.Content))
	for _, raw := range w.Content {
		n, err := notify.ParsePush(raw)
		if err != nil {
			log.Printf("Transport: skipping notification: %v", err)
			continue
		}
		items = append(items, n)
	}
	return pagination.Page[domain.Notification]{
		Items:      items,
		Number:     page,
		HasNext:    w.HasNext,
		TotalPages: w.TotalPages,
	}, nil
}

// UnreadCount accepts a bare number or {"count": n}
func (c *Client) UnreadCount(ctx context.Context) (int, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/notifications/unread-count", nil, nil, &raw); err != nil {
		return 0, err
	}
	res := gjson.ParseBytes(raw)
	if res.Type != gjson.Number {
		res = res.Get("count")
		if !res.Exists() {
			res = gjson.GetBytes(raw, "unreadCount")
		}
	}
	if res.Type != gjson.Number {
		return 0, fmt.Errorf("unexpected unread count payload: %s", raw)
	}
	return max(int(res.Int()), 0), nil
}

func (c *Client) MarkNotificationRead(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPut, "/notifications/"+seg(id)+"/read", nil, nil, nil)
}

func (c *Client) MarkAllNotificationsRead(ctx context.Context) error {
	return c.do(ctx, http.MethodPut, "/notifications/read-all", nil, nil, nil)
}

func (c *Client) DeleteNotification(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/notifications/"+seg(id), nil, nil, nil)
}

func (c *Client) DeleteAllNotifications(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/notifications", nil, nil, nil)
}
