package web

import (
	"fmt"
	"time"

	"github.com/deemkeen/feedsync/store"
	"github.com/deemkeen/feedsync/util"
	"github.com/gorilla/feeds"
)

// buildURL points at the upstream API, where the posts actually live
func buildURL(conf *util.AppConfig, path string) string {
	return conf.Conf.ApiBaseURL + path
}

// GetRSS renders the cached feed as RSS. Counters are the reconciled ones,
// optimistic changes included.
func GetRSS(conf *util.AppConfig, posts []store.PostView) (string, error) {
	feed := &feeds.Feed{
		Title:       fmt.Sprintf("%s feed of %s", util.Name, conf.Conf.ActorId),
		Link:        &feeds.Link{Href: buildURL(conf, "/feed")},
		Description: "cached feed snapshot",
		Author:      &feeds.Author{Name: conf.Conf.ActorId},
		Created:     time.Now(),
	}

	var feedItems []*feeds.Item
	for _, post := range posts {
		feedItems = append(feedItems,
			&feeds.Item{
				Id:          post.Id,
				Title:       util.TruncateWidth(post.Caption, 80),
				Link:        &feeds.Link{Href: buildURL(conf, fmt.Sprintf("/posts/%s", post.Id))},
				Description: fmt.Sprintf("%d likes, %d comments", post.TotalLikes, post.TotalComments),
				Content:     post.Caption,
				Author:      &feeds.Author{Name: post.Author.Name()},
				Created:     post.CreatedAt,
			})
	}

	feed.Items = feedItems
	return feed.ToRss()
}
