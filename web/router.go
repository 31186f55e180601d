package web

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/deemkeen/feedsync/domain"
	"github.com/deemkeen/feedsync/store"
	"github.com/deemkeen/feedsync/util"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	"golang.org/x/time/rate"
)

// Source is the read side of the entity store
type Source interface {
	Snapshot() store.Snapshot
	PostViews() []store.PostView
	Comments(parentId string) []domain.Comment
	CommentCount(parentId string) (int, bool)
}

// CommentsResponse is the body of /snapshot/comments/:parent
type CommentsResponse struct {
	ParentId      string           `json:"parentId"`
	TotalComments int              `json:"totalComments"`
	Comments      []domain.Comment `json:"comments"`
}

// NewRouter builds the read-only inspection server
func NewRouter(conf *util.AppConfig, source Source, limiter *RateLimiter) *gin.Engine {
	// Set Gin to use the same log writer as the rest of the application
	gin.DefaultWriter = util.GetLogWriter()
	gin.DefaultErrorWriter = util.GetLogWriter()

	g := gin.Default()
	g.Use(gzip.Gzip(gzip.DefaultCompression))
	g.Use(RateLimitMiddleware(limiter))

	g.GET("/healthz", func(c *gin.Context) {
		c.Header("Content-Type", "application/json; charset=utf-8")
		c.Render(200, render.String{Format: GetHealthJSON(source.Snapshot())})
	})

	g.GET("/snapshot", func(c *gin.Context) {
		c.JSON(200, source.Snapshot())
	})

	g.GET("/snapshot/comments/:parent", func(c *gin.Context) {
		parentId := c.Param("parent")
		if valid, errMsg := util.IsValidEntityId(parentId); !valid {
			c.JSON(400, gin.H{"error": errMsg})
			return
		}

		list := source.Comments(parentId)
		count, known := source.CommentCount(parentId)
		if !known && len(list) == 0 {
			c.JSON(404, gin.H{"error": "Nothing cached for this parent"})
			return
		}
		if !known {
			count = len(list)
		}
		c.JSON(200, CommentsResponse{ParentId: parentId, TotalComments: count, Comments: list})
	})

	// RSS Feed
	g.GET("/feed.rss", func(c *gin.Context) {
		c.Header("Content-Type", "application/xml; charset=utf-8")
		rss, err := GetRSS(conf, source.PostViews())
		if err != nil {
			log.Printf("Could not render feed: %v", err)
			c.Render(500, render.String{Format: ""})
		} else {
			c.Render(200, render.String{Format: rss})
		}
	})

	return g
}

// Serve runs the inspection server until ctx is cancelled
func Serve(ctx context.Context, conf *util.AppConfig, source Source) error {
	addr := fmt.Sprintf("%s:%d", conf.Conf.HttpHost, conf.Conf.HttpPort)
	log.Printf("Starting inspection server on %s", addr)

	// 10 requests per second per IP, burst of 20
	limiter := NewRateLimiter(rate.Limit(10), 20)
	go func() {
		ticker := time.NewTicker(idleLimiterTTL)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				limiter.Cleanup()
			}
		}
	}()

	srv := &http.Server{
		Addr:              addr,
		Handler:           NewRouter(conf, source, limiter),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to stop inspection server: %w", err)
		}
		return nil
	}
}
