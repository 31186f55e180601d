// Package push keeps a websocket open to the notification channel and hands
// every frame to the event bus.
package push

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/tidwall/gjson"
)

const (
	// reconnectMin is the first delay after a dropped connection
	reconnectMin = time.Second
	// reconnectMax caps the exponential reconnect delay
	reconnectMax = time.Minute
	// jitterDivisor bounds jitter to [0, backoff/jitterDivisor)
	jitterDivisor = 2

	readLimit = 1 << 20
)

// ErrUnauthorized stops the client for good: retrying with the same token
// cannot succeed.
var ErrUnauthorized = errors.New("push channel rejected credentials")

// Handler receives frames and connection state changes. notify.Bus
// satisfies it.
type Handler interface {
	HandlePush(raw []byte) error
	SetConnected(connected bool, err error)
	ClearOnAuthLoss(err error)
}

type Client struct {
	url     string
	token   string
	handler Handler

	minBackoff time.Duration
	maxBackoff time.Duration
}

func New(url, token string, h Handler) *Client {
	return &Client{
		url:        url,
		token:      token,
		handler:    h,
		minBackoff: reconnectMin,
		maxBackoff: reconnectMax,
	}
}

// Run connects and reconnects until ctx is done or the server rejects the
// credentials.
func (c *Client) Run(ctx context.Context) error {
	backoff := c.minBackoff

	for {
		connected, err := c.session(ctx)
		if ctx.Err() != nil {
			c.handler.SetConnected(false, nil)
			return nil
		}
		c.handler.SetConnected(false, err)

		if errors.Is(err, ErrUnauthorized) {
			log.Printf("Push: %v", err)
			c.handler.ClearOnAuthLoss(err)
			return err
		}
		if connected {
			backoff = c.minBackoff
		}

		wait := backoff
		if half := int64(backoff) / jitterDivisor; half > 0 {
			wait += time.Duration(rand.Int64N(half))
		}
		log.Printf("Push: connection lost (%v), reconnecting in %s", err, wait)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			c.handler.SetConnected(false, nil)
			return nil
		case <-timer.C:
		}
		backoff = min(backoff*2, c.maxBackoff)
	}
}

// session runs one connection. connected reports whether the dial succeeded.
func (c *Client) session(ctx context.Context) (connected bool, err error) {
	header := http.Header{}
	if c.token != "" {
		header.Set("Authorization", "Bearer "+c.token)
	}

	conn, resp, err := websocket.Dial(ctx, c.url, &websocket.DialOptions{HTTPHeader: header}) //nolint:bodyclose // websocket.Dial closes the response body internally
	if err != nil {
		if resp != nil && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden) {
			return false, fmt.Errorf("%w: status %d", ErrUnauthorized, resp.StatusCode)
		}
		return false, fmt.Errorf("dialing push channel: %w", err)
	}
	defer conn.CloseNow()
	conn.SetReadLimit(readLimit)

	log.Printf("Push: connected to %s", c.url)
	c.handler.SetConnected(true, nil)

	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			if ctx.Err() != nil {
				conn.Close(websocket.StatusNormalClosure, "bye")
			}
			return true, err
		}
		if typ != websocket.MessageText {
			continue
		}
		c.dispatch(data)
	}
}

// dispatch accepts a single notification or an array of them
func (c *Client) dispatch(data []byte) {
	frame := gjson.ParseBytes(data)
	if !frame.IsArray() {
		c.handler.HandlePush(data)
		return
	}
	frame.ForEach(func(_, item gjson.Result) bool {
		c.handler.HandlePush([]byte(item.Raw))
		return true
	})
}
