// Package jetstream is the stream adapter for the Bluesky Jetstream
// feed: it maintains the websocket subscription, reconnects with
// backoff, and decodes wire frames into domain events.
package jetstream

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/coder/websocket"

	"grapevine.app/firehose/internal/domain"
)

// DefaultEndpoint is the public US-East Jetstream instance.
const DefaultEndpoint = "wss://jetstream2.us-east.bsky.network/subscribe"

// frameReadLimit caps a single websocket frame. Post records with
// embeds stay well under this.
const frameReadLimit = 1 << 20

// errNoReceiver signals that the pipeline side is gone and the client
// should stop pulling. It never escapes Run.
var errNoReceiver = errors.New("no receiver remains")

type Config struct {
	Endpoint    string   // websocket URL, DefaultEndpoint when empty
	Collections []string // wanted collections, PostCollection when empty
}

// Client subscribes to the feed and emits decoded events. A dropped
// connection is retried with exponential backoff; a single undecodable
// frame is logged and skipped. The zstd-compressed mode of the feed is
// not supported, the client always requests the plain JSON stream.
type Client struct {
	cfg    Config
	logger *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if len(cfg.Collections) == 0 {
		cfg.Collections = []string{PostCollection}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{cfg: cfg, logger: logger}
}

// Run streams events until ctx is cancelled or emit returns false.
// Transport failures are retried indefinitely; to the caller they look
// like a stream that temporarily has no new data. Run only returns an
// error for a malformed endpoint configuration.
func (c *Client) Run(ctx context.Context, emit func(domain.Event) bool) error {
	target, err := c.subscribeURL()
	if err != nil {
		return fmt.Errorf("jetstream endpoint: %w", err)
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = time.Second
	policy.MaxInterval = 30 * time.Second

	for {
		delivered, err := c.stream(ctx, target, emit)
		switch {
		case errors.Is(err, errNoReceiver):
			return nil
		case ctx.Err() != nil:
			return nil
		}

		if delivered > 0 {
			policy.Reset()
		}

		wait := policy.NextBackOff()
		c.logger.WarnContext(ctx, "jetstream connection lost, reconnecting",
			"error", err,
			"backoff", wait)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(wait):
		}
	}
}

// stream runs one websocket session and returns how many events it
// delivered before failing.
func (c *Client) stream(ctx context.Context, target string, emit func(domain.Event) bool) (int, error) {
	conn, _, err := websocket.Dial(ctx, target, nil)
	if err != nil {
		return 0, fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "")
	conn.SetReadLimit(frameReadLimit)

	c.logger.InfoContext(ctx, "jetstream connected", "endpoint", c.cfg.Endpoint)

	delivered := 0
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return delivered, fmt.Errorf("read: %w", err)
		}

		ev, ok, err := decodeEvent(data, time.Now())
		if err != nil {
			// One bad record must not take the stream down.
			c.logger.WarnContext(ctx, "dropping undecodable frame", "error", err)
			continue
		}
		if !ok {
			continue
		}

		if !emit(ev) {
			return delivered, errNoReceiver
		}
		delivered++
	}
}

func (c *Client) subscribeURL() (string, error) {
	u, err := url.Parse(c.cfg.Endpoint)
	if err != nil {
		return "", err
	}

	q := u.Query()
	for _, coll := range c.cfg.Collections {
		q.Add("wantedCollections", coll)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
