package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hannakang/schedhub/internal/cache"
	"github.com/hannakang/schedhub/internal/observability"
	"github.com/redis/go-redis/v9"
)

// ErrNoForecast means the upstream answered but had no entry for today.
var ErrNoForecast = errors.New("no forecast for today")

type forecast struct {
	Date    string `json:"date"` // MM-DD
	Weather string `json:"weather"`
}

// Client fetches the day's weather from the forecast API. Responses are
// cached (Redis when configured, the in-process TTL cache otherwise) so
// schedule creation does not hammer the upstream.
type Client struct {
	baseURL string
	http    *http.Client
	rdb     *redis.Client
	local   *cache.Cache
	ttl     time.Duration
	prom    *observability.Prom
	now     func() time.Time
}

type Option func(*Client)

func WithRedis(rdb *redis.Client) Option {
	return func(c *Client) {
		c.rdb = rdb
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

func WithProm(prom *observability.Prom) Option {
	return func(c *Client) {
		c.prom = prom
	}
}

func New(baseURL string, ttl time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		http: &http.Client{
			Timeout: 5 * time.Second,
		},
		local: cache.New(ttl),
		ttl:   ttl,
		now:   time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *Client) cacheKey() string {
	return "weather:" + c.Date()
}

// Date is the MM-DD key the client matches forecasts against, on its own
// clock so responses and forecast lookups agree.
func (c *Client) Date() string {
	return c.now().UTC().Format("01-02")
}

// Today returns the weather string for the current date.
func (c *Client) Today(ctx context.Context) (string, error) {
	key := c.cacheKey()

	if w, ok := c.cachedGet(ctx, key); ok {
		c.count("hit")
		return w, nil
	}

	w, err := c.fetchToday(ctx)

	if err != nil {
		c.count("error")
		return "", err
	}

	c.count("miss")
	c.cachedSet(ctx, key, w)

	return w, nil
}

func (c *Client) cachedGet(ctx context.Context, key string) (string, bool) {
	if c.rdb != nil {
		w, err := c.rdb.Get(ctx, key).Result()

		if err == nil && w != "" {
			return w, true
		}

		// redis being down just means a cache miss
		return "", false
	}

	v, ok := c.local.Get(key)

	if !ok {
		return "", false
	}

	w, ok := v.(string)

	return w, ok
}

func (c *Client) cachedSet(ctx context.Context, key, w string) {
	if c.rdb != nil {
		_ = c.rdb.Set(ctx, key, w, c.ttl).Err()
		return
	}

	c.local.Set(key, w)
}

func (c *Client) fetchToday(ctx context.Context) (string, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/weather.json", nil)

	if err != nil {
		return "", err
	}

	resp, err := c.http.Do(req)

	if c.prom != nil {
		c.prom.WeatherLookupDuration.Observe(time.Since(start).Seconds())
	}

	if err != nil {
		return "", err
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// drain so the connection can be reused
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

		return "", fmt.Errorf("weather api returned status %d", resp.StatusCode)
	}

	var forecasts []forecast

	err = json.NewDecoder(resp.Body).Decode(&forecasts)

	if err != nil {
		return "", err
	}

	today := c.Date()

	for _, f := range forecasts {
		if f.Date == today {
			return f.Weather, nil
		}
	}

	return "", ErrNoForecast
}

func (c *Client) count(outcome string) {
	if c.prom != nil {
		c.prom.WeatherLookups.WithLabelValues(outcome).Inc()
	}
}
