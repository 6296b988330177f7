package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/temoto/robotstxt"

	"course-scraper/internal/observability"
)

type RobotsCache struct {
	cache     map[string]*robotsEntry
	ttl       time.Duration
	userAgent string
	mu        sync.RWMutex
	logger    *observability.Logger
}

type robotsEntry struct {
	group     *robotstxt.Group
	expiresAt time.Time
}

func NewRobotsCache(ttl time.Duration, userAgent string, logger *observability.Logger) *RobotsCache {
	return &RobotsCache{
		cache:     make(map[string]*robotsEntry),
		ttl:       ttl,
		userAgent: userAgent,
		logger:    logger,
	}
}

// IsAllowed проверяет путь по robots.txt хоста.
// Если robots.txt недоступен, адрес считается разрешённым.
func (rc *RobotsCache) IsAllowed(ctx context.Context, target *url.URL, client *http.Client) (bool, error) {
	key := target.Scheme + "://" + target.Host

	rc.mu.RLock()
	cached, exists := rc.cache[key]
	rc.mu.RUnlock()

	if exists && time.Now().Before(cached.expiresAt) {
		return allowedBy(cached.group, target), nil
	}

	group, err := rc.fetch(ctx, key, client)
	if err != nil {
		rc.logger.Warn("robots.txt unavailable, assuming allowed", "host", target.Host, "error", err)
		return true, nil
	}

	rc.mu.Lock()
	rc.cache[key] = &robotsEntry{
		group:     group,
		expiresAt: time.Now().Add(rc.ttl),
	}
	rc.mu.Unlock()

	return allowedBy(group, target), nil
}

func (rc *RobotsCache) fetch(ctx context.Context, origin string, client *http.Client) (*robotstxt.Group, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, origin+"/robots.txt", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", rc.userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			rc.logger.Warn("Failed to close robots.txt body", "error", err)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	// FromStatusAndBytes: 4xx — всё разрешено, 5xx — всё запрещено
	data, err := robotstxt.FromStatusAndBytes(resp.StatusCode, body)
	if err != nil {
		return nil, fmt.Errorf("parse robots.txt: %w", err)
	}

	return data.FindGroup(rc.userAgent), nil
}

func allowedBy(group *robotstxt.Group, target *url.URL) bool {
	if group == nil {
		return true
	}
	path := target.EscapedPath()
	if path == "" {
		path = "/"
	}
	if target.RawQuery != "" {
		path += "?" + target.RawQuery
	}
	return group.Test(path)
}
