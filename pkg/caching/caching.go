package caching

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/dtnitsch/url-importer/internal/common"
	"github.com/dtnitsch/url-importer/pkg/fetcher"
)

// Cache provides a simple file-based cache with a TTL.
type Cache struct {
	path string
	ttl  time.Duration
}

// NewCache creates a new Cache instance.
// The cache path will be created if it doesn't exist.
func NewCache(path string, ttl time.Duration) (*Cache, error) {
	if err := os.MkdirAll(path, 0750); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &Cache{
		path: path,
		ttl:  ttl,
	}, nil
}

func (c *Cache) key(url string) string {
	return common.ContentHash([]byte(url))
}

// Get returns the data and true if the item is found and not expired.
func (c *Cache) Get(url string) ([]byte, bool) {
	filePath := filepath.Join(c.path, c.key(url))

	info, err := os.Stat(filePath)
	if err != nil {
		return nil, false
	}
	if time.Since(info.ModTime()) > c.ttl {
		return nil, false
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, false
	}
	return data, true
}

// Set adds an item to the cache.
func (c *Cache) Set(url string, data []byte) error {
	filePath := filepath.Join(c.path, c.key(url))
	if err := os.WriteFile(filePath, data, 0600); err != nil {
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	return nil
}

// Getter serves repeated GETs from the cache. Only successful responses
// are stored, so failures are always retried.
type Getter struct {
	next   fetcher.Getter
	cache  *Cache
	logger *slog.Logger
}

func NewGetter(next fetcher.Getter, cache *Cache, logger *slog.Logger) *Getter {
	return &Getter{next: next, cache: cache, logger: logger}
}

func (g *Getter) Get(ctx context.Context, url string) (*fetcher.Response, error) {
	if data, ok := g.cache.Get(url); ok {
		g.logger.Debug("cache hit", "url", url)
		return &fetcher.Response{URL: url, StatusCode: http.StatusOK, Body: data}, nil
	}

	resp, err := g.next.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	if err := g.cache.Set(url, resp.Body); err != nil {
		g.logger.Warn("failed to cache response", "url", url, "error", err)
	}
	return resp, nil
}

// Post is never cached.
func (g *Getter) Post(ctx context.Context, url, contentType string, body []byte, headers map[string]string) (*fetcher.Response, error) {
	poster, ok := g.next.(interface {
		Post(ctx context.Context, url, contentType string, body []byte, headers map[string]string) (*fetcher.Response, error)
	})
	if !ok {
		return nil, errors.New("underlying getter cannot POST")
	}
	return poster.Post(ctx, url, contentType, body, headers)
}
