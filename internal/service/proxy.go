package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"golang.org/x/sync/singleflight"

	"donutsmp-market-api/internal/cache"
	"donutsmp-market-api/internal/upstream"
)

// defaultPlayerStats is served when the upstream has no stats for a player,
// so frontends can always render the money field.
var defaultPlayerStats = json.RawMessage(`{"result":{"money":"Unknown"}}`)

// ProxyService forwards auction and stats requests to the upstream API.
// Stats responses are cached for a short TTL and concurrent fetches of the
// same player collapse into a single upstream call.
type ProxyService struct {
	client   *upstream.Client
	cache    cache.Cache
	cacheTTL time.Duration
	group    singleflight.Group
}

// NewProxyService creates a proxy service. A nil cache disables stats
// caching; requests still go through the singleflight group.
func NewProxyService(client *upstream.Client, statsCache cache.Cache, cacheTTL time.Duration) *ProxyService {
	return &ProxyService{
		client:   client,
		cache:    statsCache,
		cacheTTL: cacheTTL,
	}
}

// Transactions returns one page of recent sales, unmodified.
func (s *ProxyService) Transactions(ctx context.Context, auth string, page int) (json.RawMessage, error) {
	return s.client.Transactions(ctx, auth, page)
}

// Listings returns one page of active listings, unmodified.
func (s *ProxyService) Listings(ctx context.Context, auth string, page int) (json.RawMessage, error) {
	return s.client.Listings(ctx, auth, page)
}

// PlayerStats returns a player's stats. An upstream 404 is not an error:
// unknown players get a placeholder body with money "Unknown". Both real
// and placeholder responses are cached.
func (s *ProxyService) PlayerStats(ctx context.Context, auth, username string) (json.RawMessage, error) {
	key := "stats:" + username

	if s.cache != nil {
		if value, err := s.cache.Get(ctx, key); err == nil {
			return json.RawMessage(value), nil
		}
	}

	result, err, _ := s.group.Do(key, func() (interface{}, error) {
		body, err := s.client.PlayerStats(ctx, auth, username)
		if err != nil {
			if !upstream.IsNotFound(err) {
				return nil, err
			}
			body = defaultPlayerStats
		}

		if s.cache != nil {
			if err := s.cache.Set(ctx, key, body, s.cacheTTL); err != nil {
				log.Printf("[ProxyService] Failed to cache stats for %s: %v", username, err)
			}
		}
		return body, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(json.RawMessage), nil
}
