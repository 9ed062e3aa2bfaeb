package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"homemeter-backend/lib/notion"

	"github.com/go-redis/redis/v8"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("services/profile")

var NoProfile = fmt.Errorf("profile database returned no pages")

const (
	displayNameKey = "profile:display-name"
	displayNameTtl = 5 * time.Minute

	// title property on the profile page
	nameProperty = "Name"
)

// Cache holds short-lived derived values. A nil Cache disables caching.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) RedisCache {
	return RedisCache{client: client}
}

// Get returns "" with no error on a cache miss.
func (c RedisCache) Get(ctx context.Context, key string) (string, error) {
	value, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (c RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

type Service struct {
	notion     *notion.Client
	databaseId string
	cache      Cache
}

// NewService wires the profile proxy. cache may be nil when no redis
// address is configured.
func NewService(notionClient *notion.Client, databaseId string, cache Cache) Service {
	return Service{
		notion:     notionClient,
		databaseId: databaseId,
		cache:      cache,
	}
}

// Raw proxies the profile database query verbatim. The homepage owns
// the shape of the page objects, this side just forwards them.
func (s Service) Raw(ctx context.Context) (json.RawMessage, error) {
	ctx, span := tracer.Start(ctx, "Raw")
	defer span.End()

	return s.notion.QueryDatabaseRaw(ctx, s.databaseId, notion.QueryRequest{})
}

// DisplayName returns the title text of the first profile page. Cache
// failures are logged and ignored, the source of truth stays upstream.
func (s Service) DisplayName(ctx context.Context) (string, error) {
	ctx, span := tracer.Start(ctx, "DisplayName")
	defer span.End()

	if s.cache != nil {
		name, err := s.cache.Get(ctx, displayNameKey)
		if err != nil {
			slog.Warn("profile display-name cache read failed", "err", err)
		} else if name != "" {
			return name, nil
		}
	}

	pages, err := s.notion.QueryDatabase(ctx, s.databaseId, notion.QueryRequest{})
	if err != nil {
		return "", err
	}
	if len(pages) == 0 {
		return "", NoProfile
	}

	name := titleText(pages[0])
	if name == "" {
		return "", fmt.Errorf("%w: first page has no %q title", NoProfile, nameProperty)
	}

	if s.cache != nil {
		err = s.cache.Set(ctx, displayNameKey, name, displayNameTtl)
		if err != nil {
			slog.Warn("profile display-name cache write failed", "err", err)
		}
	}
	return name, nil
}

func titleText(page notion.Page) string {
	out := ""
	for _, segment := range page.Properties[nameProperty].Title {
		out += segment.PlainText
	}
	return out
}
