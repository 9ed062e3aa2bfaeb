package profile

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"homemeter-backend/lib/notion"
	"homemeter-backend/lib/telemetry"

	"github.com/stretchr/testify/require"
)

type fakeCache struct {
	values   map[string]string
	getCalls int
	setCalls int
	fail     error
}

func newFakeCache() *fakeCache {
	return &fakeCache{values: map[string]string{}}
}

func (c *fakeCache) Get(ctx context.Context, key string) (string, error) {
	c.getCalls++
	if c.fail != nil {
		return "", c.fail
	}
	return c.values[key], nil
}

func (c *fakeCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	c.setCalls++
	if c.fail != nil {
		return c.fail
	}
	c.values[key] = value
	return nil
}

type fixture struct {
	service    Service
	cache      *fakeCache
	queryCalls int
	results    string
}

func setup(t *testing.T) *fixture {
	cleanup := telemetry.SetupForTesting("test:services/profile")
	t.Cleanup(cleanup)

	f := &fixture{
		cache: newFakeCache(),
		results: `[{
			"id":"p1",
			"properties":{
				"Name":{"title":[{"plain_text":"Jordi"},{"plain_text":" Vila"}]},
				"Bio":{"rich_text":[{"plain_text":"hello"}]}
			}
		}]`,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/databases/db-profile/query", func(w http.ResponseWriter, r *http.Request) {
		f.queryCalls++
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results":` + f.results + `}`))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	notionClient := notion.NewClient(server.URL, "secret-token")
	f.service = NewService(notionClient, "db-profile", f.cache)
	return f
}

func TestRawPassthrough(t *testing.T) {
	f := setup(t)
	handler := NewHandler(f.service)

	r := httptest.NewRequest("GET", "/api/profile", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, f.results, w.Body.String())
	require.Equal(t, 1, f.queryCalls)
	// the proxy never touches the display-name cache
	require.Equal(t, 0, f.cache.getCalls)
}

func TestRawUpstreamFailure(t *testing.T) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	service := NewService(notion.NewClient(server.URL, "secret-token"), "db-profile", nil)
	handler := NewHandler(service)

	r := httptest.NewRequest("GET", "/api/profile", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Contains(t, w.Body.String(), "request failed")
}

func TestDisplayName(t *testing.T) {
	f := setup(t)

	name, err := f.service.DisplayName(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Jordi Vila", name)
	require.Equal(t, 1, f.queryCalls)
	require.Equal(t, "Jordi Vila", f.cache.values[displayNameKey])

	// second call is served from the cache
	name, err = f.service.DisplayName(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Jordi Vila", name)
	require.Equal(t, 1, f.queryCalls)
}

func TestDisplayNameCacheFailureIsNonFatal(t *testing.T) {
	f := setup(t)
	f.cache.fail = fmt.Errorf("redis is down")

	name, err := f.service.DisplayName(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Jordi Vila", name)
	require.Equal(t, 1, f.queryCalls)
}

func TestDisplayNameWithoutCache(t *testing.T) {
	f := setup(t)
	service := NewService(f.service.notion, "db-profile", nil)

	name, err := service.DisplayName(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Jordi Vila", name)
}

func TestDisplayNameEmptyDatabase(t *testing.T) {
	f := setup(t)
	f.results = `[]`

	_, err := f.service.DisplayName(context.Background())
	require.ErrorIs(t, err, NoProfile)
}

func TestServeNameUsesCache(t *testing.T) {
	f := setup(t)
	handler := NewHandler(f.service)

	fetch := func() *httptest.ResponseRecorder {
		r := httptest.NewRequest("GET", "/api/profile/name", nil)
		w := httptest.NewRecorder()
		handler.ServeName(w, r)
		return w
	}

	w := fetch()
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"name":"Jordi Vila"}`, w.Body.String())
	require.Equal(t, 1, f.queryCalls)

	// second request is served from the cache, not the upstream
	w = fetch()
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"name":"Jordi Vila"}`, w.Body.String())
	require.Equal(t, 1, f.queryCalls)
}

func TestServeNameEmptyDatabase(t *testing.T) {
	f := setup(t)
	f.results = `[]`
	handler := NewHandler(f.service)

	r := httptest.NewRequest("GET", "/api/profile/name", nil)
	w := httptest.NewRecorder()
	handler.ServeName(w, r)

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestDisplayNameMissingTitle(t *testing.T) {
	f := setup(t)
	f.results = `[{"id":"p1","properties":{"Bio":{"rich_text":[]}}}]`

	_, err := f.service.DisplayName(context.Background())
	require.ErrorIs(t, err, NoProfile)
}
