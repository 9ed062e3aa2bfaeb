package consumption

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"homemeter-backend/lib/cronauth"
	"homemeter-backend/lib/notion"
	"homemeter-backend/lib/scrapers/mbusportal"
	"homemeter-backend/lib/telemetry"

	"github.com/stretchr/testify/require"
)

type fixture struct {
	handler Handler

	loginCalls   int
	measureCalls int
	createCalls  int

	loginCookies []string
	measureBody  string
	notionStatus int

	createPayloads []string
}

func setup(t *testing.T) *fixture {
	cleanup := telemetry.SetupForTesting("test:services/consumption")
	t.Cleanup(cleanup)

	f := &fixture{
		loginCookies: []string{
			"JSESSIONID=abc; Path=/; HttpOnly",
			"remember-me=def; Max-Age=1209600",
		},
		measureBody: `{"mBus121Forward":45.2,"mBus121Flow":0.12,"mBus121Power":3.4,` +
			`"mBus121Return":38.1,"mBus121Volume":120.5,"mBus121Energy":4321.0,` +
			`"mBus121OnTime":365.0,"mBus121Pulse3":88.0}`,
		notionStatus: http.StatusOK,
	}

	portalMux := http.NewServeMux()
	portalMux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		f.loginCalls++
		for _, c := range f.loginCookies {
			w.Header().Add("Set-Cookie", c)
		}
		w.WriteHeader(http.StatusFound)
	})
	portalMux.HandleFunc("/measure", func(w http.ResponseWriter, r *http.Request) {
		f.measureCalls++
		require.Equal(t, "JSESSIONID=abc; remember-me=def", r.Header.Get("Cookie"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(f.measureBody))
	})
	portal := httptest.NewServer(portalMux)
	t.Cleanup(portal.Close)

	notionMux := http.NewServeMux()
	notionMux.HandleFunc("/v1/pages", func(w http.ResponseWriter, r *http.Request) {
		f.createCalls++
		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		f.createPayloads = append(f.createPayloads, string(raw))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(f.notionStatus)
		w.Write([]byte(`{"object":"page"}`))
	})
	notionServer := httptest.NewServer(notionMux)
	t.Cleanup(notionServer.Close)

	portalClient := mbusportal.NewClient(mbusportal.ClientOptions{
		LoginUrl:   portal.URL + "/login",
		MeasureUrl: portal.URL + "/measure",
		Email:      "user@example.com",
		Password:   "hunter2",
	})
	notionClient := notion.NewClient(notionServer.URL, "secret-token")

	service := NewService(portalClient, notionClient, "db-consumption")
	f.handler = NewHandler(cronauth.Guard{Secret: "s3cret"}, service)
	return f
}

func trigger(f *fixture, body, userAgent string) *httptest.ResponseRecorder {
	r := httptest.NewRequest("POST", "/api/consumption", strings.NewReader(body))
	r.Header.Set("User-Agent", userAgent)
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, r)
	return w
}

func TestIngestEndToEnd(t *testing.T) {
	f := setup(t)

	w := trigger(f, `{"token":"s3cret"}`, "cron-job.org/1.0")

	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"success":true}`, w.Body.String())

	require.Equal(t, 1, f.loginCalls)
	require.Equal(t, 1, f.measureCalls)
	require.Equal(t, 1, f.createCalls)

	var sent map[string]any
	require.NoError(t, json.Unmarshal([]byte(f.createPayloads[0]), &sent))
	require.Equal(t, "db-consumption", sent["parent"].(map[string]any)["database_id"])

	props := sent["properties"].(map[string]any)
	forward := props["Temperatura Impulsión"].(map[string]any)
	require.Equal(t, 45.2, forward["number"])
	require.NotEmpty(t, props["Fecha"].(map[string]any)["date"].(map[string]any)["start"])
}

func TestIngestUnauthorizedMakesNoCalls(t *testing.T) {
	f := setup(t)

	w := trigger(f, `{"token":"wrong"}`, "cron-job.org/1.0")
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = trigger(f, `{"token":"s3cret"}`, "curl/8.0")
	require.Equal(t, http.StatusUnauthorized, w.Code)

	require.Equal(t, 0, f.loginCalls)
	require.Equal(t, 0, f.measureCalls)
	require.Equal(t, 0, f.createCalls)
}

func TestIngestInvalidBody(t *testing.T) {
	f := setup(t)

	w := trigger(f, `{token`, "cron-job.org/1.0")
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, 0, f.loginCalls)
}

func TestIngestMissingSessionCookie(t *testing.T) {
	f := setup(t)
	f.loginCookies = []string{"JSESSIONID=abc; Path=/"}

	w := trigger(f, `{"token":"s3cret"}`, "cron-job.org/1.0")

	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.JSONEq(t, `{"error":"missing session information"}`, w.Body.String())
	require.Equal(t, 1, f.loginCalls)
	require.Equal(t, 0, f.measureCalls)
	require.Equal(t, 0, f.createCalls)
}

func TestIngestNotionRejectionIsFailure(t *testing.T) {
	f := setup(t)
	f.notionStatus = http.StatusBadRequest

	w := trigger(f, `{"token":"s3cret"}`, "cron-job.org/1.0")

	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.JSONEq(t, `{"error":"request failed"}`, w.Body.String())
}

func TestIngestMethodNotAllowed(t *testing.T) {
	f := setup(t)

	r := httptest.NewRequest("GET", "/api/consumption", nil)
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, r)

	// the unauthenticated GET trigger of old is gone on purpose
	require.Equal(t, http.StatusMethodNotAllowed, w.Code)
	require.Equal(t, 0, f.loginCalls)
}
