package cronauth

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAuthorize(t *testing.T) {
	guard := Guard{Secret: "s3cret"}

	cases := []struct {
		name      string
		body      string
		userAgent string
		expect    error
	}{
		{
			name:      "valid",
			body:      `{"token":"s3cret"}`,
			userAgent: "cron-job.org/1.0 (+https://cron-job.org)",
			expect:    nil,
		},
		{
			name:      "malformed body",
			body:      `{token:`,
			userAgent: "cron-job.org/1.0",
			expect:    InvalidBody,
		},
		{
			name:      "empty body",
			body:      ``,
			userAgent: "cron-job.org/1.0",
			expect:    InvalidBody,
		},
		{
			name:      "wrong token",
			body:      `{"token":"guess"}`,
			userAgent: "cron-job.org/1.0",
			expect:    Unauthorized,
		},
		{
			name:      "missing token",
			body:      `{}`,
			userAgent: "cron-job.org/1.0",
			expect:    Unauthorized,
		},
		{
			name:      "wrong caller",
			body:      `{"token":"s3cret"}`,
			userAgent: "curl/8.0",
			expect:    Unauthorized,
		},
		{
			name:      "caller match is case-insensitive",
			body:      `{"token":"s3cret"}`,
			userAgent: "Cron-Job.ORG/1.0",
			expect:    nil,
		},
	}

	for _, test := range cases {
		t.Run(test.name, func(t *testing.T) {
			r := httptest.NewRequest("POST", "/api/report", strings.NewReader(test.body))
			r.Header.Set("User-Agent", test.userAgent)

			err := guard.Authorize(r)
			if test.expect == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, test.expect)
		})
	}
}

func TestAuthorizeUnconfiguredSecret(t *testing.T) {
	guard := Guard{}

	r := httptest.NewRequest("POST", "/api/report", strings.NewReader(`{"token":""}`))
	r.Header.Set("User-Agent", "cron-job.org/1.0")

	require.ErrorIs(t, guard.Authorize(r), Unauthorized)
}
