// Package cronauth guards the webhook endpoints that kick off outbound
// network activity. The only permitted caller is an external cron
// service that POSTs a shared secret and identifies itself through its
// User-Agent.
package cronauth

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

var InvalidBody = fmt.Errorf("invalid request body")
var Unauthorized = fmt.Errorf("unauthorized")

const DefaultCallerSubstring = "cron-job.org"

type Guard struct {
	Secret string
	// substring the User-Agent header must contain, matched
	// case-insensitively. Defaults to DefaultCallerSubstring.
	CallerSubstring string
}

type triggerBody struct {
	Token string `json:"token"`
}

// Authorize consumes the request body and checks both the shared secret
// and the caller identity. It must be called before anything touches an
// external system.
func (g Guard) Authorize(r *http.Request) error {
	var body triggerBody
	err := json.NewDecoder(r.Body).Decode(&body)
	if err != nil {
		return fmt.Errorf("%w: %v", InvalidBody, err)
	}

	if body.Token == "" || g.Secret == "" || body.Token != g.Secret {
		return fmt.Errorf("%w (token)", Unauthorized)
	}

	caller := g.CallerSubstring
	if caller == "" {
		caller = DefaultCallerSubstring
	}
	userAgent := r.Header.Get("User-Agent")
	if !strings.Contains(strings.ToLower(userAgent), strings.ToLower(caller)) {
		return fmt.Errorf("%w (user-agent)", Unauthorized)
	}

	return nil
}
