package mbusportal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"homemeter-backend/lib/telemetry"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("scrapers/mbusportal")

// the portal replied without the two cookies a valid session needs
var MissingSession = fmt.Errorf("portal login response is missing session cookies")

// the measurement endpoint replied with something that isn't JSON
var MalformedPayload = fmt.Errorf("malformed measurement payload")

const sessionCookie = "JSESSIONID"
const rememberCookie = "remember-me"

type ClientOptions struct {
	LoginUrl   string
	MeasureUrl string
	Email      string
	Password   string
}

type Client struct {
	opts ClientOptions
	http *resty.Client
}

func NewClient(opts ClientOptions) *Client {
	client := resty.New()
	client.SetTimeout(time.Second * 15)
	// the login endpoint answers with a 302; the session cookies ride on
	// that response, so redirects must not be followed
	client.SetRedirectPolicy(resty.RedirectPolicyFunc(func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}))
	client.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")

	telemetry.InstrumentResty(client, "scrapers/mbusportal/http")

	return &Client{
		opts: opts,
		http: client,
	}
}

var cookiePattern = regexp.MustCompile(`^([^=]+)=([^;]+)`)

// parseSetCookies builds a name -> value mapping out of an ordered
// sequence of Set-Cookie strings. A later occurrence of the same name
// overrides an earlier one.
func parseSetCookies(values []string) map[string]string {
	cookies := map[string]string{}
	for _, v := range values {
		groups := cookiePattern.FindStringSubmatch(v)
		if len(groups) < 3 {
			continue
		}
		cookies[groups[1]] = groups[2]
	}
	return cookies
}

// Login submits the portal login form and returns the Cookie header
// value an authenticated request needs. The session is never stored;
// every ingestion acquires a fresh one.
func (c *Client) Login(ctx context.Context) (string, error) {
	ctx, span := tracer.Start(ctx, "Login")
	defer span.End()

	res, err := c.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"email":          c.opts.Email,
			"login":          c.opts.Password,
			"remember-check": "on",
		}).
		Post(c.opts.LoginUrl)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to make login request")
		return "", fmt.Errorf("portal login: %w", err)
	}

	cookies := parseSetCookies(res.RawResponse.Header.Values("Set-Cookie"))
	session := cookies[sessionCookie]
	remember := cookies[rememberCookie]
	if session == "" || remember == "" {
		if msg := loginFailureMessage(res.Body()); msg != "" {
			slog.WarnContext(ctx, "portal rejected login", "portal_says", msg)
		}
		span.SetStatus(codes.Error, "missing session cookies")
		return "", MissingSession
	}

	return fmt.Sprintf("%s=%s; %s=%s", sessionCookie, session, rememberCookie, remember), nil
}

// loginFailureMessage digs a human-readable error out of the login page,
// purely for logging. The portal renders rejections as an alert box.
func loginFailureMessage(body []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(body))
	if err != nil {
		return ""
	}
	msg := ""
	doc.Find(".alert, .error, .login-error").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := strings.TrimSpace(s.Text())
		if text != "" {
			msg = text
			return false
		}
		return true
	})
	return msg
}

// Reading is one snapshot of the meter. Fields the portal didn't include
// stay nil and flow through to the document store as null numbers.
type Reading struct {
	ForwardTemp *float64
	Flow        *float64
	Power       *float64
	ReturnTemp  *float64
	Volume      *float64
	Energy      *float64
	OnTime      *float64
	WaterCount  *float64
}

type measurementPayload struct {
	Forward *float64 `json:"mBus121Forward"`
	Flow    *float64 `json:"mBus121Flow"`
	Power   *float64 `json:"mBus121Power"`
	Return  *float64 `json:"mBus121Return"`
	Volume  *float64 `json:"mBus121Volume"`
	Energy  *float64 `json:"mBus121Energy"`
	OnTime  *float64 `json:"mBus121OnTime"`
	Pulse3  *float64 `json:"mBus121Pulse3"`
}

// FetchReading pulls the live measurement snapshot using a Cookie header
// previously produced by Login.
func (c *Client) FetchReading(ctx context.Context, cookieHeader string) (Reading, error) {
	ctx, span := tracer.Start(ctx, "FetchReading")
	defer span.End()

	res, err := c.http.R().
		SetContext(ctx).
		SetHeader("Cookie", cookieHeader).
		Get(c.opts.MeasureUrl)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch measurement")
		return Reading{}, fmt.Errorf("fetch measurement: %w", err)
	}
	if res.StatusCode() >= 300 {
		span.SetStatus(codes.Error, "unexpected measurement status")
		return Reading{}, fmt.Errorf("measurement endpoint returned %s", res.Status())
	}

	var payload measurementPayload
	err = json.Unmarshal(res.Body(), &payload)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse measurement payload")
		return Reading{}, fmt.Errorf("%w: %v", MalformedPayload, err)
	}

	return Reading{
		ForwardTemp: payload.Forward,
		Flow:        payload.Flow,
		Power:       payload.Power,
		ReturnTemp:  payload.Return,
		Volume:      payload.Volume,
		Energy:      payload.Energy,
		OnTime:      payload.OnTime,
		WaterCount:  payload.Pulse3,
	}, nil
}
