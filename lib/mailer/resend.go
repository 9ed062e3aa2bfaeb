package mailer

import (
	"context"
	"fmt"
	"time"

	"homemeter-backend/lib/telemetry"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("mailer")

const ResendBaseUrl = "https://api.resend.com"

type ResendClient struct {
	http *resty.Client
}

func NewResendClient(baseUrl, apiKey string) *ResendClient {
	client := resty.New()
	client.SetBaseURL(baseUrl)
	client.SetTimeout(time.Second * 15)
	client.SetAuthToken(apiKey)
	client.SetHeader("Content-Type", "application/json")

	telemetry.InstrumentResty(client, "mailer/resend/http")

	return &ResendClient{http: client}
}

type resendPayload struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Html    string   `json:"html"`
}

func (c *ResendClient) Send(ctx context.Context, msg Message) error {
	ctx, span := tracer.Start(ctx, "resend:Send")
	defer span.End()

	res, err := c.http.R().
		SetContext(ctx).
		SetBody(resendPayload{
			From:    msg.From,
			To:      msg.To,
			Subject: msg.Subject,
			Html:    msg.Html,
		}).
		Post("/emails")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to send email")
		return fmt.Errorf("resend: %w", err)
	}
	if res.IsError() {
		span.SetStatus(codes.Error, "resend rejected email")
		body := res.String()
		if len(body) > 200 {
			body = body[:200]
		}
		return fmt.Errorf("resend returned %s: %s", res.Status(), body)
	}
	return nil
}
