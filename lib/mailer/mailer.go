// Package mailer sends the report mail through one of two transports:
// the Resend HTTP API, or plain SMTP for self-hosted deployments.
package mailer

import (
	"context"
	"fmt"
)

type Message struct {
	From    string
	To      []string
	Subject string
	Html    string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// Unconfigured stands in when the deployment has no mail transport.
// The rest of the server keeps working, only report dispatch fails.
type Unconfigured struct{}

func (Unconfigured) Send(ctx context.Context, msg Message) error {
	return fmt.Errorf("no mail transport configured")
}
