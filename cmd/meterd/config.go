package main

import (
	"fmt"
	"strings"

	"homemeter-backend/lib/mailer"
)

type PortalConfig struct {
	LoginUrl   string `json:"login_url"`
	MeasureUrl string `json:"measure_url"`
	Email      string `json:"email"`
	Password   string `json:"password"`
}

type NotionConfig struct {
	Token               string `json:"token"`
	ConsumptionDatabase string `json:"consumption_database"`
	ProfileDatabase     string `json:"profile_database"`
}

type TriggerConfig struct {
	Secret string `json:"secret"`
}

type ResendConfig struct {
	ApiKey string `json:"api_key"`
}

type MailConfig struct {
	From   string             `json:"from"`
	To     string             `json:"to"`
	Resend *ResendConfig      `json:"resend"`
	Smtp   *mailer.SmtpConfig `json:"smtp"`
}

type RedisConfig struct {
	Addr string `json:"addr"`
}

type Config struct {
	Port    int           `json:"port"`
	Portal  PortalConfig  `json:"portal"`
	Notion  NotionConfig  `json:"notion"`
	Trigger TriggerConfig `json:"trigger"`
	Mail    MailConfig    `json:"mail"`
	Redis   RedisConfig   `json:"redis"`
}

// Validate catches missing required values at boot instead of on the
// first cron trigger. Mail and redis are optional here: a deployment
// without them loses report dispatch and the name cache, nothing else.
func (c Config) Validate() error {
	var missing []string
	require := func(value, key string) {
		if value == "" {
			missing = append(missing, key)
		}
	}

	require(c.Portal.LoginUrl, "portal.login_url")
	require(c.Portal.MeasureUrl, "portal.measure_url")
	require(c.Portal.Email, "portal.email")
	require(c.Portal.Password, "portal.password")
	require(c.Notion.Token, "notion.token")
	require(c.Notion.ConsumptionDatabase, "notion.consumption_database")
	require(c.Notion.ProfileDatabase, "notion.profile_database")
	require(c.Trigger.Secret, "trigger.secret")

	if len(missing) > 0 {
		return fmt.Errorf("missing config values: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Mailer picks the configured transport, preferring Resend when both
// blocks are present.
func (c MailConfig) Mailer() mailer.Mailer {
	if c.Resend != nil && c.Resend.ApiKey != "" {
		return mailer.NewResendClient(mailer.ResendBaseUrl, c.Resend.ApiKey)
	}
	if c.Smtp != nil && c.Smtp.Server != "" {
		return mailer.NewSmtpMailer(*c.Smtp)
	}
	return mailer.Unconfigured{}
}
