package commands

import (
	"context"
	"fmt"
	"os"

	"homemeter-backend/lib/configutil"
	"homemeter-backend/lib/mailer"
	"homemeter-backend/lib/notion"
	"homemeter-backend/lib/scrapers/mbusportal"
	"homemeter-backend/lib/serviceutil"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "meterctl",
	Short: "meterctl runs the meterd flows one-shot from the command line.",
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// the config file is shared with meterd, only the keys the CLI needs
// are decoded here

type portalConfig struct {
	LoginUrl   string `json:"login_url"`
	MeasureUrl string `json:"measure_url"`
	Email      string `json:"email"`
	Password   string `json:"password"`
}

type notionConfig struct {
	Token               string `json:"token"`
	ConsumptionDatabase string `json:"consumption_database"`
	ProfileDatabase     string `json:"profile_database"`
}

type resendConfig struct {
	ApiKey string `json:"api_key"`
}

type mailConfig struct {
	From   string             `json:"from"`
	To     string             `json:"to"`
	Resend *resendConfig      `json:"resend"`
	Smtp   *mailer.SmtpConfig `json:"smtp"`
}

type config struct {
	Portal portalConfig `json:"portal"`
	Notion notionConfig `json:"notion"`
	Mail   mailConfig   `json:"mail"`
}

func readConfig() config {
	cfg, err := configutil.ReadConfig[config]("config.json5")
	if err != nil {
		serviceutil.Fatal("failed to read config", err)
	}
	return cfg
}

func portalClient(cfg config) *mbusportal.Client {
	return mbusportal.NewClient(mbusportal.ClientOptions{
		LoginUrl:   cfg.Portal.LoginUrl,
		MeasureUrl: cfg.Portal.MeasureUrl,
		Email:      cfg.Portal.Email,
		Password:   cfg.Portal.Password,
	})
}

func notionClient(cfg config) *notion.Client {
	return notion.NewClient(notion.DefaultBaseUrl, cfg.Notion.Token)
}

func mailerFromConfig(cfg mailConfig) mailer.Mailer {
	if cfg.Resend != nil && cfg.Resend.ApiKey != "" {
		return mailer.NewResendClient(mailer.ResendBaseUrl, cfg.Resend.ApiKey)
	}
	if cfg.Smtp != nil && cfg.Smtp.Server != "" {
		return mailer.NewSmtpMailer(*cfg.Smtp)
	}
	return mailer.Unconfigured{}
}
