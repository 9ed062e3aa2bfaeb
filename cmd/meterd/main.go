package main

import (
	"flag"
	"net/http"

	"homemeter-backend/lib/configutil"
	"homemeter-backend/lib/cronauth"
	"homemeter-backend/lib/notion"
	"homemeter-backend/lib/scrapers/mbusportal"
	"homemeter-backend/lib/serviceutil"
	"homemeter-backend/services/consumption"
	"homemeter-backend/services/profile"
	"homemeter-backend/services/report"

	"github.com/go-redis/redis/v8"
)

func main() {
	verbose := flag.Bool("v", false, "Enable verbose logging/instrumentation.")
	flag.Parse()

	ctx := serviceutil.SignalContext()

	InitTelemetry(ctx, *verbose)

	cfg, err := configutil.ReadConfig[Config]("config.json5")
	if err != nil {
		serviceutil.Fatal("read config", err)
	}
	err = cfg.Validate()
	if err != nil {
		serviceutil.Fatal("validate config", err)
	}

	portal := mbusportal.NewClient(mbusportal.ClientOptions{
		LoginUrl:   cfg.Portal.LoginUrl,
		MeasureUrl: cfg.Portal.MeasureUrl,
		Email:      cfg.Portal.Email,
		Password:   cfg.Portal.Password,
	})
	notionClient := notion.NewClient(notion.DefaultBaseUrl, cfg.Notion.Token)
	guard := cronauth.Guard{Secret: cfg.Trigger.Secret}

	var cache profile.Cache
	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		cache = profile.NewRedisCache(redisClient)
	}

	consumptionService := consumption.NewService(
		portal, notionClient, cfg.Notion.ConsumptionDatabase,
	)
	reportService := report.NewService(
		notionClient, cfg.Notion.ConsumptionDatabase,
		cfg.Mail.Mailer(), cfg.Mail.From, cfg.Mail.To,
	)
	profileService := profile.NewService(
		notionClient, cfg.Notion.ProfileDatabase, cache,
	)

	mux := http.NewServeMux()
	mux.Handle("/api/consumption", consumption.NewHandler(guard, consumptionService))
	mux.Handle("/api/report", report.NewHandler(guard, reportService))
	profileHandler := profile.NewHandler(profileService)
	mux.Handle("/api/profile", profileHandler)
	mux.HandleFunc("/api/profile/name", profileHandler.ServeName)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	port := cfg.Port
	if port == 0 {
		port = 8000
	}
	go serviceutil.StartHttpServer(port, mux)

	<-ctx.Done()
	if redisClient != nil {
		redisClient.Close()
	}
}
