package main

import (
	"context"
	"log/slog"

	"homemeter-backend/cmd/meterctl/commands"
	"homemeter-backend/lib/telemetry"
)

func main() {
	telemetry.InitSlog(true)
	err := telemetry.SetupFromEnv(context.Background(), "meterctl")
	if err != nil {
		slog.Warn("failed to setup telemetry, continuing without it", "err", err)
	}
	commands.ExecuteContext(context.Background())
}
