package main

import (
	"bufio"
	"context"
	"log"
	"os"

	"logistics-dashboard/internal/adapters/cli"
	"logistics-dashboard/internal/adapters/repl"
	"logistics-dashboard/internal/ai"
	"logistics-dashboard/internal/app"
	"logistics-dashboard/internal/config"
	"logistics-dashboard/internal/events"
	"logistics-dashboard/internal/store"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()
	st, err := store.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("Unable to open %s store: %v", cfg.DataSource, err)
	}
	defer st.Close()

	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.KafkaBroker != "" {
		publisher = events.NewKafkaPublisher(cfg.KafkaBroker, cfg.KafkaTopic)
	}
	defer publisher.Close()

	var agent ai.QueryInterpreter
	if cfg.OpenAIAPIKey != "" {
		agent = ai.NewAgent(cfg.OpenAIAPIKey)
	}

	svc := app.NewAppService(st, publisher, agent, app.Settings{
		LowStockThreshold: cfg.LowStockThreshold,
		Location:          cfg.Location,
	})

	if len(os.Args) > 1 {
		cli.Run(ctx, svc, os.Args[1:])
		return
	}
	repl.Run(ctx, svc, bufio.NewReader(os.Stdin), os.Stdout)
}
