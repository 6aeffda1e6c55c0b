package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	webAdapter "logistics-dashboard/internal/adapters/web"
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("store: %v", err)
	}
	defer st.Close()
	log.Printf("data source: %s", st.Name())

	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.KafkaBroker != "" {
		publisher = events.NewKafkaPublisher(cfg.KafkaBroker, cfg.KafkaTopic)
		log.Printf("publishing changes to %s on %s", cfg.KafkaTopic, cfg.KafkaBroker)
	}
	publisher = events.LogPublisher{Next: publisher}
	defer publisher.Close()

	var agent ai.QueryInterpreter
	if cfg.OpenAIAPIKey != "" {
		agent = ai.NewAgent(cfg.OpenAIAPIKey)
	} else {
		log.Println("Warning: OPENAI_API_KEY is not set, query interpretation disabled")
	}

	svc := app.NewAppService(st, publisher, agent, app.Settings{
		LowStockThreshold: cfg.LowStockThreshold,
		Location:          cfg.Location,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           webAdapter.NewHandler(svc, cfg.AllowedOrigins),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("server starting on :%s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
