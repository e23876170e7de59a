package main

import (
	"flag"
	"log"
	"os"

	"SentimentOracle/internal/di"
	"SentimentOracle/pkg/config"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	log.Printf("env=%s symbol=%s range=%s source=%s",
		cfg.Environment, cfg.Binance.Symbol, cfg.Dashboard.DefaultRange, cfg.Sentiment.Source)

	app, cleanup, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	if cfg.Kafka.Enabled {
		log.Printf("kafka: brokers=%v topic=%s", cfg.Kafka.Brokers, cfg.Kafka.Topic)
	}

	// Run application (blocks until signal)
	runErr := app.Run()
	cleanup()
	if runErr != nil {
		log.Printf("app error: %v", runErr)
		os.Exit(1)
	}
}
