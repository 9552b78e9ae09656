package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/service-panel/servicepanel/internal/app"
	log "github.com/sirupsen/logrus"
)

func main() {
	var (
		configPath  = flag.String("config", "", "path to the config file")
		migrateOnly = flag.Bool("migrate", false, "run migrations and exit")
	)
	flag.Parse()

	// Local .env files are optional.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *migrateOnly {
		if err := app.Migrate(ctx, *configPath); err != nil {
			log.Fatalf("migrate: %v", err)
		}
		return
	}

	if err := app.RunServer(ctx, *configPath); err != nil {
		log.Fatalf("server: %v", err)
	}
}
