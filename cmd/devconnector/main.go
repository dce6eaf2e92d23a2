// Command devconnector serves the developer network REST API and, in
// production, the bundled client.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"devconnector/internal"
	"devconnector/internal/config"
	"devconnector/web"
)

const shutdownGrace = 30 * time.Second

func main() {
	if err := run(); err != nil {
		log.Fatalf("devconnector: %v", err)
	}
}

func run() error {
	cfg := config.GetConfig()

	app, err := internal.NewAppWithConfig(cfg, internal.WithClientFS(web.Client()))
	if err != nil {
		return fmt.Errorf("build api: %w", err)
	}

	log.Printf("Migrating users, profiles and posts in %s", cfg.GetDatabasePath())
	if err := app.DBManager.MigrateDatabase(); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}

	if err := app.StartAsync(); err != nil {
		return fmt.Errorf("start api: %w", err)
	}
	if cfg.IsProduction() {
		log.Printf("devconnector API and client listening on :%s", cfg.GetPort())
	} else {
		log.Printf("devconnector API listening on :%s (%s, client not mounted)", cfg.GetPort(), cfg.Environment)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	sig := <-stop
	log.Printf("%v received, draining API requests for up to %s", sig, shutdownGrace)

	ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := app.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Println("devconnector API stopped")
	return nil
}
