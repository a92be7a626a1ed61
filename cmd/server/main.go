// Command server is the composition root: it builds the dependency
// injection container, starts every active chain's watcher alongside the
// expiry scanner and webhook dispatcher, serves the HTTP API, and on
// SIGINT/SIGTERM stops the watchers and background tasks first and then
// shuts down the HTTP server.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"paygate/internal/logger"
	"paygate/internal/wire"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	container, err := wire.BuildContainer(ctx)
	if err != nil {
		// No logger yet; report straight to stderr.
		os.Stderr.WriteString("failed to build dependency container: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := container.Logger

	log.Info("starting chain watchers and background tasks",
		logger.Int("networks", len(container.Runtime.Watchers)),
	)
	container.Runtime.Start(ctx)

	container.Server.SetupRoutes()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := container.Server.Run(); err != nil {
			log.Fatal("failed to start HTTP server", logger.Error(err))
		}
	}()

	log.Info("server is running",
		logger.String("host", container.Config.Host),
		logger.String("port", container.Config.Port),
		logger.String("message", "press Ctrl+C to shut down"),
	)

	<-quit
	log.Info("received shutdown signal")

	cancel()
	container.Runtime.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := container.Server.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to gracefully stop HTTP server", logger.Error(err))
	}

	log.Info("server gracefully stopped")
}
