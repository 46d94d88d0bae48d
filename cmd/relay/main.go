// Command relay runs the fan-out relay server.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrymomot/relay/app/relayapp"
	"github.com/dmitrymomot/relay/core/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := relayapp.NewApp(ctx)
	if err != nil {
		logger.New().Error("failed to start relay", logger.Error(err))
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil {
		app.Logger().Error("relay stopped with error", logger.Error(err))
		os.Exit(1)
	}
}
