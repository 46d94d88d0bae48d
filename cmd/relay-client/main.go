// Command relay-client subscribes to a relay, prints every pushed message and
// submits each line read from stdin.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrymomot/relay/client"
	"github.com/dmitrymomot/relay/core/config"
	"github.com/dmitrymomot/relay/core/logger"
	"github.com/dmitrymomot/relay/message"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cfg client.Config
	config.MustLoad(&cfg)

	log := logger.New(logger.WithDevelopment("relay-client"), logger.WithOutput(os.Stderr))
	svc := client.New(cfg, client.WithLogger(log))

	defer svc.MessageReceived.Subscribe(func(payload string) { fmt.Println(payload) })()
	defer svc.ErrorOccurred.Subscribe(func(msg string) { fmt.Fprintln(os.Stderr, "error:", msg) })()
	defer svc.StateChanged.Subscribe(func(s client.State) { log.Debug("state changed", logger.Key("state", s.String())) })()

	if err := svc.Initialize(ctx); err != nil {
		log.Error("initialize failed", logger.Error(err))
		os.Exit(1)
	}
	defer svc.Close()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			if message.IsBlank(line) {
				continue
			}
			if err := svc.SendMessage(ctx, line); err != nil && !message.IsCanceled(err) {
				log.Warn("message not delivered", logger.Error(err))
			}
		}
	}
}
