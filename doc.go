// Package relay is a real-time fan-out text relay. Producers POST short text
// messages to the ingress endpoint; every subscriber connected to the push
// channel receives each accepted message tagged with its UTC receipt time.
//
// # Getting Documentation
//
//	go doc github.com/dmitrymomot/relay/hub
//	go doc -all github.com/dmitrymomot/relay/client
//
// # Relay Packages
//
//	github.com/dmitrymomot/relay/message   - Message, tagged wire form, push frames and error taxonomy
//	github.com/dmitrymomot/relay/hub       - Connection registry, push endpoint and cross-instance backplane
//	github.com/dmitrymomot/relay/ingress   - Message submission service and its HTTP handler
//	github.com/dmitrymomot/relay/client    - Subscriber connection manager with reconnects and retrying sends
//	github.com/dmitrymomot/relay/app/relayapp - Server assembly: config, routes, metrics and lifecycle
//
// # Framework Packages
//
//	github.com/dmitrymomot/relay/core/binder   - Request body binding with size limits
//	github.com/dmitrymomot/relay/core/config   - Type-safe environment variable loading
//	github.com/dmitrymomot/relay/core/handler  - Type-safe HTTP handler abstractions
//	github.com/dmitrymomot/relay/core/health   - Liveness and readiness handlers
//	github.com/dmitrymomot/relay/core/logger   - Structured logging built on slog
//	github.com/dmitrymomot/relay/core/response - HTTP responses, errors and WebSocket upgrades
//	github.com/dmitrymomot/relay/core/router   - Router with middleware chaining on net/http patterns
//	github.com/dmitrymomot/relay/core/server   - HTTP server with graceful shutdown
//	github.com/dmitrymomot/relay/middleware    - CORS, request id, logging and rate limiting
//	github.com/dmitrymomot/relay/pkg/async     - Tracked background execution
//
// # Integrations
//
//	github.com/dmitrymomot/relay/integration/database/redis  - Redis client and pub/sub backplane
//	github.com/dmitrymomot/relay/integration/messaging/nats  - NATS connection and subject backplane
//
// # Commands
//
//	cmd/relay         - relay server, configured from the environment
//	cmd/relay-client  - terminal subscriber that prints pushed messages and sends stdin lines
//
// # Example Usage
//
//	svc := client.New(client.DefaultConfig())
//	defer svc.MessageReceived.Subscribe(func(payload string) {
//		fmt.Println(payload) // [2024-01-01T00:00:00.0000000+00:00] hello
//	})()
//
//	if err := svc.Initialize(ctx); err != nil {
//		return err
//	}
//	defer svc.Close()
//
//	if err := svc.SendMessage(ctx, "hello"); err != nil {
//		return err
//	}
package relay
