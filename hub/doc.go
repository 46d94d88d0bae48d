// Package hub tracks connected subscribers and fans messages out to them.
//
// A Registry holds the subscriber set in registration order. BroadcastAll snapshots
// the set, encodes the message once as a ReceiveMessage frame and hands it to each
// subscriber's bounded queue without waiting for delivery. A subscriber whose
// queue is full or that has closed is skipped and counted, never blocking the rest.
//
// The Endpoint serves the WebSocket push channel. Each connection gets a UUID,
// receives a handshake frame carrying it, is registered, and is served by one read
// pump and one write pump until either side closes:
//
//	registry := hub.NewRegistry(hub.WithLogger(log), hub.WithMetrics(metrics))
//	endpoint := hub.NewEndpoint(registry, cfg, hub.WithEndpointLogger(log))
//	r.Get(endpoint.Path(), hub.Handler[*router.Context](endpoint))
//
// With several relay instances, a Backplane carries accepted messages between them:
// ingress publishes through a BackplaneBroadcaster and RunBackplane delivers every
// published message to the local registry.
package hub
