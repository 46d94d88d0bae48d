// Package client is the consumer side of the relay.
//
// A Service keeps one push channel open to the relay's hub endpoint and raises
// MessageReceived for every pushed message. When the channel drops it moves to
// Reconnecting and the HubDialer retries on its schedule (0s, 2s, 10s, 30s by default).
// A successful retry raises Reconnected with the new connection id; giving up moves the
// service to Disconnected and raises ErrorOccurred. Messages pushed during the gap are lost.
//
//	svc := client.New(cfg, client.WithLogger(log))
//	svc.MessageReceived.Subscribe(func(payload string) { fmt.Println(payload) })
//	if err := svc.Initialize(ctx); err != nil {
//		return err
//	}
//	defer svc.Close()
//
// SendMessage posts to the ingress endpoint with a fixed delay between attempts. Every
// attempt of one call carries the same Idempotency-Key so a relay with deduplication
// enabled broadcasts the message once:
//
//	switch err := svc.SendMessage(ctx, "hello"); {
//	case errors.Is(err, message.ErrValidation):
//	case errors.Is(err, message.ErrCanceled):
//	case errors.Is(err, message.ErrTransport):
//	}
package client
