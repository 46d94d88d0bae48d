package client

import "context"

// Requester posts one submission to the ingress endpoint and reports the response status.
// A returned error means no response was received.
type Requester interface {
	Post(ctx context.Context, url string, req Submission) (status int, err error)
}

// Submission is the body and metadata of one ingress request.
type Submission struct {
	Text           string `json:"text"`
	IdempotencyKey string `json:"-"`
}

// PushHandlers receives push channel events. Every callback runs on the connection's
// read goroutine, so frames are handled in arrival order.
type PushHandlers struct {
	// OnMessage receives the payload of each ReceiveMessage frame.
	OnMessage func(payload string)
	// OnReconnecting is called once the connection drops unexpectedly.
	OnReconnecting func(err error)
	// OnReconnected is called with the new connection id after a successful reconnect.
	OnReconnected func(connectionID string)
	// OnClosed is called once when the connection ends for good. err is nil after Close.
	OnClosed func(err error)
}

// Dialer opens push connections. Dial returns once the handshake has completed.
type Dialer interface {
	Dial(ctx context.Context, url string, h PushHandlers) (PushConnection, error)
}

// PushConnection is an established push channel that reconnects on its own.
type PushConnection interface {
	ConnectionID() string
	Close() error
}
