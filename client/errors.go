package client

import "errors"

// Notifications raised through ErrorOccurred.
const (
	MsgConnectFailed     = "failed to connect to the relay push channel"
	MsgConnectionLost    = "connection to the relay was lost"
	MsgServerUnavailable = "relay server is unavailable or not responding"
)

var (
	// ErrHandshake is returned when the push endpoint does not open with a handshake frame.
	ErrHandshake = errors.New("push channel handshake failed")

	// ErrUnexpectedStatus is returned by a submission attempt answered with a non-2xx status.
	ErrUnexpectedStatus = errors.New("unexpected response status")
)
