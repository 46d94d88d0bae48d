package nats

import "errors"

var (
	ErrEmptyURL          = errors.New("empty nats url")
	ErrNotReady          = errors.New("nats did not become ready within the given time period")
	ErrNotConnected      = errors.New("nats connection is not connected")
	ErrHealthcheckFailed = errors.New("nats healthcheck failed")
	ErrPublishFailed     = errors.New("failed to publish message to nats")
	ErrSubscribeFailed   = errors.New("failed to subscribe to nats subject")
)
