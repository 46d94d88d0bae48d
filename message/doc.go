// Package message defines the relayed Message, its tagged wire form, the JSON frames
// exchanged on the push channel, and the error taxonomy used by the relay and its clients.
//
// A message accepted at 2024-01-01T00:00:00Z with text "hello" is pushed as:
//
//	[2024-01-01T00:00:00.0000000+00:00] hello
//
// Errors are sentinels and are matched with errors.Is:
//
//	if errors.Is(err, message.ErrValidation) {
//		// reject without retrying
//	}
package message
