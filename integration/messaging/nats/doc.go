// Package nats connects to a NATS server and carries relay messages between
// instances on a core NATS subject.
//
//	conn, err := nats.Connect(ctx, cfg, log)
//	if err != nil {
//		return err
//	}
//	defer conn.Drain()
//
//	bp := nats.NewBackplane(conn, cfg.Subject)
//
// The connection reconnects on its own; disconnects and reconnects are logged.
package nats
