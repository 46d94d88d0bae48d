// Package redis connects to Redis and carries relay messages between instances over
// Redis pub/sub.
//
// Connect parses the URL, retries the first ping with exponential backoff and returns
// a ready client. Healthcheck wraps a ping for readiness probes:
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	bp := redis.NewBackplane(client, cfg.Channel)
//	svc := ingress.NewService(hub.NewBackplaneBroadcaster(bp))
//	go hub.RunBackplane(ctx, bp, registry, log)
//
// Supported URL schemes are redis:// and rediss://.
package redis
