// Package redis connects the auth bridge to Redis, which backs the shared
// rate-limit counters when the bridge runs on more than one instance.
//
//	var cfg redis.Config
//	config.MustLoad(&cfg)
//	client, err := redis.Connect(ctx, cfg)
//	limiter, err := ratelimiter.New(ratelimiter.NewRedisStore(client), limits)
//
// Connect retries until the configured budget is spent; Healthcheck returns
// a probe function for readiness endpoints.
package redis
