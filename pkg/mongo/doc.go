// Package mongo connects the auth bridge to its document database.
//
// The database holds every collection both auth systems read: the canonical
// users collection plus the IAM system's user, account, session and jwks
// collections. Connect retries with a configurable interval so the bridge
// survives a database that comes up after it:
//
//	var cfg mongo.Config
//	config.MustLoad(&cfg)
//	db, err := mongo.ConnectDatabase(ctx, cfg)
//
// Healthcheck returns a probe function for readiness endpoints.
package mongo
