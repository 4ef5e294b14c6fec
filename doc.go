// Package authbridge reconciles two authentication systems that share one
// user base: the legacy HS256 token scheme and the IAM system with its own
// session, account and JWKS collections.
//
// The root package is the composition point. It loads configuration,
// connects the stores and wires the request flow; the actual mechanics live
// in the pkg subpackages:
//
//   - pkg/tokenkind classifies bearer tokens by claim shape
//   - pkg/cookie signs and verifies cookie values
//   - pkg/httpcodec converts requests and extracts session tokens
//   - pkg/jwt and pkg/jwks verify legacy and IAM tokens
//   - pkg/verifier and pkg/identity resolve tokens to canonical users
//   - pkg/passbridge migrates and syncs credentials between the systems
//   - pkg/authflow runs the per-request strategy chain
//   - pkg/ratelimiter guards credential endpoints
//
// Typical setup:
//
//	var cfg authbridge.Config
//	config.MustLoad(&cfg)
//
//	db, err := mongo.ConnectDatabase(ctx, mongoCfg)
//	if err != nil { ... }
//
//	bridge, err := authbridge.New(cfg, authbridge.StoresFromMongo(store.NewMongoStores(db)))
//	if err != nil { ... }
//
//	handler := bridge.Flow.Middleware()(mux)
package authbridge
