package authbridge

import (
	"errors"
	"log/slog"

	"github.com/lenneTech/nest-server-sub004/pkg/authflow"
	"github.com/lenneTech/nest-server-sub004/pkg/cookie"
	"github.com/lenneTech/nest-server-sub004/pkg/httpcodec"
	"github.com/lenneTech/nest-server-sub004/pkg/identity"
	"github.com/lenneTech/nest-server-sub004/pkg/jwks"
	"github.com/lenneTech/nest-server-sub004/pkg/jwt"
	"github.com/lenneTech/nest-server-sub004/pkg/logger"
	"github.com/lenneTech/nest-server-sub004/pkg/passbridge"
	"github.com/lenneTech/nest-server-sub004/pkg/ratelimiter"
	"github.com/lenneTech/nest-server-sub004/pkg/store"
	"github.com/lenneTech/nest-server-sub004/pkg/verifier"
)

// Config carries the bridge-wide settings. The one secret signs legacy
// tokens, session cookies and HS256-issued IAM tokens; the base URL doubles
// as JWT issuer and audience.
type Config struct {
	Secret       string `env:"AUTH_SECRET,required"`
	BasePath     string `env:"AUTH_BASE_PATH" envDefault:"/iam"`
	BaseURL      string `env:"AUTH_BASE_URL" envDefault:"http://localhost:3000"`
	CookieJWT    bool   `env:"AUTH_COOKIE_JWT" envDefault:"true"`
	MaxBodyBytes int64  `env:"AUTH_MAX_BODY_BYTES" envDefault:"1048576"`

	RateLimit ratelimiter.Config
	Log       logger.Config
}

// ErrMissingSecret is returned when Config.Secret is empty.
var ErrMissingSecret = errors.New("authbridge: missing secret")

// Stores groups the collection-backed dependencies behind their interfaces
// so tests can swap in the memory implementations.
type Stores struct {
	Users    store.UserStore
	IamUsers store.IamUserStore
	Accounts store.AccountStore
	Sessions store.SessionStore
	Keys     store.KeyStore
}

// StoresFromMongo adapts a Mongo store bundle.
func StoresFromMongo(s *store.MongoStores) Stores {
	return Stores{
		Users:    s.Users,
		IamUsers: s.IamUsers,
		Accounts: s.Accounts,
		Sessions: s.Sessions,
		Keys:     s.Keys,
	}
}

// StoresFromMemory adapts an in-memory store bundle.
func StoresFromMemory(s *store.Memory) Stores {
	return Stores{
		Users:    s.Users,
		IamUsers: s.IamUsers,
		Accounts: s.Accounts,
		Sessions: s.Sessions,
		Keys:     s.Keys,
	}
}

// Bridge is the fully wired auth subsystem.
type Bridge struct {
	Cookies   *cookie.Manager
	Codec     *httpcodec.Codec
	Legacy    *jwt.Service
	Verifier  *verifier.Verifier
	Mapper    *identity.Mapper
	Passwords *passbridge.Bridge
	Flow      *authflow.Flow
	Limiter   *ratelimiter.Limiter
	Logger    *slog.Logger
}

// Option configures the bridge.
type Option func(*settings)

type settings struct {
	logger       *slog.Logger
	limiterStore ratelimiter.Store
}

// WithLogger sets the logger shared by every component. Without it the
// bridge builds one from Config.Log.
func WithLogger(log *slog.Logger) Option {
	return func(s *settings) { s.logger = log }
}

// WithLimiterStore sets the rate-limit counter backend. The in-memory
// store is the default; multi-instance deployments pass a Redis store.
func WithLimiterStore(st ratelimiter.Store) Option {
	return func(s *settings) { s.limiterStore = st }
}

// New wires the bridge from configuration and stores.
func New(cfg Config, stores Stores, opts ...Option) (*Bridge, error) {
	if cfg.Secret == "" {
		return nil, ErrMissingSecret
	}

	s := settings{}
	for _, opt := range opts {
		opt(&s)
	}
	log := s.logger
	if log == nil {
		log = logger.FromConfig(cfg.Log, logger.WithService("auth-bridge"))
	}

	cookies, err := cookie.New(cfg.Secret)
	if err != nil {
		return nil, err
	}

	legacy, err := jwt.New(cfg.Secret)
	if err != nil {
		return nil, err
	}

	codec := httpcodec.New(cookies, cfg.BasePath, httpcodec.WithMaxBodyBytes(cfg.MaxBodyBytes))
	iam := jwks.New(stores.Keys, cfg.Secret, cfg.BaseURL, jwks.WithLogger(log))
	verif := verifier.New(iam, stores.Sessions, stores.IamUsers, stores.Users, verifier.WithLogger(log))
	mapper := identity.NewMapper(stores.Users, identity.WithLogger(log))
	passwords := passbridge.New(stores.Users, stores.IamUsers, stores.Accounts, stores.Sessions,
		passbridge.WithLogger(log))

	limiterStore := s.limiterStore
	if limiterStore == nil {
		limiterStore = ratelimiter.NewMemoryStore()
	}
	limiter, err := ratelimiter.New(limiterStore, cfg.RateLimit)
	if err != nil {
		return nil, err
	}

	flow := authflow.New(codec, verif, mapper, legacy, stores.Users, stores.Sessions,
		authflow.WithCookieJWT(cfg.CookieJWT), authflow.WithLogger(log))

	return &Bridge{
		Cookies:   cookies,
		Codec:     codec,
		Legacy:    legacy,
		Verifier:  verif,
		Mapper:    mapper,
		Passwords: passwords,
		Flow:      flow,
		Limiter:   limiter,
		Logger:    log,
	}, nil
}
