// Package config loads typed configuration structs from environment
// variables, with a .env file picked up once per process for local
// development.
//
// Struct fields declare their sources via `env` tags:
//
//	type AuthConfig struct {
//		Secret   string `env:"AUTH_SECRET,required"`
//		BasePath string `env:"AUTH_BASE_PATH" envDefault:"/iam"`
//	}
//
//	var cfg AuthConfig
//	if err := config.Load(&cfg); err != nil {
//		// handle error
//	}
//
// Load is stateless apart from the one-time .env read; callers own their
// config values and decide how to share them. MustLoad panics on failure
// for configuration the process cannot start without.
package config
