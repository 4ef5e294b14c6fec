package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lenneTech/nest-server-sub004/pkg/config"
)

type testConfig struct {
	Secret   string        `env:"TEST_AUTH_SECRET" envDefault:"fallback-secret"`
	BasePath string        `env:"TEST_AUTH_BASE_PATH" envDefault:"/iam"`
	Window   time.Duration `env:"TEST_RATE_WINDOW" envDefault:"60s"`
	Max      int           `env:"TEST_RATE_MAX" envDefault:"10"`
}

func TestLoad_Defaults(t *testing.T) {
	var cfg testConfig
	require.NoError(t, config.Load(&cfg))

	assert.Equal(t, "fallback-secret", cfg.Secret)
	assert.Equal(t, "/iam", cfg.BasePath)
	assert.Equal(t, time.Minute, cfg.Window)
	assert.Equal(t, 10, cfg.Max)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("TEST_AUTH_SECRET", "from-env")
	t.Setenv("TEST_RATE_MAX", "25")

	var cfg testConfig
	require.NoError(t, config.Load(&cfg))

	assert.Equal(t, "from-env", cfg.Secret)
	assert.Equal(t, 25, cfg.Max)
}

func TestLoad_NilPointer(t *testing.T) {
	err := config.Load[testConfig](nil)
	assert.ErrorIs(t, err, config.ErrNilPointer)
}

type requiredConfig struct {
	Value string `env:"TEST_REQUIRED_VALUE,required"`
}

func TestLoad_MissingRequired(t *testing.T) {
	var cfg requiredConfig
	err := config.Load(&cfg)
	assert.ErrorIs(t, err, config.ErrParsingConfig)
}

func TestMustLoad_PanicsOnFailure(t *testing.T) {
	assert.Panics(t, func() {
		var cfg requiredConfig
		config.MustLoad(&cfg)
	})
}
