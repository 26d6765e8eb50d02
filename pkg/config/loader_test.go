package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tenantkit/pkg/config"
)

type appConfig struct {
	Name    string `env:"LOADER_TEST_NAME" envDefault:"tenantkit"`
	Workers int    `env:"LOADER_TEST_WORKERS" envDefault:"4"`
}

type envConfig struct {
	Secret string `env:"LOADER_TEST_SECRET"`
}

type requiredConfig struct {
	Token string `env:"LOADER_TEST_TOKEN,required"`
}

func TestLoad(t *testing.T) {
	t.Run("defaults apply", func(t *testing.T) {
		var cfg appConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, "tenantkit", cfg.Name)
		assert.Equal(t, 4, cfg.Workers)
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("LOADER_TEST_SECRET", "s3cret")

		var cfg envConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, "s3cret", cfg.Secret)
	})

	t.Run("cached per type", func(t *testing.T) {
		var first appConfig
		require.NoError(t, config.Load(&first))

		// The cached value survives later environment changes.
		t.Setenv("LOADER_TEST_NAME", "changed")
		var second appConfig
		require.NoError(t, config.Load(&second))
		assert.Equal(t, first, second)
	})

	t.Run("missing required variable fails", func(t *testing.T) {
		var cfg requiredConfig
		err := config.Load(&cfg)
		require.ErrorIs(t, err, config.ErrParsingConfig)
	})

	t.Run("nil pointer rejected", func(t *testing.T) {
		err := config.Load[appConfig](nil)
		require.ErrorIs(t, err, config.ErrNilPointer)
	})
}

func TestMustLoad(t *testing.T) {
	assert.Panics(t, func() {
		var cfg requiredConfig
		config.MustLoad(&cfg)
	})
}
