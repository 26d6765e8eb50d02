// Package config loads typed configuration structs from environment
// variables, with optional .env support for local development.
//
// Each configuration type is parsed once per process and cached, so
// independent components can load the same struct without re-reading the
// environment or disagreeing about its contents.
//
//	type AppConfig struct {
//		BaseDomain string `env:"BASE_DOMAIN,required"`
//		Secret     string `env:"INVITATION_SECRET,required"`
//	}
//
//	var cfg AppConfig
//	config.MustLoad(&cfg)
package config
