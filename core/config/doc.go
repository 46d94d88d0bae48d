// Package config provides type-safe environment variable loading with caching
// using Go generics. Each configuration type is loaded once and cached for
// subsequent calls.
//
// A .env file in the working directory is loaded on first use and the
// caarlos0/env library parses variables into struct fields:
//
//	type HubConfig struct {
//		Path       string `env:"HUB_PATH" envDefault:"/hubs/messages"`
//		SendBuffer int    `env:"HUB_SEND_BUFFER" envDefault:"256"`
//	}
//
//	var cfg HubConfig
//	if err := config.Load(&cfg); err != nil {
//		log.Fatal(err)
//	}
//
//	// Or panic on failure (useful for startup)
//	config.MustLoad(&cfg)
//
// Different types are cached independently. Nested structs are parsed together
// with their parent, so a process usually loads one root type.
package config
