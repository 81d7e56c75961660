// Package config provides type-safe environment variable loading with caching
// using Go generics. Each configuration type is loaded once and cached for
// subsequent calls.
//
// The package automatically loads .env files on first use and uses the
// caarlos0/env library for parsing environment variables into struct fields.
//
// Basic usage:
//
//	import "github.com/dmitrymomot/mailkit/core/config"
//
//	type AppConfig struct {
//		Name     string `env:"APP_NAME" envDefault:"mailkit"`
//		LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
//	}
//
//	func main() {
//		var cfg AppConfig
//
//		if err := config.Load(&cfg); err != nil {
//			log.Fatal(err)
//		}
//
//		// Or panic on failure
//		config.MustLoad(&cfg)
//	}
//
// # Caching Behavior
//
// Each configuration type is loaded only once per application lifetime:
//
//	var cfg1 AppConfig
//	config.Load(&cfg1) // Loads from environment
//
//	var cfg2 AppConfig
//	config.Load(&cfg2) // Returns cached value, cfg1 == cfg2
//
// Different types are cached independently:
//
//	// Each type has its own cache entry
//	config.MustLoad(&AppConfig{})
//	config.MustLoad(&server.Config{})
//
// Mail options are not read through this package. They are decoded from
// settings.Settings so that the example apps can be started with an explicit
// settings mapping.
package config
