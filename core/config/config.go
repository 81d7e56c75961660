package config

import (
	"errors"
	"fmt"
	"io/fs"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	ErrNotPointer    = errors.New("config: target must be a non-nil pointer to a struct")
	ErrParsingConfig = errors.New("config: failed to parse environment")
)

var (
	cache      sync.Map // reflect.Type -> cached value
	dotenvOnce sync.Once
	dotenvErr  error
)

// Load parses environment variables into cfg. The first call for a given type
// parses the environment; later calls copy the cached value into cfg.
func Load[T any](cfg *T) error {
	if cfg == nil {
		return ErrNotPointer
	}
	if reflect.TypeFor[T]().Kind() != reflect.Struct {
		return ErrNotPointer
	}

	typ := reflect.TypeFor[T]()
	if cached, ok := cache.Load(typ); ok {
		*cfg = cached.(T)
		return nil
	}

	if err := LoadDotEnv(); err != nil {
		return err
	}

	var loaded T
	if err := env.Parse(&loaded); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}

	actual, _ := cache.LoadOrStore(typ, loaded)
	*cfg = actual.(T)
	return nil
}

// MustLoad is like Load but panics on error.
func MustLoad[T any](cfg *T) {
	if err := Load(cfg); err != nil {
		panic(err)
	}
}

// LoadDotEnv loads a .env file from the working directory once per process.
// A missing file is not an error and existing variables are never overridden.
func LoadDotEnv() error {
	dotenvOnce.Do(func() {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			dotenvErr = fmt.Errorf("config: load .env: %w", err)
		}
	})
	return dotenvErr
}
