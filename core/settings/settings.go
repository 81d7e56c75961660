// Package settings holds the flat key/value configuration an application is
// started with. Components read their options from it by key.
//
//	s := settings.New(map[string]any{
//		"MAIL_SERVER":         "smtp.example.com",
//		"MAIL_PORT":           587,
//		"MAIL_USE_TLS":        true,
//		"MAIL_DEFAULT_SENDER": "bot@example.com",
//	})
//
// Settings are immutable. With returns a modified copy, so the same value can
// be shared between components and goroutines.
package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/mailkit/core/component"
)

var ErrDecode = errors.New("failed to decode settings")

// Settings is an immutable string-keyed mapping of configuration values.
type Settings struct {
	values map[string]any
}

// New creates settings from a copy of values.
func New(values map[string]any) Settings {
	copied := make(map[string]any, len(values))
	for k, v := range values {
		copied[k] = v
	}
	return Settings{values: copied}
}

// FromEnv creates settings from defaults, replacing every default whose key is
// set in the process environment. A .env file in the working directory is
// loaded first when present; it never overrides variables that are already set.
func FromEnv(defaults map[string]any) (Settings, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Settings{}, fmt.Errorf("load .env: %w", err)
	}

	s := New(defaults)
	for key := range s.values {
		if v, ok := os.LookupEnv(key); ok {
			s.values[key] = v
		}
	}
	return s, nil
}

// FromYAML creates settings from defaults overlaid with the top-level keys
// of the YAML mapping in path. Values must be scalars or lists of scalars.
//
//	MAIL_SERVER: smtp.example.com
//	MAIL_PORT: 587
//	MAIL_USE_TLS: true
func FromYAML(path string, defaults map[string]any) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Settings{}, fmt.Errorf("%w: %s: %w", ErrDecode, path, err)
	}

	s := New(defaults)
	for key, v := range doc {
		switch v := v.(type) {
		case map[string]any:
			return Settings{}, fmt.Errorf("%w: %s: %s must not be a mapping", ErrDecode, path, key)
		case []any:
			items := make([]string, len(v))
			for i, item := range v {
				items[i] = stringify(item)
			}
			s.values[key] = items
		default:
			s.values[key] = v
		}
	}
	return s, nil
}

// Get returns the raw value stored under key.
func (s Settings) Get(key string) (any, bool) {
	v, ok := s.values[key]
	return v, ok
}

// String returns the value under key formatted as a string, or "" if unset.
func (s Settings) String(key string) string {
	v, ok := s.values[key]
	if !ok {
		return ""
	}
	return stringify(v)
}

// Int returns the value under key as an int.
// String values are parsed; the second result is false if the key is unset or not numeric.
func (s Settings) Int(key string) (int, bool) {
	switch v := s.values[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		return n, err == nil
	default:
		return 0, false
	}
}

// Bool returns the value under key as a bool.
// String values are parsed with strconv.ParseBool.
func (s Settings) Bool(key string) (bool, bool) {
	switch v := s.values[key].(type) {
	case bool:
		return v, true
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		return b, err == nil
	default:
		return false, false
	}
}

// Keys returns all keys in sorted order.
func (s Settings) Keys() []string {
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Len returns the number of keys.
func (s Settings) Len() int {
	return len(s.values)
}

// Values returns a copy of the underlying map.
func (s Settings) Values() map[string]any {
	return New(s.values).values
}

// With returns a copy of the settings with key set to value.
func (s Settings) With(key string, value any) Settings {
	next := New(s.values)
	next.values[key] = value
	return next
}

// Decode fills dst, a pointer to a struct, from the settings using the same
// `env` and `envDefault` struct tags as the config package. Only the settings
// are consulted, never the process environment.
func (s Settings) Decode(dst any) error {
	environment := make(map[string]string, len(s.values))
	for k, v := range s.values {
		environment[k] = stringify(v)
	}

	if err := env.ParseWithOptions(dst, env.Options{Environment: environment}); err != nil {
		return errors.Join(ErrDecode, err)
	}
	return nil
}

// Component supplies s to the container as settings.Settings.
func Component(s Settings) component.Component {
	return component.ComponentFunc(func(c *component.Container) error {
		return component.Supply(c, s)
	})
}

func stringify(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case time.Duration:
		return v.String()
	case []string:
		return strings.Join(v, ",")
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
