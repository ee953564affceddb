// Package keyring keeps secrets out of config files: the OpenWeatherMap API
// key and the PostgreSQL connection string live in the OS keyring.
package keyring

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	"github.com/julianstephens/homebase/internal/constants"
)

var (
	ErrNotFound           = errors.New("credentials not found in keyring")
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
)

// Secret names a keyring entry under the homebase service.
type Secret string

const (
	WeatherAPIKey    Secret = constants.WeatherKeyringUser
	ConnectionString Secret = constants.DefaultKeyringUser
)

// Secrets lists every entry homebase manages.
var Secrets = []Secret{WeatherAPIKey, ConnectionString}

// ParseSecret maps a user-facing name to a Secret.
func ParseSecret(name string) (Secret, error) {
	switch name {
	case "weather", "weather-key", string(WeatherAPIKey):
		return WeatherAPIKey, nil
	case "db", "database", string(ConnectionString):
		return ConnectionString, nil
	}
	return "", fmt.Errorf("unknown secret %q (want weather or db)", name)
}

func Get(s Secret) (string, error) {
	v, err := keyring.Get(constants.AppName, string(s))
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return v, nil
}

func Set(s Secret, value string) error {
	if value == "" {
		return fmt.Errorf("%s cannot be empty", s)
	}
	if err := keyring.Set(constants.AppName, string(s), value); err != nil {
		return fmt.Errorf("failed to store %s in keyring: %w", s, err)
	}
	return nil
}

func Delete(s Secret) error {
	if err := keyring.Delete(constants.AppName, string(s)); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete %s from keyring: %w", s, err)
	}
	return nil
}

func GetConnectionString() (string, error) { return Get(ConnectionString) }

func SetConnectionString(connStr string) error { return Set(ConnectionString, connStr) }

func GetWeatherAPIKey() (string, error) { return Get(WeatherAPIKey) }

func SetWeatherAPIKey(key string) error { return Set(WeatherAPIKey, key) }

// IsAvailable is a best-effort probe of the OS keyring.
func IsAvailable() bool {
	_, err := keyring.Get(constants.AppName, "test-availability")
	return err == nil || errors.Is(err, keyring.ErrNotFound)
}

// Mask shows only the last four characters of a secret.
func Mask(v string) string {
	if len(v) <= 4 {
		return "****"
	}
	return "****" + v[len(v)-4:]
}
