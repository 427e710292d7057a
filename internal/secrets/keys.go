package secrets

import (
	"errors"
	"fmt"
	"strings"

	"rfpwatch/internal/config"

	"github.com/zalando/go-keyring"
)

const (
	// "Service" groups the app's secrets in the OS keychain.
	KeyringService = "rfpwatch"
)

var ErrNotFound = errors.New("api key not found")

func KeyringAccount(sourceName string) string {
	return "source:" + sourceName
}

// SourceKey resolves a source's API key: the environment variable named by
// api_key_env first, then the OS keychain.
func SourceKey(src config.Source, getenv func(string) string) (string, error) {
	if src.APIKeyEnv != "" {
		if v := strings.TrimSpace(getenv(src.APIKeyEnv)); v != "" {
			return v, nil
		}
	}
	v, err := keyring.Get(KeyringService, KeyringAccount(src.Name))
	if err == nil && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v), nil
	}
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return "", fmt.Errorf("keychain lookup for %s: %w", src.Name, err)
	}
	return "", fmt.Errorf("%s: %w", src.Name, ErrNotFound)
}

func SetSourceKey(sourceName, key string) error {
	if strings.TrimSpace(sourceName) == "" {
		return errors.New("source name is empty")
	}
	if strings.TrimSpace(key) == "" {
		return errors.New("key is empty")
	}
	return keyring.Set(KeyringService, KeyringAccount(sourceName), strings.TrimSpace(key))
}

func DeleteSourceKey(sourceName string) error {
	if strings.TrimSpace(sourceName) == "" {
		return errors.New("source name is empty")
	}
	return keyring.Delete(KeyringService, KeyringAccount(sourceName))
}
