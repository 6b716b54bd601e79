// Package keyring keeps the intake client's AI provider keys in the system
// keychain, for running the pipeline in-process without the server.
package keyring

import (
	"errors"
	"fmt"
	"os"

	"github.com/zalando/go-keyring"
)

const serviceName = "monshin-intake"

// ErrNotFound is returned when a key is neither in the environment nor
// in the keychain.
var ErrNotFound = errors.New("api key not found")

// APIKey represents a named API key stored in the keychain.
type APIKey string

const (
	// OpenAI is used for transcription and, by default, the writer.
	OpenAI APIKey = "openai-api-key"
	// Anthropic is used when the writer provider is anthropic.
	Anthropic APIKey = "anthropic-api-key"
)

// AllAPIKeys returns all known API key types for iteration.
func AllAPIKeys() []APIKey {
	return []APIKey{OpenAI, Anthropic}
}

// DisplayName returns a human-readable name for the API key.
func (k APIKey) DisplayName() string {
	switch k {
	case OpenAI:
		return "openai"
	case Anthropic:
		return "anthropic"
	default:
		return string(k)
	}
}

// EnvVar is the environment variable that overrides the keychain entry.
func (k APIKey) EnvVar() string {
	switch k {
	case OpenAI:
		return "OPENAI_API_KEY"
	case Anthropic:
		return "ANTHROPIC_API_KEY"
	default:
		return ""
	}
}

// Get retrieves an API key value from the system keychain.
func Get(apiKey APIKey) (string, error) {
	value, err := keyring.Get(serviceName, string(apiKey))
	if errors.Is(err, keyring.ErrNotFound) {
		return "", fmt.Errorf("%w: %s", ErrNotFound, apiKey.DisplayName())
	}
	if err != nil {
		return "", fmt.Errorf("failed to get %s from keychain: %w", apiKey.DisplayName(), err)
	}

	return value, nil
}

// Lookup prefers the environment and falls back to the keychain.
func Lookup(apiKey APIKey) (string, error) {
	if env := apiKey.EnvVar(); env != "" {
		if v := os.Getenv(env); v != "" {
			return v, nil
		}
	}

	return Get(apiKey)
}

// Set stores an API key value in the system keychain.
func Set(apiKey APIKey, value string) error {
	if value == "" {
		return fmt.Errorf("refusing to store an empty %s key", apiKey.DisplayName())
	}

	if err := keyring.Set(serviceName, string(apiKey), value); err != nil {
		return fmt.Errorf("failed to set %s in keychain: %w", apiKey.DisplayName(), err)
	}

	return nil
}

// IsSet checks if an API key exists in the keychain.
func IsSet(apiKey APIKey) bool {
	_, err := keyring.Get(serviceName, string(apiKey))

	return err == nil
}

// APIKeyFromServiceName maps a service name (e.g., "openai") to an APIKey.
func APIKeyFromServiceName(name string) (APIKey, error) {
	for _, k := range AllAPIKeys() {
		if k.DisplayName() == name {
			return k, nil
		}
	}

	return "", fmt.Errorf("unknown service: %s", name)
}
