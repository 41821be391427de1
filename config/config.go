// Package config holds the runtime settings for the narrator and player
// binaries: defaults, an optional config.yaml overlay, then environment
// variable overrides.
package config

import (
	"log/slog"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all configurable parameters. The narrator uses the listen
// and HTTP fields; the player uses the narrator address fields; both use
// the message limits.
type Config struct {
	// ListenHost/ListenPort is the narrator's TCP endpoint for players.
	ListenHost string `yaml:"listen_host"`
	ListenPort int    `yaml:"listen_port"`

	// HTTPPort serves the WebSocket transport (/ws) and the operator API.
	HTTPPort int `yaml:"http_port"`

	// NarratorHost/NarratorPort is where the player client connects.
	NarratorHost string `yaml:"narrator_host"`
	NarratorPort int    `yaml:"narrator_port"`

	// MaxMessageBytes bounds one framed protocol message.
	MaxMessageBytes int `yaml:"max_message_bytes"`

	// MaxNameLength bounds the hero name shown in narrator displays.
	MaxNameLength int `yaml:"max_name_length"`
}

// Defaults returns the stock configuration.
func Defaults() *Config {
	return &Config{
		ListenHost:      "0.0.0.0",
		ListenPort:      12345,
		HTTPPort:        8080,
		NarratorHost:    "127.0.0.1",
		NarratorPort:    12345,
		MaxMessageBytes: 64 * 1024,
		MaxNameLength:   48,
	}
}

// Load reads configuration from an optional config.yaml file, then
// applies environment variable overrides. Fields absent from both keep
// their defaults.
func Load() *Config {
	cfg := Defaults()

	if data, err := os.ReadFile("config.yaml"); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			slog.Warn("failed to parse config.yaml", "tag", "config", "err", err)
		}
	}

	overrideString(&cfg.ListenHost, "LISTEN_HOST")
	overrideInt(&cfg.ListenPort, "LISTEN_PORT")
	overrideInt(&cfg.HTTPPort, "HTTP_PORT")
	overrideString(&cfg.NarratorHost, "NARRATOR_HOST")
	overrideInt(&cfg.NarratorPort, "NARRATOR_PORT")
	overrideInt(&cfg.MaxMessageBytes, "MAX_MESSAGE_BYTES")
	overrideInt(&cfg.MaxNameLength, "MAX_NAME_LENGTH")

	return cfg
}

func overrideInt(field *int, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			*field = n
		} else {
			slog.Warn("invalid config override", "tag", "config", "key", envKey, "value", val)
		}
	}
}

func overrideString(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}
