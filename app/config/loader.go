// Package config loads and validates the podcast configuration file.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

var hexKeyPattern = regexp.MustCompile(`^[0-9a-f]{64}$`)

// Load reads, validates, and normalizes the YAML configuration at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	setDefaults(&config)

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return &config, nil
}

func setDefaults(config *Config) {
	if config.Podcast.Language == "" {
		config.Podcast.Language = "en"
	}
	if config.Podcast.Medium == "" {
		config.Podcast.Medium = "podcast"
	}
	if config.Podcast.Type == "" {
		config.Podcast.Type = "episodic"
	}
	if config.Podcast.Author == "" {
		config.Podcast.Author = config.Creator.Name
	}

	// Canonicalize the language tag so readers get "en-US", not "EN_us".
	if tag, err := language.Parse(config.Podcast.Language); err == nil {
		config.Podcast.Language = tag.String()
	}
}

func validate(config *Config) error {
	key := strings.ToLower(config.Creator.PubKey)
	if !hexKeyPattern.MatchString(key) {
		return fmt.Errorf("creator pubkey must be 64 hex characters")
	}
	config.Creator.PubKey = key

	if len(config.Relays) == 0 {
		return fmt.Errorf("at least one relay is required")
	}
	for i, relay := range config.Relays {
		if !strings.HasPrefix(relay, "wss://") && !strings.HasPrefix(relay, "ws://") {
			return fmt.Errorf("relay at index %d must be a ws:// or wss:// URL: %s", i, relay)
		}
	}

	total := 0
	for i, recipient := range config.Podcast.Value.Recipients {
		if recipient.Address == "" {
			return fmt.Errorf("value recipient at index %d has no address", i)
		}
		total += recipient.Split
	}
	if len(config.Podcast.Value.Recipients) > 0 && total != 100 {
		return fmt.Errorf("value recipient splits sum to %d, want 100", total)
	}

	return nil
}
