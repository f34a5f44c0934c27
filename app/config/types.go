package config

import (
	"github.com/lysyi3m/relaycast/app/catalog"
)

// Config is the podcast configuration file: the creator identity, the relay
// set to aggregate from, and static metadata defaults used when no remote
// metadata event is available (or to fill fields it leaves unset).
type Config struct {
	Creator CreatorInfo             `yaml:"creator"`
	Relays  []string                `yaml:"relays"`
	Podcast catalog.PodcastMetadata `yaml:"podcast"`
}

// CreatorInfo identifies the content owner whose events are aggregated.
type CreatorInfo struct {
	// PubKey is the hex-encoded public key; only events it authored become
	// catalog entries.
	PubKey string `yaml:"pubkey"`
	Name   string `yaml:"name"`
}
