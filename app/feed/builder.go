package feed

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/lysyi3m/relaycast/app/cache"
	"github.com/lysyi3m/relaycast/app/catalog"
)

// Result is one complete feed generation.
type Result struct {
	Document     string
	Health       Health
	EpisodeCount int
}

// Builder runs the full pipeline: discovery, reconciliation, synthesis.
// Relay failures degrade the result; the worst case is a valid document
// with zero items and static metadata. The injected cache short-circuits
// regeneration inside its TTL.
type Builder struct {
	service   *catalog.Service
	generator *Generator
	cache     *cache.Cache
	relayURLs []string
	creator   string
}

// NewBuilder wires the pipeline. cache may be nil to always regenerate.
func NewBuilder(service *catalog.Service, feedCache *cache.Cache, relayURLs []string, creatorPubKey string) *Builder {
	return &Builder{
		service:   service,
		generator: NewGenerator(),
		cache:     feedCache,
		relayURLs: relayURLs,
		creator:   creatorPubKey,
	}
}

// Run produces the feed, serving from cache unless force is set. Cache
// read/write problems are logged and absorbed; they never fail a build.
func (b *Builder) Run(ctx context.Context, force bool) Result {
	if !force && b.cache != nil {
		entry, err := b.cache.Get()
		if err != nil {
			slog.Warn("Feed cache read failed", "error", err)
		} else if entry != nil {
			var health Health
			if err := json.Unmarshal([]byte(entry.HealthJSON), &health); err == nil {
				slog.Debug("Serving cached feed", "generated_at", entry.GeneratedAt)
				return Result{Document: entry.Document, Health: health, EpisodeCount: entry.EpisodeCount}
			}
			slog.Warn("Cached health document unreadable, regenerating", "error", err)
		}
	}

	episodes := b.service.Episodes(ctx)
	metadata, remoteMetadata := b.service.Metadata(ctx)

	document := b.generator.Run(metadata, episodes, b.relayURLs)
	health := NewHealth(len(document), len(episodes), remoteMetadata, b.relayURLs, b.creator)

	slog.Info("Feed generated",
		"episodes", len(episodes),
		"bytes", len(document),
		"metadata_source", health.DataSource.Metadata)

	if b.cache != nil {
		healthJSON, err := json.Marshal(health)
		if err == nil {
			err = b.cache.Put(cache.Entry{
				Document:     document,
				HealthJSON:   string(healthJSON),
				EpisodeCount: len(episodes),
			})
		}
		if err != nil {
			slog.Warn("Feed cache write failed", "error", err)
		}
	}

	return Result{Document: document, Health: health, EpisodeCount: len(episodes)}
}
