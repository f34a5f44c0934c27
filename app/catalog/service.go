package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nbd-wtf/go-nostr"

	"github.com/lysyi3m/relaycast/app/relays"
	"github.com/lysyi3m/relaycast/app/zaps"
)

// Service runs the discovery pipeline: fan relay queries out, map the raw
// batches into domain records, reconcile, sort. Relay failures degrade to
// smaller result sets; only the caller decides whether empty is fatal.
type Service struct {
	coordinator *relays.Coordinator
	mapper      *Mapper
	creator     string
	defaults    PodcastMetadata
	limit       int
}

func NewService(coordinator *relays.Coordinator, creatorPubKey string, defaults PodcastMetadata, limit int) *Service {
	return &Service{
		coordinator: coordinator,
		mapper:      NewMapper(creatorPubKey),
		creator:     creatorPubKey,
		defaults:    defaults,
		limit:       limit,
	}
}

// Episodes fetches, reconciles, and sorts the episode catalog, newest
// first.
func (s *Service) Episodes(ctx context.Context) []Episode {
	filter := nostr.Filter{
		Kinds:   []int{KindEpisode},
		Authors: []string{s.creator},
		Limit:   s.limit,
	}

	raw := s.coordinator.QueryAll(ctx, filter, relays.DefaultCatalogTimeout)
	episodes := s.mapper.Episodes(Reconcile(raw))
	SortEpisodes(episodes, NewestFirst)

	slog.Debug("Episode catalog assembled", "raw", len(raw), "episodes", len(episodes))

	return episodes
}

// Trailers fetches and reconciles the trailer list, newest first.
func (s *Service) Trailers(ctx context.Context) []Trailer {
	filter := nostr.Filter{
		Kinds:   []int{KindTrailer},
		Authors: []string{s.creator},
		Limit:   s.limit,
	}

	raw := s.coordinator.QueryAll(ctx, filter, relays.DefaultCatalogTimeout)
	trailers := s.mapper.Trailers(Reconcile(raw))
	SortTrailers(trailers)

	return trailers
}

// Metadata fetches the feed-level metadata event and overlays it on the
// static defaults. "Latest wins" applies across the whole relay set. The
// second return reports whether remote metadata contributed; when no relay
// answered, the defaults stand alone.
func (s *Service) Metadata(ctx context.Context) (PodcastMetadata, bool) {
	filter := nostr.Filter{
		Kinds:   []int{KindPodcastMetadata},
		Authors: []string{s.creator},
		Tags:    nostr.TagMap{"d": []string{MetadataIdentifier}},
		Limit:   s.limit,
	}

	raw := Reconcile(s.coordinator.QueryAll(ctx, filter, relays.DefaultCatalogTimeout))
	for _, ev := range raw {
		if merged, ok := s.mapper.Metadata(ev, s.defaults); ok {
			return merged, true
		}
	}

	slog.Debug("No remote metadata, using static defaults")

	return s.defaults, false
}

// Engagement fetches reactions, reposts, comments, and zaps referencing the
// episode. References by event id and by addressable coordinate are
// separate queries because tag conditions combine as AND within one filter;
// duplicates across the two are removed while counting.
func (s *Service) Engagement(ctx context.Context, episode Episode) Engagement {
	kinds := []int{KindReaction, KindRepost, KindGenericRepost, KindComment, zaps.KindZapReceipt}
	coordinate := fmt.Sprintf("%d:%s:%s", KindEpisode, episode.PubKey, episode.Identifier)

	raw := s.coordinator.QueryAll(ctx, nostr.Filter{
		Kinds: kinds,
		Tags:  nostr.TagMap{"e": []string{episode.EventID}},
		Limit: s.limit,
	}, relays.DefaultEngagementTimeout)

	raw = append(raw, s.coordinator.QueryAll(ctx, nostr.Filter{
		Kinds: kinds,
		Tags:  nostr.TagMap{"a": []string{coordinate}},
		Limit: s.limit,
	}, relays.DefaultEngagementTimeout)...)

	return CountEngagement(raw)
}

// SourceURLs exposes the relay endpoints for provenance reporting.
func (s *Service) SourceURLs() []string {
	return s.coordinator.SourceURLs()
}
