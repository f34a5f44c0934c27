package relays

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/nbd-wtf/go-nostr"
)

const (
	// DefaultCatalogTimeout bounds each relay's answer to a catalog query.
	DefaultCatalogTimeout = 5 * time.Second
	// DefaultEngagementTimeout bounds the cheaper per-episode lookups.
	DefaultEngagementTimeout = 2 * time.Second
)

// Coordinator issues the same filter to every configured source in parallel
// and joins whatever came back. A slow or failing source contributes
// nothing; it never fails the operation as a whole.
type Coordinator struct {
	sources []Source
}

func NewCoordinator(sources []Source) *Coordinator {
	return &Coordinator{sources: sources}
}

// SourceURLs returns the endpoint list for provenance reporting.
func (c *Coordinator) SourceURLs() []string {
	urls := make([]string, 0, len(c.sources))
	for _, s := range c.sources {
		urls = append(urls, s.URL())
	}
	return urls
}

// QueryAll fans filter out to all sources, bounding each source by timeout.
// Results are concatenated in completion order; callers must not rely on
// ordering. The returned slice is empty (not nil-checked as an error) when
// every source failed or timed out.
func (c *Coordinator) QueryAll(ctx context.Context, filter nostr.Filter, timeout time.Duration) []*nostr.Event {
	if timeout <= 0 {
		timeout = DefaultCatalogTimeout
	}

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		merged []*nostr.Event
	)

	for _, source := range c.sources {
		wg.Add(1)
		go func(source Source) {
			defer wg.Done()

			// The deadline is local to this source. Expiry here does not
			// cancel sibling queries.
			queryCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			events, err := source.Query(queryCtx, filter)
			if err != nil {
				slog.Warn("Relay query failed", "relay", source.URL(), "error", err)
				return
			}

			mu.Lock()
			merged = append(merged, events...)
			mu.Unlock()
		}(source)
	}

	wg.Wait()

	slog.Debug("Relay fan-out complete", "sources", len(c.sources), "events", len(merged))

	return merged
}
