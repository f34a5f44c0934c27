// Package relays fans queries out to a set of independently operated Nostr
// relays and joins their partial results.
package relays

import (
	"context"
	"fmt"
	"sync"

	"github.com/nbd-wtf/go-nostr"
)

// Source is a single queryable event endpoint. Implementations must be safe
// for concurrent use by the coordinator.
type Source interface {
	Query(ctx context.Context, filter nostr.Filter) ([]*nostr.Event, error)
	URL() string
}

var _ Source = (*RelaySource)(nil)

// RelaySource queries a remote relay over its websocket connection. The
// connection is established lazily on first query and reused afterwards.
type RelaySource struct {
	url string

	mu    sync.Mutex
	relay *nostr.Relay
}

func NewRelaySource(url string) *RelaySource {
	return &RelaySource{url: url}
}

func (s *RelaySource) URL() string {
	return s.url
}

func (s *RelaySource) Query(ctx context.Context, filter nostr.Filter) ([]*nostr.Event, error) {
	relay, err := s.connect(ctx)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", s.url, err)
	}

	events, err := relay.QuerySync(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", s.url, err)
	}

	return events, nil
}

func (s *RelaySource) connect(ctx context.Context) (*nostr.Relay, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.relay != nil && s.relay.IsConnected() {
		return s.relay, nil
	}

	relay, err := nostr.RelayConnect(ctx, s.url)
	if err != nil {
		return nil, err
	}
	s.relay = relay

	return relay, nil
}

// Close drops the relay connection if one was established.
func (s *RelaySource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.relay == nil {
		return nil
	}
	err := s.relay.Close()
	s.relay = nil
	return err
}

// NewRelaySources builds one RelaySource per configured relay URL.
func NewRelaySources(urls []string) []Source {
	sources := make([]Source, 0, len(urls))
	for _, url := range urls {
		sources = append(sources, NewRelaySource(url))
	}
	return sources
}
