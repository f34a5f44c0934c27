package catalog

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/nbd-wtf/go-nostr"
)

func addressable(id, identifier string, createdAt nostr.Timestamp) *nostr.Event {
	return &nostr.Event{
		ID:        id,
		PubKey:    creator,
		Kind:      KindEpisode,
		CreatedAt: createdAt,
		Tags:      nostr.Tags{{"d", identifier}},
	}
}

func ids(events []*nostr.Event) []string {
	out := make([]string, 0, len(events))
	for _, ev := range events {
		out = append(out, ev.ID)
	}
	return out
}

func TestDedup(t *testing.T) {
	a := addressable("a", "x", 1)
	b := addressable("b", "y", 2)

	out := Dedup([]*nostr.Event{a, b, a, a, b})
	if diff := cmp.Diff([]string{"a", "b"}, ids(out)); diff != "" {
		t.Errorf("dedup mismatch (-want +got):\n%s", diff)
	}
}

func TestLatestPerIdentity(t *testing.T) {
	old := addressable("old", "ep-1", 100)
	newer := addressable("newer", "ep-1", 200)
	other := addressable("other", "ep-2", 50)

	out := LatestPerIdentity([]*nostr.Event{old, newer, other})
	if diff := cmp.Diff([]string{"newer", "other"}, ids(out)); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestLatestPerIdentityTieKeepsFirstSeen(t *testing.T) {
	first := addressable("first", "ep-1", 100)
	second := addressable("second", "ep-1", 100)

	out := LatestPerIdentity([]*nostr.Event{first, second})
	if len(out) != 1 || out[0].ID != "first" {
		t.Errorf("equal timestamps should keep the first-seen event, got %v", ids(out))
	}
}

func TestLatestPerIdentityDistinctKinds(t *testing.T) {
	episode := addressable("ep", "shared", 100)
	trailer := addressable("tr", "shared", 200)
	trailer.Kind = KindTrailer

	out := LatestPerIdentity([]*nostr.Event{episode, trailer})
	if len(out) != 2 {
		t.Errorf("same identifier under different kinds are distinct identities, got %v", ids(out))
	}
}

func TestExcludeEdited(t *testing.T) {
	original := &nostr.Event{ID: "original", Kind: KindEpisode, CreatedAt: 300,
		Tags: nostr.Tags{{"title", "Pilot"}}}
	edit := &nostr.Event{ID: "edit", Kind: KindEpisode, CreatedAt: 100,
		Tags: nostr.Tags{{"title", "Pilot"}, {"edit", "original"}}}

	// The original is excluded even though its timestamp is greater.
	out := ExcludeEdited([]*nostr.Event{original, edit})
	if diff := cmp.Diff([]string{"edit"}, ids(out)); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestLatestPerTitle(t *testing.T) {
	v1 := &nostr.Event{ID: "v1", Kind: KindEpisode, CreatedAt: 100,
		Tags: nostr.Tags{{"title", "Pilot"}}}
	v2 := &nostr.Event{ID: "v2", Kind: KindEpisode, CreatedAt: 200,
		Tags: nostr.Tags{{"title", "Pilot"}}}
	other := &nostr.Event{ID: "other", Kind: KindEpisode, CreatedAt: 50,
		Tags: nostr.Tags{{"title", "Finale"}}}

	out := LatestPerTitle([]*nostr.Event{v1, v2, other})
	if diff := cmp.Diff([]string{"v2", "other"}, ids(out)); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestLatestPerTitleSkipsAddressable(t *testing.T) {
	a := &nostr.Event{ID: "a", Kind: KindEpisode, CreatedAt: 100,
		Tags: nostr.Tags{{"d", "ep-1"}, {"title", "Pilot"}}}
	b := &nostr.Event{ID: "b", Kind: KindEpisode, CreatedAt: 200,
		Tags: nostr.Tags{{"d", "ep-2"}, {"title", "Pilot"}}}

	// Addressable episodes sharing a title are distinct entities.
	out := LatestPerTitle([]*nostr.Event{a, b})
	if diff := cmp.Diff([]string{"a", "b"}, ids(out)); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestReconcileIdempotent(t *testing.T) {
	events := []*nostr.Event{
		addressable("a1", "ep-1", 100),
		addressable("a2", "ep-1", 200),
		addressable("b", "ep-2", 150),
		addressable("a2", "ep-1", 200), // served by a second relay
	}

	once := Reconcile(events)
	twice := Reconcile(once)

	if diff := cmp.Diff(ids(once), ids(twice)); diff != "" {
		t.Errorf("reconciliation should be idempotent (-once +twice):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"a2", "b"}, ids(once)); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestReconcileLegacyTitleDuplicates(t *testing.T) {
	v1 := &nostr.Event{ID: "v1", Kind: KindEpisode, CreatedAt: 100,
		Tags: nostr.Tags{{"title", "Pilot"}}}
	v2 := &nostr.Event{ID: "v2", Kind: KindEpisode, CreatedAt: 200,
		Tags: nostr.Tags{{"title", "Pilot"}}}

	// No d tags and no edit back-references: the identities fall back to
	// distinct event ids, so only title grouping collapses the pair.
	out := Reconcile([]*nostr.Event{v1, v2})
	if diff := cmp.Diff([]string{"v2"}, ids(out)); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestSortEpisodes(t *testing.T) {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	episodes := []Episode{
		{EventID: "mid", Title: "B", PublishedAt: base.Add(time.Hour)},
		{EventID: "new", Title: "C", PublishedAt: base.Add(2 * time.Hour)},
		{EventID: "old", Title: "A", PublishedAt: base},
	}

	SortEpisodes(episodes, NewestFirst)
	if episodes[0].EventID != "new" || episodes[2].EventID != "old" {
		t.Errorf("NewestFirst order wrong: %v", episodes)
	}

	SortEpisodes(episodes, OldestFirst)
	if episodes[0].EventID != "old" {
		t.Errorf("OldestFirst order wrong: %v", episodes)
	}

	SortEpisodes(episodes, ByTitle)
	if episodes[0].Title != "A" || episodes[2].Title != "C" {
		t.Errorf("ByTitle order wrong: %v", episodes)
	}
}

func TestSortEpisodesByEngagement(t *testing.T) {
	episodes := []Episode{
		{EventID: "quiet"},
		{EventID: "popular"},
	}
	counts := map[string]int64{"popular": 42, "quiet": 1}

	SortEpisodesByEngagement(episodes, counts)
	if episodes[0].EventID != "popular" {
		t.Errorf("engagement sort wrong: %v", episodes)
	}
}
