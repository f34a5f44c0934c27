package catalog

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/nbd-wtf/go-nostr"
)

const creator = "creatorpubkey"

func episodeEvent(id string, tags nostr.Tags) *nostr.Event {
	return &nostr.Event{
		ID:        id,
		PubKey:    creator,
		Kind:      KindEpisode,
		CreatedAt: 1700000000,
		Tags:      tags,
		Content:   "show notes",
	}
}

func TestMapEpisode(t *testing.T) {
	mapper := NewMapper(creator)

	ev := episodeEvent("ev1", nostr.Tags{
		{"d", "ep-1"},
		{"title", "First Episode"},
		{"audio", "https://cdn.example.com/ep1.mp3", "audio/mpeg"},
		{"description", "An introduction"},
		{"image", "https://cdn.example.com/ep1.jpg"},
		{"duration", "1830"},
		{"episode", "1"},
		{"season", "2"},
		{"explicit", "true"},
		{"t", "law"},
		{"t", "history"},
		{"t", "law"},
	})

	episode, ok := mapper.Episode(ev)
	if !ok {
		t.Fatal("expected a valid episode")
	}

	want := Episode{
		EventID:     "ev1",
		PubKey:      creator,
		Identifier:  "ep-1",
		Title:       "First Episode",
		Description: "An introduction",
		Content:     "show notes",
		AudioURL:    "https://cdn.example.com/ep1.mp3",
		AudioType:   "audio/mpeg",
		ImageURL:    "https://cdn.example.com/ep1.jpg",
		Topics:      []string{"law", "history", "law"},
		Duration:    1830,
		Number:      1,
		Season:      2,
		Explicit:    true,
		PublishedAt: nostr.Timestamp(1700000000).Time(),
		CreatedAt:   nostr.Timestamp(1700000000).Time(),
	}
	if diff := cmp.Diff(want, episode); diff != "" {
		t.Errorf("episode mismatch (-want +got):\n%s", diff)
	}
}

func TestMapEpisodeIdentifierFallsBackToEventID(t *testing.T) {
	mapper := NewMapper(creator)

	ev := episodeEvent("ev2", nostr.Tags{
		{"title", "Untagged"},
		{"audio", "https://cdn.example.com/ep2.mp3"},
	})

	episode, ok := mapper.Episode(ev)
	if !ok {
		t.Fatal("expected a valid episode")
	}
	if episode.Identifier != "ev2" {
		t.Errorf("Identifier = %q, want event id fallback", episode.Identifier)
	}
	if episode.AudioType != "audio/mpeg" {
		t.Errorf("AudioType = %q, want inferred audio/mpeg", episode.AudioType)
	}
}

func TestMapEpisodeNegativeNumericTags(t *testing.T) {
	mapper := NewMapper(creator)

	ev := episodeEvent("ev-neg", nostr.Tags{
		{"title", "Hostile Sizes"},
		{"audio", "https://cdn.example.com/ep.mp3"},
		{"size", "-1"},
		{"duration", "-90"},
	})

	episode, ok := mapper.Episode(ev)
	if !ok {
		t.Fatal("expected a valid episode")
	}
	if episode.Size != 0 {
		t.Errorf("Size = %d, negative values must fall back to unknown", episode.Size)
	}
	if episode.Duration != 0 {
		t.Errorf("Duration = %d, negative values must fall back to unknown", episode.Duration)
	}
}

func TestMapEpisodeRejections(t *testing.T) {
	mapper := NewMapper(creator)

	noTitle := episodeEvent("ev3", nostr.Tags{{"audio", "https://x/a.mp3"}})
	if _, ok := mapper.Episode(noTitle); ok {
		t.Error("episode without title should be rejected")
	}

	noAudio := episodeEvent("ev4", nostr.Tags{{"title", "No Audio"}})
	if _, ok := mapper.Episode(noAudio); ok {
		t.Error("episode without audio should be rejected")
	}

	wrongAuthor := episodeEvent("ev5", nostr.Tags{
		{"title", "Imposter"},
		{"audio", "https://x/a.mp3"},
	})
	wrongAuthor.PubKey = "someoneelse"
	if _, ok := mapper.Episode(wrongAuthor); ok {
		t.Error("episode from a different author should be rejected")
	}

	wrongKind := episodeEvent("ev6", nostr.Tags{
		{"title", "Wrong Kind"},
		{"audio", "https://x/a.mp3"},
	})
	wrongKind.Kind = 1
	if _, ok := mapper.Episode(wrongKind); ok {
		t.Error("non-episode kind should be rejected")
	}
}

func TestMapTrailerMIMEInference(t *testing.T) {
	mapper := NewMapper(creator)

	tests := []struct {
		url  string
		mime string
	}{
		{"https://x/t.mp3", "audio/mpeg"},
		{"https://x/t.wav", "audio/wav"},
		{"https://x/t.m4a", "audio/mp4"},
		{"https://x/t.ogg", "audio/ogg"},
		{"https://x/t.mp4", "video/mp4"},
		{"https://x/t.webm", "video/webm"},
		{"https://x/t.mov", "video/quicktime"},
		{"https://x/t.unknown", "audio/mpeg"},
		{"https://x/t.MP4", "video/mp4"},
	}

	for _, tt := range tests {
		ev := &nostr.Event{
			ID:     "tr1",
			PubKey: creator,
			Kind:   KindTrailer,
			Tags: nostr.Tags{
				{"title", "Trailer"},
				{"url", tt.url},
			},
		}
		trailer, ok := mapper.Trailer(ev)
		if !ok {
			t.Fatalf("expected valid trailer for %s", tt.url)
		}
		if trailer.MIMEType != tt.mime {
			t.Errorf("MIMEType for %s = %q, want %q", tt.url, trailer.MIMEType, tt.mime)
		}
	}
}

func TestMapTrailerExplicitType(t *testing.T) {
	mapper := NewMapper(creator)

	ev := &nostr.Event{
		ID:     "tr2",
		PubKey: creator,
		Kind:   KindTrailer,
		Tags: nostr.Tags{
			{"title", "Trailer"},
			{"url", "https://x/t.bin"},
			{"type", "video/mp4"},
			{"l", "123456"},
			{"season", "3"},
		},
	}

	trailer, ok := mapper.Trailer(ev)
	if !ok {
		t.Fatal("expected valid trailer")
	}
	if trailer.MIMEType != "video/mp4" {
		t.Errorf("MIMEType = %q, explicit type tag should win", trailer.MIMEType)
	}
	if trailer.Length != 123456 || trailer.Season != 3 {
		t.Errorf("Length/Season = %d/%d, want 123456/3", trailer.Length, trailer.Season)
	}
}

func TestMapMetadataOverlaysDefaults(t *testing.T) {
	mapper := NewMapper(creator)
	defaults := PodcastMetadata{
		Title:    "Default Title",
		Author:   "Default Author",
		Language: "en",
	}

	ev := &nostr.Event{
		ID:      "md1",
		PubKey:  creator,
		Kind:    KindPodcastMetadata,
		Tags:    nostr.Tags{{"d", MetadataIdentifier}, {"title", "Display"}},
		Content: `{"title":"Remote Title","description":"Remote desc"}`,
	}

	merged, ok := mapper.Metadata(ev, defaults)
	if !ok {
		t.Fatal("expected metadata to apply")
	}
	if merged.Title != "Remote Title" {
		t.Errorf("Title = %q, remote should override default", merged.Title)
	}
	if merged.Author != "Default Author" {
		t.Errorf("Author = %q, default should survive overlay", merged.Author)
	}
	if merged.Description != "Remote desc" {
		t.Errorf("Description = %q", merged.Description)
	}

	// Malformed JSON rejects the event and leaves defaults standing.
	ev.Content = "{broken"
	merged, ok = mapper.Metadata(ev, defaults)
	if ok {
		t.Error("malformed metadata content should be rejected")
	}
	if merged.Title != "Default Title" {
		t.Errorf("Title = %q, want untouched defaults", merged.Title)
	}

	// Wrong identifier is not the podcast metadata entity.
	ev.Content = `{"title":"Remote"}`
	ev.Tags = nostr.Tags{{"d", "something-else"}}
	if _, ok := mapper.Metadata(ev, defaults); ok {
		t.Error("metadata with wrong identifier should be rejected")
	}
}

func TestMapRepost(t *testing.T) {
	mapper := NewMapper(creator)

	ev := &nostr.Event{
		ID:        "rp1",
		PubKey:    "fan",
		Kind:      KindRepost,
		CreatedAt: 1700000100,
		Tags: nostr.Tags{
			{"e", "original-id", "wss://relay.example.com"},
			{"p", "original-author"},
			{"k", "54"},
		},
	}

	ref, ok := mapper.Repost(ev)
	if !ok {
		t.Fatal("expected valid repost reference")
	}
	if ref.TargetID != "original-id" || ref.AuthorKey != "original-author" {
		t.Errorf("unexpected ref %+v", ref)
	}
	if ref.RelayHint != "wss://relay.example.com" {
		t.Errorf("RelayHint = %q", ref.RelayHint)
	}
	if ref.OriginalKind != KindEpisode {
		t.Errorf("OriginalKind = %d", ref.OriginalKind)
	}

	noTarget := &nostr.Event{ID: "rp2", Kind: KindGenericRepost}
	if _, ok := mapper.Repost(noTarget); ok {
		t.Error("repost without target should be rejected")
	}
}

func TestEpisodesFiltersSilently(t *testing.T) {
	mapper := NewMapper(creator)

	events := []*nostr.Event{
		episodeEvent("good", nostr.Tags{{"title", "Good"}, {"audio", "https://x/a.mp3"}}),
		episodeEvent("bad", nostr.Tags{{"title", "No Audio"}}),
	}

	episodes := mapper.Episodes(events)
	if len(episodes) != 1 {
		t.Fatalf("expected 1 valid episode, got %d", len(episodes))
	}
	if episodes[0].EventID != "good" {
		t.Errorf("surviving episode = %q", episodes[0].EventID)
	}
}
