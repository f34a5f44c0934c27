package catalog

import (
	"encoding/json"
	"path"
	"strconv"
	"strings"

	"github.com/nbd-wtf/go-nostr"
)

// mimeByExtension resolves a media MIME type when no explicit type tag is
// present.
var mimeByExtension = map[string]string{
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".m4a":  "audio/mp4",
	".ogg":  "audio/ogg",
	".mp4":  "video/mp4",
	".webm": "video/webm",
	".mov":  "video/quicktime",
}

const defaultMIMEType = "audio/mpeg"

// Mapper converts raw events into domain records. Events that fail
// validation (missing required tags, wrong author) are dropped, never
// surfaced as errors.
type Mapper struct {
	creator string
}

// NewMapper creates a mapper that only accepts events authored by the
// configured creator pubkey.
func NewMapper(creatorPubKey string) *Mapper {
	return &Mapper{creator: creatorPubKey}
}

// Episode maps a kind-54 event. Requires title and audio tags and the
// creator's authorship.
func (m *Mapper) Episode(ev *nostr.Event) (Episode, bool) {
	if ev.Kind != KindEpisode || ev.PubKey != m.creator {
		return Episode{}, false
	}

	title := tagValue(ev, "title")
	audio := ev.Tags.GetFirst([]string{"audio"})
	if title == "" || audio == nil || audio.Value() == "" {
		return Episode{}, false
	}

	audioType := ""
	if len(*audio) > 2 {
		audioType = (*audio)[2]
	}
	if audioType == "" {
		audioType = mimeFromURL(audio.Value())
	}

	episode := Episode{
		EventID:     ev.ID,
		PubKey:      ev.PubKey,
		Identifier:  identifierOf(ev),
		Title:       title,
		Description: tagValue(ev, "description"),
		Content:     ev.Content,
		AudioURL:    audio.Value(),
		AudioType:   audioType,
		ImageURL:    tagValue(ev, "image"),
		Size:        tagInt64(ev, "size"),
		Duration:    tagInt64(ev, "duration"),
		Number:      int(tagInt64(ev, "episode")),
		Season:      int(tagInt64(ev, "season")),
		Explicit:    tagValue(ev, "explicit") == "true",
		PublishedAt: ev.CreatedAt.Time(),
		CreatedAt:   ev.CreatedAt.Time(),
	}

	// Topic order is preserved; duplicates are the caller's concern.
	for _, tag := range ev.Tags.GetAll([]string{"t"}) {
		if tag.Value() != "" {
			episode.Topics = append(episode.Topics, tag.Value())
		}
	}

	return episode, true
}

// Trailer maps a kind-55 event. Requires a title; the media type falls back
// to the URL's file extension.
func (m *Mapper) Trailer(ev *nostr.Event) (Trailer, bool) {
	if ev.Kind != KindTrailer || ev.PubKey != m.creator {
		return Trailer{}, false
	}

	title := tagValue(ev, "title")
	if title == "" {
		return Trailer{}, false
	}

	url := tagValue(ev, "url")
	mimeType := tagValue(ev, "type")
	if mimeType == "" {
		mimeType = mimeFromURL(url)
	}

	return Trailer{
		EventID:     ev.ID,
		PubKey:      ev.PubKey,
		Identifier:  identifierOf(ev),
		Title:       title,
		URL:         url,
		MIMEType:    mimeType,
		Length:      tagInt64(ev, "l"),
		Season:      int(tagInt64(ev, "season")),
		PublishedAt: ev.CreatedAt.Time(),
		CreatedAt:   ev.CreatedAt.Time(),
	}, true
}

// Metadata overlays the event's JSON content on top of defaults. A content
// body that does not parse leaves the defaults untouched and rejects the
// event.
func (m *Mapper) Metadata(ev *nostr.Event, defaults PodcastMetadata) (PodcastMetadata, bool) {
	if ev.Kind != KindPodcastMetadata || ev.PubKey != m.creator {
		return defaults, false
	}
	if identifierOf(ev) != MetadataIdentifier {
		return defaults, false
	}

	merged := defaults
	if err := json.Unmarshal([]byte(ev.Content), &merged); err != nil {
		return defaults, false
	}

	return merged, true
}

// Repost maps a kind-6/16 event into a reference to the original.
func (m *Mapper) Repost(ev *nostr.Event) (RepostRef, bool) {
	if ev.Kind != KindRepost && ev.Kind != KindGenericRepost {
		return RepostRef{}, false
	}

	target := ev.Tags.GetFirst([]string{"e"})
	if target == nil || target.Value() == "" {
		return RepostRef{}, false
	}

	ref := RepostRef{
		EventID:   ev.ID,
		TargetID:  target.Value(),
		AuthorKey: tagValue(ev, "p"),
		CreatedAt: ev.CreatedAt.Time(),
	}
	if len(*target) > 2 {
		ref.RelayHint = (*target)[2]
	}
	if kind := tagValue(ev, "k"); kind != "" {
		if n, err := strconv.Atoi(kind); err == nil {
			ref.OriginalKind = n
		}
	}

	return ref, true
}

// Episodes maps and filters a raw batch, dropping anything malformed.
func (m *Mapper) Episodes(events []*nostr.Event) []Episode {
	episodes := make([]Episode, 0, len(events))
	for _, ev := range events {
		if episode, ok := m.Episode(ev); ok {
			episodes = append(episodes, episode)
		}
	}
	return episodes
}

// Trailers maps and filters a raw batch, dropping anything malformed.
func (m *Mapper) Trailers(events []*nostr.Event) []Trailer {
	trailers := make([]Trailer, 0, len(events))
	for _, ev := range events {
		if trailer, ok := m.Trailer(ev); ok {
			trailers = append(trailers, trailer)
		}
	}
	return trailers
}

func mimeFromURL(url string) string {
	ext := strings.ToLower(path.Ext(url))
	if i := strings.IndexAny(ext, "?#"); i >= 0 {
		ext = ext[:i]
	}
	if mime, ok := mimeByExtension[ext]; ok {
		return mime
	}
	return defaultMIMEType
}

func tagValue(ev *nostr.Event, name string) string {
	if tag := ev.Tags.GetFirst([]string{name}); tag != nil {
		return tag.Value()
	}
	return ""
}

func tagInt64(ev *nostr.Event, name string) int64 {
	value := tagValue(ev, name)
	if value == "" {
		return 0
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
