// Package catalog maps raw relay events into the podcast domain and
// reconciles per-relay result sets into one canonical collection.
package catalog

import (
	"time"

	"github.com/nbd-wtf/go-nostr"
	"github.com/nbd-wtf/go-nostr/nip19"
)

// Event kinds understood by this catalog. The set is closed at this
// protocol version; mapping dispatches on the kind discriminator.
const (
	KindEpisode         = 54
	KindTrailer         = 55
	KindPodcastMetadata = 30078
	KindRepost          = 6
	KindReaction        = 7
	KindGenericRepost   = 16
	KindComment         = 1111
)

// MetadataIdentifier is the well-known d-tag identifier of the single
// addressable event carrying feed-level metadata.
const MetadataIdentifier = "podcast-metadata"

// Episode is one published podcast episode. An episode without an audio URL
// is unplayable but still catalog-listed.
type Episode struct {
	EventID     string
	PubKey      string
	Identifier  string
	Title       string
	Description string
	Content     string
	AudioURL    string
	AudioType   string
	ImageURL    string
	Topics      []string
	Size        int64 // enclosure bytes, 0 when unknown
	Duration    int64 // seconds
	Number      int
	Season      int
	Explicit    bool
	PublishedAt time.Time
	CreatedAt   time.Time
}

// Address returns the stable nip19 address of the episode, usable as a
// permalink path segment. Returns "" when encoding fails.
func (e Episode) Address(relays []string) string {
	naddr, err := nip19.EncodeEntity(e.PubKey, KindEpisode, e.Identifier, relays)
	if err != nil {
		return ""
	}
	return naddr
}

// Trailer is a short promotional media item.
type Trailer struct {
	EventID     string
	PubKey      string
	Identifier  string
	Title       string
	URL         string
	MIMEType    string
	Length      int64 // bytes, 0 when unknown
	Season      int
	PublishedAt time.Time
	CreatedAt   time.Time
}

// RepostRef points at an original event that was reposted.
type RepostRef struct {
	EventID      string
	TargetID     string
	AuthorKey    string
	RelayHint    string
	OriginalKind int
	CreatedAt    time.Time
}

// PodcastMetadata holds the feed-level descriptive fields. Remote metadata
// events carry a JSON body with these fields, overlaid on static defaults.
type PodcastMetadata struct {
	Title       string   `json:"title" yaml:"title"`
	Description string   `json:"description" yaml:"description"`
	Author      string   `json:"author" yaml:"author"`
	Email       string   `json:"email" yaml:"email"`
	Link        string   `json:"link" yaml:"link"`
	Language    string   `json:"language" yaml:"language"`
	Copyright   string   `json:"copyright" yaml:"copyright"`
	ImageURL    string   `json:"image" yaml:"image"`
	Categories  []string `json:"categories" yaml:"categories"`
	Explicit    bool     `json:"explicit" yaml:"explicit"`
	Type        string   `json:"type" yaml:"type"`

	GUID      string   `json:"guid" yaml:"guid"`
	Medium    string   `json:"medium" yaml:"medium"`
	Locked    bool     `json:"locked" yaml:"locked"`
	Publisher string   `json:"publisher" yaml:"publisher"`
	License   string   `json:"license" yaml:"license"`
	Location  string   `json:"location" yaml:"location"`
	Persons   []Person `json:"persons" yaml:"persons"`
	Funding   string   `json:"funding" yaml:"funding"`

	Value Value `json:"value" yaml:"value"`
}

// Person is a podcast:person entry.
type Person struct {
	Name string `json:"name" yaml:"name"`
	Role string `json:"role" yaml:"role"`
	Img  string `json:"img" yaml:"img"`
	Href string `json:"href" yaml:"href"`
}

// Value is the monetization block: a suggested amount and its split
// recipients.
type Value struct {
	Amount     float64          `json:"amount" yaml:"amount"`
	Recipients []ValueRecipient `json:"recipients" yaml:"recipients"`
}

// ValueRecipient is one payment split destination.
type ValueRecipient struct {
	Name        string `json:"name" yaml:"name"`
	Type        string `json:"type" yaml:"type"`
	Address     string `json:"address" yaml:"address"`
	Split       int    `json:"split" yaml:"split"`
	CustomKey   string `json:"customKey" yaml:"custom_key"`
	CustomValue string `json:"customValue" yaml:"custom_value"`
	Fee         bool   `json:"fee" yaml:"fee"`
}

// Engagement aggregates reactions to a single target event.
type Engagement struct {
	Likes    int
	Reposts  int
	Comments int
	ZapCount int
	ZapSats  int64
}

// identity is the logical key of an addressable event: only the newest
// event per identity is current.
type identity struct {
	kind       int
	pubKey     string
	identifier string
}

func identityOf(ev *nostr.Event) identity {
	return identity{kind: ev.Kind, pubKey: ev.PubKey, identifier: identifierOf(ev)}
}

// identifierOf returns the d-tag value, falling back to the event id for
// events published before identifiers were introduced.
func identifierOf(ev *nostr.Event) string {
	if tag := ev.Tags.GetFirst([]string{"d"}); tag != nil && tag.Value() != "" {
		return tag.Value()
	}
	return ev.ID
}
