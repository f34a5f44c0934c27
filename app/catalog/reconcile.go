package catalog

import (
	"sort"

	"github.com/nbd-wtf/go-nostr"
)

// Dedup removes physical duplicates by event id. Identical ids imply
// identical content, so first-seen wins.
func Dedup(events []*nostr.Event) []*nostr.Event {
	seen := make(map[string]bool, len(events))
	out := make([]*nostr.Event, 0, len(events))
	for _, ev := range events {
		if seen[ev.ID] {
			continue
		}
		seen[ev.ID] = true
		out = append(out, ev)
	}
	return out
}

// LatestPerIdentity resolves edit chains for addressable events: among all
// events sharing (kind, pubkey, identifier), only the one with the greatest
// CreatedAt survives. Equal timestamps keep the first-seen event.
func LatestPerIdentity(events []*nostr.Event) []*nostr.Event {
	latest := make(map[identity]*nostr.Event, len(events))
	order := make([]identity, 0, len(events))

	for _, ev := range events {
		key := identityOf(ev)
		current, ok := latest[key]
		if !ok {
			latest[key] = ev
			order = append(order, key)
			continue
		}
		if ev.CreatedAt > current.CreatedAt {
			latest[key] = ev
		}
	}

	out := make([]*nostr.Event, 0, len(order))
	for _, key := range order {
		out = append(out, latest[key])
	}
	return out
}

// ExcludeEdited drops any event named by another event's edit tag. An
// edited original is superseded regardless of its own timestamp.
func ExcludeEdited(events []*nostr.Event) []*nostr.Event {
	superseded := make(map[string]bool)
	for _, ev := range events {
		for _, tag := range ev.Tags.GetAll([]string{"edit"}) {
			if tag.Value() != "" {
				superseded[tag.Value()] = true
			}
		}
	}
	if len(superseded) == 0 {
		return events
	}

	out := make([]*nostr.Event, 0, len(events))
	for _, ev := range events {
		if !superseded[ev.ID] {
			out = append(out, ev)
		}
	}
	return out
}

// LatestPerTitle is the legacy grouping mode for events published without
// identifiers: among events lacking a d tag, the newest per title tag wins.
// Addressable events and untitled events pass through untouched, so two
// addressable episodes may legitimately share a title. Input order is
// preserved.
func LatestPerTitle(events []*nostr.Event) []*nostr.Event {
	latest := make(map[string]*nostr.Event, len(events))
	for _, ev := range events {
		if !isLegacy(ev) {
			continue
		}
		title := tagValue(ev, "title")
		if title == "" {
			continue
		}
		current, ok := latest[title]
		if !ok || ev.CreatedAt > current.CreatedAt {
			latest[title] = ev
		}
	}

	out := make([]*nostr.Event, 0, len(events))
	for _, ev := range events {
		if isLegacy(ev) {
			if title := tagValue(ev, "title"); title != "" && latest[title] != ev {
				continue
			}
		}
		out = append(out, ev)
	}
	return out
}

func isLegacy(ev *nostr.Event) bool {
	return tagValue(ev, "d") == ""
}

// Reconcile turns the merged multi-relay batch into the canonical event
// set: dedup by id, drop edited originals, keep the newest event per
// addressable identity, then collapse legacy duplicates by title.
func Reconcile(events []*nostr.Event) []*nostr.Event {
	return LatestPerTitle(LatestPerIdentity(ExcludeEdited(Dedup(events))))
}

// Order selects the catalog sort applied after reconciliation.
type Order int

const (
	NewestFirst Order = iota
	OldestFirst
	ByTitle
)

// SortEpisodes orders episodes by effective publish time (or title). The
// sort is stable so reconciliation ties keep their first-seen position.
func SortEpisodes(episodes []Episode, order Order) {
	switch order {
	case OldestFirst:
		sort.SliceStable(episodes, func(i, j int) bool {
			return episodes[i].PublishedAt.Before(episodes[j].PublishedAt)
		})
	case ByTitle:
		sort.SliceStable(episodes, func(i, j int) bool {
			return episodes[i].Title < episodes[j].Title
		})
	default:
		sort.SliceStable(episodes, func(i, j int) bool {
			return episodes[i].PublishedAt.After(episodes[j].PublishedAt)
		})
	}
}

// SortEpisodesByEngagement orders episodes by an engagement count keyed by
// event id, highest first.
func SortEpisodesByEngagement(episodes []Episode, counts map[string]int64) {
	sort.SliceStable(episodes, func(i, j int) bool {
		return counts[episodes[i].EventID] > counts[episodes[j].EventID]
	})
}

// SortTrailers orders trailers newest first.
func SortTrailers(trailers []Trailer) {
	sort.SliceStable(trailers, func(i, j int) bool {
		return trailers[i].PublishedAt.After(trailers[j].PublishedAt)
	})
}
