package catalog

import (
	"github.com/nbd-wtf/go-nostr"

	"github.com/lysyi3m/relaycast/app/zaps"
)

// CountEngagement tallies reactions, reposts, comments, and zap totals from
// a batch of events referencing the same target. The batch is deduped first
// so the same reaction served by several relays counts once. Invalid zap
// receipts are filtered, not errors.
func CountEngagement(events []*nostr.Event) Engagement {
	var engagement Engagement

	for _, ev := range Dedup(events) {
		switch ev.Kind {
		case KindReaction:
			engagement.Likes++
		case KindRepost, KindGenericRepost:
			engagement.Reposts++
		case KindComment:
			engagement.Comments++
		case zaps.KindZapReceipt:
			if !zaps.IsValidReceipt(ev) {
				continue
			}
			engagement.ZapCount++
			engagement.ZapSats += zaps.AmountSats(ev)
		}
	}

	return engagement
}

// satsPerPoint converts zap volume into engagement points. Raw sats would
// let a single modest zap outrank any number of likes or comments.
const satsPerPoint = 100

// Total is a single engagement score used for engagement-ranked sorting.
// Each like, repost, comment, and zap counts one point; zap volume adds
// one point per satsPerPoint sats.
func (e Engagement) Total() int64 {
	return int64(e.Likes+e.Reposts+e.Comments+e.ZapCount) + e.ZapSats/satsPerPoint
}
