package zaps

import (
	"encoding/json"

	"github.com/nbd-wtf/go-nostr"
)

// KindZapReceipt is the event kind published by lightning wallets/servers
// after paying a zap request.
const KindZapReceipt = 9735

// IsValidReceipt reports whether a zap receipt carries the tags required to
// count it: a recipient, a bolt11 invoice, and the embedded zap request.
// Invalid receipts are filtered from aggregates, never surfaced as errors.
func IsValidReceipt(ev *nostr.Event) bool {
	if ev.Kind != KindZapReceipt {
		return false
	}
	return ev.Tags.GetFirst([]string{"p"}) != nil &&
		ev.Tags.GetFirst([]string{"bolt11"}) != nil &&
		ev.Tags.GetFirst([]string{"description"}) != nil
}

// SenderKey resolves the pubkey of the zap sender: the big-P tag when the
// receipt carries one, otherwise the author of the embedded zap request.
// Returns "" when neither is present.
func SenderKey(ev *nostr.Event) string {
	if tag := ev.Tags.GetFirst([]string{"P"}); tag != nil {
		return tag.Value()
	}
	if req := requestFromDescription(ev); req != nil {
		return req.PubKey
	}
	return ""
}

// TotalSats sums the amounts of all valid zap receipts in events.
func TotalSats(events []*nostr.Event) int64 {
	var total int64
	for _, ev := range events {
		if !IsValidReceipt(ev) {
			continue
		}
		total += AmountSats(ev)
	}
	return total
}

// requestFromDescription decodes the zap request event embedded in the
// description tag. Malformed JSON yields nil.
func requestFromDescription(ev *nostr.Event) *nostr.Event {
	tag := ev.Tags.GetFirst([]string{"description"})
	if tag == nil || tag.Value() == "" {
		return nil
	}
	var req nostr.Event
	if err := json.Unmarshal([]byte(tag.Value()), &req); err != nil {
		return nil
	}
	return &req
}
