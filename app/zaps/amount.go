// Package zaps extracts and validates amounts from zap receipt events.
package zaps

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/nbd-wtf/go-nostr"
)

const msatsPerSat = 1000

// AmountSats returns the amount of a zap receipt in satoshis. Sources are
// tried in priority order: the bolt11 invoice tag, the amount tag
// (millisats), then the amount tag of the zap request embedded in the
// description tag. A receipt with no derivable amount yields 0, never an
// error.
func AmountSats(ev *nostr.Event) int64 {
	if tag := ev.Tags.GetFirst([]string{"bolt11"}); tag != nil {
		if sats, ok := invoiceAmountSats(tag.Value()); ok {
			return sats
		}
	}

	if sats, ok := millisatTagSats(ev.Tags); ok {
		return sats
	}

	if req := requestFromDescription(ev); req != nil {
		if sats, ok := millisatTagSats(req.Tags); ok {
			return sats
		}
	}

	return 0
}

// The human-readable part of a bolt11 invoice: prefix, amount digits, an
// optional unit multiplier, then the literal separator "1" before the data
// part.
var invoicePattern = regexp.MustCompile(`^ln(?:bc|tb)?([0-9]+)([munp])?1`)

// invoiceAmountSats parses the amount encoded in a bolt11 invoice string.
// The invoice checksum is not verified; an amount-shaped but otherwise
// bogus string still parses.
func invoiceAmountSats(invoice string) (int64, bool) {
	m := invoicePattern.FindStringSubmatch(strings.ToLower(strings.TrimSpace(invoice)))
	if m == nil {
		return 0, false
	}

	amount, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, false
	}

	switch m[2] {
	case "m":
		return amount * 100_000, true
	case "u":
		return amount * 100, true
	case "n":
		return amount / 10, true
	case "p":
		return amount / 10_000, true
	default:
		// No multiplier means whole bitcoin.
		return amount * 100_000_000, true
	}
}

// millisatTagSats reads an amount tag expressed in millisatoshi.
func millisatTagSats(tags nostr.Tags) (int64, bool) {
	tag := tags.GetFirst([]string{"amount"})
	if tag == nil {
		return 0, false
	}
	msats, err := strconv.ParseInt(tag.Value(), 10, 64)
	if err != nil || msats < 0 {
		return 0, false
	}
	return msats / msatsPerSat, true
}
