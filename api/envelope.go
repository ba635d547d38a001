// Package api wraps the probe engine with the versioned response envelope,
// the streaming wire format, and a thin HTTP router exposing the routes
// described in SPEC_FULL.md §6.1. It deliberately does not grow HTML
// templating, static file serving, or the no-JavaScript fallback flow — those
// remain the excluded presentation layer.
package api

import (
	"encoding/json"

	"github.com/reclaimed/fyt-engine/probe"
)

// CurrentAPIVersion is the newest API version the engine natively produces;
// older versions are reached by downgrading.
const CurrentAPIVersion = 5

// ResponseEnvelope is the canonical (v5) batch response shape described in
// SPEC_FULL.md §3.7.
type ResponseEnvelope struct {
	ID         string             `json:"id"`
	Status     string             `json:"status"`
	Keys       []probe.ProbeResult `json:"keys"`
	Verdict    probe.Verdict      `json:"verdict"`
	APIVersion int                `json:"api_version"`
}

// BadIDEnvelope builds the well-formed, empty-keys envelope returned for an
// invalid video ID (SPEC_FULL.md §4.7 step 1, scenario S1).
func BadIDEnvelope(rawID string) ResponseEnvelope {
	return ResponseEnvelope{
		ID:         rawID,
		Status:     "bad.id",
		Keys:       []probe.ProbeResult{},
		Verdict:    probe.SynthesizeVerdict(nil),
		APIVersion: CurrentAPIVersion,
	}
}

// StreamItem is the tagged union sent over the wire during a streaming
// response: exactly one of NamesMap, Link, Result, Sentinel(true), or
// Verdict is populated per item, matching the four-phase framing in
// SPEC_FULL.md §3.7.
type StreamItem struct {
	item probe.Item
}

func NewStreamItem(item probe.Item) StreamItem { return StreamItem{item: item} }

// MarshalJSON emits exactly the payload for this item's phase: the names
// map, a Link, a ProbeResult, null for the sentinel, or the Verdict —
// never a wrapper object, since clients expect the raw phase values.
func (s StreamItem) MarshalJSON() ([]byte, error) {
	switch {
	case s.item.NamesMap != nil:
		return json.Marshal(s.item.NamesMap)
	case s.item.Link != nil:
		return json.Marshal(s.item.Link)
	case s.item.Result != nil:
		return json.Marshal(s.item.Result)
	case s.item.Verdict != nil:
		return json.Marshal(s.item.Verdict)
	case s.item.Sentinel:
		return []byte("null"), nil
	default:
		return []byte("null"), nil
	}
}
