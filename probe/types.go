// Package probe defines the single-service probe contract, its result data
// model, and the concurrent orchestration that fans a video ID out across
// every enabled probe and folds the results into one canonical verdict.
package probe

import (
	"context"
	"encoding/json"
	"net/http"
)

// LinkContains is a flat record of what a Link's URL is expected to
// contain. All fields default false; the engine never verifies them.
type LinkContains struct {
	Video           bool `json:"video,omitempty"`
	Metadata        bool `json:"metadata,omitempty"`
	Comments        bool `json:"comments,omitempty"`
	Thumbnail       bool `json:"thumbnail,omitempty"`
	Captions        bool `json:"captions,omitempty"`
	StandaloneVideo bool `json:"standalone_video,omitempty"`
	StandaloneAudio bool `json:"standalone_audio,omitempty"`
	SingleFrame     bool `json:"single_frame,omitempty"`
}

// Link advertises one retrievable artifact found by a probe. Classname is
// filled in by the orchestrator when the link is observed, not by the probe
// itself.
type Link struct {
	URL       string       `json:"url"`
	Contains  LinkContains `json:"contains"`
	Title     string       `json:"title"`
	Note      string       `json:"note,omitempty"`
	Classname string       `json:"classname"`
}

// ProbeResult is the terminal outcome of a single probe run.
type ProbeResult struct {
	Archived       bool            `json:"archived"`
	LastUpdated    float64         `json:"lastupdated"`
	Name           string          `json:"name"`
	Note           string          `json:"note"`
	RawRaw         json.RawMessage `json:"rawraw,omitempty"`
	MetaOnly       bool            `json:"metaonly"`
	Comments       bool            `json:"comments"`
	Available      []Link          `json:"available"`
	Error          error           `json:"-"`
	ErrorText      string          `json:"error,omitempty"`
	MaybePaywalled bool            `json:"maybe_paywalled"`
	Classname      string          `json:"classname"`
}

// Verdict is the cross-probe synthesis described in SPEC_FULL.md §3.6.
type Verdict struct {
	Video         bool   `json:"video"`
	MetaOnly      bool   `json:"metaonly"`
	Comments      bool   `json:"comments"`
	HumanFriendly string `json:"human_friendly"`
}

// SynthesizeVerdict folds a completed set of ProbeResults into one Verdict
// per SPEC_FULL.md §3.6.
func SynthesizeVerdict(results []ProbeResult) Verdict {
	var v Verdict
	for _, r := range results {
		if r.Archived && !r.MetaOnly {
			v.Video = true
		}
		if r.Archived && r.MetaOnly {
			v.MetaOnly = true
		}
		if r.Comments {
			v.Comments = true
		}
	}
	switch {
	case v.Video:
		v.HumanFriendly = "Archived! "
	case v.MetaOnly:
		v.HumanFriendly = "Archived with metadata only. "
	default:
		v.HumanFriendly = "Video not found. "
	}
	if v.Comments {
		v.HumanFriendly += "(with comments)"
	}
	return v
}

// Item is the tagged union yielded by a probe's Run: exactly one of Link or
// Result is non-nil. Zero or more Link items precede exactly one terminal
// Result item. NamesMap, Sentinel, and Verdict are never set by a Probe;
// they are the orchestrator's own stream-framing phases (see
// Orchestrator.RunStream).
type Item struct {
	Link     *Link
	Result   *ProbeResult
	NamesMap map[string]string
	Sentinel bool
	Verdict  *Verdict
}

// Session is the single shared HTTP client every probe issues requests
// through for the lifetime of one Orchestrator.Run call. Probes must tolerate
// concurrent use of the same *http.Client.
type Session struct {
	Client    *http.Client
	UserAgent string
}

// NewRequest builds a request against this session's client carrying the
// configured User-Agent header.
func (s *Session) NewRequest(ctx context.Context, method, url string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, err
	}
	if s.UserAgent != "" {
		req.Header.Set("User-Agent", s.UserAgent)
	}
	return req, nil
}

// Probe is the single-service contract every concrete archive query
// implements. Classname is a stable, programmatic identifier distinct from
// the human-readable Name; ConfigID names the key this probe reads from
// Config.
type Probe interface {
	Classname() string
	ConfigID() string
	Name() string
	// Run must send zero or more Link items followed by exactly one Result
	// item on ch, then close ch. It must honor ctx cancellation and must not
	// mutate any shared state outside its own cooldown timestamp.
	Run(ctx context.Context, id string, session *Session, includeRaw bool, ch chan<- Item)
}

// errorResult builds the error ProbeResult described in SPEC_FULL.md §4.3:
// archived=false, error populated, any links collected so far attached.
func errorResult(classname, name string, err error, links []Link, lastUpdated float64, comments bool) ProbeResult {
	return ProbeResult{
		Archived:    false,
		LastUpdated: lastUpdated,
		Name:        name,
		Note:        "An error occured while retrieving data from " + name + ".",
		Error:       err,
		ErrorText:   err.Error(),
		Comments:    comments,
		Available:   links,
		Classname:   classname,
	}
}
