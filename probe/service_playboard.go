package probe

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
)

// PlayboardProbe mirrors video metadata; rotates a Chrome-version-looking
// User-Agent string per request, per SPEC_FULL.md §4.4.
type PlayboardProbe struct {
	rng *rand.Rand
}

func NewPlayboardProbe(seed int64) *PlayboardProbe {
	return &PlayboardProbe{rng: rand.New(rand.NewSource(seed))}
}

func (p *PlayboardProbe) Classname() string { return "playboard" }
func (p *PlayboardProbe) ConfigID() string  { return "playboard" }
func (p *PlayboardProbe) Name() string      { return "Playboard" }

// rotatingUserAgent substitutes a major Chrome version and a trailing build
// number into a stable-looking Chrome UA string.
func (p *PlayboardProbe) rotatingUserAgent() string {
	major := 110 + p.rng.Intn(20)
	build := p.rng.Intn(9999)
	return fmt.Sprintf("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/%d.0.%d.0 Safari/537.36", major, build)
}

func (p *PlayboardProbe) Run(ctx context.Context, id string, session *Session, includeRaw bool, ch chan<- Item) {
	defer close(ch)

	url := fmt.Sprintf("https://playboard.co/en/video/%s", id)
	req, err := session.NewRequest(ctx, http.MethodGet, url)
	if err != nil {
		ch <- Item{Result: errResult(p, err, false)}
		return
	}
	req.Header.Set("User-Agent", p.rotatingUserAgent())
	resp, err := session.Client.Do(req)
	if err != nil {
		ch <- Item{Result: errResult(p, err, false)}
		return
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		link := singleLink(url, "Playboard", LinkContains{Metadata: true})
		ch <- Item{Link: &link}
		ch <- Item{Result: &ProbeResult{Archived: true, MetaOnly: true, LastUpdated: nowSeconds(), Name: p.Name(), Note: "Indexed by Playboard."}}
	case http.StatusNotFound:
		ch <- Item{Result: &ProbeResult{Archived: false, LastUpdated: nowSeconds(), Name: p.Name(), Note: "Not indexed by Playboard."}}
	case http.StatusTooManyRequests:
		ch <- Item{Result: &ProbeResult{Archived: false, LastUpdated: nowSeconds(), Name: p.Name(), Note: "Playboard rate-limited this request."}}
	default:
		ch <- Item{Result: errResult(p, fmt.Errorf("unexpected status %d from playboard", resp.StatusCode), false)}
	}
}
