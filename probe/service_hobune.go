package probe

import (
	"context"
	"fmt"
	"net/http"
)

// HobuneProbe checks two path prefixes on a community archive mirror.
// Carries a 0.5s per-process cooldown (registered by the caller against the
// shared CooldownRegistry; see SPEC_FULL.md §4.5).
type HobuneProbe struct{}

func NewHobuneProbe() *HobuneProbe { return &HobuneProbe{} }

func (p *HobuneProbe) Classname() string { return "hobune" }
func (p *HobuneProbe) ConfigID() string  { return "hobune" }
func (p *HobuneProbe) Name() string      { return "Hobune" }

func (p *HobuneProbe) Run(ctx context.Context, id string, session *Session, includeRaw bool, ch chan<- Item) {
	defer close(ch)

	prefixes := []string{"/yt/video/", "/yt/archive/"}
	for _, prefix := range prefixes {
		url := fmt.Sprintf("https://hobune.stream%s%s", prefix, id)
		resp, err := doRequest(ctx, session, http.MethodHead, url)
		if err != nil {
			ch <- Item{Result: errResult(p, err, false)}
			return
		}
		status := resp.StatusCode
		resp.Body.Close()
		if status == http.StatusOK {
			link := singleLink(url, "Hobune mirror", LinkContains{Video: true})
			ch <- Item{Link: &link}
			ch <- Item{Result: &ProbeResult{Archived: true, LastUpdated: nowSeconds(), Name: p.Name(), Note: "Archived on Hobune."}}
			return
		}
	}

	ch <- Item{Result: &ProbeResult{Archived: false, LastUpdated: nowSeconds(), Name: p.Name(), Note: "Not archived on Hobune."}}
}
