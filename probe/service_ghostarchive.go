package probe

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// GhostArchiveProbe checks a single-page archive service that returns one of
// three legal status codes; anything else is treated as a contract
// violation per SPEC_FULL.md §4.4.
type GhostArchiveProbe struct{}

func NewGhostArchiveProbe() *GhostArchiveProbe { return &GhostArchiveProbe{} }

func (p *GhostArchiveProbe) Classname() string { return "ghostarchive" }
func (p *GhostArchiveProbe) ConfigID() string  { return "ghostarchive" }
func (p *GhostArchiveProbe) Name() string      { return "GhostArchive" }

func (p *GhostArchiveProbe) Run(ctx context.Context, id string, session *Session, includeRaw bool, ch chan<- Item) {
	defer close(ch)

	url := fmt.Sprintf("https://ghostarchive.org/varchive/%s", id)
	resp, err := doRequest(ctx, session, http.MethodGet, url)
	if err != nil {
		ch <- Item{Result: errResult(p, err, false)}
		return
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, _ := readLimited(resp.Body)
		if !strings.Contains(body, "Visit the main page") {
			ch <- Item{Result: errResult(p, fmt.Errorf("unexpected body from ghostarchive (sanity check failed)"), false)}
			return
		}
		link := singleLink(url, "Archived page", LinkContains{Video: true, Metadata: true})
		ch <- Item{Link: &link}
		ch <- Item{Result: &ProbeResult{Archived: true, LastUpdated: nowSeconds(), Name: p.Name(), Note: "Archived on GhostArchive."}}
	case http.StatusNotFound, http.StatusInternalServerError:
		ch <- Item{Result: &ProbeResult{Archived: false, LastUpdated: nowSeconds(), Name: p.Name(), Note: "Not archived on GhostArchive."}}
	default:
		ch <- Item{Result: errResult(p, fmt.Errorf("unexpected status %d from ghostarchive", resp.StatusCode), false)}
	}
}
