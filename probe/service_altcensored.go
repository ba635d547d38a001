package probe

import (
	"context"
	"fmt"
	"net/http"
)

// AltCensoredProbe checks a mirror specializing in videos removed for
// policy reasons.
type AltCensoredProbe struct{}

func NewAltCensoredProbe() *AltCensoredProbe { return &AltCensoredProbe{} }

func (p *AltCensoredProbe) Classname() string { return "altcensored" }
func (p *AltCensoredProbe) ConfigID() string  { return "altcensored" }
func (p *AltCensoredProbe) Name() string      { return "AltCensored" }

func (p *AltCensoredProbe) Run(ctx context.Context, id string, session *Session, includeRaw bool, ch chan<- Item) {
	defer close(ch)

	url := fmt.Sprintf("https://altcensored.com/watch?v=%s", id)
	resp, err := doRequest(ctx, session, http.MethodGet, url)
	if err != nil {
		ch <- Item{Result: errResult(p, err, false)}
		return
	}
	defer resp.Body.Close()

	archived := resp.StatusCode == http.StatusOK
	if archived {
		link := singleLink(url, "AltCensored mirror", LinkContains{Video: true, Metadata: true, Comments: true})
		ch <- Item{Link: &link}
	}
	ch <- Item{Result: &ProbeResult{
		Archived:    archived,
		LastUpdated: nowSeconds(),
		Name:        p.Name(),
		Note:        noteFor(archived, "mirrored on AltCensored"),
	}}
}
