package probe

import (
	"context"
	"fmt"
	"net/http"
)

// NyaneOnlineProbe checks a niche mirror indexed by query parameter rather
// than path segment.
type NyaneOnlineProbe struct{}

func NewNyaneOnlineProbe() *NyaneOnlineProbe { return &NyaneOnlineProbe{} }

func (p *NyaneOnlineProbe) Classname() string { return "nyane_online" }
func (p *NyaneOnlineProbe) ConfigID() string  { return "nyane_online" }
func (p *NyaneOnlineProbe) Name() string      { return "Nyane.online" }

func (p *NyaneOnlineProbe) Run(ctx context.Context, id string, session *Session, includeRaw bool, ch chan<- Item) {
	defer close(ch)

	url := fmt.Sprintf("https://nyane.online/video?id=%s", id)
	resp, err := doRequest(ctx, session, http.MethodHead, url)
	if err != nil {
		ch <- Item{Result: errResult(p, err, false)}
		return
	}
	defer resp.Body.Close()

	archived := resp.StatusCode == http.StatusOK
	if archived {
		link := singleLink(url, "Nyane.online mirror", LinkContains{Video: true})
		ch <- Item{Link: &link}
	}
	ch <- Item{Result: &ProbeResult{
		Archived:    archived,
		LastUpdated: nowSeconds(),
		Name:        p.Name(),
		Note:        noteFor(archived, "mirrored on nyane.online"),
	}}
}
