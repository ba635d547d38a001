package probe

import (
	"context"
	"fmt"
	"net/http"
)

// LetsPlayIndexProbe checks an index of archived let's-play videos; a hit
// is signaled by a 301 redirect rather than a 200, per SPEC_FULL.md §6.2.
type LetsPlayIndexProbe struct{}

func NewLetsPlayIndexProbe() *LetsPlayIndexProbe { return &LetsPlayIndexProbe{} }

func (p *LetsPlayIndexProbe) Classname() string { return "letsplayindex" }
func (p *LetsPlayIndexProbe) ConfigID() string  { return "letsplayindex" }
func (p *LetsPlayIndexProbe) Name() string      { return "LetsPlayIndex" }

func (p *LetsPlayIndexProbe) Run(ctx context.Context, id string, session *Session, includeRaw bool, ch chan<- Item) {
	defer close(ch)

	client := *session.Client
	client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}

	req, err := session.NewRequest(ctx, http.MethodHead, fmt.Sprintf("https://letsplayindex.com/video/x-%s", id))
	if err != nil {
		ch <- Item{Result: errResult(p, err, false)}
		return
	}
	resp, err := client.Do(req)
	if err != nil {
		ch <- Item{Result: errResult(p, err, false)}
		return
	}
	defer resp.Body.Close()

	archived := resp.StatusCode == http.StatusMovedPermanently
	if archived {
		link := singleLink(resp.Header.Get("Location"), "LetsPlayIndex", LinkContains{Video: true, Metadata: true})
		ch <- Item{Link: &link}
	}
	ch <- Item{Result: &ProbeResult{
		Archived:    archived,
		LastUpdated: nowSeconds(),
		Name:        p.Name(),
		Note:        noteFor(archived, "indexed by LetsPlayIndex"),
	}}
}
