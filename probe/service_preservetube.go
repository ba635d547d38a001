package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// PreserveTubeProbe queries a YouTube-preservation API keyed by video ID.
type PreserveTubeProbe struct{}

func NewPreserveTubeProbe() *PreserveTubeProbe { return &PreserveTubeProbe{} }

func (p *PreserveTubeProbe) Classname() string { return "preservetube" }
func (p *PreserveTubeProbe) ConfigID() string  { return "preservetube" }
func (p *PreserveTubeProbe) Name() string      { return "PreserveTube" }

type preserveTubeResponse struct {
	Error string `json:"error"`
	Title string `json:"title"`
}

func (p *PreserveTubeProbe) Run(ctx context.Context, id string, session *Session, includeRaw bool, ch chan<- Item) {
	defer close(ch)

	url := fmt.Sprintf("https://api.preservetube.com/video/%s", id)
	resp, err := doRequest(ctx, session, http.MethodGet, url)
	if err != nil {
		ch <- Item{Result: errResult(p, err, false)}
		return
	}
	defer resp.Body.Close()

	var body preserveTubeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		ch <- Item{Result: errResult(p, fmt.Errorf("unparseable preservetube response: %w", err), false)}
		return
	}

	archived := body.Error == "" && body.Title != ""
	if archived {
		link := singleLink(fmt.Sprintf("https://preservetube.com/watch?v=%s", id), body.Title, LinkContains{Video: true, Metadata: true})
		ch <- Item{Link: &link}
	}

	ch <- Item{Result: &ProbeResult{
		Archived:    archived,
		LastUpdated: nowSeconds(),
		Name:        p.Name(),
		Note:        noteFor(archived, "preserved on PreserveTube"),
	}}
}
