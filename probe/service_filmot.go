package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// FilmotProbe queries Filmot's video metadata index. Carries a 2s
// per-process cooldown (registered by the caller; see SPEC_FULL.md §4.5).
type FilmotProbe struct {
	APIKey string
}

func NewFilmotProbe(apiKey string) *FilmotProbe { return &FilmotProbe{APIKey: apiKey} }

func (p *FilmotProbe) Classname() string { return "filmot" }
func (p *FilmotProbe) ConfigID() string  { return "filmot" }
func (p *FilmotProbe) Name() string      { return "Filmot" }

func (p *FilmotProbe) Run(ctx context.Context, id string, session *Session, includeRaw bool, ch chan<- Item) {
	defer close(ch)

	url := fmt.Sprintf("https://filmot.com/api/getvideos?key=%s&id=%s&flags=1", p.APIKey, id)
	resp, err := doRequest(ctx, session, http.MethodGet, url)
	if err != nil {
		ch <- Item{Result: errResult(p, err, false)}
		return
	}
	defer resp.Body.Close()

	var rows []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		ch <- Item{Result: errResult(p, fmt.Errorf("unparseable filmot response: %w", err), false)}
		return
	}

	archived := len(rows) > 0
	var rawRaw json.RawMessage
	if includeRaw {
		rawRaw, _ = json.Marshal(rows)
	}
	if archived {
		link := singleLink(fmt.Sprintf("https://filmot.com/video/%s", id), "Filmot metadata", LinkContains{Metadata: true, Captions: true})
		ch <- Item{Link: &link}
	}

	ch <- Item{Result: &ProbeResult{
		Archived:    archived,
		MetaOnly:    archived,
		LastUpdated: nowSeconds(),
		Name:        p.Name(),
		Note:        noteFor(archived, "indexed by Filmot"),
		RawRaw:      rawRaw,
	}}
}
