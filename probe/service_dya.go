package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// DYAProbe queries the Distributed YouTube Archive, a Discord-community-run
// mirror. On a hit, the raw contribution list is stripped to its length
// before being exposed, per SPEC_FULL.md §4.4/§12 (contributions_length is
// explicitly documented as unstable).
type DYAProbe struct {
	DiscordInviteURL string
}

func NewDYAProbe(discordInviteURL string) *DYAProbe {
	return &DYAProbe{DiscordInviteURL: discordInviteURL}
}

func (p *DYAProbe) Classname() string { return "dya" }
func (p *DYAProbe) ConfigID() string  { return "dya" }
func (p *DYAProbe) Name() string      { return "Distributed YouTube Archive" }

type dyaResponse struct {
	Contributions []json.RawMessage `json:"contributions"`
}

func (p *DYAProbe) Run(ctx context.Context, id string, session *Session, includeRaw bool, ch chan<- Item) {
	defer close(ch)

	url := fmt.Sprintf("https://dya-t-api.strangled.net/api/video/%s", id)
	resp, err := doRequest(ctx, session, http.MethodGet, url)
	if err != nil {
		ch <- Item{Result: errResult(p, err, false)}
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNotFound {
		ch <- Item{Result: errResult(p, fmt.Errorf("unexpected status %d from dya", resp.StatusCode), false)}
		return
	}

	var body dyaResponse
	_ = json.NewDecoder(resp.Body).Decode(&body)
	archived := len(body.Contributions) > 0

	var rawRaw json.RawMessage
	if includeRaw && archived {
		rawRaw, _ = json.Marshal(map[string]any{"contributions_length": len(body.Contributions)})
	}

	if archived && p.DiscordInviteURL != "" {
		link := singleLink(p.DiscordInviteURL, "Discord invite", LinkContains{Video: true, Metadata: true})
		ch <- Item{Link: &link}
	}

	ch <- Item{Result: &ProbeResult{
		Archived:    archived,
		LastUpdated: nowSeconds(),
		Name:        p.Name(),
		Note:        noteFor(archived, "archived via the distributed archive"),
		RawRaw:      rawRaw,
	}}
}
