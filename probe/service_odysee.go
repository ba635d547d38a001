package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// OdyseeProbe checks LBRY's resolve API for a YouTube-to-Odysee mirror
// mapping, per SPEC_FULL.md §6.2.
type OdyseeProbe struct{}

func NewOdyseeProbe() *OdyseeProbe { return &OdyseeProbe{} }

func (p *OdyseeProbe) Classname() string { return "odysee" }
func (p *OdyseeProbe) ConfigID() string  { return "odysee" }
func (p *OdyseeProbe) Name() string      { return "Odysee" }

type lbryResolveResponse struct {
	Data struct {
		Videos map[string]json.RawMessage `json:"videos"`
	} `json:"data"`
}

func (p *OdyseeProbe) Run(ctx context.Context, id string, session *Session, includeRaw bool, ch chan<- Item) {
	defer close(ch)

	url := fmt.Sprintf("https://api.lbry.com/yt/resolve?video_ids=%s", id)
	resp, err := doRequest(ctx, session, http.MethodGet, url)
	if err != nil {
		ch <- Item{Result: errResult(p, err, false)}
		return
	}
	defer resp.Body.Close()

	var body lbryResolveResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		ch <- Item{Result: errResult(p, fmt.Errorf("unparseable lbry response: %w", err), false)}
		return
	}

	claim, archived := body.Data.Videos[id]
	archived = archived && string(claim) != "null"
	if archived {
		var claimID string
		_ = json.Unmarshal(claim, &claimID)
		odyseeURL := claimID
		if odyseeURL == "" {
			odyseeURL = "https://odysee.com/" + id
		}
		link := singleLink(odyseeURL, "Odysee mirror", LinkContains{Video: true, Metadata: true})
		ch <- Item{Link: &link}
	}

	ch <- Item{Result: &ProbeResult{
		Archived:    archived,
		LastUpdated: nowSeconds(),
		Name:        p.Name(),
		Note:        noteFor(archived, "mirrored on Odysee"),
	}}
}
