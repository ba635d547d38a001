package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// IADetailsProbe checks the Internet Archive's own item metadata under the
// identifiers YouTube uploads are conventionally mirrored to.
type IADetailsProbe struct {
	HelperBaseURL string
}

func NewIADetailsProbe(helperBaseURL string) *IADetailsProbe {
	return &IADetailsProbe{HelperBaseURL: helperBaseURL}
}

func (p *IADetailsProbe) Classname() string { return "ia_details" }
func (p *IADetailsProbe) ConfigID() string  { return "ia_details" }
func (p *IADetailsProbe) Name() string      { return "Internet Archive Details" }

type iaMetadataResponse struct {
	Metadata map[string]json.RawMessage `json:"metadata"`
	IsDark   bool                       `json:"is_dark"`
}

// iaExtraResponse is the fyt-helper /ia_extra endpoint's success payload:
// the identifier of a generic channel item that may contain this video
// among others, per original_source/findyoutubevideo/finder.py:244-261.
type iaExtraResponse struct {
	Item string `json:"item"`
}

// allIAContains assumes a matched item has every kind of content, since the
// metadata response gives no per-item breakdown.
var allIAContains = LinkContains{Video: true, Metadata: true, Comments: true, Thumbnail: true}

// Run checks the conventional mirror identifiers in order and stops at the
// first non-dark, non-empty item, then unconditionally queries the
// fyt-helper generic-channel lookup, which alone can make the result
// archived even when none of the per-identifier checks did.
func (p *IADetailsProbe) Run(ctx context.Context, id string, session *Session, includeRaw bool, ch chan<- Item) {
	defer close(ch)

	identifiers := []string{"youtube-" + id, "youtube_" + id, id}
	var archived, isDark bool
	for _, ident := range identifiers {
		resp, err := doRequest(ctx, session, http.MethodGet, fmt.Sprintf("https://archive.org/metadata/%s", ident))
		if err != nil {
			ch <- Item{Result: errResult(p, err, false)}
			return
		}
		var meta iaMetadataResponse
		decodeErr := json.NewDecoder(resp.Body).Decode(&meta)
		resp.Body.Close()
		if decodeErr != nil {
			continue
		}
		if meta.IsDark {
			isDark = true
			continue
		}
		if len(meta.Metadata) == 0 {
			continue
		}
		isDark = false
		archived = true
		link := singleLink(fmt.Sprintf("https://archive.org/details/%s", ident), "Item", allIAContains)
		ch <- Item{Link: &link}
		break
	}

	if p.HelperBaseURL != "" {
		hresp, herr := doRequest(ctx, session, http.MethodGet, fmt.Sprintf("%s/ia_extra/%s", p.HelperBaseURL, id))
		if herr == nil {
			switch hresp.StatusCode {
			case http.StatusOK:
				var extra iaExtraResponse
				if json.NewDecoder(hresp.Body).Decode(&extra) == nil && extra.Item != "" {
					archived = true
					link := Link{
						URL:      fmt.Sprintf("https://archive.org/details/%s", extra.Item),
						Title:    "Item",
						Note:     "This is a generic channel item. It may contain multiple videos.",
						Contains: allIAContains,
					}
					ch <- Item{Link: &link}
				}
			case http.StatusNotFound:
				// no generic-channel item for this video; not an error.
			}
			hresp.Body.Close()
		}
	}

	note := ""
	if !archived {
		note = "Even if it isn't found here, it might still be in the Internet Archive. This site only checks for certain item identifiers."
		if isDark {
			note = "An item was found, but it is currently unavailable to the general public. " + note
		}
	}
	ch <- Item{Result: &ProbeResult{
		Archived:    archived,
		LastUpdated: nowSeconds(),
		Name:        p.Name(),
		Note:        note,
	}}
}
