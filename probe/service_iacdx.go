package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// IACDXThumbsProbe searches the Wayback Machine's CDX index across the
// thumbnail hosts YouTube has used over the years and surfaces the
// highest-quality capture found, per SPEC_FULL.md §4.4/§12.
type IACDXThumbsProbe struct{}

func NewIACDXThumbsProbe() *IACDXThumbsProbe { return &IACDXThumbsProbe{} }

func (p *IACDXThumbsProbe) Classname() string { return "ia_cdx_thumbs" }
func (p *IACDXThumbsProbe) ConfigID() string  { return "ia_cdx_thumbs" }
func (p *IACDXThumbsProbe) Name() string      { return "Internet Archive Thumbnails" }

// thumbHosts are the nine hosts YouTube has served thumbnails from.
var thumbHosts = []string{
	"i.ytimg.com", "i1.ytimg.com", "i2.ytimg.com", "i3.ytimg.com", "i4.ytimg.com",
	"img.youtube.com", "i9.ytimg.com", "s.ytimg.com", "yt3.ggpht.com",
}

// qualityRank orders thumbnail resolution tokens from best to worst; lower
// index is higher quality. Tokens are matched against the URL's final path
// segment (the file name); a file name with none of them ranks last.
var qualityRank = []string{"maxresdefault", "sddefault", "hqdefault", "mqdefault", "default", "0", "1", "2", "3"}

func rankOf(url string) int {
	name := url[strings.LastIndex(url, "/")+1:]
	for i, token := range qualityRank {
		if strings.Contains(name, token) {
			return i
		}
	}
	return len(qualityRank)
}

func (p *IACDXThumbsProbe) Run(ctx context.Context, id string, session *Session, includeRaw bool, ch chan<- Item) {
	defer close(ch)

	type hit struct {
		url       string
		timestamp string
	}
	var hits []hit

	for _, host := range thumbHosts {
		urlForm := fmt.Sprintf("%s/vi/%s*", host, id)
		cdxURL := fmt.Sprintf("https://web.archive.org/cdx/search/cdx?url=%s&collapse=urlkey&filter=statuscode:200&output=json", urlForm)
		resp, err := doRequest(ctx, session, http.MethodGet, cdxURL)
		if err != nil {
			continue
		}
		var rows []cdxRow
		decodeErr := json.NewDecoder(resp.Body).Decode(&rows)
		resp.Body.Close()
		if decodeErr != nil || len(rows) < 2 {
			continue
		}
		for _, row := range rows[1:] {
			if len(row) < 3 {
				continue
			}
			hits = append(hits, hit{timestamp: row[1], url: fmt.Sprintf("https://web.archive.org/web/%s/https://%s", row[1], row[2])})
		}
	}

	if len(hits) == 0 {
		ch <- Item{Result: &ProbeResult{
			Archived:    false,
			LastUpdated: nowSeconds(),
			Name:        p.Name(),
			Note:        "No archived thumbnail found.",
		}}
		return
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].timestamp != hits[j].timestamp {
			return hits[i].timestamp > hits[j].timestamp
		}
		return rankOf(hits[i].url) < rankOf(hits[j].url)
	})

	best := hits[0]
	link := singleLink(best.url, "Thumbnail", LinkContains{Thumbnail: true, SingleFrame: true})
	ch <- Item{Link: &link}
	ch <- Item{Result: &ProbeResult{
		Archived:    true,
		MetaOnly:    true,
		LastUpdated: nowSeconds(),
		Name:        p.Name(),
		Note:        "Archived thumbnail found.",
	}}
}
