package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// WaybackProbe queries the Wayback Machine's own video-aware endpoints
// before falling back to generic CDX/availability lookups, per
// SPEC_FULL.md §4.4/§12.
type WaybackProbe struct {
	ExperimentBaseURL string
}

func NewWaybackProbe(experimentBaseURL string) *WaybackProbe {
	return &WaybackProbe{ExperimentBaseURL: experimentBaseURL}
}

func (p *WaybackProbe) Classname() string { return "ia_wayback" }
func (p *WaybackProbe) ConfigID() string  { return "ia_wayback" }
func (p *WaybackProbe) Name() string      { return "Wayback Machine" }

// waybackFormat mirrors one entry of __wb/videoinfo's "formats" list.
// Codec and Itag are only present when the indexer detected split
// video/audio streams; Mimetype is always present and is what actually
// distinguishes a video stream from a standalone-audio one.
type waybackFormat struct {
	URL       string `json:"url"`
	Timestamp string `json:"timestamp"`
	Mimetype  string `json:"mimetype"`
	Codec     string `json:"codec"`
	Itag      any    `json:"itag"`
}

// waybackVideoInfo's Formats is either a flat array, or — when the indexer
// detected split video/audio streams — an object with "video" and "audio"
// array keys, per original_source/findyoutubevideo/finder.py:80-86.
type waybackVideoInfo struct {
	Formats json.RawMessage `json:"formats"`
}

// parseWaybackFormats normalizes both shapes __wb/videoinfo can return for
// "formats" into one flat slice.
func parseWaybackFormats(raw json.RawMessage) []waybackFormat {
	var flat []waybackFormat
	if err := json.Unmarshal(raw, &flat); err == nil {
		return flat
	}
	var split struct {
		Video []waybackFormat `json:"video"`
		Audio []waybackFormat `json:"audio"`
	}
	if err := json.Unmarshal(raw, &split); err == nil {
		return append(split.Video, split.Audio...)
	}
	return nil
}

type cdxRow []string

func (p *WaybackProbe) Run(ctx context.Context, id string, session *Session, includeRaw bool, ch chan<- Item) {
	defer close(ch)

	videoInfoURL := fmt.Sprintf("https://web.archive.org/__wb/videoinfo?vtype=youtube&vid=%s", id)
	resp, err := doRequest(ctx, session, http.MethodGet, videoInfoURL)
	if err != nil {
		ch <- Item{Result: errResult(p, err, false)}
		return
	}
	var info waybackVideoInfo
	decodeErr := json.NewDecoder(resp.Body).Decode(&info)
	resp.Body.Close()

	formats := parseWaybackFormats(info.Formats)
	if decodeErr == nil && len(formats) > 0 {
		for _, f := range formats {
			mType, mFormat, _ := strings.Cut(f.Mimetype, "/")

			var contains LinkContains
			var title string
			switch mType {
			case "video":
				title = fmt.Sprintf("Video (%s)", mFormat)
				contains = LinkContains{Video: true, StandaloneVideo: true}
			case "audio":
				title = fmt.Sprintf("Audio (%s)", mFormat)
				contains = LinkContains{StandaloneAudio: true}
			default:
				title = f.Mimetype
				contains = LinkContains{Video: true, StandaloneVideo: true, StandaloneAudio: true}
			}

			var note string
			if f.Codec != "" {
				video, audio, ok := strings.Cut(f.Codec, ", ")
				if ok {
					switch {
					case video == "Unknwn":
						video = "No"
						contains = LinkContains{StandaloneAudio: true}
					case audio == "Unknwn":
						audio = "no"
						contains = LinkContains{StandaloneVideo: true}
					}
					note = fmt.Sprintf("%s video, %s audio (%v)", video, audio, f.Itag)
				}
			}

			link := singleLink(fmt.Sprintf("https://web.archive.org/web/%s/%s", f.Timestamp, f.URL), title, contains)
			link.Note = note
			ch <- Item{Link: &link}
		}
		ch <- Item{Result: &ProbeResult{
			Archived:    true,
			LastUpdated: nowSeconds(),
			Name:        p.Name(),
			Note:        "Video formats available via Wayback Machine videoinfo.",
		}}
		return
	}

	fakeurl := fmt.Sprintf("https://web.archive.org/web/0id_/http://wayback-fakeurl.archive.org/yt/%s", id)
	fresp, ferr := doRequest(ctx, session, http.MethodHead, fakeurl)
	if ferr != nil {
		ch <- Item{Result: errResult(p, ferr, false)}
		return
	}
	location := fresp.Header.Get("Location")
	fresp.Body.Close()
	if location != "" {
		if strings.Contains(location, "/sry") {
			ch <- Item{Result: errResult(p, fmt.Errorf("internet archive is down (fakeurl redirected to /sry)"), false)}
			return
		}
		link := singleLink(fmt.Sprintf("https://www.youtube.com/watch?v=%s", id), "Watch page (via fakeurl)", LinkContains{Video: true, Metadata: true})
		ch <- Item{Link: &link}
		ch <- Item{Result: &ProbeResult{
			Archived:    true,
			LastUpdated: nowSeconds(),
			Name:        p.Name(),
			Note:        "Archived per the fakeurl redirect heuristic.",
		}}
		p.reportFakeurlSuccess(ctx, session, id)
		return
	}

	cdxForms := []string{
		fmt.Sprintf("youtube.com/watch?v=%s", id),
		fmt.Sprintf("youtube.com/embed/%s", id),
		fmt.Sprintf("youtube.com/shorts/%s", id),
		fmt.Sprintf("youtu.be/%s", id),
	}
	for _, form := range cdxForms {
		hit, err := p.queryCDX(ctx, session, form)
		if err != nil {
			continue
		}
		if hit {
			link := singleLink(fmt.Sprintf("https://web.archive.org/web/2id_/https://%s", form), "Watch page (metadata only)", LinkContains{Metadata: true})
			ch <- Item{Link: &link}
			ch <- Item{Result: &ProbeResult{
				Archived:    true,
				MetaOnly:    true,
				LastUpdated: nowSeconds(),
				Name:        p.Name(),
				Note:        "Metadata-only capture found via CDX.",
			}}
			return
		}
	}

	archived, err := p.queryAvailability(ctx, session, id)
	if err != nil {
		ch <- Item{Result: errResult(p, err, false)}
		return
	}
	ch <- Item{Result: &ProbeResult{
		Archived:    archived,
		LastUpdated: nowSeconds(),
		Name:        p.Name(),
		Note:        noteFor(archived, "archived on the Wayback Machine"),
	}}
}

func (p *WaybackProbe) queryCDX(ctx context.Context, session *Session, urlForm string) (bool, error) {
	cdxURL := fmt.Sprintf("https://web.archive.org/cdx/search/cdx?url=%s&collapse=urlkey&filter=statuscode:200&output=json", urlForm)
	resp, err := doRequest(ctx, session, http.MethodGet, cdxURL)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	var rows []cdxRow
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return false, err
	}
	// The first row is a header; a real hit needs at least one data row.
	return len(rows) > 1, nil
}

type availabilityResponse struct {
	ArchivedSnapshots map[string]json.RawMessage `json:"archived_snapshots"`
}

func (p *WaybackProbe) queryAvailability(ctx context.Context, session *Session, id string) (bool, error) {
	url := fmt.Sprintf("https://archive.org/wayback/available?url=%s&timestamp=0", fmt.Sprintf("youtube.com/watch?v=%s", id))
	resp, err := doRequest(ctx, session, http.MethodGet, url)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	var av availabilityResponse
	if err := json.NewDecoder(resp.Body).Decode(&av); err != nil {
		return false, err
	}
	return len(av.ArchivedSnapshots) > 0, nil
}

// reportFakeurlSuccess fires a best-effort report to the configured
// experiment endpoint. Its failures must never propagate, per SPEC_FULL.md
// §5 ("Fire-and-forget. Experiment-reporting POSTs are best-effort").
func (p *WaybackProbe) reportFakeurlSuccess(ctx context.Context, session *Session, id string) {
	if p.ExperimentBaseURL == "" {
		return
	}
	payload, err := json.Marshal(map[string]any{
		"video_id":  id,
		"endpoint":  "fakeurl",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.ExperimentBaseURL+"/report", bytes.NewReader(payload))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := session.Client.Do(req)
	if err != nil {
		return
	}
	resp.Body.Close()
}
