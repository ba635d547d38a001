package probe

import (
	"context"
	"fmt"
	"net/http"
)

// YouTubeProbe checks whether the video is still live on YouTube itself, by
// asking for its thumbnail image rather than the watch page (cheaper, and a
// stable 200/404 signal).
type YouTubeProbe struct{}

func NewYouTubeProbe() *YouTubeProbe { return &YouTubeProbe{} }

func (p *YouTubeProbe) Classname() string { return "youtube" }
func (p *YouTubeProbe) ConfigID() string  { return "youtube" }
func (p *YouTubeProbe) Name() string      { return "YouTube" }

func (p *YouTubeProbe) Run(ctx context.Context, id string, session *Session, includeRaw bool, ch chan<- Item) {
	defer close(ch)

	url := fmt.Sprintf("https://i.ytimg.com/vi/%s/hqdefault.jpg", id)
	resp, err := doRequest(ctx, session, http.MethodHead, url)
	if err != nil {
		ch <- Item{Result: errResult(p, err, false)}
		return
	}
	defer resp.Body.Close()

	archived := resp.StatusCode == http.StatusOK
	if archived {
		ch <- Item{Link: ptrLink(singleLink(
			fmt.Sprintf("https://www.youtube.com/watch?v=%s", id),
			"Watch page",
			LinkContains{Video: true, Metadata: true, Comments: true, Thumbnail: true, Captions: true},
		))}
		ch <- Item{Link: ptrLink(singleLink(url, "Thumbnail", LinkContains{Thumbnail: true, SingleFrame: true}))}
	}

	ch <- Item{Result: &ProbeResult{
		Archived:    archived,
		LastUpdated: nowSeconds(),
		Name:        p.Name(),
		Note:        noteFor(archived, "still live on YouTube"),
	}}
}

func noteFor(archived bool, what string) string {
	if archived {
		return "Video is " + what + "."
	}
	return "Video is not " + what + "."
}

func ptrLink(l Link) *Link { return &l }

func errResult(p Probe, err error, comments bool) *ProbeResult {
	r := errorResult(p.Classname(), p.Name(), err, nil, nowSeconds(), comments)
	return &r
}
