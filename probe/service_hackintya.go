package probe

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// HackintYaProbe queries an IRC-backed capture archive over HTTP basic
// auth. Video IDs listed in Excluded are force-reported unarchived even if
// the upstream count is positive, per SPEC_FULL.md §4.4.
type HackintYaProbe struct {
	BaseURL  string
	Username string
	Password string
	Excluded map[string]bool
}

func NewHackintYaProbe(baseURL, username, password string, excluded []string) *HackintYaProbe {
	set := make(map[string]bool, len(excluded))
	for _, e := range excluded {
		set[e] = true
	}
	return &HackintYaProbe{BaseURL: baseURL, Username: username, Password: password, Excluded: set}
}

func (p *HackintYaProbe) Classname() string { return "hackint_ya" }
func (p *HackintYaProbe) ConfigID() string  { return "hackint_ya" }
func (p *HackintYaProbe) Name() string      { return "IRC Archive" }

func (p *HackintYaProbe) authedRequest(ctx context.Context, session *Session, path string) (*http.Response, error) {
	req, err := session.NewRequest(ctx, http.MethodGet, p.BaseURL+path)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(p.Username, p.Password)
	return session.Client.Do(req)
}

func (p *HackintYaProbe) Run(ctx context.Context, id string, session *Session, includeRaw bool, ch chan<- Item) {
	defer close(ch)

	countResp, err := p.authedRequest(ctx, session, "/capture-count/"+id)
	if err != nil {
		ch <- Item{Result: errResult(p, err, false)}
		return
	}
	countBody, _ := readLimited(countResp.Body)
	countResp.Body.Close()
	countBody = strings.TrimSpace(countBody)
	if countBody == "" {
		ch <- Item{Result: errResult(p, fmt.Errorf("empty capture count from irc archive"), false)}
		return
	}
	count, err := strconv.Atoi(countBody)
	if err != nil {
		ch <- Item{Result: errResult(p, fmt.Errorf("non-integer capture count %q", countBody), false)}
		return
	}

	commentsResp, cerr := p.authedRequest(ctx, session, "/capture-comment-counts/"+id)
	comments := false
	if cerr == nil {
		commentBody, _ := readLimited(commentsResp.Body)
		commentsResp.Body.Close()
		for _, line := range strings.Split(commentBody, "\n") {
			line = strings.TrimSpace(line)
			if line != "" && line != "0" && line != "∅" {
				comments = true
				break
			}
		}
	}

	archived := count > 0 && !p.Excluded[id]
	if !archived {
		comments = false
	}

	if archived {
		link := singleLink(p.BaseURL+"/captures/"+id, "IRC capture archive", LinkContains{Video: true, Comments: comments})
		ch <- Item{Link: &link}
	}

	ch <- Item{Result: &ProbeResult{
		Archived:    archived,
		Comments:    comments,
		LastUpdated: nowSeconds(),
		Name:        p.Name(),
		Note:        noteFor(archived, "archived in the IRC capture archive"),
	}}
}
