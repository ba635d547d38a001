package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/avast/retry-go/v4"
)

// RemovededmProbe queries a MediaWiki-backed wiki of deleted/edited music
// videos. Its login state is guarded by a probe-keyed mutex (this probe has
// exactly one instance per process, so the struct's own mutex fills that
// role) so that exactly one login attempt runs at a time, per SPEC_FULL.md
// §4.4/§5.
type RemovededmProbe struct {
	BaseURL  string
	Username string
	Password string

	loginMu   sync.Mutex
	sessionID string
}

func NewRemovededmProbe(baseURL, username, password string) *RemovededmProbe {
	return &RemovededmProbe{BaseURL: baseURL, Username: username, Password: password}
}

func (p *RemovededmProbe) Classname() string { return "removededm" }
func (p *RemovededmProbe) ConfigID() string  { return "removededm" }
func (p *RemovededmProbe) Name() string      { return "RemovedEDM Wiki" }

type mediaWikiQueryResponse struct {
	Query struct {
		Pages map[string]struct {
			Missing *string `json:"missing"`
			Title   string  `json:"title"`
		} `json:"pages"`
	} `json:"query"`
	Error *struct {
		Code string `json:"code"`
	} `json:"error"`
}

// candidateTitles returns the as-given title and a MediaWiki-style
// normalized variant (spaces interchanged with underscores). Best-effort
// per the decided open question in SPEC_FULL.md §13: both are queried in
// one batch, and a hit on either counts as archived.
func candidateTitles(id string) []string {
	underscored := strings.ReplaceAll(id, " ", "_")
	spaced := strings.ReplaceAll(id, "_", " ")
	if underscored == spaced {
		return []string{underscored}
	}
	return []string{underscored, spaced}
}

func (p *RemovededmProbe) query(ctx context.Context, session *Session, id string) (*mediaWikiQueryResponse, error) {
	titles := strings.Join(candidateTitles(id), "|")
	reqURL := fmt.Sprintf("%s/api.php?action=query&titles=%s&format=json", p.BaseURL, url.QueryEscape(titles))
	req, err := session.NewRequest(ctx, http.MethodGet, reqURL)
	if err != nil {
		return nil, err
	}
	p.loginMu.Lock()
	cookie := p.sessionID
	p.loginMu.Unlock()
	if cookie != "" {
		req.Header.Set("Cookie", cookie)
	}
	resp, err := session.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	var body mediaWikiQueryResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("unparseable mediawiki response: %w", err)
	}
	return &body, nil
}

// login performs the single-flight MediaWiki login, retrying transient
// failures with backoff.
func (p *RemovededmProbe) login(ctx context.Context, session *Session) error {
	p.loginMu.Lock()
	defer p.loginMu.Unlock()

	return retry.Do(
		func() error {
			form := url.Values{"lgname": {p.Username}, "lgpassword": {p.Password}, "format": {"json"}}
			req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+"/api.php?action=login", strings.NewReader(form.Encode()))
			if err != nil {
				return retry.Unrecoverable(err)
			}
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			resp, err := session.Client.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("mediawiki login returned status %d", resp.StatusCode)
			}
			p.sessionID = resp.Header.Get("Set-Cookie")
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(3),
	)
}

func (p *RemovededmProbe) Run(ctx context.Context, id string, session *Session, includeRaw bool, ch chan<- Item) {
	defer close(ch)

	body, err := p.query(ctx, session, id)
	if err != nil {
		ch <- Item{Result: errResult(p, err, false)}
		return
	}

	if body.Error != nil && body.Error.Code == "readapidenied" {
		if err := p.login(ctx, session); err != nil {
			ch <- Item{Result: errResult(p, fmt.Errorf("removededm login failed: %w", err), false)}
			return
		}
		body, err = p.query(ctx, session, id)
		if err != nil {
			ch <- Item{Result: errResult(p, err, false)}
			return
		}
	}

	archived := false
	var title string
	for _, page := range body.Query.Pages {
		if page.Missing == nil {
			archived = true
			title = page.Title
			break
		}
	}

	if archived {
		link := singleLink(fmt.Sprintf("%s/wiki/%s", p.BaseURL, url.PathEscape(title)), "RemovedEDM Wiki", LinkContains{Metadata: true})
		ch <- Item{Link: &link}
	}

	ch <- Item{Result: &ProbeResult{
		Archived:    archived,
		MetaOnly:    archived,
		LastUpdated: nowSeconds(),
		Name:        p.Name(),
		Note:        noteFor(archived, "documented on the RemovedEDM wiki"),
	}}
}
