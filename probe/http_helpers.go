package probe

import (
	"context"
	"io"
	"net/http"
)

// maxErrorBody bounds how much of an unexpected response body is read when
// building a diagnostic error, mirroring the teacher's use of io.LimitReader
// around error bodies in its own HTTP-backed probes.
const maxErrorBody = 4096

func doRequest(ctx context.Context, session *Session, method, url string) (*http.Response, error) {
	req, err := session.NewRequest(ctx, method, url)
	if err != nil {
		return nil, err
	}
	return session.Client.Do(req)
}

func readLimited(r io.Reader) (string, error) {
	b, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	return string(b), err
}

// singleLink is a convenience constructor for the common case of a probe
// that, on success, emits exactly one Link.
func singleLink(url, title string, contains LinkContains) Link {
	return Link{URL: url, Title: title, Contains: contains}
}
