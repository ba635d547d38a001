package probe

import (
	"io"
	"net/http"
	"strings"
)

// roundTripFunc adapts a plain function to http.RoundTripper so each
// probe's upstream call can be stubbed by matching on the outgoing request,
// without any of the probes' hardcoded hostnames needing to resolve.
type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func stubSession(transport roundTripFunc) *Session {
	return &Session{Client: &http.Client{Transport: transport}, UserAgent: "fyt-engine-test"}
}

func textResponse(status int, body string) *http.Response {
	return &http.Response{StatusCode: status, Body: io.NopCloser(strings.NewReader(body)), Header: make(http.Header)}
}

func jsonResponse(status int, body string) *http.Response {
	resp := textResponse(status, body)
	resp.Header.Set("Content-Type", "application/json")
	return resp
}

// drain runs a probe to completion and returns every Item it sent.
func drain(ch <-chan Item) []Item {
	var items []Item
	for item := range ch {
		items = append(items, item)
	}
	return items
}

func lastResult(items []Item) *ProbeResult {
	for i := len(items) - 1; i >= 0; i-- {
		if items[i].Result != nil {
			return items[i].Result
		}
	}
	return nil
}

func links(items []Item) []Link {
	var out []Link
	for _, item := range items {
		if item.Link != nil {
			out = append(out, *item.Link)
		}
	}
	return out
}
