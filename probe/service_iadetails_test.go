package probe

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIADetailsMatchesOneIdentifierAndStillQueriesHelper(t *testing.T) {
	p := NewIADetailsProbe("https://helper.example")
	session := stubSession(func(r *http.Request) (*http.Response, error) {
		switch {
		case strings.Contains(r.URL.Path, "/metadata/youtube-dQw4w9WgXcQ"):
			return jsonResponse(http.StatusOK, `{"metadata":{"title":"x"},"is_dark":false}`), nil
		case strings.Contains(r.URL.Path, "/metadata/youtube_dQw4w9WgXcQ"):
			return jsonResponse(http.StatusOK, `{"metadata":{},"is_dark":false}`), nil
		case strings.Contains(r.URL.Path, "/metadata/dQw4w9WgXcQ"):
			return jsonResponse(http.StatusOK, `{"metadata":{},"is_dark":false}`), nil
		case strings.Contains(r.URL.Path, "/ia_extra/"):
			return jsonResponse(http.StatusOK, `{"item":"generic-channel-item"}`), nil
		}
		t.Fatalf("unexpected request %s", r.URL.String())
		return nil, nil
	})

	ch := make(chan Item, 8)
	p.Run(context.Background(), "dQw4w9WgXcQ", session, false, ch)
	items := drain(ch)

	result := lastResult(items)
	require.NotNil(t, result)
	assert.True(t, result.Archived)
	ls := links(items)
	require.Len(t, ls, 2)
	assert.Contains(t, ls[1].URL, "generic-channel-item")
	assert.Contains(t, ls[1].Note, "generic channel")
}

func TestIADetailsAllDarkWithHelperAloneMakesArchived(t *testing.T) {
	p := NewIADetailsProbe("https://helper.example")
	session := stubSession(func(r *http.Request) (*http.Response, error) {
		switch {
		case strings.Contains(r.URL.Path, "/metadata/"):
			return jsonResponse(http.StatusOK, `{"metadata":{"title":"x"},"is_dark":true}`), nil
		case strings.Contains(r.URL.Path, "/ia_extra/"):
			return jsonResponse(http.StatusOK, `{"item":"generic-channel-item"}`), nil
		}
		t.Fatalf("unexpected request %s", r.URL.String())
		return nil, nil
	})

	ch := make(chan Item, 8)
	p.Run(context.Background(), "dQw4w9WgXcQ", session, false, ch)
	items := drain(ch)

	result := lastResult(items)
	require.NotNil(t, result)
	assert.True(t, result.Archived, "helper hit alone should mark archived even though every identifier was dark")
	require.Len(t, links(items), 1)
}

func TestIADetailsNoneFoundAndHelper404IsNotArchived(t *testing.T) {
	p := NewIADetailsProbe("https://helper.example")
	session := stubSession(func(r *http.Request) (*http.Response, error) {
		switch {
		case strings.Contains(r.URL.Path, "/metadata/"):
			return jsonResponse(http.StatusOK, `{"metadata":{},"is_dark":false}`), nil
		case strings.Contains(r.URL.Path, "/ia_extra/"):
			return textResponse(http.StatusNotFound, ""), nil
		}
		t.Fatalf("unexpected request %s", r.URL.String())
		return nil, nil
	})

	ch := make(chan Item, 8)
	p.Run(context.Background(), "dQw4w9WgXcQ", session, false, ch)
	items := drain(ch)

	result := lastResult(items)
	require.NotNil(t, result)
	assert.False(t, result.Archived)
	assert.Empty(t, links(items))
}

func TestIADetailsNoHelperConfiguredSkipsHelperCall(t *testing.T) {
	p := NewIADetailsProbe("")
	called := false
	helperCalled := false
	session := stubSession(func(r *http.Request) (*http.Response, error) {
		called = true
		if strings.Contains(r.URL.Path, "/ia_extra/") {
			helperCalled = true
		}
		return jsonResponse(http.StatusOK, `{"metadata":{},"is_dark":false}`), nil
	})

	ch := make(chan Item, 8)
	p.Run(context.Background(), "dQw4w9WgXcQ", session, false, ch)
	drain(ch)

	assert.True(t, called, "identifier lookups should still run")
	assert.False(t, helperCalled, "no helper base URL is configured, so the helper lookup must not run")
}
