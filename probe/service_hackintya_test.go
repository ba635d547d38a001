package probe

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHackintYaPositiveCountWithCommentsIsArchived(t *testing.T) {
	p := NewHackintYaProbe("https://irc.example", "user", "pass", nil)
	session := stubSession(func(r *http.Request) (*http.Response, error) {
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "user", user)
		assert.Equal(t, "pass", pass)
		switch {
		case strings.Contains(r.URL.Path, "/capture-count/"):
			return textResponse(http.StatusOK, "3"), nil
		case strings.Contains(r.URL.Path, "/capture-comment-counts/"):
			return textResponse(http.StatusOK, "12\n0\n"), nil
		}
		t.Fatalf("unexpected path %s", r.URL.Path)
		return nil, nil
	})

	ch := make(chan Item, 8)
	p.Run(context.Background(), "dQw4w9WgXcQ", session, false, ch)
	items := drain(ch)

	result := lastResult(items)
	require.NotNil(t, result)
	assert.True(t, result.Archived)
	assert.True(t, result.Comments)
	require.Len(t, links(items), 1)
}

func TestHackintYaZeroCountIsNotArchivedAndSuppressesComments(t *testing.T) {
	p := NewHackintYaProbe("https://irc.example", "user", "pass", nil)
	session := stubSession(func(r *http.Request) (*http.Response, error) {
		switch {
		case strings.Contains(r.URL.Path, "/capture-count/"):
			return textResponse(http.StatusOK, "0"), nil
		case strings.Contains(r.URL.Path, "/capture-comment-counts/"):
			return textResponse(http.StatusOK, "5"), nil
		}
		t.Fatalf("unexpected path %s", r.URL.Path)
		return nil, nil
	})

	ch := make(chan Item, 8)
	p.Run(context.Background(), "dQw4w9WgXcQ", session, false, ch)
	items := drain(ch)

	result := lastResult(items)
	require.NotNil(t, result)
	assert.False(t, result.Archived)
	assert.False(t, result.Comments)
	assert.Empty(t, links(items))
}

func TestHackintYaEmptyCountIsFatal(t *testing.T) {
	p := NewHackintYaProbe("https://irc.example", "user", "pass", nil)
	session := stubSession(func(r *http.Request) (*http.Response, error) {
		return textResponse(http.StatusOK, ""), nil
	})

	ch := make(chan Item, 8)
	p.Run(context.Background(), "dQw4w9WgXcQ", session, false, ch)
	result := lastResult(drain(ch))

	require.NotNil(t, result)
	assert.Error(t, result.Error)
}

func TestHackintYaExcludedIDForcesUnarchivedDespitePositiveCount(t *testing.T) {
	p := NewHackintYaProbe("https://irc.example", "user", "pass", []string{"dQw4w9WgXcQ"})
	session := stubSession(func(r *http.Request) (*http.Response, error) {
		switch {
		case strings.Contains(r.URL.Path, "/capture-count/"):
			return textResponse(http.StatusOK, "9"), nil
		case strings.Contains(r.URL.Path, "/capture-comment-counts/"):
			return textResponse(http.StatusOK, "4"), nil
		}
		t.Fatalf("unexpected path %s", r.URL.Path)
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
