package probe

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDYAWithContributionsIsArchivedAndLinksDiscordInvite(t *testing.T) {
	p := NewDYAProbe("https://discord.gg/invite")
	session := stubSession(func(r *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"contributions":[{"id":1},{"id":2}]}`), nil
	})

	ch := make(chan Item, 8)
	p.Run(context.Background(), "dQw4w9WgXcQ", session, true, ch)
	items := drain(ch)

	result := lastResult(items)
	require.NotNil(t, result)
	assert.True(t, result.Archived)
	require.Len(t, links(items), 1)
	assert.Equal(t, "https://discord.gg/invite", links(items)[0].URL)
	assert.Contains(t, string(result.RawRaw), `"contributions_length":2`)
	assert.NotContains(t, string(result.RawRaw), `"id"`)
}

func TestDYANoContributionsIsNotArchived(t *testing.T) {
	p := NewDYAProbe("")
	session := stubSession(func(r *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusNotFound, `{"contributions":[]}`), nil
	})

	ch := make(chan Item, 8)
	p.Run(context.Background(), "dQw4w9WgXcQ", session, true, ch)
	items := drain(ch)

	result := lastResult(items)
	require.NotNil(t, result)
	assert.False(t, result.Archived)
	assert.Empty(t, links(items))
}

func TestDYAUnexpectedStatusIsFatal(t *testing.T) {
	p := NewDYAProbe("")
	session := stubSession(func(r *http.Request) (*http.Response, error) {
		return textResponse(http.StatusInternalServerError, ""), nil
	})

	ch := make(chan Item, 8)
	p.Run(context.Background(), "dQw4w9WgXcQ", session, false, ch)
	result := lastResult(drain(ch))

	require.NotNil(t, result)
	assert.Error(t, result.Error)
}
