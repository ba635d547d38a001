package probe

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNyaneOnlineOKIsArchived(t *testing.T) {
	p := NewNyaneOnlineProbe()
	session := stubSession(func(r *http.Request) (*http.Response, error) {
		assert.Equal(t, "id=dQw4w9WgXcQ", r.URL.RawQuery)
		return textResponse(http.StatusOK, ""), nil
	})

	ch := make(chan Item, 8)
	p.Run(context.Background(), "dQw4w9WgXcQ", session, false, ch)
	items := drain(ch)

	result := lastResult(items)
	require.NotNil(t, result)
	assert.True(t, result.Archived)
	require.Len(t, links(items), 1)
}

func TestNyaneOnlineNotFoundIsNotArchived(t *testing.T) {
	p := NewNyaneOnlineProbe()
	session := stubSession(func(r *http.Request) (*http.Response, error) {
		return textResponse(http.StatusNotFound, ""), nil
	})

	ch := make(chan Item, 8)
	p.Run(context.Background(), "dQw4w9WgXcQ", session, false, ch)
	items := drain(ch)

	result := lastResult(items)
	require.NotNil(t, result)
	assert.False(t, result.Archived)
	assert.Empty(t, links(items))
}
