package api

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reclaimed/fyt-engine/probe"
)

func TestEngineGenerateBadIDReturnsWellFormedEmptyEnvelope(t *testing.T) {
	orch := probe.NewOrchestrator(probe.NewRegistry(), probe.NewResultCache(600), probe.NewCooldownRegistry(), "test-agent", allEnabled)
	engine := NewEngine(orch)

	env, err := engine.Generate(context.Background(), "not-a-video-id", false)
	require.NoError(t, err)
	assert.Equal(t, "bad.id", env.Status)
	assert.Equal(t, "not-a-video-id", env.ID)
	assert.Empty(t, env.Keys)
	assert.Equal(t, CurrentAPIVersion, env.APIVersion)
	assert.Equal(t, "Video not found. ", env.Verdict.HumanFriendly)
}

func TestEngineGenerateValidIDRunsOrchestrator(t *testing.T) {
	orch := probe.NewOrchestrator(probe.NewRegistry(), probe.NewResultCache(600), probe.NewCooldownRegistry(), "test-agent", allEnabled)
	engine := NewEngine(orch)

	env, err := engine.Generate(context.Background(), "dQw4w9WgXcQ", false)
	require.NoError(t, err)
	assert.Equal(t, "ok", env.Status)
	assert.Equal(t, "dQw4w9WgXcQ", env.ID)
}

func TestEngineGenerateStreamBadIDReturnsSynchronousError(t *testing.T) {
	orch := probe.NewOrchestrator(probe.NewRegistry(), probe.NewResultCache(600), probe.NewCooldownRegistry(), "test-agent", allEnabled)
	engine := NewEngine(orch)

	out := make(chan probe.Item, 1)
	err := engine.GenerateStream(context.Background(), "nope", false, out)
	require.Error(t, err)
	var invalid *InvalidVideoIDError
	assert.ErrorAs(t, err, &invalid)

	_, open := <-out
	assert.False(t, open, "out must be closed when the id is rejected before streaming starts")
}

func allEnabled(string) bool { return true }
