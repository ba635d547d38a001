package probe

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCooldownRegistryEnforcesMinimumSpacing(t *testing.T) {
	reg := NewCooldownRegistry()
	reg.Register("filmot", 50*time.Millisecond)

	ctx := context.Background()
	require.NoError(t, reg.Wait(ctx, "filmot")) // first call never blocks

	start := time.Now()
	require.NoError(t, reg.Wait(ctx, "filmot"))
	elapsed := time.Since(start)

	assert.GreaterOrEqual(t, elapsed, 40*time.Millisecond, "second call should wait close to the registered spacing")
}

func TestCooldownRegistryUnregisteredClassnameNeverBlocks(t *testing.T) {
	reg := NewCooldownRegistry()
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 5; i++ {
		require.NoError(t, reg.Wait(ctx, "no_such_probe"))
	}
	assert.Less(t, time.Since(start), 20*time.Millisecond)
}

func TestCooldownRegistryRespectsContextCancellation(t *testing.T) {
	reg := NewCooldownRegistry()
	reg.Register("hobune", time.Hour) // large enough that Wait would block for the test's duration

	ctx := context.Background()
	require.NoError(t, reg.Wait(ctx, "hobune")) // consumes the initial burst token

	cancelCtx, cancel := context.WithCancel(context.Background())
	cancel()
	err := reg.Wait(cancelCtx, "hobune")
	assert.Error(t, err)
}
