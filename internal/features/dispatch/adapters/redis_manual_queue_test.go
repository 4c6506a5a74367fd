package adapters

import (
	"context"
	"testing"

	"courier-dispatch/internal/features/dispatch/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisManualQueue(t *testing.T) {
	rdb, _ := newRedis(t)
	q := NewRedisManualQueue(rdb)
	ctx := context.Background()

	empty, err := q.List(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, empty)

	require.NoError(t, q.Push(ctx, domain.ManualEntry{OrderID: "o-1", Reason: domain.ReasonNoCandidates, At: epoch}))
	require.NoError(t, q.Push(ctx, domain.ManualEntry{OrderID: "o-2", Reason: domain.ReasonMaxAttempts, At: epoch}))

	got, err := q.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "o-2", got[0].OrderID)
	assert.Equal(t, domain.ReasonNoCandidates, got[1].Reason)

	one, err := q.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, one, 1)
}
