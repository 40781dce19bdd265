package repository

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-proctor/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultRepositoryAppendAssignsSequentialIDs(t *testing.T) {
	repo, err := NewResultRepository(t.TempDir(), zerolog.Nop())
	require.NoError(t, err)
	ctx := context.Background()

	empty, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	for i := 0; i < 3; i++ {
		rec := &model.ResultRecord{UserName: "u", Email: "u@example.com", Total: 3, SubmittedAt: time.Now().UTC()}
		require.NoError(t, repo.Append(ctx, rec))
		assert.Equal(t, i+1, rec.ID)
	}

	results, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, 3, results[2].ID)
}

func TestResultRepositoryCancelledContext(t *testing.T) {
	repo, err := NewResultRepository(t.TempDir(), zerolog.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, repo.Append(ctx, &model.ResultRecord{}), context.Canceled)
}
