package persist

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMigrationsEmbedded(t *testing.T) {
	files, err := Migrations()
	require.NoError(t, err)
	require.NotEmpty(t, files)
	assert.Equal(t, "00001_sessions.sql", files[0])
}

func TestOpenRejectsBadDSN(t *testing.T) {
	_, err := Open(context.Background(), "postgres://%zz")
	require.Error(t, err)
}

// Runs against a real database when SKIRMISH_TEST_DSN is set.
func TestSessionRoundTrip(t *testing.T) {
	dsn := os.Getenv("SKIRMISH_TEST_DSN")
	if dsn == "" {
		t.Skip("SKIRMISH_TEST_DSN not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := Open(ctx, dsn)
	require.NoError(t, err)
	defer pool.Close()
	require.NoError(t, Migrate(ctx, pool, zap.NewNop()))
	require.NoError(t, Migrate(ctx, pool, zap.NewNop()))

	repo := NewSessionRepo(pool)
	rec := SessionRecord{
		ID:        uuid.New(),
		Ticks:     600,
		SimTime:   10 * time.Second,
		Kills:     12,
		Waves:     3,
		Score:     1 << 30,
		Outcome:   OutcomeGameOver,
		StartedAt: time.Now().Add(-10 * time.Second),
	}
	require.NoError(t, repo.Insert(ctx, rec))
	require.Error(t, repo.Insert(ctx, SessionRecord{}))

	top, err := repo.Top(ctx, 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, rec.ID, top[0].ID)
	assert.Equal(t, 3, top[0].Waves)
}
