package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *TranscriptStore {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "transcripts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestTranscriptStore_AppendAndRecent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Append(ctx, Record{
		UserID:    "U1",
		SessionID: "session_U1",
		Prompt:    "hello",
		Reply:     "Hi there!",
		Outcome:   "success",
		Attempts:  1,
	}))
	require.NoError(t, s.Append(ctx, Record{
		UserID:    "U1",
		SessionID: "session_U1_2",
		Prompt:    "again",
		Reply:     "Retry successful",
		Outcome:   "retried",
		Attempts:  2,
	}))

	recs, err := s.Recent(ctx, "U1", 10)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	// Newest first.
	assert.Equal(t, "again", recs[0].Prompt)
	assert.Equal(t, 2, recs[0].Attempts)
	assert.Equal(t, "retried", recs[0].Outcome)
	assert.Equal(t, "hello", recs[1].Prompt)
	assert.False(t, recs[0].CreatedAt.IsZero())
}

func TestTranscriptStore_Recent_RespectsLimitAndUser(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, s.Append(ctx, Record{
			UserID: "U1", SessionID: "s", Prompt: "p", Reply: "r", Outcome: "success", Attempts: 1,
		}))
	}
	require.NoError(t, s.Append(ctx, Record{
		UserID: "U2", SessionID: "s", Prompt: "other", Reply: "r", Outcome: "success", Attempts: 1,
	}))

	recs, err := s.Recent(ctx, "U1", 3)
	require.NoError(t, err)
	assert.Len(t, recs, 3)

	recs, err = s.Recent(ctx, "U2", 10)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "other", recs[0].Prompt)
}

func TestTranscriptStore_Recent_Empty(t *testing.T) {
	s := openTestStore(t)

	recs, err := s.Recent(context.Background(), "nobody", 10)
	require.NoError(t, err)
	assert.Empty(t, recs)
}
