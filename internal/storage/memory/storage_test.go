package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/gammon/internal/storage"
	"github.com/yourusername/gammon/pkg/match"
)

func TestSaveAndGetMatch(t *testing.T) {
	s := New()
	ctx := context.Background()

	m, err := match.New("p1", "Alice", "p2", "Bob", 7)
	require.NoError(t, err)

	require.NoError(t, s.SaveMatch(ctx, m))

	got, err := s.GetMatch(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, m.ID, got.ID)
	assert.Equal(t, 7, got.TargetScore)

	// The stored copy must not alias the caller's value.
	m.Player1Score = 3
	got, err = s.GetMatch(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Player1Score)
}

func TestGetMatchNotFound(t *testing.T) {
	s := New()
	_, err := s.GetMatch(context.Background(), "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDeleteMatch(t *testing.T) {
	s := New()
	ctx := context.Background()

	m, err := match.New("p1", "Alice", "p2", "Bob", 3)
	require.NoError(t, err)
	require.NoError(t, s.SaveMatch(ctx, m))

	require.NoError(t, s.DeleteMatch(ctx, m.ID))
	_, err = s.GetMatch(ctx, m.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestListMatchIDs(t *testing.T) {
	s := New()
	ctx := context.Background()

	m1, err := match.New("p1", "Alice", "p2", "Bob", 3)
	require.NoError(t, err)
	m2, err := match.New("p3", "Carol", "p4", "Dan", 5)
	require.NoError(t, err)
	require.NoError(t, s.SaveMatch(ctx, m1))
	require.NoError(t, s.SaveMatch(ctx, m2))

	ids, err := s.ListMatchIDs(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{m1.ID, m2.ID}, ids)
}

func TestGameRecords(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.SaveGameRecord(ctx, "m1", 1, "(;FF[4]GM[6])"))
	require.NoError(t, s.SaveGameRecord(ctx, "m1", 2, "(;FF[4]GM[6];W[31])"))

	got, err := s.GetGameRecord(ctx, "m1", 2)
	require.NoError(t, err)
	assert.Equal(t, "(;FF[4]GM[6];W[31])", got)

	_, err = s.GetGameRecord(ctx, "m1", 3)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, s.DeleteGameRecords(ctx, "m1"))
	_, err = s.GetGameRecord(ctx, "m1", 1)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
