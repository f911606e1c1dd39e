package alarms

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	domain "github.com/oshokin/vlarm/internal/domain/alarm"
)

// TestFileRepository_NotFound verifies Load returns ErrNotFound for missing file.
func TestFileRepository_NotFound(t *testing.T) {
	t.Parallel()

	repo := NewFileRepository(filepath.Join(t.TempDir(), "missing.json"))
	alarms, err := repo.Load(context.Background())
	require.ErrorIs(t, err, ErrNotFound)
	require.Nil(t, alarms)
}

// TestFileRepository_SaveLoad_Roundtrip ensures Save followed by Load returns the same list.
func TestFileRepository_SaveLoad_Roundtrip(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "alarms.json")
	repo := NewFileRepository(file)

	base := time.Date(2025, time.October, 28, 7, 0, 0, 0, time.Local)
	want := []domain.Alarm{
		{ID: "a", TriggerTime: base, IsEnabled: true, Message: "Wake Up", RepeatDaily: true},
		{ID: "b", TriggerTime: base.Add(2 * time.Hour), Message: "", SnoozeActive: true},
	}

	require.NoError(t, repo.Save(context.Background(), want))

	got, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, got, len(want))

	for i := range want {
		require.Equal(t, want[i].ID, got[i].ID)
		require.True(t, want[i].TriggerTime.Equal(got[i].TriggerTime))
		require.Equal(t, want[i].IsEnabled, got[i].IsEnabled)
		require.Equal(t, want[i].Message, got[i].Message)
		require.Equal(t, want[i].RepeatDaily, got[i].RepeatDaily)
		require.Equal(t, want[i].SnoozeActive, got[i].SnoozeActive)
	}

	info, err := os.Stat(file)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	_, err = os.Stat(file + ".tmp")
	require.ErrorIs(t, err, os.ErrNotExist)
}

// TestFileRepository_EmptyList checks that an empty list is stored, not treated as missing.
func TestFileRepository_EmptyList(t *testing.T) {
	t.Parallel()

	repo := NewFileRepository(filepath.Join(t.TempDir(), "alarms.json"))
	require.NoError(t, repo.Save(context.Background(), nil))

	got, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Empty(t, got)
}

// TestFileRepository_Corrupt verifies that garbage on disk is reported as an error.
func TestFileRepository_Corrupt(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "alarms.json")
	require.NoError(t, os.WriteFile(file, []byte(`[{"id": 1}]`), 0o600))

	_, err := NewFileRepository(file).Load(context.Background())
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrNotFound)
}

// TestMemoryRepository checks that stored lists are copied in and out.
func TestMemoryRepository(t *testing.T) {
	t.Parallel()

	repo := NewMemoryRepository()

	_, err := repo.Load(context.Background())
	require.ErrorIs(t, err, ErrNotFound)

	in := []domain.Alarm{{ID: "a"}}
	require.NoError(t, repo.Save(context.Background(), in))
	in[0].ID = "changed"

	got, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, "a", got[0].ID)
	require.Equal(t, 1, repo.Saves())
}
