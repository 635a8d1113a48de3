package reinforcement

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/KOFI-GYIMAH/team-activity-corpus/internal/models"
	"github.com/KOFI-GYIMAH/team-activity-corpus/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	root := t.TempDir()
	s := NewStore(root)
	s.now = func() time.Time { return time.Date(2025, 6, 20, 15, 0, 0, 0, time.UTC) }
	return s, root
}

func TestStore_GetCreatesDefault(t *testing.T) {
	s, root := newTestStore(t)

	file, err := s.Get("alice")
	require.NoError(t, err)
	assert.Equal(t, "1.0", file.Version)
	assert.Equal(t, "2025-06-20", file.LastUpdated)
	assert.Empty(t, file.Reinforcements)

	raw, err := os.ReadFile(filepath.Join(root, "alice", FileName))
	require.NoError(t, err)
	var onDisk map[string]any
	require.NoError(t, json.Unmarshal(raw, &onDisk))
	assert.Equal(t, "1.0", onDisk["version"])
	assert.Equal(t, []any{}, onDisk["reinforcements"])
}

func TestStore_AddAssignsIDs(t *testing.T) {
	s, _ := newTestStore(t)

	file, err := s.Add("alice", models.Reinforcement{Category: "testing", Description: "Write table tests"})
	require.NoError(t, err)
	require.Len(t, file.Reinforcements, 1)
	assert.Equal(t, 1, file.Reinforcements[0].ID)
	assert.Equal(t, "2025-06-20", file.Reinforcements[0].DateAdded)

	file, err = s.Add("alice", models.Reinforcement{ID: 99, Category: "reviews"})
	require.NoError(t, err)
	assert.Equal(t, 2, file.Reinforcements[1].ID)

	reloaded, err := s.Get("alice")
	require.NoError(t, err)
	assert.Equal(t, file.Reinforcements, reloaded.Reinforcements)
}

func TestStore_AddAfterMaxSeven(t *testing.T) {
	s, root := newTestStore(t)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "bob"), 0o755))
	existing := `{"version":"1.0","lastUpdated":"2025-01-01","reinforcements":[{"id":3,"dateAdded":"2025-01-01"},{"id":7,"dateAdded":"2025-01-02"}]}`
	require.NoError(t, os.WriteFile(filepath.Join(root, "bob", FileName), []byte(existing), 0o644))

	file, err := s.Add("bob", models.Reinforcement{Description: "Pair on the indexer"})
	require.NoError(t, err)
	assert.Equal(t, 8, file.Reinforcements[2].ID)
	assert.Equal(t, "2025-06-20", file.LastUpdated)
}

func TestStore_Update(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.Add("alice", models.Reinforcement{Category: "testing", Status: "open"})
	require.NoError(t, err)

	file, err := s.Update("alice", 1, models.Reinforcement{ID: 5, Category: "testing", Status: "done"})
	require.NoError(t, err)
	assert.Equal(t, 1, file.Reinforcements[0].ID)
	assert.Equal(t, "done", file.Reinforcements[0].Status)
	assert.Equal(t, "2025-06-20", file.Reinforcements[0].DateAdded)

	file, err = s.Update("alice", 1, models.Reinforcement{DateAdded: "2024-12-31"})
	require.NoError(t, err)
	assert.Equal(t, "2024-12-31", file.Reinforcements[0].DateAdded)

	_, err = s.Update("alice", 42, models.Reinforcement{})
	assert.True(t, errors.IsNotFound(err))
}

func TestStore_Delete(t *testing.T) {
	s, _ := newTestStore(t)
	for i := 0; i < 3; i++ {
		_, err := s.Add("alice", models.Reinforcement{})
		require.NoError(t, err)
	}

	file, err := s.Delete("alice", 2)
	require.NoError(t, err)
	require.Len(t, file.Reinforcements, 2)
	assert.Equal(t, 1, file.Reinforcements[0].ID)
	assert.Equal(t, 3, file.Reinforcements[1].ID)

	_, err = s.Delete("alice", 2)
	assert.True(t, errors.IsNotFound(err))
}

func TestStore_Users(t *testing.T) {
	s, root := newTestStore(t)
	for _, dir := range []string{"carol", "alice", ".git", "README.md"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, dir), 0o755))
	}
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.md"), []byte("x"), 0o644))

	users, err := s.Users()
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "carol"}, users)

	missing := NewStore(filepath.Join(root, "nope"))
	users, err = missing.Users()
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestStore_RejectsInvalidUsernames(t *testing.T) {
	s, _ := newTestStore(t)

	for _, name := range []string{"", "../etc", ".hidden", "a/b"} {
		_, err := s.Get(name)
		assert.True(t, errors.IsParse(err), name)
	}
}

func TestStore_CorruptFile(t *testing.T) {
	s, root := newTestStore(t)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "alice"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "alice", FileName), []byte("{"), 0o644))

	_, err := s.Get("alice")
	assert.True(t, errors.IsParse(err))
}
