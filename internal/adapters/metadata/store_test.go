package metadata_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/unitcache/internal/adapters/metadata"
	"go.trai.ch/unitcache/internal/core/domain"
	"go.trai.ch/unitcache/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

const cacheDir = "/cache"

func sampleRecords() map[string]domain.Record {
	cachedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return map[string]domain.Record{
		"alpha": {
			UnitName:       "alpha",
			SourcePath:     "/units/alpha",
			ContentHash:    "00112233aabbccdd",
			CachedAt:       cachedAt,
			LastAccessedAt: cachedAt.Add(time.Minute),
		},
		"beta": {
			UnitName:       "beta",
			SourcePath:     "/units/beta",
			CachedAt:       cachedAt,
			LastAccessedAt: cachedAt,
		},
	}
}

func TestStore_SaveLoad(t *testing.T) {
	t.Parallel()

	store := metadata.NewStoreWithFS(memfs.New(), nil)
	want := sampleRecords()

	require.NoError(t, store.Save(cacheDir, want))

	got := store.Load(cacheDir)
	require.Len(t, got, len(want))
	for name, rec := range want {
		assert.Equal(t, rec.UnitName, got[name].UnitName)
		assert.Equal(t, rec.SourcePath, got[name].SourcePath)
		assert.Equal(t, rec.ContentHash, got[name].ContentHash)
		assert.True(t, rec.CachedAt.Equal(got[name].CachedAt))
		assert.True(t, rec.LastAccessedAt.Equal(got[name].LastAccessedAt))
	}
}

func TestStore_Save_Format(t *testing.T) {
	t.Parallel()

	fs := memfs.New()
	store := metadata.NewStoreWithFS(fs, nil)
	require.NoError(t, store.Save(cacheDir, sampleRecords()))

	data, err := util.ReadFile(fs, filepath.Join(cacheDir, domain.IndexFileName))
	require.NoError(t, err)

	content := string(data)
	assert.Contains(t, content, `"alpha": {`)
	assert.Contains(t, content, `"ContentHash": "00112233aabbccdd"`)
	assert.Contains(t, content, `"ContentHash": null`)
	assert.Contains(t, content, `"CachedAt": "2026-03-01T12:00:00Z"`)
	assert.Contains(t, content, `"LastAccessedAt": "2026-03-01T12:01:00Z"`)

	_, err = fs.Stat(filepath.Join(cacheDir, domain.IndexFileName+".tmp"))
	assert.True(t, os.IsNotExist(err), "expected temporary index to be renamed away")
}

func TestStore_Load_Missing(t *testing.T) {
	t.Parallel()

	store := metadata.NewStoreWithFS(memfs.New(), nil)
	got := store.Load(cacheDir)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestStore_Load_Corrupt(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Warn(gomock.Any()).Times(1)

	fs := memfs.New()
	require.NoError(t, util.WriteFile(fs, filepath.Join(cacheDir, domain.IndexFileName), []byte("{ invalid json"), 0o600))

	store := metadata.NewStoreWithFS(fs, log)
	got := store.Load(cacheDir)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestStore_Load_SkipsBadTimestamps(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Warn(gomock.Any()).Times(1)

	fs := memfs.New()
	index := `{
  "good": {"SourcePath": "/a", "ContentHash": null, "CachedAt": "2026-03-01T12:00:00Z", "LastAccessedAt": "2026-03-01T12:00:00Z"},
  "bad": {"SourcePath": "/b", "ContentHash": null, "CachedAt": "yesterday", "LastAccessedAt": "2026-03-01T12:00:00Z"}
}`
	require.NoError(t, util.WriteFile(fs, filepath.Join(cacheDir, domain.IndexFileName), []byte(index), 0o600))

	store := metadata.NewStoreWithFS(fs, log)
	got := store.Load(cacheDir)
	require.Len(t, got, 1)
	assert.Equal(t, "good", got["good"].UnitName)
	assert.Empty(t, got["good"].ContentHash)
}

func TestStore_RemoveAndSize(t *testing.T) {
	t.Parallel()

	fs := memfs.New()
	store := metadata.NewStoreWithFS(fs, nil)

	size, err := store.Size(cacheDir)
	require.NoError(t, err)
	assert.Zero(t, size)

	require.NoError(t, store.Save(cacheDir, sampleRecords()))

	size, err = store.Size(cacheDir)
	require.NoError(t, err)
	assert.Positive(t, size)

	require.NoError(t, store.Remove(cacheDir))
	_, err = fs.Stat(cacheDir)
	assert.True(t, os.IsNotExist(err), "expected cache directory to be removed")

	// Removing twice is fine.
	require.NoError(t, store.Remove(cacheDir))
}

func TestStore_OSFilesystem(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "cache")
	store := metadata.NewStore(nil)

	require.NoError(t, store.Save(dir, sampleRecords()))
	_, err := os.Stat(filepath.Join(dir, domain.IndexFileName))
	require.NoError(t, err)

	assert.Len(t, store.Load(dir), 2)

	require.NoError(t, store.Remove(dir))
	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
}
