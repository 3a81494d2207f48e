package unitcache_test

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.trai.ch/unitcache/internal/adapters/fs"
	"go.trai.ch/unitcache/internal/adapters/metadata"
	"go.trai.ch/unitcache/internal/core/ports/mocks"
	"go.trai.ch/unitcache/internal/engine/unitcache"
	"go.uber.org/mock/gomock"
)

// testClock is a settable clock shared by a cache and its test.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func newQuietLogger(ctrl *gomock.Controller) *mocks.MockLogger {
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Debug(gomock.Any()).AnyTimes()
	log.EXPECT().Info(gomock.Any()).AnyTimes()
	log.EXPECT().Warn(gomock.Any()).AnyTimes()
	log.EXPECT().Error(gomock.Any()).AnyTimes()
	return log
}

type cacheFixture struct {
	cache    *unitcache.Cache
	clock    *testClock
	store    *metadata.Store
	cacheDir string
}

// newCache builds a cache on the real hasher and metadata store.
func newCache(t *testing.T, ctrl *gomock.Controller, cacheDir string, clock *testClock, opts ...unitcache.Option) *cacheFixture {
	t.Helper()
	log := newQuietLogger(ctrl)
	store := metadata.NewStore(log)
	opts = append([]unitcache.Option{unitcache.WithClock(clock)}, opts...)
	c := unitcache.New(fs.NewHasher(fs.NewWalker()), store, log, opts...)
	require.NoError(t, c.Initialize(t.Context(), cacheDir, 0))
	return &cacheFixture{cache: c, clock: clock, store: store, cacheDir: cacheDir}
}

func writeUnit(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}
