package storage

import (
	"context"
	"fmt"
	"sync"
	"testing"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/gogotex/collections/internal/config"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseEngine runs the contract every engine must satisfy.
func exerciseEngine(t *testing.T, e Engine) {
	t.Helper()
	ctx := context.Background()

	_, found, err := e.Get(ctx, "missing")
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, e.Set(ctx, "k", `{"a":1}`))
	v, found, err := e.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, `{"a":1}`, v)

	// whole-value replace, not merge
	require.NoError(t, e.Set(ctx, "k", `[]`))
	v, _, err = e.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, `[]`, v)

	require.NoError(t, e.Remove(ctx, "k"))
	_, found, err = e.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, e.Remove(ctx, "k"), "removing an absent key is not an error")
	require.NoError(t, e.Ping(ctx))
	require.NotEmpty(t, e.Name())
}

func TestMemoryEngine(t *testing.T) {
	exerciseEngine(t, NewMemoryEngine())
}

func TestRedisEngine(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	exerciseEngine(t, NewRedisEngine(client))

	// values are stored as plain strings without TTL
	require.NoError(t, NewRedisEngine(client).Set(context.Background(), "ns:user", "x"))
	got, err := m.Get("ns:user")
	require.NoError(t, err)
	require.Equal(t, "x", got)
	require.Zero(t, m.TTL("ns:user"))
}

func TestFileEngine(t *testing.T) {
	fs := afero.NewMemMapFs()
	e, err := NewFileEngine(fs, "/data")
	require.NoError(t, err)
	exerciseEngine(t, e)
}

func TestFileEngine_EscapesKeysAndLeavesNoTempFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	e, err := NewFileEngine(fs, "/data")
	require.NoError(t, err)

	require.NoError(t, e.Set(context.Background(), "demo:collections", "[]"))
	entries, err := afero.ReadDir(fs, "/data")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "demo:collections.json", entries[0].Name())
}

func TestFileEngine_ConcurrentWritersUseSeparateTempFiles(t *testing.T) {
	fs := afero.NewMemMapFs()
	dir := "/shared"
	// two engines over one directory, as two processes would be
	a, err := NewFileEngine(fs, dir)
	require.NoError(t, err)
	b, err := NewFileEngine(fs, dir)
	require.NoError(t, err)

	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			e := a
			if i%2 == 1 {
				e = b
			}
			assert.NoError(t, e.Set(ctx, "k", fmt.Sprintf(`["v%d"]`, i)))
		}(i)
	}
	wg.Wait()

	entries, err := afero.ReadDir(fs, dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "k.json", entries[0].Name())

	got, ok, err := a.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Regexp(t, `^\["v\d+"\]$`, got)
}

func TestNamespaced(t *testing.T) {
	mem := NewMemoryEngine()
	ns := WithNamespace(mem, "demo:")
	require.Equal(t, "demo:", ns.Prefix())
	exerciseEngine(t, ns)

	ctx := context.Background()
	require.NoError(t, ns.Set(ctx, KeyUser, "u"))
	v, found, err := mem.Get(ctx, "demo:user")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "u", v)

	require.Equal(t, "", WithNamespace(mem, "").Prefix())
}

func TestOpen_Memory(t *testing.T) {
	cfg := &config.Config{Storage: config.StorageConfig{Engine: config.EngineMemory, Namespace: "t"}}
	b, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	require.Equal(t, "memory", b.Engine.Name())
	require.Nil(t, b.Redis)
	require.NoError(t, b.Close(context.Background()))
}

func TestOpen_File(t *testing.T) {
	cfg := &config.Config{Storage: config.StorageConfig{Engine: config.EngineFile, Namespace: "t", Dir: t.TempDir()}}
	b, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	require.Equal(t, "file", b.Engine.Name())
	exerciseEngine(t, b.Engine)
}

func TestOpen_Redis(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	cfg := &config.Config{
		Storage: config.StorageConfig{Engine: config.EngineRedis, Namespace: "t"},
		Redis:   config.RedisConfig{Host: m.Host(), Port: m.Port()},
	}
	b, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	require.NotNil(t, b.Redis)
	require.NoError(t, b.Engine.Set(context.Background(), KeyCollections, "[]"))
	require.True(t, m.Exists("t:collections"))
	require.NoError(t, b.Close(context.Background()))
}

func TestOpen_Unknown(t *testing.T) {
	cfg := &config.Config{Storage: config.StorageConfig{Engine: "etcd", Namespace: "t"}}
	_, err := Open(context.Background(), cfg)
	require.Error(t, err)
}
