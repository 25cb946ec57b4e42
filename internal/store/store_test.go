package store

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseKV runs the common contract against a backend.
func exerciseKV(t *testing.T, kv KV) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, kv.Ping(ctx))

	_, err := kv.Get(ctx, "chat_users")
	require.ErrorIs(t, err, ErrKeyNotFound)

	require.NoError(t, kv.Set(ctx, "chat_users", `[{"id":"u1"}]`))
	v, err := kv.Get(ctx, "chat_users")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"u1"}]`, v)

	require.NoError(t, kv.Set(ctx, "chat_users", `[]`))
	v, err = kv.Get(ctx, "chat_users")
	require.NoError(t, err)
	assert.Equal(t, `[]`, v)

	require.NoError(t, kv.Delete(ctx, "chat_users"))
	_, err = kv.Get(ctx, "chat_users")
	require.ErrorIs(t, err, ErrKeyNotFound)

	// deleting twice is fine
	require.NoError(t, kv.Delete(ctx, "chat_users"))
}

func TestMemoryStore(t *testing.T) {
	exerciseKV(t, NewMemoryStore())
}

func TestSQLiteStore(t *testing.T) {
	s, err := NewSQLiteStore(context.Background(), filepath.Join(t.TempDir(), "chat.db"))
	require.NoError(t, err)
	defer s.Close()
	exerciseKV(t, s)
}

func TestBoltStore(t *testing.T) {
	s, err := NewBoltStore(filepath.Join(t.TempDir(), "chat.bolt"))
	require.NoError(t, err)
	defer s.Close()
	exerciseKV(t, s)
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s := NewRedisStoreFromClient(client, "")
	defer s.Close()
	exerciseKV(t, s)
}

func TestRedisStoreUsesPrefix(t *testing.T) {
	mr := miniredis.RunT(t)
	s, err := NewRedisStore(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Set(context.Background(), "chat_vault", "[]"))
	got, err := mr.Get("chat:chat_vault")
	require.NoError(t, err)
	assert.Equal(t, "[]", got)
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), Options{Backend: "floppy"})
	require.Error(t, err)

	_, err = Open(context.Background(), Options{Backend: "redis"})
	require.Error(t, err)

	kv, err := Open(context.Background(), Options{})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, kv)
}

func TestCostCountsUTF16Units(t *testing.T) {
	assert.Equal(t, 4, Cost("a", "b"))
	// é is one unit, the emoji is a surrogate pair
	assert.Equal(t, 2*(1+1+2), Cost("k", "é📷"))
}

func TestBoundedRejectsOverBudget(t *testing.T) {
	ctx := context.Background()
	b := NewBounded(NewMemoryStore(), 20)

	require.NoError(t, b.Set(ctx, "a", "123")) // 8 bytes
	used, budget := b.Usage()
	assert.Equal(t, 8, used)
	assert.Equal(t, 20, budget)

	err := b.Set(ctx, "b", "1234567") // 16 bytes, 24 total
	require.ErrorIs(t, err, ErrQuotaExceeded)

	// overwriting an entry only counts the difference
	require.NoError(t, b.Set(ctx, "a", "123456789")) // 20 bytes
	used, _ = b.Usage()
	assert.Equal(t, 20, used)

	require.NoError(t, b.Delete(ctx, "a"))
	used, _ = b.Usage()
	assert.Equal(t, 0, used)
	require.NoError(t, b.Set(ctx, "b", "1234567"))
}

func TestBoundedLearnsSizesOnGet(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStore()
	require.NoError(t, mem.Set(ctx, "k", "xxxx"))

	b := NewBounded(mem, 100)
	_, err := b.Get(ctx, "k")
	require.NoError(t, err)
	used, _ := b.Usage()
	assert.Equal(t, Cost("k", "xxxx"), used)
}

func TestBoundedUnlimited(t *testing.T) {
	b := NewBounded(NewMemoryStore(), 0)
	require.NoError(t, b.Set(context.Background(), "k", string(make([]byte, 1<<20))))
}

func TestAdapterSaveAndLoad(t *testing.T) {
	ctx := context.Background()
	a := NewAdapter(NewMemoryStore(), zerolog.Nop())

	res := a.Save(ctx, "chat_hidden_rooms", []string{"global"})
	assert.Equal(t, Persisted, res.Outcome)
	assert.True(t, res.Durable())

	var hidden []string
	require.True(t, a.Load(ctx, "chat_hidden_rooms", &hidden))
	assert.Equal(t, []string{"global"}, hidden)

	var missing []string
	assert.False(t, a.Load(ctx, "chat_vault", &missing))
	assert.Nil(t, missing)
}

func TestAdapterLoadMalformed(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStore()
	require.NoError(t, mem.Set(ctx, "chat_last_seen", "{not json"))
	a := NewAdapter(mem, zerolog.Nop())

	seen := map[string]int64{"global": 1}
	assert.False(t, a.Load(ctx, "chat_last_seen", &seen))
	assert.Equal(t, int64(1), seen["global"])
}

func TestAdapterPrunesAndRetries(t *testing.T) {
	ctx := context.Background()
	b := NewBounded(NewMemoryStore(), 40)
	a := NewAdapter(b, zerolog.Nop())

	payload := []string{"aaaaaaaaaaaaaaaaaaaa"}
	calls := 0
	a.SetPruner(func(ctx context.Context) int {
		calls++
		payload = payload[:0]
		return 1
	})

	// Save gets a pointer so the retry sees the pruned slice
	res := a.Save(ctx, "k", &payload)
	assert.Equal(t, 1, calls)
	assert.Equal(t, PersistedAfterPrune, res.Outcome)
	assert.Equal(t, 1, res.Pruned)
	assert.NoError(t, res.Err)
}

func TestAdapterGivesUpAfterOneRetry(t *testing.T) {
	ctx := context.Background()
	var logs bytes.Buffer
	a := NewAdapter(NewBounded(NewMemoryStore(), 10), zerolog.New(&logs))

	calls := 0
	a.SetPruner(func(ctx context.Context) int {
		calls++
		return 0
	})

	res := a.Save(ctx, "chat_messages", map[string]string{"global": "too large"})
	assert.Equal(t, 1, calls)
	assert.Equal(t, MemoryOnly, res.Outcome)
	assert.False(t, res.Durable())
	assert.ErrorIs(t, res.Err, ErrQuotaExceeded)

	// an abandoned write is a warning, not an error
	assert.Contains(t, logs.String(), `"message":"save failed after pruning, keeping memory-only state"`)
	assert.NotContains(t, logs.String(), `"level":"error"`)
}

type failingKV struct {
	*MemoryStore
}

func (failingKV) Set(ctx context.Context, key, value string) error {
	return errors.New("disk on fire")
}

func TestAdapterNonQuotaFailureSkipsPruning(t *testing.T) {
	a := NewAdapter(failingKV{NewMemoryStore()}, zerolog.Nop())
	a.SetPruner(func(ctx context.Context) int {
		t.Fatal("pruner must not run")
		return 0
	})

	res := a.Save(context.Background(), "k", 1)
	assert.Equal(t, MemoryOnly, res.Outcome)
	assert.EqualError(t, res.Err, "disk on fire")
}

func TestResultMergeKeepsWorst(t *testing.T) {
	r := Result{}.Merge(Result{Outcome: Persisted})
	assert.Equal(t, Persisted, r.Outcome)

	r = r.Merge(Result{Outcome: PersistedAfterPrune, Pruned: 5})
	r = r.Merge(Result{Outcome: Persisted})
	assert.Equal(t, PersistedAfterPrune, r.Outcome)
	assert.Equal(t, 5, r.Pruned)

	r = r.Merge(Result{Outcome: MemoryOnly, Err: ErrQuotaExceeded})
	assert.Equal(t, MemoryOnly, r.Outcome)
	assert.ErrorIs(t, r.Err, ErrQuotaExceeded)
	assert.Equal(t, "memory_only", r.Outcome.String())
}

func TestAdapterUsage(t *testing.T) {
	a := NewAdapter(NewMemoryStore(), zerolog.Nop())
	_, _, ok := a.Usage()
	assert.False(t, ok)

	a = NewAdapter(NewBounded(NewMemoryStore(), DefaultQuota), zerolog.Nop())
	a.Save(context.Background(), "k", "v")
	used, budget, ok := a.Usage()
	assert.True(t, ok)
	assert.Equal(t, Cost("k", `"v"`), used)
	assert.Equal(t, DefaultQuota, budget)
}

func TestOutcomeTextRoundTrip(t *testing.T) {
	var o Outcome
	require.NoError(t, o.UnmarshalText([]byte("persisted_after_prune")))
	assert.Equal(t, PersistedAfterPrune, o)
	assert.Error(t, o.UnmarshalText([]byte("lost")))
}

func TestCopyBetweenBackends(t *testing.T) {
	ctx := context.Background()
	src, err := NewBoltStore(filepath.Join(t.TempDir(), "chat.bolt"))
	require.NoError(t, err)
	defer src.Close()

	require.NoError(t, src.Set(ctx, "chat_users", `[{"id":"u1"}]`))
	require.NoError(t, src.Set(ctx, "chat_vault", `[]`))

	dst := NewMemoryStore()
	n, err := Copy(ctx, dst, src, []string{"chat_users", "chat_vault", "chat_calls"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	v, err := dst.Get(ctx, "chat_users")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"u1"}]`, v)

	_, err = dst.Get(ctx, "chat_calls")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	full := NewBounded(NewMemoryStore(), 10)
	_, err = Copy(ctx, full, src, []string{"chat_users"})
	assert.ErrorIs(t, err, ErrQuotaExceeded)
}
