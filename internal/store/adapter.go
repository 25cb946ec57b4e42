package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/moredevelopers26/chattest/internal/metrics"
)

// Outcome describes what happened to a mutation's durable copy. Values are
// ordered from best to worst.
type Outcome int

const (
	// Unchanged means nothing needed writing.
	Unchanged Outcome = iota
	// Persisted means every write landed.
	Persisted
	// PersistedAfterPrune means a write landed only after media was pruned.
	PersistedAfterPrune
	// MemoryOnly means at least one write was abandoned; the in-memory state
	// is ahead of storage.
	MemoryOnly
)

func (o Outcome) String() string {
	switch o {
	case Unchanged:
		return "unchanged"
	case Persisted:
		return "persisted"
	case PersistedAfterPrune:
		return "persisted_after_prune"
	case MemoryOnly:
		return "memory_only"
	default:
		return "unknown"
	}
}

// MarshalText lets Outcome render as its name in JSON.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText parses an outcome name.
func (o *Outcome) UnmarshalText(b []byte) error {
	for c := Unchanged; c <= MemoryOnly; c++ {
		if c.String() == string(b) {
			*o = c
			return nil
		}
	}
	return fmt.Errorf("unknown outcome %q", b)
}

// Result reports the persistence outcome of a mutation.
type Result struct {
	Outcome Outcome `json:"outcome"`
	Pruned  int     `json:"pruned,omitempty"`
	Err     error   `json:"-"`
}

// Merge combines two results, keeping the worst outcome.
func (r Result) Merge(o Result) Result {
	if o.Outcome > r.Outcome {
		r.Outcome = o.Outcome
	}
	r.Pruned += o.Pruned
	if o.Err != nil {
		r.Err = o.Err
	}
	return r
}

// Durable reports whether every write landed.
func (r Result) Durable() bool {
	return r.Outcome != MemoryOnly
}

// Pruner frees space after a quota failure and returns the number of
// entries it discarded.
type Pruner func(ctx context.Context) int

// Adapter stores JSON documents in a KV. Writes that exceed the quota run
// the pruner once and are retried once; a second failure is logged and
// reported as MemoryOnly, never returned as a panic or a bare error.
type Adapter struct {
	kv    KV
	log   zerolog.Logger
	prune Pruner
}

// NewAdapter creates an adapter over kv.
func NewAdapter(kv KV, log zerolog.Logger) *Adapter {
	return &Adapter{
		kv:  kv,
		log: log.With().Str("component", "store").Logger(),
	}
}

// SetPruner installs the quota recovery hook.
func (a *Adapter) SetPruner(p Pruner) {
	a.prune = p
}

// Save serializes value and writes it under key. value is marshaled again
// for the retry so a pruner that shrinks it in place is reflected.
func (a *Adapter) Save(ctx context.Context, key string, value any) Result {
	err := a.write(ctx, key, value)
	if err == nil {
		return a.count(Result{Outcome: Persisted})
	}

	if !errors.Is(err, ErrQuotaExceeded) || a.prune == nil {
		a.log.Error().Err(err).Str("key", key).Msg("save failed, keeping memory-only state")
		return a.count(Result{Outcome: MemoryOnly, Err: err})
	}

	a.log.Warn().Err(err).Str("key", key).Msg("storage quota exceeded, pruning media")
	metrics.PruneRuns.Inc()
	pruned := a.prune(ctx)
	metrics.PrunedMessages.Add(float64(pruned))

	if err := a.write(ctx, key, value); err != nil {
		a.log.Warn().Err(err).Str("key", key).Int("pruned", pruned).Msg("save failed after pruning, keeping memory-only state")
		return a.count(Result{Outcome: MemoryOnly, Pruned: pruned, Err: err})
	}
	return a.count(Result{Outcome: PersistedAfterPrune, Pruned: pruned})
}

// Put writes value once, without quota recovery.
func (a *Adapter) Put(ctx context.Context, key string, value any) error {
	return a.write(ctx, key, value)
}

// Load reads key into dst. It reports false, leaving dst untouched, when the
// key is absent, unreadable or malformed.
func (a *Adapter) Load(ctx context.Context, key string, dst any) bool {
	start := time.Now()
	raw, err := a.kv.Get(ctx, key)
	metrics.StoreLatency.WithLabelValues("get").Observe(time.Since(start).Seconds())
	if err != nil {
		if !errors.Is(err, ErrKeyNotFound) {
			a.log.Warn().Err(err).Str("key", key).Msg("load failed, using default")
		}
		return false
	}

	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		a.log.Warn().Err(err).Str("key", key).Msg("malformed stored value, using default")
		return false
	}
	return true
}

// Remove deletes key.
func (a *Adapter) Remove(ctx context.Context, key string) Result {
	start := time.Now()
	err := a.kv.Delete(ctx, key)
	metrics.StoreLatency.WithLabelValues("delete").Observe(time.Since(start).Seconds())
	if err != nil {
		a.log.Error().Err(err).Str("key", key).Msg("remove failed")
		return a.count(Result{Outcome: MemoryOnly, Err: err})
	}
	return a.count(Result{Outcome: Persisted})
}

// Ping checks the underlying store.
func (a *Adapter) Ping(ctx context.Context) error {
	return a.kv.Ping(ctx)
}

// Usage reports capacity accounting when the store tracks it.
func (a *Adapter) Usage() (used, budget int, ok bool) {
	u, ok := a.kv.(UsageReporter)
	if !ok {
		return 0, 0, false
	}
	used, budget = u.Usage()
	return used, budget, true
}

func (a *Adapter) write(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	start := time.Now()
	err = a.kv.Set(ctx, key, string(data))
	metrics.StoreLatency.WithLabelValues("set").Observe(time.Since(start).Seconds())
	return err
}

func (a *Adapter) count(r Result) Result {
	metrics.StoreWrites.WithLabelValues(r.Outcome.String()).Inc()
	if used, _, ok := a.Usage(); ok {
		metrics.StoreBytesUsed.Set(float64(used))
	}
	return r
}
