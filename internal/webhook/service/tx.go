package service

import (
	"context"
	"sync"
	"time"

	dErrors "aakar/pkg/domain-errors"
)

// numTxShards spreads per-phone locks so unrelated participants do not
// contend on a single mutex.
const numTxShards = 64

// defaultTxTimeout bounds one reconciliation.
const defaultTxTimeout = 10 * time.Second

// ShardedTx is the in-memory Tx: a per-phone advisory lock. It gives the
// in-memory store the same guarantee serializable transactions give the
// PostgreSQL store, namely that two webhooks for one phone number cannot
// interleave between the capacity check and the append.
type ShardedTx struct {
	shards  [numTxShards]sync.Mutex
	timeout time.Duration
}

func NewShardedTx() *ShardedTx {
	return &ShardedTx{timeout: defaultTxTimeout}
}

func (t *ShardedTx) RunInTx(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	shard := hashString(key) % numTxShards
	t.shards[shard].Lock()
	defer t.shards[shard].Unlock()

	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	return fn(ctx)
}

// hashString is FNV-1a.
func hashString(s string) uint32 {
	const (
		fnvOffset = 2166136261
		fnvPrime  = 16777619
	)
	h := uint32(fnvOffset)
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= fnvPrime
	}
	return h
}
