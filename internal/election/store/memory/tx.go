package memory

import (
	"context"
	"sync"
	"time"

	dErrors "election/pkg/domain-errors"
)

// numVoterShards spreads voter locks so unrelated voters rarely contend.
const numVoterShards = 128

// defaultVoterTxTimeout bounds a voter transaction whose ctx has no deadline.
const defaultVoterTxTimeout = 5 * time.Second

// voterLocks serializes work per obfuscated voter identity using sharded
// mutexes. Two voters hashing to the same shard serialize as well; that only
// costs throughput.
type voterLocks struct {
	shards  [numVoterShards]sync.Mutex
	timeout time.Duration
}

type heldShardsKey struct{}

// run locks the shard for key and calls fn. Nested calls for a shard already
// held by the same call chain do not lock again.
func (l *voterLocks) run(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	shard := int(hashVoterKey(key) % numVoterShards)
	held, _ := ctx.Value(heldShardsKey{}).(map[int]struct{})
	if _, ok := held[shard]; ok {
		return fn(ctx)
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		timeout := l.timeout
		if timeout <= 0 {
			timeout = defaultVoterTxTimeout
		}
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	l.shards[shard].Lock()
	defer l.shards[shard].Unlock()

	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	next := make(map[int]struct{}, len(held)+1)
	for k := range held {
		next[k] = struct{}{}
	}
	next[shard] = struct{}{}
	return fn(context.WithValue(ctx, heldShardsKey{}, next))
}

// checkCtx refuses a write once the voter transaction has timed out or been
// cancelled, so a stalled callback cannot commit late.
func checkCtx(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "write aborted: context done")
	}
	return nil
}

// hashVoterKey is FNV-1a.
func hashVoterKey(s string) uint32 {
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
