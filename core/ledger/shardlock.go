package ledger

import (
	"hash/fnv"
	"sync"

	"import-planner/core/types"
)

const lockShards = 32

// AddressLocks provides per-address mutual exclusion without a global lock.
// Addresses map onto a fixed shard set by hash; two distinct addresses may
// share a shard, which serializes them harmlessly.
type AddressLocks struct {
	shards [lockShards]sync.Mutex
}

// NewAddressLocks creates a sharded lock set
func NewAddressLocks() *AddressLocks {
	return &AddressLocks{}
}

// Lock acquires the shard for an address and returns its unlock func
func (l *AddressLocks) Lock(address types.ResourceAddress) func() {
	h := fnv.New32a()
	h.Write([]byte(address))
	shard := &l.shards[h.Sum32()%lockShards]
	shard.Lock()
	return shard.Unlock
}
