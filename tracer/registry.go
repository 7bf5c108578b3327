// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package tracer

import (
	"encoding/binary"
	"sync"

	"github.com/cespare/xxhash/v2"
)

const registryShardCount = 32

// Registry is the process-wide, sharded, read-mostly index of live trace
// actors keyed by TraceKey (spec.md §4.3). Sharding by a hash of the key
// lets independent traces register/deregister/lookup without contending
// on a single lock, the same trade-off the teacher's own sampler and
// priority maps make for high-cardinality concurrent access.
type Registry struct {
	shards [registryShardCount]shard
}

type shard struct {
	mu     sync.RWMutex
	actors map[TraceKey]*traceActor
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	r := &Registry{}
	for i := range r.shards {
		r.shards[i].actors = make(map[TraceKey]*traceActor)
	}
	return r
}

func (r *Registry) shardFor(key TraceKey) *shard {
	var buf [24]byte
	copy(buf[:16], key.T[:])
	binary.BigEndian.PutUint64(buf[16:], key.U)
	h := xxhash.Sum64(buf[:])
	return &r.shards[h%registryShardCount]
}

// lookup returns the actor registered for key, if any.
func (r *Registry) lookup(key TraceKey) (*traceActor, bool) {
	s := r.shardFor(key)
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.actors[key]
	return a, ok
}

// register installs actor under key. A second registration for the same
// key (should not happen under correct supervision) replaces the prior
// entry.
func (r *Registry) register(key TraceKey, actor *traceActor) {
	s := r.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actors[key] = actor
}

// deregister removes key's entry, whichever actor it currently names; it
// does not check that the caller is that actor.
func (r *Registry) deregister(key TraceKey) {
	s := r.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.actors, key)
}

// Len reports the number of live traces across all shards. Intended for
// tests and diagnostics, not the hot path.
func (r *Registry) Len() int {
	n := 0
	for i := range r.shards {
		r.shards[i].mu.RLock()
		n += len(r.shards[i].actors)
		r.shards[i].mu.RUnlock()
	}
	return n
}
