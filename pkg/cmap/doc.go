// Package cmap provides a concurrent map sharded by string keys.
//
// Keys are distributed over power-of-two shards with a seeded murmur3
// hash; each shard has its own RWMutex so unrelated keys do not contend.
//
// Usage:
//
//	m := cmap.New[domain.SessionID, *Conn]()
//	m.Set(sid, conn)
//	c, ok := m.Get(sid)
//
// Range and the snapshot helpers lock one shard at a time, so they do
// not observe a single consistent view of the whole map.
package cmap
