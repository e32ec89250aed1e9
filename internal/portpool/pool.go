// Package portpool hands out SUT ports to concurrent file executors
// from a fixed-size ring, blocking new acquisitions once every slot is
// leased.
package portpool

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Pool is a fixed ring of size ports starting at base. At most size
// leases are ever outstanding at once; Acquire blocks (respecting ctx)
// until a slot frees.
type Pool struct {
	base int
	size int
	sem  *semaphore.Weighted
	free chan int
}

// New builds a pool of size ports starting at base. size must be > 0.
func New(base, size int) *Pool {
	free := make(chan int, size)
	for i := 0; i < size; i++ {
		free <- base + i
	}
	return &Pool{base: base, size: size, sem: semaphore.NewWeighted(int64(size)), free: free}
}

// Lease is one held port; the caller must call Release exactly once.
type Lease struct {
	Port int
	pool *Pool
}

// Acquire blocks until a port slot is free or ctx is done.
func (p *Pool) Acquire(ctx context.Context) (*Lease, error) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	port := <-p.free
	return &Lease{Port: port, pool: p}, nil
}

// Release returns the lease's port to the pool.
func (l *Lease) Release() {
	l.pool.free <- l.Port
	l.pool.sem.Release(1)
}
