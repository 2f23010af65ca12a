package segmentation

import (
	"context"
	"fmt"
	"sync"
	"time"
)

const (
	// DefaultPoolSize Pool configuration
	DefaultPoolSize   = 2
	AcquireTimeout    = 5 * time.Second
	HealthCheckPeriod = 60 * time.Second
)

// SessionFactory creates a ready-to-use model session. Injected so the pool
// can be exercised without a live ONNX runtime.
type SessionFactory func() (*ModelSession, error)

type SessionPool struct {
	sessions   chan *ModelSession
	size       int
	factory    SessionFactory
	mu         sync.Mutex
	closed     bool
	metrics    *PoolMetrics
	lastErrors []error
}

type PoolMetrics struct {
	mu              sync.RWMutex
	inUse           int
	totalAcquired   int64
	totalReleased   int64
	acquireFailures int64
	waitTime        time.Duration
}

func (m *PoolMetrics) Snapshot() (inUse int, acquired, released, failures int64) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.inUse, m.totalAcquired, m.totalReleased, m.acquireFailures
}

func NewSessionPool(factory SessionFactory, size int) (*SessionPool, error) {
	if size <= 0 {
		size = DefaultPoolSize
	}

	pool := &SessionPool{
		sessions: make(chan *ModelSession, size),
		size:     size,
		factory:  factory,
		metrics:  &PoolMetrics{},
	}

	// Initialize sessions
	for i := 0; i < size; i++ {
		session, err := factory()
		if err != nil {
			pool.Destroy()
			return nil, fmt.Errorf("failed to initialize session %d: %w", i, err)
		}
		pool.sessions <- session
	}

	// Start health check routine
	go pool.healthCheck()

	return pool, nil
}

func (p *SessionPool) Acquire(ctx context.Context) (*ModelSession, error) {
	if p.closed {
		return nil, fmt.Errorf("pool is closed")
	}

	start := time.Now()
	defer func() {
		p.metrics.mu.Lock()
		p.metrics.waitTime += time.Since(start)
		p.metrics.mu.Unlock()
	}()

	select {
	case session := <-p.sessions:
		p.metrics.mu.Lock()
		p.metrics.inUse++
		p.metrics.totalAcquired++
		p.metrics.mu.Unlock()
		return session, nil
	case <-time.After(AcquireTimeout):
		p.metrics.mu.Lock()
		p.metrics.acquireFailures++
		p.metrics.mu.Unlock()
		return nil, fmt.Errorf("timeout waiting for available session")
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (p *SessionPool) Release(session *ModelSession) {
	if p.closed {
		session.Destroy()
		return
	}

	p.metrics.mu.Lock()
	p.metrics.inUse--
	p.metrics.totalReleased++
	p.metrics.mu.Unlock()

	p.sessions <- session
}

func (p *SessionPool) Destroy() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}

	p.closed = true
	close(p.sessions)

	// Destroy all sessions
	for session := range p.sessions {
		session.Destroy()
	}
}

func (p *SessionPool) healthCheck() {
	ticker := time.NewTicker(HealthCheckPeriod)
	defer ticker.Stop()

	for range ticker.C {
		if p.closed {
			return
		}

		p.metrics.mu.RLock()
		inUse := p.metrics.inUse
		p.metrics.mu.RUnlock()

		// Recreate sessions lost to failed runs; in-use sessions are not lost
		currentSize := len(p.sessions) + inUse
		if currentSize < p.size {
			p.replenishSessions(p.size - currentSize)
		}
	}
}

func (p *SessionPool) replenishSessions(count int) {
	for i := 0; i < count; i++ {
		session, err := p.factory()
		if err != nil {
			p.recordError(err)
			continue
		}
		p.sessions <- session
	}
}

func (p *SessionPool) recordError(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.lastErrors = append(p.lastErrors, err)
	if len(p.lastErrors) > 10 {
		p.lastErrors = p.lastErrors[1:]
	}
}

func (p *SessionPool) Metrics() *PoolMetrics {
	return p.metrics
}
