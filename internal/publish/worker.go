package publish

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"fan-control-backend/internal/fan"
)

// Sender mirrors a panel state somewhere outside the process.
type Sender interface {
	Send(ctx context.Context, s fan.Snapshot) error
}

// WorkerPool mirrors panel state changes through a Sender without holding
// up the panel. It implements fan.Observer.
//
// Sends are serialized and a snapshot older than the last one sent is
// dropped, so the mirrored state never moves backwards whatever the order
// in which workers pick up jobs.
type WorkerPool struct {
	size   int
	jobs   chan fan.Snapshot
	sender Sender
	wg     sync.WaitGroup

	sendMu  sync.Mutex
	lastSeq uint64
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, sender Sender) *WorkerPool {
	if size <= 0 {
		size = 1
	}
	return &WorkerPool{
		size:   size,
		jobs:   make(chan fan.Snapshot, size*8),
		sender: sender,
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		wp.wg.Add(1)
		go wp.worker(ctx, i)
	}
}

// Wait blocks until every worker has exited.
func (wp *WorkerPool) Wait() {
	wp.wg.Wait()
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	defer wp.wg.Done()
	zap.S().Debugf("Publisher %d started", id)
	for {
		select {
		case s := <-wp.jobs:
			wp.send(ctx, id, s)
		case <-ctx.Done():
			zap.S().Debugf("Publisher %d shutting down", id)
			return
		}
	}
}

func (wp *WorkerPool) send(ctx context.Context, id int, s fan.Snapshot) {
	wp.sendMu.Lock()
	defer wp.sendMu.Unlock()
	if s.Seq != 0 && s.Seq <= wp.lastSeq {
		zap.S().Debugf("Publisher %d skipping stale state %d (last %d)", id, s.Seq, wp.lastSeq)
		return
	}
	if err := wp.sender.Send(ctx, s); err != nil {
		zap.S().Warnf("Publisher %d failed to mirror state: %v", id, err)
		return
	}
	if s.Seq > wp.lastSeq {
		wp.lastSeq = s.Seq
	}
}

// Dispatch queues a snapshot. When the queue is full the snapshot is
// dropped; a later change supersedes it.
func (wp *WorkerPool) Dispatch(s fan.Snapshot) bool {
	select {
	case wp.jobs <- s:
		return true
	default:
		zap.S().Warn("Publisher queue full; dropping state update")
		return false
	}
}

// StateChanged implements fan.Observer.
func (wp *WorkerPool) StateChanged(s fan.Snapshot) {
	wp.Dispatch(s)
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan fan.Snapshot {
	return wp.jobs
}
