package workerpool

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Goofygiraffe06/signup/internal/logging"
)

// Task represents a unit of work to be executed by the pool.
// The context carries the pool's per-task guard deadline.
type Task func(ctx context.Context)

// Pool is a bounded worker pool executing submitted tasks.
type Pool struct {
	name      string
	size      int
	taskLimit time.Duration
	queue     chan Task
	wg        sync.WaitGroup
	closed    chan struct{}
	mu        sync.RWMutex
	shutdown  sync.Once
}

var (
	// ErrPoolClosed is returned when submitting to a closed pool.
	ErrPoolClosed = errors.New("worker pool closed")
	// ErrQueueFull is returned when the queue has no free slot.
	ErrQueueFull = errors.New("worker pool queue full")
)

// DefaultTaskLimit bounds a single task when no limit is given.
const DefaultTaskLimit = 30 * time.Second

// New creates a new worker pool with given size and queue capacity.
func New(name string, size, queueCap int) *Pool {
	return NewWithLimit(name, size, queueCap, DefaultTaskLimit)
}

// NewWithLimit is New with an explicit per-task guard timeout.
func NewWithLimit(name string, size, queueCap int, taskLimit time.Duration) *Pool {
	if size <= 0 {
		size = 1
	}
	if queueCap <= 0 {
		queueCap = 1
	}
	if taskLimit <= 0 {
		taskLimit = DefaultTaskLimit
	}
	p := &Pool{
		name:      name,
		size:      size,
		taskLimit: taskLimit,
		queue:     make(chan Task, queueCap),
		closed:    make(chan struct{}),
	}
	p.start()
	logging.DebugLog("workerpool '%s' started with %d workers (queue %d)", name, size, queueCap)
	return p
}

// Name returns the pool name.
func (p *Pool) Name() string { return p.name }

func (p *Pool) start() {
	for i := 0; i < p.size; i++ {
		p.wg.Add(1)
		go func(id int) {
			defer p.wg.Done()
			for task := range p.queue {
				p.run(id, task)
			}
		}(i)
	}
}

func (p *Pool) run(id int, task Task) {
	// Guard context prevents runaway tasks
	ctx, cancel := context.WithTimeout(context.Background(), p.taskLimit)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			logging.ErrorLog("workerpool '%s' worker %d recovered from panic: %v", p.name, id, r)
		}
	}()
	task(ctx)
}

// Submit enqueues a task for execution.
func (p *Pool) Submit(task Task) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	select {
	case <-p.closed:
		return ErrPoolClosed
	default:
	}
	select {
	case p.queue <- task:
		return nil
	default:
		// Queue full; log and drop to protect service
		logging.WarnLog("workerpool '%s' queue full; dropping task", p.name)
		return ErrQueueFull
	}
}

// Close stops accepting tasks, drains the queue and waits for workers to finish.
func (p *Pool) Close() {
	p.shutdown.Do(func() {
		p.mu.Lock()
		close(p.closed)
		close(p.queue)
		p.mu.Unlock()

		done := make(chan struct{})
		go func() {
			p.wg.Wait()
			close(done)
		}()
		// Wait with a timeout to avoid blocking indefinitely
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			logging.WarnLog("workerpool '%s' shutdown timed out", p.name)
		}
	})
}
