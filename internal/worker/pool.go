// Package worker runs link requests on a bounded pool while keeping each
// conversation's requests in submission order.
package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/iconidentify/sharegrab/internal/domain"
)

// ErrShutdownTimeout is returned when workers don't stop within timeout.
var ErrShutdownTimeout = errors.New("worker pool shutdown timed out")

// Handler processes one request to its terminal outcome. The context is
// canceled when the request is abandoned or the pool shuts down.
type Handler func(ctx context.Context, req domain.LinkRequest)

// Pool bounds simultaneous request processing (and therefore outbound
// connections and scratch disk usage). Requests from the same
// conversation run serially in submission order; different conversations
// run in parallel up to the worker limit.
type Pool struct {
	workers int
	handler Handler
	logger  *slog.Logger

	mu     sync.Mutex
	queues map[string]*convQueue
	ready  chan *convQueue

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// Config holds worker pool configuration.
type Config struct {
	Workers int
}

type task struct {
	req    domain.LinkRequest
	ctx    context.Context
	cancel context.CancelFunc
}

type convQueue struct {
	key     string
	items   []*task
	current *task // the item a worker is running right now, if any
	active  bool  // true while queued on ready or being drained by a worker
}

// NewPool creates a new worker pool.
func NewPool(cfg Config, handler Handler, logger *slog.Logger) *Pool {
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Pool{
		workers: cfg.Workers,
		handler: handler,
		logger:  logger,
		queues:  make(map[string]*convQueue),
		ready:   make(chan *convQueue, 1024),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start launches all workers.
func (p *Pool) Start() {
	p.logger.Info("starting worker pool", "workers", p.workers)

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// Stop gracefully stops all workers, canceling in-flight requests.
func (p *Pool) Stop(timeout time.Duration) error {
	p.logger.Info("stopping worker pool")
	p.cancel()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("worker pool stopped gracefully")
		return nil
	case <-time.After(timeout):
		return ErrShutdownTimeout
	}
}

// Submit enqueues a request behind any earlier requests from the same
// conversation. When supersede is true, requests from that conversation
// that have not finished are abandoned first: queued ones are dropped,
// and an in-flight one has its context canceled so it cleans up at the
// next suspension point.
func (p *Pool) Submit(req domain.LinkRequest, supersede bool) {
	taskCtx, taskCancel := context.WithCancel(p.ctx)
	t := &task{req: req, ctx: taskCtx, cancel: taskCancel}

	p.mu.Lock()
	q, ok := p.queues[req.ConversationID]
	if !ok {
		q = &convQueue{key: req.ConversationID}
		p.queues[req.ConversationID] = q
	}

	if supersede {
		for _, old := range q.items {
			old.cancel()
		}
		q.items = q.items[:0]
		if q.current != nil {
			q.current.cancel()
		}
	}

	q.items = append(q.items, t)
	wake := !q.active
	if wake {
		q.active = true
	}
	p.mu.Unlock()

	if wake {
		select {
		case p.ready <- q:
		case <-p.ctx.Done():
		}
	}
}

// Pending returns the number of requests waiting or running.
func (p *Pool) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := 0
	for _, q := range p.queues {
		n += len(q.items)
	}
	return n
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()

	logger := p.logger.With("worker_id", id)
	logger.Info("worker started")

	for {
		select {
		case <-p.ctx.Done():
			logger.Info("worker stopping")
			return
		case q := <-p.ready:
			p.drain(q)
		}
	}
}

// drain runs one conversation's queue to exhaustion. Holding the queue on
// a single worker is what serializes a conversation's requests.
func (p *Pool) drain(q *convQueue) {
	for {
		p.mu.Lock()
		if len(q.items) == 0 {
			q.active = false
			delete(p.queues, q.key)
			p.mu.Unlock()
			return
		}
		t := q.items[0]
		q.items = q.items[1:]
		if t.ctx.Err() != nil {
			// Superseded before it started; nothing was staged for it.
			p.mu.Unlock()
			continue
		}
		q.current = t
		p.mu.Unlock()

		p.handler(t.ctx, t.req)

		p.mu.Lock()
		q.current = nil
		p.mu.Unlock()
		t.cancel()
	}
}
