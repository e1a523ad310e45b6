package parallel

import (
	"context"
	"sync"
	"time"
)

// Pool runs queued functions on at most workers goroutines. The first function that
// returns an error cancels the context handed to the others and is reported by Wait.
type Pool interface {
	Reset(ctx context.Context)
	Add(f func(ctx context.Context) error)
	Stop()
	Wait() error
}

type pool struct {
	ctx       context.Context
	ctxCancel func()

	wg sync.WaitGroup

	queue     []func(ctx context.Context) error
	queueLock sync.Mutex
	queueWake chan struct{}

	errLock   sync.Mutex
	lastError error

	workersLock sync.Mutex
	workers     int
	workersMax  int
}

func New(workers int) Pool {
	if workers < 1 {
		workers = 1
	}
	p := &pool{
		queue:      make([]func(ctx context.Context) error, 0, workers),
		queueWake:  make(chan struct{}, 1),
		workersMax: workers,
	}
	p.Reset(context.Background())

	return p
}

// Reset prepares the pool for a new batch bound to ctx. The context of the previous
// batch is cancelled.
func (p *pool) Reset(ctx context.Context) {
	p.errLock.Lock()
	p.lastError = nil
	p.errLock.Unlock()

	if p.ctxCancel != nil {
		p.ctxCancel()
	}
	p.ctx, p.ctxCancel = context.WithCancel(ctx)
}

func (p *pool) Add(f func(ctx context.Context) error) {
	p.wg.Add(1)

	p.queueLock.Lock()
	p.queue = append(p.queue, f)
	p.queueLock.Unlock()

	p.workersLock.Lock()
	if p.workers < p.workersMax {
		p.workers++
		go p.work()
	}
	p.workersLock.Unlock()

	select {
	case p.queueWake <- struct{}{}:
	default:
	}
}

func (p *pool) Stop() {
	p.ctxCancel()
}

// Wait ends the batch: it returns once every added function has returned, and cancels
// the batch context. Call Reset before adding more.
func (p *pool) Wait() error {
	p.wg.Wait()
	p.ctxCancel()

	p.errLock.Lock()
	defer p.errLock.Unlock()

	return p.lastError
}

func (p *pool) work() {
	var f func(ctx context.Context) error
	for {
		f = nil

		p.queueLock.Lock()
		if len(p.queue) > 0 {
			f = p.queue[0]
			copy(p.queue, p.queue[1:])
			p.queue = p.queue[:len(p.queue)-1]
		}
		p.queueLock.Unlock()

		if f == nil {
			select {
			case <-time.After(5 * time.Second):
				p.workersLock.Lock()
				p.queueLock.Lock()
				pending := len(p.queue)
				p.queueLock.Unlock()
				if pending == 0 {
					p.workers--
					p.workersLock.Unlock()
					return
				}
				p.workersLock.Unlock()

			case <-p.queueWake:
			}

			continue
		}

		err := f(p.ctx)
		if err != nil {
			p.errLock.Lock()
			if p.lastError == nil {
				p.lastError = err
			}
			p.errLock.Unlock()
			p.ctxCancel()
		}
		p.wg.Done()
	}
}
