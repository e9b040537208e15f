package bootstrap

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// worker is the state one pool goroutine owns. Its source is never shared.
type worker struct {
	id      int
	sampler Sampler
	src     Source
}

type task func(w *worker, i int) (int, error)

// pool is a fixed set of worker goroutines fed replicate indices.
type pool struct {
	g    *errgroup.Group
	ctx  context.Context
	jobs chan int
	done chan struct{}

	work   task
	counts []int
}

// startPool launches n workers. Each worker runs init once with its own
// state before accepting replicates; startPool returns when all are ready.
func startPool(n int, init func(w *worker)) *pool {
	g, ctx := errgroup.WithContext(context.Background())
	p := &pool{
		g:    g,
		ctx:  ctx,
		jobs: make(chan int),
		done: make(chan struct{}, n),
	}

	var ready sync.WaitGroup
	ready.Add(n)
	for id := range n {
		w := &worker{id: id}
		g.Go(func() error {
			init(w)
			ready.Done()
			for i := range p.jobs {
				count, err := p.work(w, i)
				if err != nil {
					return fmt.Errorf("replicate %d on worker %d: %w", i, w.id, err)
				}
				p.counts[i] = count
				p.done <- struct{}{}
			}
			return nil
		})
	}
	ready.Wait()
	return p
}

// run dispatches replicates 0..total-1 and waits for all of them. It must be
// called exactly once. The first failing replicate stops dispatch and its
// error is returned.
func (p *pool) run(total int, work task, progress func(done, total int)) ([]int, error) {
	p.work = work
	p.counts = make([]int, total)

	p.g.Go(func() error {
		defer close(p.jobs)
		for i := range total {
			select {
			case p.jobs <- i:
			case <-p.ctx.Done():
				return nil
			}
		}
		return nil
	})

	waitErr := make(chan error, 1)
	go func() {
		waitErr <- p.g.Wait()
		close(p.done)
	}()

	completed := 0
	for range p.done {
		completed++
		if progress != nil {
			progress(completed, total)
		}
	}
	if err := <-waitErr; err != nil {
		return nil, err
	}
	return p.counts, nil
}
