package utils

import (
	"context"
	"errors"
	"sync"
)

// PageFetcher returns the markup of a URL
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// FetchResult is the settled value of a submitted fetch
type FetchResult struct {
	URL  string
	HTML string
	Err  error
}

type fetchJob struct {
	ctx    context.Context
	url    string
	result chan FetchResult
}

// ErrPoolClosed is returned when submitting to a closed pool
var ErrPoolClosed = errors.New("fetch pool closed")

// FetchPool runs navigations on a bounded set of workers. Each worker
// handles one navigation at a time; callers get a future per submission.
type FetchPool struct {
	fetcher PageFetcher
	jobs    chan fetchJob
	done    chan struct{}
	once    sync.Once
	wg      sync.WaitGroup
}

// NewFetchPool starts workers goroutines serving fetcher
func NewFetchPool(fetcher PageFetcher, workers int) *FetchPool {
	if workers <= 0 {
		workers = 1
	}
	p := &FetchPool{
		fetcher: fetcher,
		jobs:    make(chan fetchJob),
		done:    make(chan struct{}),
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

func (p *FetchPool) worker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.done:
			return
		case job := <-p.jobs:
			html, err := p.fetcher.Fetch(job.ctx, job.url)
			job.result <- FetchResult{URL: job.url, HTML: html, Err: err}
		}
	}
}

// Submit hands url to the next free worker and returns a channel that
// receives exactly one result. It blocks until a worker accepts the job.
func (p *FetchPool) Submit(ctx context.Context, url string) (<-chan FetchResult, error) {
	job := fetchJob{ctx: ctx, url: url, result: make(chan FetchResult, 1)}
	select {
	case <-p.done:
		return nil, ErrPoolClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	case p.jobs <- job:
		return job.result, nil
	}
}

// Fetch submits url and waits for its result
func (p *FetchPool) Fetch(ctx context.Context, url string) (string, error) {
	future, err := p.Submit(ctx, url)
	if err != nil {
		return "", err
	}
	select {
	case res := <-future:
		return res.HTML, res.Err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Close stops the workers after their current navigation
func (p *FetchPool) Close() {
	p.once.Do(func() {
		close(p.done)
	})
	p.wg.Wait()
}
