package utils

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingFetcher struct {
	active int32
	peak   int32
	delay  time.Duration
}

func (f *countingFetcher) Fetch(ctx context.Context, url string) (string, error) {
	n := atomic.AddInt32(&f.active, 1)
	defer atomic.AddInt32(&f.active, -1)
	for {
		peak := atomic.LoadInt32(&f.peak)
		if n <= peak || atomic.CompareAndSwapInt32(&f.peak, peak, n) {
			break
		}
	}
	time.Sleep(f.delay)
	return "<html>" + url + "</html>", nil
}

func TestFetchPool_ReturnsResult(t *testing.T) {
	pool := NewFetchPool(&countingFetcher{}, 1)
	defer pool.Close()

	html, err := pool.Fetch(context.Background(), "a")

	require.NoError(t, err)
	assert.Equal(t, "<html>a</html>", html)
}

func TestFetchPool_BoundsConcurrency(t *testing.T) {
	fetcher := &countingFetcher{delay: 20 * time.Millisecond}
	pool := NewFetchPool(fetcher, 2)
	defer pool.Close()

	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := pool.Fetch(context.Background(), "u")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, atomic.LoadInt32(&fetcher.peak), int32(2))
}

func TestFetchPool_SubmitHonoursContext(t *testing.T) {
	fetcher := &countingFetcher{delay: 200 * time.Millisecond}
	pool := NewFetchPool(fetcher, 1)
	defer pool.Close()

	// Occupy the only worker
	_, err := pool.Submit(context.Background(), "busy")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = pool.Fetch(ctx, "waiting")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFetchPool_ClosedPoolRejects(t *testing.T) {
	pool := NewFetchPool(&countingFetcher{}, 1)
	pool.Close()

	_, err := pool.Submit(context.Background(), "late")

	assert.ErrorIs(t, err, ErrPoolClosed)
}
