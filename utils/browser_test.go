package utils

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"shopify-feed/internal/types"
)

type fakeSession struct {
	loadErr     error
	domErr      error
	blockLoad   bool
	heights     []float64
	scrolls     int
	navigations []Readiness
	closed      bool
	html        string
}

func (s *fakeSession) Navigate(ctx context.Context, url string, readiness Readiness) error {
	s.navigations = append(s.navigations, readiness)
	if readiness == ReadinessLoad {
		if s.blockLoad {
			<-ctx.Done()
			return ctx.Err()
		}
		return s.loadErr
	}
	if errors.Is(s.domErr, context.DeadlineExceeded) {
		<-ctx.Done()
		return ctx.Err()
	}
	return s.domErr
}

func (s *fakeSession) height() float64 {
	if len(s.heights) == 0 {
		return 1000
	}
	i := s.scrolls
	if i >= len(s.heights) {
		i = len(s.heights) - 1
	}
	return s.heights[i]
}

func (s *fakeSession) ScrollToBottom(ctx context.Context) (float64, error) {
	s.scrolls++
	return s.height(), nil
}

func (s *fakeSession) ScrollHeight(ctx context.Context) (float64, error) {
	return s.height(), nil
}

func (s *fakeSession) Content(ctx context.Context) (string, error) {
	return s.html, nil
}

func (s *fakeSession) Close() error {
	s.closed = true
	return nil
}

type fakeFactory struct {
	session *fakeSession
	err     error
}

func (f *fakeFactory) NewSession(ctx context.Context) (Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.session, nil
}

func (f *fakeFactory) Close() error { return nil }

func browserConfig() *types.Config {
	config := types.DefaultConfig()
	config.Timeout = 200 * time.Millisecond
	config.ScrollSettle = 0
	config.FinalSettle = 0
	config.MaxScrolls = 5
	return config
}

func TestBrowserClient_Fetch_LoadReadiness(t *testing.T) {
	session := &fakeSession{html: "<html>ok</html>"}
	client := NewBrowserClientWithFactory(browserConfig(), logrus.New(), &fakeFactory{session: session})

	html, err := client.Fetch(context.Background(), "https://shop.teamsg.in/products/rp-17")

	require.NoError(t, err)
	assert.Equal(t, "<html>ok</html>", html)
	assert.Equal(t, []Readiness{ReadinessLoad}, session.navigations)
	assert.True(t, session.closed)
}

func TestBrowserClient_Fetch_FallsBackToDOMContent(t *testing.T) {
	session := &fakeSession{blockLoad: true, html: "<html>dom</html>"}
	client := NewBrowserClientWithFactory(browserConfig(), logrus.New(), &fakeFactory{session: session})

	html, err := client.Fetch(context.Background(), "https://example.com/p")

	require.NoError(t, err)
	assert.Equal(t, "<html>dom</html>", html)
	assert.Equal(t, []Readiness{ReadinessLoad, ReadinessDOMContent}, session.navigations)
	assert.True(t, session.closed)
}

func TestBrowserClient_Fetch_TimeoutOnBothStrategies(t *testing.T) {
	session := &fakeSession{blockLoad: true, domErr: context.DeadlineExceeded}
	client := NewBrowserClientWithFactory(browserConfig(), logrus.New(), &fakeFactory{session: session})

	start := time.Now()
	_, err := client.Fetch(context.Background(), "https://example.com/slow")

	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrFetchTimeout))
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.True(t, session.closed)
}

func TestBrowserClient_Fetch_NavigationError(t *testing.T) {
	session := &fakeSession{loadErr: errors.New("net::ERR_NAME_NOT_RESOLVED"), domErr: errors.New("net::ERR_NAME_NOT_RESOLVED")}
	client := NewBrowserClientWithFactory(browserConfig(), logrus.New(), &fakeFactory{session: session})

	_, err := client.Fetch(context.Background(), "https://nowhere.invalid")

	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrFetch))
	assert.False(t, errors.Is(err, types.ErrFetchTimeout))
	assert.True(t, session.closed)
}

func TestBrowserClient_Fetch_SessionError(t *testing.T) {
	client := NewBrowserClientWithFactory(browserConfig(), logrus.New(), &fakeFactory{err: errors.New("no chrome")})

	_, err := client.Fetch(context.Background(), "https://example.com")

	assert.True(t, errors.Is(err, types.ErrFetch))
}

func TestBrowserClient_AutoScroll_StopsWhenStable(t *testing.T) {
	session := &fakeSession{heights: []float64{1000, 2000, 3000, 3000}}
	client := NewBrowserClientWithFactory(browserConfig(), logrus.New(), &fakeFactory{session: session})

	client.autoScroll(context.Background(), session)

	assert.Equal(t, 3, session.scrolls)
}

func TestBrowserClient_AutoScroll_RespectsCap(t *testing.T) {
	// Height keeps growing like an infinite feed
	heights := make([]float64, 50)
	for i := range heights {
		heights[i] = float64(1000 * (i + 1))
	}
	session := &fakeSession{heights: heights}
	client := NewBrowserClientWithFactory(browserConfig(), logrus.New(), &fakeFactory{session: session})

	client.autoScroll(context.Background(), session)

	assert.Equal(t, 5, session.scrolls)
}
