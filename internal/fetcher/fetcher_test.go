package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"course-scraper/internal/config"
	"course-scraper/internal/observability"
)

func testConfig() *config.Config {
	return &config.Config{
		Backoff: config.BackoffConfig{
			MinMS:     1,
			MaxMS:     5,
			JitterPct: 20,
		},
		HTTP: config.HttpConfig{
			UserAgent:           "course-scraper-test",
			ConnectTimeoutMS:    1000,
			TotalTimeoutMS:      2000,
			RobotsCacheTTLHours: 1,
		},
		RateLimit: config.RateLimitConfig{
			MaxConcurrentPerHost: 2,
			RPM:                  6000,
		},
	}
}

func TestBackoffCalculation(t *testing.T) {
	minDelay := 250 * time.Millisecond
	maxDelay := 2000 * time.Millisecond

	for attempt := 1; attempt <= 8; attempt++ {
		backoff := Backoff(attempt, minDelay, maxDelay, 20)
		if backoff < minDelay || backoff > maxDelay*12/10 {
			t.Errorf("Backoff out of expected range on attempt %d: %v", attempt, backoff)
		}
	}
}

func TestBackoffNoJitterIsExponential(t *testing.T) {
	require.Equal(t, 100*time.Millisecond, Backoff(1, 100*time.Millisecond, time.Second, 0))
	require.Equal(t, 400*time.Millisecond, Backoff(3, 100*time.Millisecond, time.Second, 0))
	require.Equal(t, time.Second, Backoff(10, 100*time.Millisecond, time.Second, 0))
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(2, 6000)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		release, err := rl.Acquire(ctx, "example.com")
		if err != nil {
			t.Fatalf("Rate limiter error: %v", err)
		}
		release()
		release()
	}
}

func TestRateLimiterBlocksWhenSlotsTaken(t *testing.T) {
	rl := NewRateLimiter(1, 0)

	release, err := rl.Acquire(context.Background(), "example.com")
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = rl.Acquire(ctx, "example.com")
	require.ErrorIs(t, err, context.DeadlineExceeded)

	// другой хост не зависит от занятого слота
	other, err := rl.Acquire(context.Background(), "cdn.example.com")
	require.NoError(t, err)
	other()
}

func TestDownloadReturnsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "course-scraper-test", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte("jpeg-bytes"))
	}))
	defer srv.Close()

	f := NewFetcher(testConfig(), observability.NewNopLogger())
	body, err := f.Download(context.Background(), srv.URL+"/course/480x270/a.jpg")
	require.NoError(t, err)
	require.Equal(t, "jpeg-bytes", string(body))
}

func TestDownloadNon2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	f := NewFetcher(testConfig(), observability.NewNopLogger())
	_, err := f.Download(context.Background(), srv.URL+"/missing.jpg")

	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	require.Equal(t, http.StatusNotFound, httpErr.StatusCode)
}

func TestFetchRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.HTTP.MaxRetries = 3

	f := NewFetcher(cfg, observability.NewNopLogger())
	body, err := f.Download(context.Background(), srv.URL+"/img.jpg")
	require.NoError(t, err)
	require.Equal(t, "ok", string(body))
	require.Equal(t, int32(3), calls.Load())
}

func TestRobotsDisallow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			_, _ = w.Write([]byte("User-agent: *\nDisallow: /private/\n"))
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.HTTP.RespectRobots = true
	f := NewFetcher(cfg, observability.NewNopLogger())

	allowed, err := f.Allowed(context.Background(), srv.URL+"/courses/development/")
	require.NoError(t, err)
	require.True(t, allowed)

	_, err = f.Download(context.Background(), srv.URL+"/private/a.jpg")
	require.ErrorIs(t, err, ErrDisallowed)
}

func TestRobotsIgnoredWhenDisabled(t *testing.T) {
	f := NewFetcher(testConfig(), observability.NewNopLogger())

	// сеть не трогаем: проверка выключена
	allowed, err := f.Allowed(context.Background(), "http://127.0.0.1:1/private/")
	require.NoError(t, err)
	require.True(t, allowed)
}
