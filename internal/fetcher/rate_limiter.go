package fetcher

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// RateLimiter ограничивает параллелизм и частоту запросов к одному хосту
type RateLimiter struct {
	maxConcurrent  int
	rpm            int
	hostSemaphores map[string]*hostLimiter
	mu             sync.Mutex
}

type hostLimiter struct {
	sem     chan struct{}
	limiter *rate.Limiter
}

func NewRateLimiter(maxConcurrent, rpm int) *RateLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &RateLimiter{
		maxConcurrent:  maxConcurrent,
		rpm:            rpm,
		hostSemaphores: make(map[string]*hostLimiter),
	}
}

func (rl *RateLimiter) host(host string) *hostLimiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	limiter, exists := rl.hostSemaphores[host]
	if !exists {
		limit := rate.Inf
		if rl.rpm > 0 {
			limit = rate.Limit(float64(rl.rpm) / 60)
		}
		limiter = &hostLimiter{
			sem:     make(chan struct{}, rl.maxConcurrent),
			limiter: rate.NewLimiter(limit, rl.maxConcurrent),
		}
		rl.hostSemaphores[host] = limiter
	}
	return limiter
}

// Acquire занимает слот хоста и ждёт токен RPM.
// Возвращённую функцию нужно вызвать после завершения запроса.
func (rl *RateLimiter) Acquire(ctx context.Context, host string) (func(), error) {
	limiter := rl.host(host)

	select {
	case limiter.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if err := limiter.limiter.Wait(ctx); err != nil {
		<-limiter.sem
		return nil, err
	}

	var once sync.Once
	return func() { once.Do(func() { <-limiter.sem }) }, nil
}
