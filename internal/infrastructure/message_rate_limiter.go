package infrastructure

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// MessageRateLimiter implements token bucket rate limiting per chatbot sender
type MessageRateLimiter struct {
	mu          sync.Mutex
	buckets     map[string]*senderBucket
	rate        rate.Limit // tokens per second
	burst       int
	idleTTL     time.Duration
	cleanupTick time.Duration
	now         func() time.Time
	done        chan struct{}
	stopOnce    sync.Once
}

type senderBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewMessageRateLimiter creates a rate limiter with specified rate and burst
// rate: messages per second allowed
// burst: maximum burst capacity
func NewMessageRateLimiter(perSecond float64, burst int) *MessageRateLimiter {
	rl := &MessageRateLimiter{
		buckets:     make(map[string]*senderBucket),
		rate:        rate.Limit(perSecond),
		burst:       burst,
		idleTTL:     10 * time.Minute,
		cleanupTick: 5 * time.Minute,
		now:         time.Now,
		done:        make(chan struct{}),
	}

	go rl.cleanup()

	return rl
}

// Allow checks if sender can be served (consumes 1 token if allowed)
func (rl *MessageRateLimiter) Allow(sender string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	bucket, exists := rl.buckets[sender]
	if !exists {
		bucket = &senderBucket{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.buckets[sender] = bucket
	}
	bucket.lastSeen = now
	return bucket.limiter.AllowN(now, 1)
}

// WaitTime returns how long to wait before the next message is allowed
func (rl *MessageRateLimiter) WaitTime(sender string) time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	bucket, exists := rl.buckets[sender]
	if !exists || rl.rate <= 0 {
		return 0
	}

	tokens := bucket.limiter.TokensAt(rl.now())
	if tokens >= 1 {
		return 0
	}
	return time.Duration((1 - tokens) / float64(rl.rate) * float64(time.Second))
}

// Reset removes rate limit state for a sender
func (rl *MessageRateLimiter) Reset(sender string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.buckets, sender)
}

// Stop ends the cleanup goroutine
func (rl *MessageRateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.done) })
}

// cleanup removes stale buckets periodically
func (rl *MessageRateLimiter) cleanup() {
	ticker := time.NewTicker(rl.cleanupTick)
	defer ticker.Stop()
	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			rl.evictIdle()
		}
	}
}

func (rl *MessageRateLimiter) evictIdle() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	now := rl.now()
	for sender, bucket := range rl.buckets {
		if now.Sub(bucket.lastSeen) > rl.idleTTL {
			delete(rl.buckets, sender)
		}
	}
}
