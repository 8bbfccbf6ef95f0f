package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"globent-quiz-service/internal/domain"
	"golang.org/x/sync/singleflight"
)

// QuizLoader fetches a full quiz by PIN from the backing store.
type QuizLoader interface {
	LoadQuiz(ctx context.Context, pin string) (domain.Quiz, error)
}

// QuizLoaderFunc adapts a store lookup to QuizLoader.
type QuizLoaderFunc func(ctx context.Context, pin string) (domain.Quiz, error)

func (f QuizLoaderFunc) LoadQuiz(ctx context.Context, pin string) (domain.Quiz, error) {
	return f(ctx, pin)
}

// QuizCache caches quizzes by PIN with a TTL so players joining the same
// quiz do not each hit the store.
type QuizCache struct {
	loader QuizLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group

	mu    sync.RWMutex
	rnd   *rand.Rand
	cache map[string]cachedQuiz
}

type cachedQuiz struct {
	quiz      domain.Quiz
	expiresAt time.Time
}

func NewQuizCache(loader QuizLoader, ttl time.Duration) *QuizCache {
	return newQuizCacheWithClock(loader, ttl, time.Now)
}

func newQuizCacheWithClock(loader QuizLoader, ttl time.Duration, clock func() time.Time) *QuizCache {
	return &QuizCache{
		loader: loader,
		ttl:    ttl,
		clock:  clock,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedQuiz),
	}
}

func (c *QuizCache) GetQuiz(ctx context.Context, pin string) (domain.Quiz, error) {
	if quiz, ok := c.lookup(pin); ok {
		return quiz, nil
	}

	result, err, _ := c.sf.Do(pin, func() (interface{}, error) {
		if quiz, ok := c.lookup(pin); ok {
			return quiz, nil
		}

		quiz, err := c.loader.LoadQuiz(ctx, pin)
		if err != nil {
			return domain.Quiz{}, err
		}
		if ttl := c.ttlWithJitter(); ttl > 0 {
			c.mu.Lock()
			c.cache[pin] = cachedQuiz{quiz: quiz, expiresAt: c.clock().Add(ttl)}
			c.mu.Unlock()
		}
		return quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return cloneQuiz(result.(domain.Quiz)), nil
}

// Evict drops the cached entry for pin, used when a quiz is deleted.
func (c *QuizCache) Evict(_ context.Context, pin string) error {
	c.mu.Lock()
	delete(c.cache, pin)
	c.mu.Unlock()
	return nil
}

func (c *QuizCache) lookup(pin string) (domain.Quiz, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.cache[pin]
	if !ok || !entry.expiresAt.After(c.clock()) {
		return domain.Quiz{}, false
	}
	return cloneQuiz(entry.quiz), true
}

func (c *QuizCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
