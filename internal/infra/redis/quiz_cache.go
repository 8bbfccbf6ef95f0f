package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"globent-quiz-service/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// QuizLoader fetches a full quiz by PIN from the backing store.
type QuizLoader interface {
	LoadQuiz(ctx context.Context, pin string) (domain.Quiz, error)
}

// QuizCache stores full quiz documents in Redis keyed by PIN and falls back
// to the loader on a miss. Several service instances share the cache.
//
//	SET quiz:pin:{PIN} {quiz json} EX ttl
type QuizCache struct {
	client *redis.Client
	loader QuizLoader
	ttl    time.Duration
	sf     singleflight.Group

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewQuizCache(client *redis.Client, loader QuizLoader, ttl time.Duration) *QuizCache {
	return &QuizCache{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *QuizCache) GetQuiz(ctx context.Context, pin string) (domain.Quiz, error) {
	if quiz, ok := c.cached(ctx, pin); ok {
		return quiz, nil
	}

	result, err, _ := c.sf.Do(pin, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if quiz, ok := c.cached(ctx, pin); ok {
			return quiz, nil
		}

		quiz, err := c.loader.LoadQuiz(ctx, pin)
		if err != nil {
			return domain.Quiz{}, err
		}
		if raw, err := json.Marshal(quiz); err == nil {
			_ = c.client.Set(ctx, c.key(pin), raw, c.ttlWithJitter()).Err()
		}
		return quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return result.(domain.Quiz), nil
}

func (c *QuizCache) Evict(ctx context.Context, pin string) error {
	if err := c.client.Del(ctx, c.key(pin)).Err(); err != nil {
		return fmt.Errorf("redis evict %s: %w", pin, err)
	}
	return nil
}

// cached treats any Redis failure as a miss so the store stays the source of
// truth.
func (c *QuizCache) cached(ctx context.Context, pin string) (domain.Quiz, bool) {
	raw, err := c.client.Get(ctx, c.key(pin)).Bytes()
	if err != nil {
		return domain.Quiz{}, false
	}
	var quiz domain.Quiz
	if err := json.Unmarshal(raw, &quiz); err != nil {
		return domain.Quiz{}, false
	}
	return quiz, true
}

func (c *QuizCache) key(pin string) string {
	return "quiz:pin:" + pin
}

func (c *QuizCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
