package redis

import (
	"context"
	"time"

	"globent-quiz-service/internal/infra/memory"
	"globent-quiz-service/internal/play"
	"github.com/redis/go-redis/v9"
)

// PlayRegistry is a Redis-aware registry of live play sessions.
// Notes:
//   - Sessions stay in process; Redis only carries a liveness marker per
//     session so operators can see live play across instances.
//   - Markers expire on their own if an instance dies without cleaning up.
type PlayRegistry struct {
	*memory.PlayRegistry
	client *redis.Client
	ttl    time.Duration
}

func NewPlayRegistry(client *redis.Client, ttl time.Duration) *PlayRegistry {
	return &PlayRegistry{
		PlayRegistry: memory.NewPlayRegistry(),
		client:       client,
		ttl:          ttl,
	}
}

func (r *PlayRegistry) Add(s *play.Session) string {
	id := r.PlayRegistry.Add(s)
	// best-effort liveness marker
	_ = r.client.Set(context.Background(), r.key(id), s.QuizID(), r.ttl).Err()
	return id
}

func (r *PlayRegistry) Remove(id string) {
	r.PlayRegistry.Remove(id)
	_ = r.client.Del(context.Background(), r.key(id)).Err()
}

func (r *PlayRegistry) CloseAll() []string {
	ids := r.PlayRegistry.CloseAll()
	if len(ids) > 0 {
		keys := make([]string, 0, len(ids))
		for _, id := range ids {
			keys = append(keys, r.key(id))
		}
		_ = r.client.Del(context.Background(), keys...).Err()
	}
	return ids
}

// Live counts the sessions marked live by every instance.
func (r *PlayRegistry) Live(ctx context.Context) (int, error) {
	var (
		cursor uint64
		count  int
	)
	for {
		keys, next, err := r.client.Scan(ctx, cursor, "play:session:*", 100).Result()
		if err != nil {
			return 0, err
		}
		count += len(keys)
		if next == 0 {
			return count, nil
		}
		cursor = next
	}
}

func (r *PlayRegistry) key(id string) string {
	return "play:session:" + id
}
