package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const takeViewTTL = 10 * time.Minute

// QuizCache keeps the redacted take-view payload per quiz so repeated
// take requests skip rebuilding it from Mongo. A nil *QuizCache is valid
// and disables caching, mirroring the optional event publisher wiring.
type QuizCache struct {
	client *redis.Client
}

func New(addr, password string, db int) (*QuizCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}
	return &QuizCache{client: client}, nil
}

func takeViewKey(quizID string) string {
	return "quiz:take:" + quizID
}

// GetTakeView loads a cached take view into v. Returns false on miss or
// any redis error; callers fall back to Mongo either way.
func (c *QuizCache) GetTakeView(ctx context.Context, quizID string, v any) bool {
	if c == nil {
		return false
	}
	data, err := c.client.Get(ctx, takeViewKey(quizID)).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(data, v) == nil
}

func (c *QuizCache) SetTakeView(ctx context.Context, quizID string, v any) {
	if c == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	c.client.Set(ctx, takeViewKey(quizID), data, takeViewTTL)
}

// Invalidate drops the cached view after an admin edit or delete.
func (c *QuizCache) Invalidate(ctx context.Context, quizID string) {
	if c == nil {
		return
	}
	c.client.Del(ctx, takeViewKey(quizID))
}

func (c *QuizCache) Close() {
	if c != nil {
		_ = c.client.Close()
	}
}
