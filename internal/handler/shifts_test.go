package handler

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestCachedRecommendationSurvivesUnreachableCache(t *testing.T) {
	// Nothing listens on port 1; every Get against this client fails with a
	// dial error, which must read as a cache miss rather than a hard failure.
	h := &Handler{
		redisClient: redis.NewClient(&redis.Options{
			Addr:        "127.0.0.1:1",
			DialTimeout: 100 * time.Millisecond,
			MaxRetries:  -1,
		}),
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	assert.Nil(t, h.cachedRecommendation(ctx, "recommend_2024-06-03_SHIFT1"))
}
