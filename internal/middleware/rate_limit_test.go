package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func limitedRouter(rl *RateLimiter) *gin.Engine {
	r := gin.New()
	r.POST("/save", rl.Middleware(), func(c *gin.Context) { c.Status(http.StatusCreated) })
	return r
}

func TestRateLimiterFailsOpen(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond, MaxRetries: -1})
	defer client.Close()

	r := limitedRouter(NewSaveRateLimiter(client, 1, zap.NewNop()))
	for i := 0; i < 3; i++ {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/save", nil))
		assert.Equal(t, http.StatusCreated, rr.Code)
		assert.Equal(t, "rate limit check failed", rr.Header().Get("X-RateLimit-Error"))
	}
}

func TestRateLimiterWithRedis(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set, skipping redis test")
	}
	opts, err := redis.ParseURL(url)
	require.NoError(t, err)
	client := redis.NewClient(opts)
	defer client.Close()
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis not reachable: %v", err)
	}

	rl := NewRateLimiter(client, RateLimitConfig{
		Window:    time.Minute,
		Limit:     2,
		KeyPrefix: "test:" + uuid.NewString(),
	}, zap.NewNop())
	r := limitedRouter(rl)

	codes := make([]int, 3)
	for i := range codes {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/save", nil))
		codes[i] = rr.Code
		if i == 2 {
			assert.Equal(t, "0", rr.Header().Get("X-RateLimit-Remaining"))
			assert.Contains(t, rr.Body.String(), "TOO_MANY_REQUESTS")
		}
	}
	assert.Equal(t, []int{http.StatusCreated, http.StatusCreated, http.StatusTooManyRequests}, codes)
}

func TestRequestLogger(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogger(zap.NewNop()))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}
