package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/agrishop-billing/internal/infrastructure/memory"
	"github.com/sangkips/agrishop-billing/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIdempotentRouter(t *testing.T, status int) (*gin.Engine, *int) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	calls := 0
	store := memory.NewStore()

	r := gin.New()
	r.POST("/bills", Idempotency(IdempotencyConfig{Repo: store.Idempotency(), Log: logger.Nop()}), func(c *gin.Context) {
		calls++
		c.JSON(status, gin.H{"call": calls})
	})
	r.GET("/bills", Idempotency(IdempotencyConfig{Repo: store.Idempotency(), Log: logger.Nop()}), func(c *gin.Context) {
		calls++
		c.JSON(http.StatusOK, gin.H{"call": calls})
	})
	return r, &calls
}

func post(r *gin.Engine, key, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/bills", strings.NewReader(body))
	if key != "" {
		req.Header.Set(IdempotencyKeyHeader, key)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIdempotencyReplaysSuccess(t *testing.T) {
	r, calls := newIdempotentRouter(t, http.StatusCreated)

	first := post(r, "k1", `{"a":1}`)
	second := post(r, "k1", `{"a":1}`)

	assert.Equal(t, 1, *calls)
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "true", second.Header().Get(IdempotencyReplayedHeader))
}

func TestIdempotencyWithoutKeyPassesThrough(t *testing.T) {
	r, calls := newIdempotentRouter(t, http.StatusCreated)

	post(r, "", `{}`)
	post(r, "", `{}`)

	assert.Equal(t, 2, *calls)
}

func TestIdempotencyDoesNotStoreFailures(t *testing.T) {
	r, calls := newIdempotentRouter(t, http.StatusUnprocessableEntity)

	post(r, "k1", `{}`)
	w := post(r, "k1", `{}`)

	assert.Equal(t, 2, *calls)
	assert.Empty(t, w.Header().Get(IdempotencyReplayedHeader))
}

func TestIdempotencyRejectsDifferentBody(t *testing.T) {
	r, calls := newIdempotentRouter(t, http.StatusCreated)

	post(r, "k1", `{"a":1}`)
	w := post(r, "k1", `{"a":2}`)

	assert.Equal(t, 1, *calls)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestIdempotencyIgnoresGet(t *testing.T) {
	r, calls := newIdempotentRouter(t, http.StatusOK)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/bills", nil)
		req.Header.Set(IdempotencyKeyHeader, "k1")
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	assert.Equal(t, 2, *calls)
}

func TestIdempotencyKeyTooLong(t *testing.T) {
	r, calls := newIdempotentRouter(t, http.StatusCreated)

	w := post(r, strings.Repeat("x", maxIdempotencyKeyLength+1), `{}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, *calls)
}

func TestRateLimiterConfigFor(t *testing.T) {
	cfg := RateLimiterConfigFor(120, time.Minute)
	assert.Equal(t, 2.0, cfg.RequestsPerSecond)
	assert.Equal(t, 120, cfg.BurstSize)

	def := RateLimiterConfigFor(0, 0)
	assert.Equal(t, DefaultRateLimiterConfig(), def)
}

func TestClientRateLimiterCleanup(t *testing.T) {
	rl := NewClientRateLimiter(DefaultRateLimiterConfig())
	defer rl.Stop()

	rl.getLimiter("10.0.0.1")
	require.Equal(t, 1, rl.Stats()["active_clients"])

	rl.entryTTL = -1
	rl.cleanup()
	assert.Equal(t, 0, rl.Stats()["active_clients"])
}
