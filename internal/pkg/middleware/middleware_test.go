package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"bookstore_api/internal/pkg/config"
	"bookstore_api/pkg/response"
	"bookstore_api/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	config.GlobalConfig.JWT.Secret = "0123456789abcdef0123456789abcdef"
	config.GlobalConfig.JWT.Expire = 1
}

func bearer(t *testing.T, userID uint, role string) string {
	token, _, err := utils.GenerateToken(userID, role)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestAuthMiddleware(t *testing.T) {
	r := gin.New()
	r.GET("/me", AuthMiddleware(), func(c *gin.Context) {
		claims, _ := CurrentUser(c)
		response.Success(c, claims.UserID)
	})
	r.GET("/admin", AuthMiddleware(), AdminMiddleware(), func(c *gin.Context) {
		response.Success(c, "ok")
	})

	t.Run("Missing header", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Valid token", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", bearer(t, 3, utils.RoleUser))
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Non admin rejected", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("Authorization", bearer(t, 3, utils.RoleUser))
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Admin allowed", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("Authorization", bearer(t, 1, utils.RoleAdmin))
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

type memoryStore struct {
	mu      sync.Mutex
	entries map[string]*StoredResponse
}

func newMemoryStore() *memoryStore {
	return &memoryStore{entries: make(map[string]*StoredResponse)}
}

func (m *memoryStore) Reserve(_ context.Context, key string, _ time.Duration) (bool, *StoredResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.entries[key]
	if !ok {
		m.entries[key] = nil
		return true, nil, nil
	}
	return false, stored, nil
}

func (m *memoryStore) Save(_ context.Context, key string, resp StoredResponse, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = &resp
	return nil
}

func (m *memoryStore) Release(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

func TestIdempotencyMiddleware(t *testing.T) {
	calls := 0
	status := http.StatusCreated
	r := gin.New()
	r.POST("/orders", IdempotencyMiddleware(newMemoryStore(), time.Minute), func(c *gin.Context) {
		calls++
		c.JSON(status, gin.H{"order_id": calls})
	})

	post := func(key string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/orders", nil)
		if key != "" {
			req.Header.Set(IdempotencyHeader, key)
		}
		r.ServeHTTP(w, req)
		return w
	}

	first := post("abc")
	second := post("abc")

	assert.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "true", second.Header().Get(replayHeader))
	assert.Equal(t, 1, calls)

	post("")
	post("")
	assert.Equal(t, 3, calls)

	t.Run("Failed request releases key", func(t *testing.T) {
		status = http.StatusBadRequest
		post("retry")
		status = http.StatusCreated
		w := post("retry")
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, 5, calls)
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	r := gin.New()
	r.GET("/", RateLimitMiddleware(NewIPRateLimiter(1, 1)), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}
