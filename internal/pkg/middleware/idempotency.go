package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"bookstore_api/pkg/errs"
	"bookstore_api/pkg/logger"
	"bookstore_api/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	IdempotencyHeader = "Idempotency-Key"
	replayHeader      = "X-Idempotent-Replay"
	pendingMarker     = "pending"
)

// StoredResponse 已完成请求的响应快照
type StoredResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// IdempotencyStore 幂等键存储
type IdempotencyStore interface {
	// Reserve 占用键。返回 true 表示首次请求；否则返回已保存的响应，处理中时响应为 nil
	Reserve(ctx context.Context, key string, ttl time.Duration) (bool, *StoredResponse, error)
	Save(ctx context.Context, key string, resp StoredResponse, ttl time.Duration) error
	Release(ctx context.Context, key string) error
}

// RedisIdempotencyStore 基于 SETNX 的实现
type RedisIdempotencyStore struct {
	rdb *redis.Client
}

// StoreFor 未配置 Redis 时返回 nil，幂等中间件随之关闭
func StoreFor(rdb *redis.Client) IdempotencyStore {
	if rdb == nil {
		return nil
	}
	return NewRedisIdempotencyStore(rdb)
}

func NewRedisIdempotencyStore(rdb *redis.Client) *RedisIdempotencyStore {
	return &RedisIdempotencyStore{rdb: rdb}
}

func (s *RedisIdempotencyStore) Reserve(ctx context.Context, key string, ttl time.Duration) (bool, *StoredResponse, error) {
	ok, err := s.rdb.SetNX(ctx, key, pendingMarker, ttl).Result()
	if err != nil {
		return false, nil, err
	}
	if ok {
		return true, nil, nil
	}

	raw, err := s.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		// 键在两次调用之间过期，按处理中处理，由客户端重试
		return false, nil, nil
	}
	if err != nil {
		return false, nil, err
	}
	if string(raw) == pendingMarker {
		return false, nil, nil
	}

	var stored StoredResponse
	if err := json.Unmarshal(raw, &stored); err != nil {
		return false, nil, err
	}
	return false, &stored, nil
}

func (s *RedisIdempotencyStore) Save(ctx context.Context, key string, resp StoredResponse, ttl time.Duration) error {
	raw, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, key, raw, ttl).Err()
}

func (s *RedisIdempotencyStore) Release(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}

type bodyRecorder struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *bodyRecorder) WriteString(s string) (int, error) {
	w.buf.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// IdempotencyMiddleware 请求携带 Idempotency-Key 时，相同键的重复提交直接回放首次成功的响应。
// 未携带该请求头的请求不受影响。store 为 nil 时中间件不生效。
func IdempotencyMiddleware(store IdempotencyStore, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := strings.TrimSpace(c.GetHeader(IdempotencyHeader))
		if store == nil || key == "" {
			c.Next()
			return
		}

		scoped := scopedKey(c, key)
		ctx := c.Request.Context()

		first, stored, err := store.Reserve(ctx, scoped, ttl)
		if err != nil {
			logger.Log.Error("idempotency reserve failed", zap.String("key", key), zap.Error(err))
			response.HandleError(c, err)
			c.Abort()
			return
		}
		if !first {
			if stored == nil {
				response.Error(c, http.StatusConflict, errs.ErrDuplicateRequest, "request with this idempotency key is in progress")
				c.Abort()
				return
			}
			c.Header(replayHeader, "true")
			c.Data(stored.Status, stored.ContentType, stored.Body)
			c.Abort()
			return
		}

		rec := &bodyRecorder{ResponseWriter: c.Writer}
		c.Writer = rec
		c.Next()

		status := rec.Status()
		// 失败的请求释放键，允许客户端修正后重试
		if status < 200 || status >= 300 {
			if err := store.Release(ctx, scoped); err != nil {
				logger.Log.Warn("idempotency release failed", zap.String("key", key), zap.Error(err))
			}
			return
		}

		snapshot := StoredResponse{
			Status:      status,
			ContentType: rec.Header().Get("Content-Type"),
			Body:        rec.buf.Bytes(),
		}
		if err := store.Save(ctx, scoped, snapshot, ttl); err != nil {
			logger.Log.Warn("idempotency save failed", zap.String("key", key), zap.Error(err))
		}
	}
}

func scopedKey(c *gin.Context, key string) string {
	var uid uint
	if claims, ok := CurrentUser(c); ok {
		uid = claims.UserID
	}
	return fmt.Sprintf("idem:%d:%s:%s:%s", uid, c.Request.Method, c.FullPath(), key)
}
