// Package cache — read-through кэш определений workflows поверх Redis.
//
// Кэш строго best-effort: любая ошибка Redis логируется и ведёт
// к походу в БД, недоступный Redis не ломает выполнение workflows.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/AmmarAzhad/civils/internal/domain"
	"github.com/AmmarAzhad/civils/internal/engine"
)

// DefaultTTL — срок жизни закэшированного workflow.
const DefaultTTL = 5 * time.Minute

// NewClient создаёт Redis-клиент по REDIS_URL и проверяет соединение.
func NewClient(ctx context.Context) (*redis.Client, error) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		url = "redis://localhost:6379/0"
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// WorkflowCache оборачивает источник workflows кэшем в Redis.
// Реализует engine.WorkflowSource.
type WorkflowCache struct {
	source engine.WorkflowSource
	rdb    *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewWorkflowCache создаёт WorkflowCache. При rdb == nil кэш
// вырождается в прямой проход к source.
func NewWorkflowCache(source engine.WorkflowSource, rdb *redis.Client, logger *slog.Logger) *WorkflowCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkflowCache{
		source: source,
		rdb:    rdb,
		ttl:    DefaultTTL,
		logger: logger,
	}
}

// GetByID возвращает workflow из кэша или из source с заполнением кэша.
func (c *WorkflowCache) GetByID(ctx context.Context, id int64) (*domain.Workflow, error) {
	if c.rdb == nil {
		return c.source.GetByID(ctx, id)
	}

	key := workflowKey(id)

	data, err := c.rdb.Get(ctx, key).Bytes()
	if err == nil {
		var workflow domain.Workflow
		if err := json.Unmarshal(data, &workflow); err == nil {
			return &workflow, nil
		}
		// Битая запись: выкидываем и идём в БД.
		c.logger.Warn("corrupt cache entry", "key", key)
		c.rdb.Del(ctx, key)
	} else if err != redis.Nil {
		c.logger.Warn("cache read failed", "key", key, "error", err)
	}

	workflow, err := c.source.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(workflow); err == nil {
		if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
			c.logger.Warn("cache write failed", "key", key, "error", err)
		}
	}
	return workflow, nil
}

// Invalidate выкидывает workflow из кэша. Вызывается после любой
// записи, меняющей workflow или его tasks.
func (c *WorkflowCache) Invalidate(ctx context.Context, id int64) {
	if c.rdb == nil {
		return
	}
	if err := c.rdb.Del(ctx, workflowKey(id)).Err(); err != nil {
		c.logger.Warn("cache invalidation failed", "workflow_id", id, "error", err)
	}
}

func workflowKey(id int64) string {
	return fmt.Sprintf("workflow:%d", id)
}
