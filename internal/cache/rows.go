package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/storepulse/store-uptime-worker/internal/report"
	"go.uber.org/zap"
)

// RowCache caches computed per-store report rows keyed by store id and the
// frozen reference instant, mirroring the source system's one-hour result
// cache. A nil receiver disables caching, so callers never branch on
// whether Redis is configured.
type RowCache struct {
	kv     KVStore
	ttl    time.Duration
	logger *zap.Logger
}

// NewRowCache creates a row cache over a KV store
func NewRowCache(kv KVStore, ttl time.Duration, logger *zap.Logger) *RowCache {
	return &RowCache{kv: kv, ttl: ttl, logger: logger}
}

func rowKey(storeID string, refTime time.Time) string {
	return fmt.Sprintf("report:row:%s:%d", storeID, refTime.Unix())
}

// Get returns the cached row for a store and reference instant, or false
// when absent. Cache errors degrade to a miss.
func (c *RowCache) Get(ctx context.Context, storeID string, refTime time.Time) (report.Row, bool) {
	if c == nil {
		return report.Row{}, false
	}

	raw, err := c.kv.Get(ctx, rowKey(storeID, refTime))
	if err != nil {
		if err != ErrCacheMiss {
			c.logger.Warn("row cache read failed", zap.Error(err), zap.String("store_id", storeID))
		}
		return report.Row{}, false
	}

	var row report.Row
	if err := json.Unmarshal([]byte(raw), &row); err != nil {
		c.logger.Warn("row cache entry malformed, ignoring",
			zap.Error(err),
			zap.String("store_id", storeID),
		)
		return report.Row{}, false
	}

	return row, true
}

// Put stores a computed row. Failures are logged, never propagated: the
// cache is an accelerator, not a source of truth.
func (c *RowCache) Put(ctx context.Context, storeID string, refTime time.Time, row report.Row) {
	if c == nil {
		return
	}

	raw, err := json.Marshal(row)
	if err != nil {
		c.logger.Warn("failed to marshal row for cache", zap.Error(err), zap.String("store_id", storeID))
		return
	}
	if err := c.kv.Set(ctx, rowKey(storeID, refTime), string(raw), c.ttl); err != nil {
		c.logger.Warn("row cache write failed", zap.Error(err), zap.String("store_id", storeID))
	}
}
