package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/vasanthsarathy/process-mate/internal/adapters"
)

// EvalCache memoizes engine verdicts in redis, keyed by (fen, depth). A nil
// cache or missing redis adapter degrades to a permanent miss.
type EvalCache struct {
	redis *adapters.AdapterRedis
	log   *zap.SugaredLogger
}

func NewEvalCache(redis *adapters.AdapterRedis, log *zap.SugaredLogger) *EvalCache {
	return &EvalCache{redis: redis, log: log}
}

func (c *EvalCache) key(fen string, depth int) string {
	return fmt.Sprintf("eval:%d:%s", depth, fen)
}

func (c *EvalCache) Get(ctx context.Context, fen string, depth int) (EngineAnalysis, bool) {
	if c == nil || c.redis == nil {
		return EngineAnalysis{}, false
	}
	val, err := c.redis.GetClient().Get(ctx, c.key(fen, depth)).Result()
	if err != nil {
		return EngineAnalysis{}, false
	}
	var analysis EngineAnalysis
	if err := json.Unmarshal([]byte(val), &analysis); err != nil {
		c.log.Warnw("dropping malformed cached eval", "fen", fen, "error", err)
		return EngineAnalysis{}, false
	}
	return analysis, true
}

func (c *EvalCache) Put(ctx context.Context, fen string, depth int, analysis EngineAnalysis) {
	if c == nil || c.redis == nil {
		return
	}
	data, err := json.Marshal(analysis)
	if err != nil {
		return
	}
	if err := c.redis.GetClient().Set(ctx, c.key(fen, depth), data, 0).Err(); err != nil {
		c.log.Warnw("failed to cache eval", "fen", fen, "error", err)
	}
}
