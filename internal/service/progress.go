package service

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// ProgressSink receives counter increments and human-readable status
// strings while a run is in flight. The pipeline has no opinion about how
// the signals are displayed or stored.
type ProgressSink interface {
	OnProgress(message string)
	OnInjectionError()
	OnBusinessError(source, detail string)
	OnDuplicate(count int)
}

// LogSink is the default sink; it forwards every signal to the logger.
type LogSink struct {
	log *logrus.Logger
}

func NewLogSink(log *logrus.Logger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) OnProgress(message string) {
	s.log.Info(message)
}

func (s *LogSink) OnInjectionError() {
	s.log.Warn("injection error recorded")
}

func (s *LogSink) OnBusinessError(source, detail string) {
	s.log.WithFields(logrus.Fields{"source": source, "detail": detail}).Warn("business error recorded")
}

func (s *LogSink) OnDuplicate(count int) {
	s.log.WithField("count", count).Info("duplicate lines skipped")
}

const progressTTL = 24 * time.Hour

// RedisProgress publishes live counters for one run so the API can serve
// progress while the worker is still injecting.
type RedisProgress struct {
	rdb *redis.Client
	key string
}

func NewRedisProgress(rdb *redis.Client, runCode string) *RedisProgress {
	return &RedisProgress{
		rdb: rdb,
		key: fmt.Sprintf("injection:progress:%s", runCode),
	}
}

func (p *RedisProgress) OnProgress(message string) {
	ctx := context.Background()
	p.rdb.HSet(ctx, p.key, "message", message)
	p.rdb.Expire(ctx, p.key, progressTTL)
}

func (p *RedisProgress) OnInjectionError() {
	ctx := context.Background()
	p.rdb.HIncrBy(ctx, p.key, "injection_errors", 1)
	p.rdb.Expire(ctx, p.key, progressTTL)
}

func (p *RedisProgress) OnBusinessError(source, detail string) {
	ctx := context.Background()
	p.rdb.HIncrBy(ctx, p.key, "business_errors", 1)
	p.rdb.HSet(ctx, p.key, "last_business_error", fmt.Sprintf("%s: %s", source, detail))
	p.rdb.Expire(ctx, p.key, progressTTL)
}

func (p *RedisProgress) OnDuplicate(count int) {
	ctx := context.Background()
	p.rdb.HIncrBy(ctx, p.key, "duplicates", int64(count))
	p.rdb.Expire(ctx, p.key, progressTTL)
}

// Snapshot reads the current counters for a run.
func (p *RedisProgress) Snapshot(ctx context.Context) (map[string]string, error) {
	return p.rdb.HGetAll(ctx, p.key).Result()
}

// MultiSink fans every signal out to multiple sinks.
type MultiSink []ProgressSink

func NewMultiSink(sinks ...ProgressSink) MultiSink {
	return MultiSink(sinks)
}

func (m MultiSink) OnProgress(message string) {
	for _, s := range m {
		s.OnProgress(message)
	}
}

func (m MultiSink) OnInjectionError() {
	for _, s := range m {
		s.OnInjectionError()
	}
}

func (m MultiSink) OnBusinessError(source, detail string) {
	for _, s := range m {
		s.OnBusinessError(source, detail)
	}
}

func (m MultiSink) OnDuplicate(count int) {
	for _, s := range m {
		s.OnDuplicate(count)
	}
}
