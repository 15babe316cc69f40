package status

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sysu-ecnc-dev/workshop-planner/backend/internal/scheduler"
)

type setter interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// RedisReporter 把最新的进度写入 redis，方便其他服务查看排班进度
//
// Report 只记录最新进度，写入由后台 goroutine 完成，redis 不可用时也不会拖慢调用方
type RedisReporter struct {
	client     setter
	key        string
	expiration time.Duration
	timeout    time.Duration
	logger     *slog.Logger

	mu     sync.Mutex
	latest *scheduler.Progress

	notify    chan struct{}
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

func NewRedisReporter(client setter, key string, expiration, timeout time.Duration, logger *slog.Logger) *RedisReporter {
	r := &RedisReporter{
		client:     client,
		key:        key,
		expiration: expiration,
		timeout:    timeout,
		logger:     logger,
		notify:     make(chan struct{}, 1),
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
	}
	go r.loop()
	return r
}

func (r *RedisReporter) Report(_ context.Context, p scheduler.Progress) {
	r.mu.Lock()
	r.latest = &p
	r.mu.Unlock()

	select {
	case r.notify <- struct{}{}:
	default:
	}
}

// Close 写入尚未写入的最新进度后停止后台 goroutine，之后的 Report 不再生效
func (r *RedisReporter) Close() {
	r.closeOnce.Do(func() {
		close(r.quit)
	})
	<-r.done
}

func (r *RedisReporter) loop() {
	defer close(r.done)
	for {
		select {
		case <-r.notify:
			r.flush()
		case <-r.quit:
			r.flush()
			return
		}
	}
}

// 写入失败只记录日志，不影响搜索
func (r *RedisReporter) flush() {
	r.mu.Lock()
	p := r.latest
	r.latest = nil
	r.mu.Unlock()

	if p == nil {
		return
	}

	data, err := json.Marshal(p)
	if err != nil {
		r.logger.Error("无法序列化进度", slog.String("error", err.Error()))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	if err := r.client.Set(ctx, r.key, data, r.expiration).Err(); err != nil {
		r.logger.Error("无法将进度写入 redis", slog.String("key", r.key), slog.String("error", err.Error()))
	}
}
