package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/d60-Lab/microblog/internal/repository"
	"github.com/d60-Lab/microblog/pkg/logger"
)

type touchJob struct {
	userID uint64
	at     time.Time
	enqAt  time.Time
}

// LastSeenRecorder 异步刷新 users.last_seen；同一用户在 minInterval 内只写一次
type LastSeenRecorder struct {
	users       repository.UserRepository
	ch          chan touchJob
	minInterval time.Duration
	now         func() time.Time
	metricsCh   chan time.Duration

	mu     sync.Mutex
	recent map[uint64]time.Time

	wg       sync.WaitGroup
	stopOnce sync.Once
	stopCh   chan struct{}
}

const recentPruneThreshold = 10000

func NewLastSeenRecorder(users repository.UserRepository, queueSize int, minInterval time.Duration) *LastSeenRecorder {
	if queueSize <= 0 {
		queueSize = 4096
	}
	return &LastSeenRecorder{
		users:       users,
		ch:          make(chan touchJob, queueSize),
		minInterval: minInterval,
		now:         func() time.Time { return time.Now().UTC() },
		metricsCh:   make(chan time.Duration, 1024),
		recent:      make(map[uint64]time.Time),
		stopCh:      make(chan struct{}),
	}
}

// Start 启动 workers；返回的停止函数会排空队列或在 ctx 结束时返回
func (r *LastSeenRecorder) Start(workers int) func(context.Context) error {
	if workers <= 0 {
		workers = 2
	}
	for i := 0; i < workers; i++ {
		r.wg.Add(1)
		go r.loop()
	}
	return func(ctx context.Context) error {
		r.stopOnce.Do(func() { close(r.stopCh) })
		done := make(chan struct{})
		go func() {
			r.wg.Wait()
			close(done)
		}()
		select {
		case <-done:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (r *LastSeenRecorder) loop() {
	defer r.wg.Done()
	for {
		select {
		case job := <-r.ch:
			r.apply(job)
		case <-r.stopCh:
			for {
				select {
				case job := <-r.ch:
					r.apply(job)
				default:
					return
				}
			}
		}
	}
}

func (r *LastSeenRecorder) apply(job touchJob) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.users.UpdateLastSeen(ctx, job.userID, job.at); err != nil && !errors.Is(err, repository.ErrNotFound) {
		logger.Warn("update last_seen failed", zap.Uint64("user", job.userID), zap.Error(err))
	}
	select {
	case r.metricsCh <- time.Since(job.enqAt):
	default:
	}
}

// Touch 非阻塞入队；队列满时丢弃并告警
func (r *LastSeenRecorder) Touch(userID uint64) {
	now := r.now()

	r.mu.Lock()
	if last, ok := r.recent[userID]; ok && now.Sub(last) < r.minInterval {
		r.mu.Unlock()
		return
	}
	if len(r.recent) >= recentPruneThreshold {
		for id, at := range r.recent {
			if now.Sub(at) >= r.minInterval {
				delete(r.recent, id)
			}
		}
	}
	r.recent[userID] = now
	r.mu.Unlock()

	select {
	case r.ch <- touchJob{userID: userID, at: now, enqAt: time.Now()}:
	default:
		r.mu.Lock()
		delete(r.recent, userID)
		r.mu.Unlock()
		logger.Warn("last_seen queue full, drop touch", zap.Uint64("user", userID))
	}
}

// Metrics 返回入队到落库耗时的只读通道（采样，满则丢弃）
func (r *LastSeenRecorder) Metrics() <-chan time.Duration { return r.metricsCh }

// QueueLen 返回当前队列长度（采样值）
func (r *LastSeenRecorder) QueueLen() int { return len(r.ch) }
