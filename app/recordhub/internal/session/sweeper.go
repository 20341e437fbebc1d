package session

import (
	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/recordhub/pkg/logger"
	"github.com/robfig/cron/v3"
)

// Sweeper 按 cron 表达式清理内存存储中的过期会话，实现 app.Server
type Sweeper struct {
	store    *MemoryStore
	cron     *cron.Cron
	schedule string
	logger   logger.Logger
}

// NewSweeper 创建清理器，schedule 形如 "@every 1m"
func NewSweeper(store *MemoryStore, schedule string, l logger.Logger) *Sweeper {
	if schedule == "" {
		schedule = "@every 1m"
	}
	return &Sweeper{
		store:    store,
		cron:     cron.New(),
		schedule: schedule,
		logger:   l.Named("session.sweeper"),
	}
}

// Start 注册任务并启动调度
func (s *Sweeper) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.run); err != nil {
		return errors.Wrapf(err, "invalid sweep schedule %q", s.schedule)
	}
	s.cron.Start()
	s.logger.Info("session sweeper started", "schedule", s.schedule)
	return nil
}

// Stop 停止调度并等待正在执行的任务
func (s *Sweeper) Stop() error {
	<-s.cron.Stop().Done()
	return nil
}

func (s *Sweeper) run() {
	if n := s.store.Sweep(); n > 0 {
		s.logger.Debug("expired sessions removed", "count", n, "remaining", s.store.Len())
	}
}
