package main

import (
	"context"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/lk2023060901/recordhub/app/recordhub/internal/auth"
	"github.com/lk2023060901/recordhub/app/recordhub/internal/dao"
	"github.com/lk2023060901/recordhub/app/recordhub/internal/gateway"
	"github.com/lk2023060901/recordhub/app/recordhub/internal/session"
	"github.com/lk2023060901/recordhub/pkg/app"
	"github.com/lk2023060901/recordhub/pkg/config"
	"github.com/lk2023060901/recordhub/pkg/logger"
	"github.com/lk2023060901/recordhub/pkg/otel"
	"github.com/lk2023060901/recordhub/pkg/prometheus"
	"github.com/lk2023060901/recordhub/pkg/sentry"
	"github.com/lk2023060901/recordhub/pkg/web"
	"github.com/lk2023060901/recordhub/pkg/web/middleware"
	"github.com/lk2023060901/recordhub/pkg/websocket"
)

// Config recordhub 的完整配置结构
type Config struct {
	Log logger.Config `mapstructure:"log"`

	// HTTP 服务
	Web web.Config `mapstructure:"web"`

	// /ws 推送通道
	WebSocket websocket.Config `mapstructure:"websocket"`
	Gateway   gateway.Config   `mapstructure:"gateway"`

	// 会话存储与 cookie
	Session session.Config `mapstructure:"session"`

	// 实体存储
	Storage dao.Config `mapstructure:"storage"`

	Auth AuthConfig `mapstructure:"auth"`

	Sentry  sentry.Config `mapstructure:"sentry"`
	Tracing otel.Config   `mapstructure:"tracing"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// AuthConfig 登录相关配置
type AuthConfig struct {
	BcryptCost int                        `mapstructure:"bcrypt_cost"`
	SeedUsers  []auth.SeedUser            `mapstructure:"seed_users"`
	RateLimit  middleware.RateLimitConfig `mapstructure:"login_rate_limit"`
}

// MetricsConfig Prometheus 配置加进程采集周期
type MetricsConfig struct {
	prometheus.Config `mapstructure:",squash"`
	SystemInterval    time.Duration `mapstructure:"system_interval"`
}

func defaultConfig() *Config {
	cfg := &Config{
		Log:       *logger.DefaultConfig(),
		Web:       *web.DefaultConfig(),
		WebSocket: *websocket.DefaultConfig(),
		Gateway:   gateway.DefaultConfig(),
		Session:   session.DefaultConfig(),
		Storage:   dao.DefaultConfig(),
		Auth: AuthConfig{
			BcryptCost: 10,
			SeedUsers:  auth.DefaultSeedUsers(),
			RateLimit:  middleware.DefaultRateLimitConfig(),
		},
		Sentry:  *sentry.DefaultConfig(),
		Tracing: *otel.DefaultConfig(),
		Metrics: MetricsConfig{Config: *prometheus.DefaultConfig(), SystemInterval: 15 * time.Second},
	}
	return cfg
}

func main() {
	ctx := context.Background()
	cfg := defaultConfig()

	// 1. 加载配置
	mgr, err := app.LoadConfig(cfg, os.Args[1:])
	if err != nil {
		panic(err)
	}
	if err := config.NewValidator().Validate(cfg); err != nil {
		panic(err)
	}

	// 2. 初始化主日志，附带 trace_id/span_id
	l, err := logger.New(&cfg.Log, logger.WithContextExtractor(otel.LogFields))
	if err != nil {
		panic(err)
	}
	logger.SetDefault(l)

	// 3. 配置文件变更时热更新日志等级
	if mgr.ConfigFile() != "" {
		mgr.Watch(func(e fsnotify.Event) {
			level := logger.Level(mgr.GetString("log.level"))
			if err := l.SetLevel(level); err != nil {
				l.Warn("ignored log level change", "file", e.Name, "level", level, "error", err)
				return
			}
			l.Info("log level reloaded", "level", level)
		})
	}

	// 4. 通过 Wire 初始化应用
	application, cleanup, err := InitApp(ctx, cfg, l)
	if err != nil {
		app.Exit(l, "failed to initialize application", err)
	}
	defer cleanup()

	// 5. 运行服务
	if err := application.Run(ctx); err != nil {
		l.Error("application exited with error", "error", err)
	}
}
