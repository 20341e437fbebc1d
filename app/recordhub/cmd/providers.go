package main

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/recordhub/app/recordhub/internal/auth"
	"github.com/lk2023060901/recordhub/app/recordhub/internal/dao"
	"github.com/lk2023060901/recordhub/app/recordhub/internal/gateway"
	"github.com/lk2023060901/recordhub/app/recordhub/internal/handler"
	"github.com/lk2023060901/recordhub/app/recordhub/internal/service"
	"github.com/lk2023060901/recordhub/app/recordhub/internal/session"
	"github.com/lk2023060901/recordhub/pkg/app"
	"github.com/lk2023060901/recordhub/pkg/crypto"
	"github.com/lk2023060901/recordhub/pkg/database/redis"
	"github.com/lk2023060901/recordhub/pkg/logger"
	"github.com/lk2023060901/recordhub/pkg/metrics/system"
	"github.com/lk2023060901/recordhub/pkg/otel"
	"github.com/lk2023060901/recordhub/pkg/prometheus"
	"github.com/lk2023060901/recordhub/pkg/sentry"
	"github.com/lk2023060901/recordhub/pkg/web"
	"github.com/lk2023060901/recordhub/pkg/web/metrics"
	"github.com/lk2023060901/recordhub/pkg/web/middleware"
	"github.com/lk2023060901/recordhub/pkg/websocket"
)

const instrumentation = "github.com/lk2023060901/recordhub"

func provideBaseApp(cfg *Config, l logger.Logger) *app.BaseApp {
	return app.NewBaseApp(
		app.WithName(app.AppName),
		app.WithLogger(l),
		app.WithStopTimeout(cfg.Web.ShutdownTimeout*2),
	)
}

// providePrometheus 提供 Prometheus 客户端
func providePrometheus(cfg *Config) (*prometheus.Client, error) {
	return prometheus.New(&cfg.Metrics.Config)
}

// provideSystemCollector 进程资源采集器，注册到应用 registry
func provideSystemCollector(cfg *Config, prom *prometheus.Client) (*system.Collector, func(), error) {
	c, err := system.New(prom.Namespace())
	if err != nil {
		return nil, nil, errors.Wrap(err, "system collector")
	}
	if err := prom.Registerer().Register(c); err != nil {
		return nil, nil, errors.Wrap(err, "register system collector")
	}
	c.Start(cfg.Metrics.SystemInterval)
	return c, c.Stop, nil
}

// provideTracerProvider 全局 TracerProvider，未启用时为 noop
func provideTracerProvider(ctx context.Context, cfg *Config) (*otel.TracerProvider, func(), error) {
	tp, err := otel.New(ctx, &cfg.Tracing)
	if err != nil {
		return nil, nil, errors.Wrap(err, "tracer provider")
	}
	return tp, func() { _ = tp.Close() }, nil
}

// provideSentry 未启用时返回 nil
func provideSentry(cfg *Config, l logger.Logger) (*sentry.Client, func(), error) {
	if !cfg.Sentry.Enabled {
		return nil, func() {}, nil
	}
	c, err := sentry.New(&cfg.Sentry)
	if err != nil {
		return nil, nil, errors.Wrap(err, "sentry")
	}
	l.Info("sentry enabled", "environment", cfg.Sentry.Environment)
	return c, func() { _ = c.Close() }, nil
}

func provideStorage(ctx context.Context, cfg *Config, l logger.Logger) (*dao.Set, func(), error) {
	return dao.Open(ctx, cfg.Storage, l.Named("dao"))
}

// sessionBackend 会话存储，内存存储附带过期清理
type sessionBackend struct {
	store   session.Store
	sweeper *session.Sweeper
}

func provideSessionBackend(ctx context.Context, cfg *Config, l logger.Logger) (*sessionBackend, func(), error) {
	switch cfg.Session.Store {
	case "", "memory":
		store := session.NewMemoryStore()
		return &sessionBackend{
			store:   store,
			sweeper: session.NewSweeper(store, cfg.Session.SweepSpec, l),
		}, func() {}, nil
	case "redis":
		client, err := redis.NewClient(&cfg.Session.Redis)
		if err != nil {
			return nil, nil, errors.Wrap(err, "session redis")
		}
		if err := client.Ping(ctx); err != nil {
			_ = client.Close()
			return nil, nil, errors.Wrap(err, "session redis ping")
		}
		l.Info("using redis session store", "prefix", cfg.Session.RedisKey)
		return &sessionBackend{store: session.NewRedisStore(client, cfg.Session.RedisKey)},
			func() { _ = client.Close() }, nil
	default:
		return nil, nil, errors.Newf("unknown session store %q", cfg.Session.Store)
	}
}

func provideSessionStore(b *sessionBackend) session.Store { return b.store }

func provideCookies(cfg *Config) *session.Cookies {
	return session.NewCookies(cfg.Session.Cookie)
}

func provideResolver(cfg *Config, store session.Store, cookies *session.Cookies) *auth.Resolver {
	return auth.NewResolver(store, cookies, cfg.Session.TTL)
}

// provideAuthenticator 创建认证器并补齐种子用户
func provideAuthenticator(ctx context.Context, cfg *Config, set *dao.Set, l logger.Logger) (*auth.Authenticator, error) {
	a := auth.NewAuthenticator(set.Users, crypto.NewBcryptHasher(crypto.WithCost(cfg.Auth.BcryptCost)), l)
	if err := a.Seed(ctx, cfg.Auth.SeedUsers); err != nil {
		return nil, errors.Wrap(err, "seed users")
	}
	return a, nil
}

func provideLoginLimiter(cfg *Config, l logger.Logger) (*middleware.RateLimiter, func()) {
	rl := middleware.NewRateLimiter(cfg.Auth.RateLimit, middleware.ByClientIP, l.Named("auth.ratelimit"))
	return rl, func() { _ = rl.Close() }
}

func provideWebSocketServer(cfg *Config, prom *prometheus.Client, l logger.Logger) (*websocket.Server, error) {
	return websocket.NewServer(&cfg.WebSocket,
		websocket.WithLogger(l),
		websocket.WithMetrics(websocket.NewMetrics(prom.Registerer(), prom.Namespace())),
	)
}

func provideGatewayMetrics(prom *prometheus.Client) *gateway.Metrics {
	return gateway.NewMetrics(prom.Registerer(), prom.Namespace())
}

func provideBroadcaster(reg *gateway.Registry, tp *otel.TracerProvider, m *gateway.Metrics, l logger.Logger) *gateway.Broadcaster {
	return gateway.NewBroadcaster(reg, l,
		gateway.WithTracer(tp.Tracer(instrumentation+"/gateway")),
		gateway.WithBroadcastMetrics(m),
	)
}

func provideRelay(cfg *Config, reg *gateway.Registry, b *gateway.Broadcaster, m *gateway.Metrics, l logger.Logger) *gateway.Relay {
	return gateway.NewRelay(reg, b, cfg.Gateway.RelayTypes, m, l)
}

func provideBridge(cfg *Config, r *auth.Resolver, ws *websocket.Server, reg *gateway.Registry, relay *gateway.Relay, l logger.Logger) *gateway.Bridge {
	return gateway.NewBridge(cfg.Gateway, r, ws, reg, relay, l)
}

func provideStatusAggregator(set *dao.Set, store session.Store, reg *gateway.Registry, l logger.Logger) *gateway.StatusAggregator {
	return gateway.NewStatusAggregator(set.Users, store, reg, l)
}

func providePersonService(set *dao.Set, pub service.Publisher, l logger.Logger) *service.PersonService {
	return service.NewPersonService(set.Persons, pub, l)
}

func provideProjectService(set *dao.Set, pub service.Publisher, l logger.Logger) *service.ProjectService {
	return service.NewProjectService(set.Projects, pub, l)
}

func provideRoutes(
	authH *auth.Handler,
	persons *handler.PersonHandler,
	projects *handler.ProjectHandler,
	control *handler.ControlHandler,
	bridge *gateway.Bridge,
	limiter *middleware.RateLimiter,
) *handler.Routes {
	return &handler.Routes{
		Auth:       authH,
		Persons:    persons,
		Project:    projects,
		Control:    control,
		Bridge:     bridge,
		LoginGuard: []gin.HandlerFunc{limiter.Handler()},
	}
}

// provideWebServer 创建 HTTP 服务并挂载中间件和路由
func provideWebServer(
	cfg *Config,
	l logger.Logger,
	prom *prometheus.Client,
	reporter *sentry.Client,
	resolver *auth.Resolver,
	routes *handler.Routes,
) (*web.Server, error) {
	srv, err := web.NewServer(&cfg.Web, l)
	if err != nil {
		return nil, err
	}

	var report middleware.PanicReporter
	if reporter != nil {
		report = func(ctx context.Context, rec any) {
			reporter.ReportPanic(ctx, rec, map[string]string{"component": "http"})
		}
	}

	srv.Use(middleware.Recovery(l.Named("web.recovery"), report))
	if len(cfg.Web.AllowedOrigins) > 0 {
		srv.Use(middleware.CORS(cfg.Web.AllowedOrigins))
	}
	srv.Use(
		middleware.Tracing(instrumentation+"/http"),
		middleware.Logger(l.Named("web.access"), "/health", prom.Path()),
		middleware.Metrics(metrics.NewHTTP(prom.Registerer(), prom.Namespace())),
		auth.LoadSession(resolver, l),
	)

	routes.Register(srv.Engine())
	if cfg.Metrics.Enabled {
		srv.Engine().GET(prom.Path(), gin.WrapH(prom.Handler()))
	}
	return srv, nil
}

// provideAppComponents 组装需要托管生命周期的服务与资源
func provideAppComponents(
	srv *web.Server,
	ws *websocket.Server,
	backend *sessionBackend,
) app.Components {
	comps := app.Components{
		Servers: []app.Server{srv},
		// 先于 HTTP 资源释放关闭所有推送连接
		Closers: []app.Closer{app.MapCloser(ws)},
	}
	if backend.sweeper != nil {
		comps.Servers = append(comps.Servers, backend.sweeper)
	}
	return comps
}
