//go:build wireinject
// +build wireinject

package main

import (
	"context"

	"github.com/google/wire"
	"github.com/lk2023060901/recordhub/app/recordhub/internal/auth"
	"github.com/lk2023060901/recordhub/app/recordhub/internal/gateway"
	"github.com/lk2023060901/recordhub/app/recordhub/internal/handler"
	"github.com/lk2023060901/recordhub/app/recordhub/internal/service"
	"github.com/lk2023060901/recordhub/pkg/app"
	"github.com/lk2023060901/recordhub/pkg/logger"
)

func InitApp(ctx context.Context, cfg *Config, l logger.Logger) (*app.BaseApp, func(), error) {
	panic(wire.Build(
		// 1. 基础框架 (BaseApp)
		app.ProviderSet,
		provideBaseApp,

		// 2. 可观测性
		providePrometheus,
		provideSystemCollector,
		provideTracerProvider,
		provideSentry,

		// 3. 数据层
		provideStorage,

		// 4. 会话
		provideSessionBackend,
		provideSessionStore,
		provideCookies,
		provideResolver,

		// 5. 认证
		provideAuthenticator,
		auth.NewHandler,
		provideLoginLimiter,

		// 6. 推送通道
		provideWebSocketServer,
		provideGatewayMetrics,
		gateway.NewRegistry,
		provideBroadcaster,
		wire.Bind(new(service.Publisher), new(*gateway.Broadcaster)),
		provideRelay,
		provideBridge,
		provideStatusAggregator,

		// 7. 业务服务与接口层
		providePersonService,
		provideProjectService,
		handler.NewPersonHandler,
		handler.NewProjectHandler,
		handler.NewControlHandler,
		provideRoutes,

		// 8. HTTP 服务
		provideWebServer,

		// 9. 组装
		provideAppComponents,
	))
}
