package dao

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/recordhub/pkg/database/postgres"
	"github.com/lk2023060901/recordhub/pkg/logger"
)

// 存储驱动
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
)

// Config 存储配置
type Config struct {
	Driver   string           `mapstructure:"driver" json:"driver" yaml:"driver" validate:"oneof=memory postgres"`
	Migrate  bool             `mapstructure:"migrate" json:"migrate" yaml:"migrate"`
	Postgres *postgres.Config `mapstructure:"postgres" json:"postgres" yaml:"postgres"`
}

// DefaultConfig 默认内存驱动
func DefaultConfig() Config {
	return Config{Driver: DriverMemory, Migrate: true, Postgres: postgres.DefaultConfig()}
}

// Open 按驱动创建 DAO 集合，返回的 cleanup 释放底层连接
func Open(ctx context.Context, cfg Config, l logger.Logger) (*Set, func(), error) {
	switch cfg.Driver {
	case "", DriverMemory:
		l.Info("using in-memory storage")
		return NewMemorySet(), func() {}, nil
	case DriverPostgres:
		client, err := postgres.New(ctx, cfg.Postgres)
		if err != nil {
			return nil, nil, errors.Wrap(err, "connect postgres")
		}
		if cfg.Migrate {
			if err := Migrate(ctx, client.Querier()); err != nil {
				client.Close()
				return nil, nil, err
			}
		}
		l.Info("using postgres storage", "host", cfg.Postgres.Host, "db", cfg.Postgres.DBName)
		return NewPostgresSet(client, l), client.Close, nil
	default:
		return nil, nil, errors.Newf("unknown storage driver %q", cfg.Driver)
	}
}
