package main

import (
	"testing"
	"time"

	"github.com/lk2023060901/recordhub/app/recordhub/internal/model"
	"github.com/lk2023060901/recordhub/pkg/app"
	"github.com/lk2023060901/recordhub/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoadShippedConfig 测试仓库自带配置文件可以加载并通过校验
func TestLoadShippedConfig(t *testing.T) {
	cfg := defaultConfig()
	_, err := app.LoadConfig(cfg, []string{"--config", "../../../configs/config.yaml", "--web.port", "9100"})
	require.NoError(t, err)
	require.NoError(t, config.NewValidator().Validate(cfg))

	assert.Equal(t, 9100, cfg.Web.Port)
	assert.Equal(t, "memory", cfg.Session.Store)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, "recordhub", cfg.Storage.Postgres.DBName)
	assert.Equal(t, []string{"PROJECT_UPDATED", "TASKS_UPDATED"}, cfg.Gateway.RelayTypes)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.Equal(t, 15*time.Second, cfg.Metrics.SystemInterval)

	require.Len(t, cfg.Auth.SeedUsers, 2)
	assert.Equal(t, "admin", cfg.Auth.SeedUsers[0].Username)
	assert.Equal(t, model.Roles(model.RoleAdmin), cfg.Auth.SeedUsers[0].Roles)
}

// TestEnvOverride 测试环境变量覆盖配置文件
func TestEnvOverride(t *testing.T) {
	t.Setenv("RECORDHUB_SESSION_STORE", "redis")
	t.Setenv("RECORDHUB_CONFIG", "../../../configs/config.yaml")
	cfg := defaultConfig()
	_, err := app.LoadConfig(cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, "redis", cfg.Session.Store)
	assert.Equal(t, 8000, cfg.Web.Port)
}

// TestDefaultsWithoutFile 测试没有配置文件时使用默认值
func TestDefaultsWithoutFile(t *testing.T) {
	cfg := defaultConfig()
	_, err := app.LoadConfig(cfg, nil)
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Web.Port)
	assert.Equal(t, "memory", cfg.Session.Store)
	assert.Equal(t, 10, cfg.Auth.BcryptCost)
	assert.Len(t, cfg.Auth.SeedUsers, 2)

	_, err = app.LoadConfig(defaultConfig(), []string{"-c", "missing.yaml"})
	assert.ErrorIs(t, err, config.ErrConfigFileNotFound)
}
