package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleConfig struct {
	Web struct {
		Port    int           `mapstructure:"port" validate:"required,min=1,max=65535"`
		Timeout time.Duration `mapstructure:"timeout"`
	} `mapstructure:"web"`
	Gateway struct {
		RelayTypes []string `mapstructure:"relay_types"`
	} `mapstructure:"gateway"`
	Mode string `mapstructure:"mode" validate:"omitempty,oneof=debug release"`
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// TestManagerUnmarshal 测试加载 YAML 与解码钩子
func TestManagerUnmarshal(t *testing.T) {
	path := writeFile(t, "config.yaml", `
web:
  port: 8000
  timeout: 15s
gateway:
  relay_types: PROJECT_UPDATED,TASKS_UPDATED
`)

	m := NewManager()
	require.NoError(t, m.LoadFile(path))

	var cfg sampleConfig
	require.NoError(t, m.Unmarshal(&cfg))
	assert.Equal(t, 8000, cfg.Web.Port)
	assert.Equal(t, 15*time.Second, cfg.Web.Timeout)
	assert.Equal(t, []string{"PROJECT_UPDATED", "TASKS_UPDATED"}, cfg.Gateway.RelayTypes)
	assert.Equal(t, path, m.ConfigFile())
}

// TestManagerEnvOverride 测试环境变量覆盖文件值
func TestManagerEnvOverride(t *testing.T) {
	path := writeFile(t, "config.yaml", "web:\n  port: 8000\n")
	t.Setenv("RHTEST_WEB_PORT", "9100")

	m := NewManager(WithEnvPrefix("RHTEST"))
	require.NoError(t, m.LoadFile(path))
	assert.Equal(t, 9100, m.GetInt("web.port"))
}

// TestManagerMissingFile 测试配置文件不存在
func TestManagerMissingFile(t *testing.T) {
	m := NewManager()
	err := m.LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfigFileNotFound)
}

// TestManagerDefaults 测试默认值
func TestManagerDefaults(t *testing.T) {
	m := NewManager(WithDefaults(map[string]any{"web.port": 8000, "web.timeout": "5s"}))
	assert.Equal(t, 8000, m.GetInt("web.port"))
	assert.Equal(t, 5*time.Second, m.GetDuration("web.timeout"))
	assert.True(t, m.IsSet("web.port"))

	m.Set("web.port", 8001)
	var cfg sampleConfig
	require.NoError(t, m.Unmarshal(&cfg))
	assert.Equal(t, 8001, cfg.Web.Port)
}

// TestMergeConfig 测试配置合并
func TestMergeConfig(t *testing.T) {
	type inner struct {
		Host string
		Port int
	}
	type cfg struct {
		Inner   inner
		Tags    []string
		Labels  map[string]string
		Started time.Time
		Ptr     *inner
	}

	now := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	dst := &cfg{Inner: inner{Host: "localhost", Port: 80}, Tags: []string{"a"}, Labels: map[string]string{"x": "1"}}
	src := &cfg{Inner: inner{Port: 8080}, Tags: []string{"b", "c"}, Labels: map[string]string{"y": "2"}, Started: now, Ptr: &inner{Host: "h"}}

	out, err := MergeConfig(dst, src)
	require.NoError(t, err)
	assert.Equal(t, "localhost", out.Inner.Host)
	assert.Equal(t, 8080, out.Inner.Port)
	assert.Equal(t, []string{"b", "c"}, out.Tags)
	assert.Equal(t, map[string]string{"x": "1", "y": "2"}, out.Labels)
	assert.True(t, out.Started.Equal(now))
	require.NotNil(t, out.Ptr)
	assert.Equal(t, "h", out.Ptr.Host)

	got, err := MergeConfig(dst, nil)
	require.NoError(t, err)
	assert.Same(t, dst, got)

	got, err = MergeConfig(nil, src)
	require.NoError(t, err)
	assert.Same(t, src, got)

	_, err = MergeConfig[cfg](nil, nil)
	assert.ErrorIs(t, err, ErrBothNil)
}

// TestValidator 测试结构体校验
func TestValidator(t *testing.T) {
	v := NewValidator()

	var cfg sampleConfig
	err := v.Validate(&cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidationFailed)
	assert.Contains(t, err.Error(), "Port is required")

	cfg.Web.Port = 8000
	cfg.Mode = "release"
	assert.NoError(t, v.Validate(&cfg))

	cfg.Mode = "test"
	assert.ErrorContains(t, v.Validate(&cfg), "must be one of")

	assert.ErrorIs(t, v.Validate(nil), ErrNilConfig)
}
