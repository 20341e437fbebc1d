package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/lk2023060901/recordhub/pkg/config"
	"github.com/lk2023060901/recordhub/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) add(s string) {
	r.mu.Lock()
	r.calls = append(r.calls, s)
	r.mu.Unlock()
}

type fakeServer struct {
	name     string
	rec      *recorder
	startErr error
	block    time.Duration
}

func (s *fakeServer) Start() error {
	s.rec.add("start:" + s.name)
	return s.startErr
}

func (s *fakeServer) Stop() error {
	time.Sleep(s.block)
	s.rec.add("stop:" + s.name)
	return nil
}

// TestRunAndShutdown 测试启动、ctx 取消后的停止与逆序关闭
func TestRunAndShutdown(t *testing.T) {
	rec := &recorder{}
	a := NewBaseApp(WithName("test"), WithLogger(logger.NewNoop()))
	a.AppendServer(&fakeServer{name: "http", rec: rec})
	a.AppendCloser(
		CloserFunc(func() error { rec.add("close:db"); return nil }),
		CloserFunc(func() error { rec.add("close:redis"); return nil }),
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	require.Eventually(t, func() bool {
		rec.mu.Lock()
		defer rec.mu.Unlock()
		return len(rec.calls) == 1
	}, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return")
	}

	assert.Equal(t, []string{"start:http", "stop:http", "close:redis", "close:db"}, rec.calls)
	assert.ErrorIs(t, a.Run(context.Background()), ErrAppAlreadyRunning)
	assert.NoError(t, a.Shutdown())
}

// TestStartFailure 测试启动失败时释放资源
func TestStartFailure(t *testing.T) {
	rec := &recorder{}
	a := NewBaseApp(WithLogger(logger.NewNoop()))
	a.AppendServer(&fakeServer{name: "bad", rec: rec, startErr: errors.New("bind")})
	a.AppendCloser(CloserFunc(func() error { rec.add("close"); return nil }))

	err := a.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, rec.calls, "close")
}

// TestStopTimeout 测试停止超时
func TestStopTimeout(t *testing.T) {
	rec := &recorder{}
	a := NewBaseApp(WithLogger(logger.NewNoop()), WithStopTimeout(20*time.Millisecond))
	a.AppendServer(&fakeServer{name: "slow", rec: rec, block: 200 * time.Millisecond})

	assert.ErrorIs(t, a.Shutdown(), ErrStopTimeout)
}

type loadTarget struct {
	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`
	Web struct {
		Port int `mapstructure:"port"`
	} `mapstructure:"web"`
}

// TestLoadConfig 测试配置文件、命令行覆盖与缺省文件
func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: info\nweb:\n  port: 8000\n"), 0o644))

	var cfg loadTarget
	mgr, err := LoadConfig(&cfg, []string{"-c", path, "--log.level", "DEBUG"})
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 8000, cfg.Web.Port)
	assert.Equal(t, path, mgr.ConfigFile())

	_, err = LoadConfig(&cfg, []string{"--config", filepath.Join(t.TempDir(), "nope.yaml")})
	assert.ErrorIs(t, err, config.ErrConfigFileNotFound)

	var defaults loadTarget
	defaults.Web.Port = 8000
	t.Setenv(EnvPrefix+"_CONFIG", "")
	_, err = LoadConfig(&defaults, []string{"--web.port", "9000"})
	require.NoError(t, err)
	assert.Equal(t, 9000, defaults.Web.Port)
}
