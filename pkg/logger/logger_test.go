package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func newBufferLogger(t *testing.T, cfg *Config, opts ...Option) (*BaseLogger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	if cfg == nil {
		cfg = &Config{}
	}
	cfg.Format = JSONFormat
	l, err := New(cfg, append(opts, WithWriter(zapcore.AddSync(&buf)))...)
	require.NoError(t, err)
	return l, &buf
}

func lines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

// TestNew 测试配置校验
func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *Config
		wantErr error
	}{
		{name: "nil config", cfg: nil},
		{name: "json console", cfg: &Config{Format: JSONFormat}},
		{name: "file without path", cfg: &Config{EnableFile: true}, wantErr: ErrInvalidOutputPath},
		{name: "bad level", cfg: &Config{Level: "verbose"}, wantErr: ErrInvalidLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.cfg)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, l)
		})
	}
}

// TestKeyValueFields 测试键值对、zap.Field 与 error 字段
func TestKeyValueFields(t *testing.T) {
	l, buf := newBufferLogger(t, nil)

	l.Info("connection registered", "session_id", "abc", zap.Int("live", 2), "error", errors.New("boom"))
	l.Warn("odd args", "dangling")

	got := lines(t, buf)
	require.Len(t, got, 2)
	assert.Equal(t, "connection registered", got[0]["msg"])
	assert.Equal(t, "abc", got[0]["session_id"])
	assert.EqualValues(t, 2, got[0]["live"])
	assert.Equal(t, "boom", got[0]["error"])
	assert.Equal(t, "dangling", got[1]["!BADKEY"])
}

// TestNamedAndSetLevel 测试具名派生与运行时调级
func TestNamedAndSetLevel(t *testing.T) {
	l, buf := newBufferLogger(t, &Config{Level: InfoLevel})
	child := l.Named("gateway").WithFields("component", "registry")

	child.Debug("hidden")
	require.NoError(t, l.SetLevel(DebugLevel))
	child.Debug("visible")

	got := lines(t, buf)
	require.Len(t, got, 1)
	assert.Equal(t, "visible", got[0]["msg"])
	assert.Equal(t, "gateway", got[0]["logger"])
	assert.Equal(t, "registry", got[0]["component"])

	assert.ErrorIs(t, l.SetLevel("loud"), ErrInvalidLevel)
}

// TestSensitiveKeys 测试敏感字段脱敏
func TestSensitiveKeys(t *testing.T) {
	l, buf := newBufferLogger(t, nil)
	l.Info("login attempt", "username", "admin", "password", "admin")

	got := lines(t, buf)
	require.Len(t, got, 1)
	assert.Equal(t, "admin", got[0]["username"])
	assert.Equal(t, "***", got[0]["password"])
}

// TestHookDrop 测试钩子丢弃日志
func TestHookDrop(t *testing.T) {
	drop := HookFunc(func(e zapcore.Entry, _ []zapcore.Field) bool {
		return e.Message != "noise"
	})
	l, buf := newBufferLogger(t, nil, WithHooks(drop))
	l.Info("noise")
	l.Info("signal")

	got := lines(t, buf)
	require.Len(t, got, 1)
	assert.Equal(t, "signal", got[0]["msg"])
}

type traceKey struct{}

// TestContextExtractor 测试从 context 提取字段
func TestContextExtractor(t *testing.T) {
	extract := func(ctx context.Context) []zap.Field {
		if id, ok := ctx.Value(traceKey{}).(string); ok {
			return []zap.Field{zap.String("trace_id", id)}
		}
		return nil
	}
	l, buf := newBufferLogger(t, nil, WithContextExtractor(extract))
	l.InfoContext(context.WithValue(context.Background(), traceKey{}, "t-1"), "traced")

	got := lines(t, buf)
	require.Len(t, got, 1)
	assert.Equal(t, "t-1", got[0]["trace_id"])
}

// TestRotationWriter 测试两种轮换方式
func TestRotationWriter(t *testing.T) {
	dir := t.TempDir()

	w, err := NewRotationWriter(&RotationConfig{Type: RotationBySize, MaxSize: 1}, filepath.Join(dir, "size.log"))
	require.NoError(t, err)
	_, err = w.Write([]byte("hello\n"))
	require.NoError(t, err)

	w, err = NewRotationWriter(&RotationConfig{Type: RotationByTime, RotationTime: "bad"}, filepath.Join(dir, "time.log"))
	require.NoError(t, err)
	_, err = w.Write([]byte("hello\n"))
	require.NoError(t, err)
}

// TestNoopAndDefault 测试空 logger 与默认 logger
func TestNoopAndDefault(t *testing.T) {
	n := NewNoop()
	n.Info("ignored", "k", "v")
	assert.Equal(t, n, n.Named("x").WithFields("a", 1))
	assert.NoError(t, n.Sync())

	prev := Default()
	t.Cleanup(func() { SetDefault(prev) })
	SetDefault(n)
	assert.Equal(t, n, Named("anything"))
}
