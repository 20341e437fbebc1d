package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// Manager 配置管理器
// 统一封装文件加载、环境变量覆盖、结构体解码和热更新监听
type Manager interface {
	// LoadFile 加载配置文件，格式由扩展名推断
	LoadFile(path string) error
	// BindEnv 开启环境变量覆盖，RECORDHUB_WEB_PORT 对应 web.port
	BindEnv(prefix string)
	// Unmarshal 解码全部配置
	Unmarshal(v any) error
	// UnmarshalKey 解码指定路径，如 "storage.postgres"
	UnmarshalKey(key string, v any) error

	Get(key string) any
	GetString(key string) string
	GetInt(key string) int
	GetBool(key string) bool
	GetDuration(key string) time.Duration
	Set(key string, value any)
	IsSet(key string) bool
	AllSettings() map[string]any

	// Watch 监听配置文件变化，回调在 fsnotify 的 goroutine 中执行
	Watch(callback func(fsnotify.Event))
	// ConfigFile 返回当前加载的配置文件路径
	ConfigFile() string
}

type manager struct {
	mu        sync.RWMutex
	v         *viper.Viper
	callbacks []func(fsnotify.Event)
	watching  bool
}

// NewManager 创建配置管理器
func NewManager(opts ...Option) Manager {
	m := &manager{v: viper.New()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *manager) LoadFile(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.v.SetConfigFile(path)
	if err := m.v.ReadInConfig(); err != nil {
		var pathErr *fs.PathError
		if errors.As(err, &pathErr) {
			return fmt.Errorf("%w: %s", ErrConfigFileNotFound, path)
		}
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return nil
}

func (m *manager) BindEnv(prefix string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if prefix != "" {
		m.v.SetEnvPrefix(prefix)
	}
	m.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	m.v.AutomaticEnv()
}

// decodeHook 字符串到 time.Duration、逗号分隔字符串到切片
func decodeHook() viper.DecoderConfigOption {
	return viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
}

func (m *manager) Unmarshal(v any) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.v.Unmarshal(v, decodeHook()); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return nil
}

func (m *manager) UnmarshalKey(key string, v any) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.v.UnmarshalKey(key, v, decodeHook()); err != nil {
		return fmt.Errorf("failed to unmarshal key %s: %w", key, err)
	}
	return nil
}

func (m *manager) Get(key string) any {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.v.Get(key)
}

func (m *manager) GetString(key string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.v.GetString(key)
}

func (m *manager) GetInt(key string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.v.GetInt(key)
}

func (m *manager) GetBool(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.v.GetBool(key)
}

func (m *manager) GetDuration(key string) time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.v.GetDuration(key)
}

func (m *manager) Set(key string, value any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.v.Set(key, value)
}

func (m *manager) IsSet(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.v.IsSet(key)
}

func (m *manager) AllSettings() map[string]any {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.v.AllSettings()
}

func (m *manager) ConfigFile() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.v.ConfigFileUsed()
}

func (m *manager) Watch(callback func(fsnotify.Event)) {
	m.mu.Lock()
	m.callbacks = append(m.callbacks, callback)
	start := !m.watching
	m.watching = true
	m.mu.Unlock()

	if !start {
		return
	}

	m.v.OnConfigChange(func(e fsnotify.Event) {
		m.mu.RLock()
		callbacks := make([]func(fsnotify.Event), len(m.callbacks))
		copy(callbacks, m.callbacks)
		m.mu.RUnlock()

		for _, cb := range callbacks {
			cb(e)
		}
	})
	m.v.WatchConfig()
}
