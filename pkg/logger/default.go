package logger

import "sync"

var (
	defaultMu     sync.RWMutex
	defaultLogger Logger
)

// Default 返回进程级默认 logger，未设置时按 DefaultConfig 惰性创建
func Default() Logger {
	defaultMu.RLock()
	l := defaultLogger
	defaultMu.RUnlock()
	if l != nil {
		return l
	}

	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultLogger == nil {
		bl, err := New(nil)
		if err != nil {
			defaultLogger = NewNoop()
		} else {
			defaultLogger = bl
		}
	}
	return defaultLogger
}

// SetDefault 替换默认 logger
func SetDefault(l Logger) {
	defaultMu.Lock()
	defaultLogger = l
	defaultMu.Unlock()
}

// Named 从默认 logger 派生具名 logger
func Named(name string) Logger {
	return Default().Named(name)
}
