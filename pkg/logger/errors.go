package logger

import "errors"

var (
	// ErrInvalidOutputPath 开启文件输出但未指定路径
	ErrInvalidOutputPath = errors.New("logger: output path is required when file output is enabled")
	// ErrNoOutputEnabled 控制台和文件输出都未开启
	ErrNoOutputEnabled = errors.New("logger: at least one output must be enabled")
	// ErrInvalidLevel 未知日志等级
	ErrInvalidLevel = errors.New("logger: invalid level")
)
