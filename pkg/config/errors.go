package config

import "errors"

var (
	// ErrConfigFileNotFound 配置文件不存在
	ErrConfigFileNotFound = errors.New("config: file not found")

	// ErrValidationFailed 配置校验失败
	ErrValidationFailed = errors.New("config: validation failed")

	// ErrNilConfig 配置为 nil
	ErrNilConfig = errors.New("config: nil config")

	// ErrBothNil 合并时两侧都为 nil
	ErrBothNil = errors.New("config: both dst and src are nil")
)
