package postgres

import "errors"

var (
	// ErrNilConfig 未提供配置
	ErrNilConfig = errors.New("postgres: nil config")
	// ErrInvalidConfig host/port/db_name 或连接池参数非法
	ErrInvalidConfig = errors.New("postgres: bad config")
	// ErrNoRows QueryOne 没有命中
	ErrNoRows = errors.New("postgres: no rows")
)
