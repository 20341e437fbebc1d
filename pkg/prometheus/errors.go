package prometheus

import "errors"

// ErrInvalidConfig 配置无效
var ErrInvalidConfig = errors.New("prometheus: invalid config")
