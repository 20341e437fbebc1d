package web

import "errors"

var (
	// ErrServerAlreadyStarted Start 被重复调用
	ErrServerAlreadyStarted = errors.New("web: server already started")
	// ErrServerNotStarted Stop 早于 Start
	ErrServerNotStarted = errors.New("web: server not started")
)
