package app

import "github.com/google/wire"

// Components 由 wire 注入后交给 BaseApp 管理的服务和资源
type Components struct {
	Servers []Server
	Closers []Closer
}

// ProviderSet 应用层 provider
var ProviderSet = wire.NewSet(Assemble)

// Assemble 将组件挂到 BaseApp 上
func Assemble(a *BaseApp, comps Components) *BaseApp {
	a.AppendServer(comps.Servers...)
	a.AppendCloser(comps.Closers...)
	return a
}

// MapCloser 将任意 Close() error 对象适配为 Closer
func MapCloser(c interface{ Close() error }) Closer {
	return CloserFunc(c.Close)
}
