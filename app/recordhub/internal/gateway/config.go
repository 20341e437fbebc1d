package gateway

// Config 网关配置
type Config struct {
	// RelayTypes 客户端可转发的事件类型
	RelayTypes []string `mapstructure:"relay_types" json:"relay_types" yaml:"relay_types"`
	// CloseReplaced 同一会话重新握手时是否关闭旧连接
	CloseReplaced bool `mapstructure:"close_replaced" json:"close_replaced" yaml:"close_replaced"`
}

// DefaultConfig 默认只转发项目与任务更新
func DefaultConfig() Config {
	return Config{
		RelayTypes: []string{string(EventProjectUpdated), string(EventTasksUpdated)},
	}
}
