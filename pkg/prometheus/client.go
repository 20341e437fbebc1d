package prometheus

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Client 独立 Registry，组件指标都注册到这里
type Client struct {
	cfg      *Config
	registry *prometheus.Registry
}

// New 创建客户端并按配置注册运行时采集器
func New(cfg *Config) (*Client, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	if cfg.EnableGoCollector {
		reg.MustRegister(collectors.NewGoCollector())
	}
	if cfg.EnableProcessCollector {
		reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
	return &Client{cfg: cfg, registry: reg}, nil
}

// Registry 底层 Registry
func (c *Client) Registry() *prometheus.Registry { return c.registry }

// Registerer 供组件注册指标
func (c *Client) Registerer() prometheus.Registerer { return c.registry }

// Namespace 指标命名空间
func (c *Client) Namespace() string { return c.cfg.Namespace }

// Path 暴露路径
func (c *Client) Path() string { return c.cfg.Path }

// Handler 指标 HTTP Handler
func (c *Client) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
		Registry:          c.registry,
	})
}
