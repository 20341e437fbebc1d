package system

import (
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// Stats 进程资源快照
type Stats struct {
	CPUPercent       float64   `json:"cpu_percent"`
	MemoryPercent    float64   `json:"memory_percent"`
	MemoryBytes      uint64    `json:"memory_bytes"`
	Goroutines       int       `json:"goroutines"`
	SystemCPUPercent float64   `json:"system_cpu_percent"`
	SystemMemPercent float64   `json:"system_memory_percent"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Collector 定期采集进程资源，同时作为 prometheus.Collector 暴露
type Collector struct {
	proc *process.Process

	mu      sync.RWMutex
	stats   Stats
	stopCh  chan struct{}
	doneCh  chan struct{}
	running bool

	cpuDesc *prometheus.Desc
	memDesc *prometheus.Desc
	rssDesc *prometheus.Desc
}

var _ prometheus.Collector = (*Collector)(nil)

// New 创建采集器
func New(namespace string) (*Collector, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, err
	}
	return &Collector{
		proc:    proc,
		cpuDesc: prometheus.NewDesc(prometheus.BuildFQName(namespace, "system", "cpu_percent"), "Process CPU usage percent.", nil, nil),
		memDesc: prometheus.NewDesc(prometheus.BuildFQName(namespace, "system", "memory_percent"), "Process RSS as percent of total memory.", nil, nil),
		rssDesc: prometheus.NewDesc(prometheus.BuildFQName(namespace, "system", "memory_rss_bytes"), "Process resident set size.", nil, nil),
	}, nil
}

// Start 立即采集一次并按 interval 定期采集
func (c *Collector) Start(interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Second
	}

	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return
	}
	c.running = true
	c.stopCh = make(chan struct{})
	c.doneCh = make(chan struct{})
	stop, done := c.stopCh, c.doneCh
	c.mu.Unlock()

	c.Sample()

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.Sample()
			case <-stop:
				return
			}
		}
	}()
}

// Stop 停止采集并等待采集 goroutine 退出
func (c *Collector) Stop() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	c.running = false
	close(c.stopCh)
	done := c.doneCh
	c.mu.Unlock()
	<-done
}

// Sample 执行一次采集
func (c *Collector) Sample() {
	var s Stats
	if p, err := c.proc.CPUPercent(); err == nil {
		s.CPUPercent = p
	}
	vm, vmErr := mem.VirtualMemory()
	if vmErr == nil {
		s.SystemMemPercent = vm.UsedPercent
	}
	if mi, err := c.proc.MemoryInfo(); err == nil {
		s.MemoryBytes = mi.RSS
		if vmErr == nil && vm.Total > 0 {
			s.MemoryPercent = float64(mi.RSS) / float64(vm.Total) * 100
		}
	}
	if ps, err := cpu.Percent(0, false); err == nil && len(ps) > 0 {
		s.SystemCPUPercent = ps[0]
	}
	s.Goroutines = runtime.NumGoroutine()
	s.UpdatedAt = time.Now()

	c.mu.Lock()
	c.stats = s
	c.mu.Unlock()
}

// Stats 最近一次采集结果
func (c *Collector) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stats
}

// Describe prometheus.Collector
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.cpuDesc
	ch <- c.memDesc
	ch <- c.rssDesc
}

// Collect prometheus.Collector
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.Stats()
	ch <- prometheus.MustNewConstMetric(c.cpuDesc, prometheus.GaugeValue, s.CPUPercent)
	ch <- prometheus.MustNewConstMetric(c.memDesc, prometheus.GaugeValue, s.MemoryPercent)
	ch <- prometheus.MustNewConstMetric(c.rssDesc, prometheus.GaugeValue, float64(s.MemoryBytes))
}
