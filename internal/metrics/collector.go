// Package metrics periodically logs system resource usage during long
// import runs.
package metrics

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"
	"go.uber.org/zap"
)

// SystemMetrics holds one metrics snapshot.
type SystemMetrics struct {
	CPUPercent        float64 // System-wide CPU usage (0-100%)
	ProcessCPUPercent float64 // This process, can exceed 100% on multi-core
	MemoryUsedGB      float64
	MemoryTotalGB     float64
	MemoryPercent     float64
	ProcessRSSGB      float64
	Timestamp         time.Time
}

// Collector periodically collects and logs system metrics.
type Collector struct {
	interval time.Duration
	logger   *zap.Logger
	proc     *process.Process

	mu          sync.RWMutex
	lastMetrics *SystemMetrics
}

// NewCollector creates a metrics collector with the given logging interval.
func NewCollector(interval time.Duration, logger *zap.Logger) *Collector {
	if interval < time.Second {
		interval = 30 * time.Second
	}

	proc, _ := process.NewProcess(int32(os.Getpid()))

	return &Collector{
		interval: interval,
		logger:   logger,
		proc:     proc,
	}
}

// Start begins periodic collection. Returns when the context is cancelled.
func (c *Collector) Start(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	c.collect()

	for {
		select {
		case <-ctx.Done():
			c.logger.Debug("Metrics collection stopped")
			return
		case <-ticker.C:
			c.collect()
		}
	}
}

// GetMetrics returns the last collected snapshot.
func (c *Collector) GetMetrics() *SystemMetrics {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastMetrics
}

func (c *Collector) collect() {
	metrics := &SystemMetrics{Timestamp: time.Now()}

	if cpuPercent, err := cpu.Percent(0, false); err == nil && len(cpuPercent) > 0 {
		metrics.CPUPercent = cpuPercent[0]
	}

	if c.proc != nil {
		if procCPU, err := c.proc.Percent(0); err == nil {
			metrics.ProcessCPUPercent = procCPU
		}
		if memInfo, err := c.proc.MemoryInfo(); err == nil {
			metrics.ProcessRSSGB = float64(memInfo.RSS) / (1024 * 1024 * 1024)
		}
	}

	if vmem, err := mem.VirtualMemory(); err == nil {
		metrics.MemoryPercent = vmem.UsedPercent
		metrics.MemoryUsedGB = float64(vmem.Used) / (1024 * 1024 * 1024)
		metrics.MemoryTotalGB = float64(vmem.Total) / (1024 * 1024 * 1024)
	}

	c.mu.Lock()
	c.lastMetrics = metrics
	c.mu.Unlock()

	c.logger.Info("System metrics",
		zap.Float64("sys_cpu", metrics.CPUPercent),
		zap.Float64("proc_cpu", metrics.ProcessCPUPercent),
		zap.Float64("mem_pct", metrics.MemoryPercent),
		zap.Float64("proc_rss_gb", metrics.ProcessRSSGB),
	)
}
