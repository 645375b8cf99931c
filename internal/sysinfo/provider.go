// 本文件用于定义系统指标采集接口及基于 gopsutil 的实现
package sysinfo

import (
	"context"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
)

// Provider 提供即时的系统资源读数
type Provider interface {
	CPUPercent(ctx context.Context, interval time.Duration, perCore bool) ([]float64, error)
	// CPUFreq 在平台无法提供频率时返回 nil, nil
	CPUFreq(ctx context.Context) (*FreqStat, error)
	VirtualMemory(ctx context.Context) (*mem.VirtualMemoryStat, error)
	SwapMemory(ctx context.Context) (*mem.SwapMemoryStat, error)
	DiskUsage(ctx context.Context, path string) (*disk.UsageStat, error)
	DiskPartitions(ctx context.Context) ([]disk.PartitionStat, error)
}

// Collector 基于 gopsutil 采集系统资源，无内部状态
type Collector struct{}

// NewCollector 创建系统信息采集器
func NewCollector() *Collector {
	return &Collector{}
}

func (c *Collector) CPUPercent(ctx context.Context, interval time.Duration, perCore bool) ([]float64, error) {
	return cpu.PercentWithContext(ctx, interval, perCore)
}

func (c *Collector) CPUFreq(ctx context.Context) (*FreqStat, error) {
	if stat := detectCPUFreq(); stat != nil {
		return stat, nil
	}
	return infoFreq(ctx)
}

func (c *Collector) VirtualMemory(ctx context.Context) (*mem.VirtualMemoryStat, error) {
	return mem.VirtualMemoryWithContext(ctx)
}

func (c *Collector) SwapMemory(ctx context.Context) (*mem.SwapMemoryStat, error) {
	return mem.SwapMemoryWithContext(ctx)
}

func (c *Collector) DiskUsage(ctx context.Context, path string) (*disk.UsageStat, error) {
	return disk.UsageWithContext(ctx, path)
}

func (c *Collector) DiskPartitions(ctx context.Context) ([]disk.PartitionStat, error) {
	return disk.PartitionsWithContext(ctx, false)
}

// infoFreq 退化为读取 cpu.Info 的标称主频，仅能提供当前值
func infoFreq(ctx context.Context) (*FreqStat, error) {
	infos, err := cpu.InfoWithContext(ctx)
	if err != nil || len(infos) == 0 {
		return nil, nil
	}
	values := make([]float64, 0, len(infos))
	for _, info := range infos {
		if mhz := sanitizeMHz(info.Mhz); mhz > 0 {
			values = append(values, mhz)
		}
	}
	if len(values) == 0 {
		return nil, nil
	}
	return &FreqStat{Current: mean(values)}, nil
}

func sanitizeMHz(mhz float64) float64 {
	// 部分平台会返回极小值（如 24 MHz），直接视为未知
	if mhz < 100 {
		return 0
	}
	return mhz
}
