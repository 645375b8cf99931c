// 本文件用于将采集读数整理为对外输出的数据模型
package sysinfo

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"
)

// ErrNoCPUSample 表示采集器未返回任何 CPU 使用率
var ErrNoCPUSample = errors.New("cpu percent unavailable")

// Reporter 负责调用 Provider 并完成单位换算
type Reporter struct {
	provider Provider
	interval atomic.Int64
}

// NewReporter 创建报表生成器，interval 为 CPU 使用率采样间隔
func NewReporter(provider Provider, interval time.Duration) *Reporter {
	r := &Reporter{provider: provider}
	r.SetSampleInterval(interval)
	return r
}

// SetSampleInterval 更新 CPU 采样间隔，负值按 0 处理
func (r *Reporter) SetSampleInterval(interval time.Duration) {
	if interval < 0 {
		interval = 0
	}
	r.interval.Store(int64(interval))
}

// SampleInterval 返回当前 CPU 采样间隔
func (r *Reporter) SampleInterval() time.Duration {
	return time.Duration(r.interval.Load())
}

// Storage 返回 path 所在文件系统的容量
func (r *Reporter) Storage(ctx context.Context, path string) (StorageInfo, error) {
	usage, err := r.provider.DiskUsage(ctx, path)
	if err != nil {
		return StorageInfo{}, fmt.Errorf("读取磁盘用量失败: %s: %w", path, err)
	}
	return StorageInfo{
		TotalGB: BytesToGB(usage.Total),
		UsedGB:  BytesToGB(usage.Used),
		FreeGB:  BytesToGB(usage.Free),
		Percent: clampPct(usage.UsedPercent),
	}, nil
}

// Partitions 返回已挂载的物理分区
func (r *Reporter) Partitions(ctx context.Context) ([]PartitionInfo, error) {
	parts, err := r.provider.DiskPartitions(ctx)
	if err != nil {
		return nil, fmt.Errorf("读取分区列表失败: %w", err)
	}
	out := make([]PartitionInfo, 0, len(parts))
	for _, p := range parts {
		out = append(out, PartitionInfo{
			Device:     p.Device,
			Mountpoint: p.Mountpoint,
			Fstype:     p.Fstype,
		})
	}
	return out, nil
}

// System 返回 CPU 与内存概览
func (r *Reporter) System(ctx context.Context) (SystemInfo, error) {
	vm, err := r.provider.VirtualMemory(ctx)
	if err != nil {
		return SystemInfo{}, fmt.Errorf("读取内存信息失败: %w", err)
	}
	overall, err := r.overallPercent(ctx)
	if err != nil {
		return SystemInfo{}, err
	}
	return SystemInfo{
		CPUPercent: overall,
		RAMPercent: clampPct(vm.UsedPercent),
		RAMTotalGB: BytesToGB(vm.Total),
		RAMUsedGB:  BytesToGB(vm.Used),
	}, nil
}

// CPU 依次采样整体与每核使用率，并附带频率
func (r *Reporter) CPU(ctx context.Context) (CPUInfo, error) {
	freq, err := r.provider.CPUFreq(ctx)
	if err != nil {
		return CPUInfo{}, fmt.Errorf("读取 CPU 频率失败: %w", err)
	}
	overall, err := r.overallPercent(ctx)
	if err != nil {
		return CPUInfo{}, err
	}
	perCore, err := r.provider.CPUPercent(ctx, r.SampleInterval(), true)
	if err != nil {
		return CPUInfo{}, fmt.Errorf("读取每核使用率失败: %w", err)
	}
	cores := make([]float64, 0, len(perCore))
	for _, v := range perCore {
		cores = append(cores, clampPct(v))
	}
	info := CPUInfo{
		OverallPercent: overall,
		PerCore:        cores,
	}
	if freq != nil {
		info.FreqCurrent = floatPtr(freq.Current)
		info.FreqMin = freq.Min
		info.FreqMax = freq.Max
	}
	return info, nil
}

// Memory 返回物理内存与交换分区详情
func (r *Reporter) Memory(ctx context.Context) (MemoryInfo, error) {
	vm, err := r.provider.VirtualMemory(ctx)
	if err != nil {
		return MemoryInfo{}, fmt.Errorf("读取内存信息失败: %w", err)
	}
	swap, err := r.provider.SwapMemory(ctx)
	if err != nil {
		return MemoryInfo{}, fmt.Errorf("读取交换分区信息失败: %w", err)
	}
	return MemoryInfo{
		TotalGB:     BytesToGB(vm.Total),
		AvailableGB: BytesToGB(vm.Available),
		UsedGB:      BytesToGB(vm.Used),
		Percent:     clampPct(vm.UsedPercent),
		SwapTotalGB: BytesToGB(swap.Total),
		SwapUsedGB:  BytesToGB(swap.Used),
		SwapFreeGB:  BytesToGB(swap.Free),
		SwapPercent: clampPct(swap.UsedPercent),
	}, nil
}

func (r *Reporter) overallPercent(ctx context.Context) (float64, error) {
	percents, err := r.provider.CPUPercent(ctx, r.SampleInterval(), false)
	if err != nil {
		return 0, fmt.Errorf("读取 CPU 使用率失败: %w", err)
	}
	if len(percents) == 0 {
		return 0, ErrNoCPUSample
	}
	return clampPct(percents[0]), nil
}
