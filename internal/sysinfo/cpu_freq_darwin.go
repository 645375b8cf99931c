//go:build darwin

// 本文件用于 macOS 下 CPU 频率读取
package sysinfo

import "golang.org/x/sys/unix"

// detectCPUFreq 读取 sysctl 主频，Apple Silicon 不提供该项时返回 nil
func detectCPUFreq() *FreqStat {
	curr, err := unix.SysctlUint64("hw.cpufrequency")
	if err != nil || curr == 0 {
		return nil
	}
	stat := &FreqStat{Current: float64(curr) / 1e6}
	if v, err := unix.SysctlUint64("hw.cpufrequency_min"); err == nil && v > 0 {
		stat.Min = floatPtr(float64(v) / 1e6)
	}
	if v, err := unix.SysctlUint64("hw.cpufrequency_max"); err == nil && v > 0 {
		stat.Max = floatPtr(float64(v) / 1e6)
	}
	return stat
}
