//go:build !linux && !darwin

package sysinfo

// detectCPUFreq 在其他平台不可用，由 cpu.Info 兜底
func detectCPUFreq() *FreqStat {
	return nil
}
