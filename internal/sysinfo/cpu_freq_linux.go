//go:build linux

// 本文件用于 Linux 下通过 sysfs cpufreq 读取 CPU 频率
package sysinfo

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

var cpufreqRoot = "/sys/devices/system/cpu"

// detectCPUFreq 取所有 CPU 的平均值，sysfs 中的单位为 kHz
func detectCPUFreq() *FreqStat {
	dirs, _ := filepath.Glob(filepath.Join(cpufreqRoot, "cpufreq", "policy[0-9]*"))
	if len(dirs) == 0 {
		dirs, _ = filepath.Glob(filepath.Join(cpufreqRoot, "cpu[0-9]*", "cpufreq"))
	}
	var curr, lo, hi []float64
	for _, dir := range dirs {
		if v, ok := readKHz(filepath.Join(dir, "scaling_cur_freq")); ok {
			curr = append(curr, v)
		} else if v, ok := readKHz(filepath.Join(dir, "cpuinfo_cur_freq")); ok {
			curr = append(curr, v)
		}
		if v, ok := readKHz(filepath.Join(dir, "scaling_min_freq")); ok {
			lo = append(lo, v)
		}
		if v, ok := readKHz(filepath.Join(dir, "scaling_max_freq")); ok {
			hi = append(hi, v)
		}
	}
	if len(curr) == 0 {
		return nil
	}
	stat := &FreqStat{Current: mean(curr)}
	if len(lo) > 0 {
		stat.Min = floatPtr(mean(lo))
	}
	if len(hi) > 0 {
		stat.Max = floatPtr(mean(hi))
	}
	return stat
}

func readKHz(path string) (float64, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(string(data)), 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v / 1000, true
}
