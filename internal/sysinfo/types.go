package sysinfo

// StorageInfo 表示指定路径所在文件系统的容量
type StorageInfo struct {
	TotalGB float64 `json:"total_gb"`
	UsedGB  float64 `json:"used_gb"`
	FreeGB  float64 `json:"free_gb"`
	Percent float64 `json:"percent"`
}

// PartitionInfo 表示磁盘分区
type PartitionInfo struct {
	Device     string `json:"device"`
	Mountpoint string `json:"mountpoint"`
	Fstype     string `json:"fstype"`
}

// SystemInfo 表示 CPU 与内存概览
type SystemInfo struct {
	CPUPercent float64 `json:"cpu_percent"`
	RAMPercent float64 `json:"ram_percent"`
	RAMTotalGB float64 `json:"ram_total_gb"`
	RAMUsedGB  float64 `json:"ram_used_gb"`
}

// CPUInfo 表示 CPU 使用率与频率，频率在平台不支持时为 null
type CPUInfo struct {
	OverallPercent float64   `json:"overall_percent"`
	PerCore        []float64 `json:"per_core"`
	FreqCurrent    *float64  `json:"freq_current"`
	FreqMin        *float64  `json:"freq_min"`
	FreqMax        *float64  `json:"freq_max"`
}

// MemoryInfo 表示物理内存与交换分区
type MemoryInfo struct {
	TotalGB     float64 `json:"total_gb"`
	AvailableGB float64 `json:"available_gb"`
	UsedGB      float64 `json:"used_gb"`
	Percent     float64 `json:"percent"`
	SwapTotalGB float64 `json:"swap_total_gb"`
	SwapUsedGB  float64 `json:"swap_used_gb"`
	SwapFreeGB  float64 `json:"swap_free_gb"`
	SwapPercent float64 `json:"swap_percent"`
}

// FreqStat 为 CPU 频率读数（MHz），Min/Max 在无法获取时为 nil
type FreqStat struct {
	Current float64
	Min     *float64
	Max     *float64
}
