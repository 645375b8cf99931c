// 本文件用于提供单位换算与数值辅助函数
package sysinfo

const bytesPerGB = 1 << 30

// BytesToGB 按 2^30 换算字节数
func BytesToGB(value uint64) float64 {
	return float64(value) / bytesPerGB
}

func clampPct(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 100 {
		return 100
	}
	return value
}

func floatPtr(value float64) *float64 {
	return &value
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
