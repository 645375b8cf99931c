// 本文件用于 Prometheus 指标聚合与导出 暴露 API 与日志读取的运行时指标

package metrics

import (
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Collector 聚合运行期指标，并以 Prometheus 文本格式输出。
type Collector struct {
	inFlight atomic.Int64

	tailLinesTotal     atomic.Uint64
	configReloadTotal  atomic.Uint64
	configReloadFailed atomic.Uint64

	mu              sync.RWMutex
	requests        map[requestKey]uint64
	tailByOutcome   map[string]uint64
	requestDuration *histogram
	tailDuration    *histogram
	tailBytes       *histogram
}

type requestKey struct {
	route string
	code  int
}

type histogram struct {
	buckets []float64
	counts  []uint64 // 累计桶计数
	count   uint64
	sum     float64
}

// NewCollector 创建指标收集器。
func NewCollector() *Collector {
	c := &Collector{}
	c.reset()
	return c
}

func (c *Collector) reset() {
	c.inFlight.Store(0)
	c.tailLinesTotal.Store(0)
	c.configReloadTotal.Store(0)
	c.configReloadFailed.Store(0)

	c.mu.Lock()
	c.requests = make(map[requestKey]uint64)
	c.tailByOutcome = make(map[string]uint64)
	c.requestDuration = newHistogram([]float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5})
	c.tailDuration = newHistogram([]float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1})
	c.tailBytes = newHistogram([]float64{8192, 65536, 262144, 1048576, 4194304, 16777216})
	c.mu.Unlock()
}

func newHistogram(buckets []float64) *histogram {
	clean := make([]float64, 0, len(buckets))
	for _, bucket := range buckets {
		if bucket <= 0 {
			continue
		}
		clean = append(clean, bucket)
	}
	sort.Float64s(clean)
	return &histogram{
		buckets: clean,
		counts:  make([]uint64, len(clean)),
	}
}

func (h *histogram) observe(v float64) {
	if h == nil {
		return
	}
	for idx, bound := range h.buckets {
		if v <= bound {
			h.counts[idx]++
		}
	}
	h.count++
	h.sum += v
}

func (h *histogram) writePrometheus(builder *strings.Builder, metric string, labels map[string]string) {
	if h == nil {
		return
	}
	for idx, bound := range h.buckets {
		bucketLabels := mergeLabels(labels, map[string]string{
			"le": trimFloat(bound),
		})
		builder.WriteString(metric)
		builder.WriteString("_bucket")
		writeLabels(builder, bucketLabels)
		builder.WriteByte(' ')
		builder.WriteString(strconv.FormatUint(h.counts[idx], 10))
		builder.WriteByte('\n')
	}
	infLabels := mergeLabels(labels, map[string]string{
		"le": "+Inf",
	})
	builder.WriteString(metric)
	builder.WriteString("_bucket")
	writeLabels(builder, infLabels)
	builder.WriteByte(' ')
	builder.WriteString(strconv.FormatUint(h.count, 10))
	builder.WriteByte('\n')

	builder.WriteString(metric)
	builder.WriteString("_sum")
	writeLabels(builder, labels)
	builder.WriteByte(' ')
	builder.WriteString(trimFloat(h.sum))
	builder.WriteByte('\n')

	builder.WriteString(metric)
	builder.WriteString("_count")
	writeLabels(builder, labels)
	builder.WriteByte(' ')
	builder.WriteString(strconv.FormatUint(h.count, 10))
	builder.WriteByte('\n')
}

// TrackInFlight 记录进行中的请求数，返回的函数在请求结束时调用。
func (c *Collector) TrackInFlight() func() {
	if c == nil {
		return func() {}
	}
	c.inFlight.Add(1)
	return func() { c.inFlight.Add(-1) }
}

// ObserveRequest 记录一次 HTTP 请求的路由、状态码与耗时。
func (c *Collector) ObserveRequest(route string, code int, latency time.Duration) {
	if c == nil {
		return
	}
	key := requestKey{route: normalizeMetricLabel(route), code: code}
	c.mu.Lock()
	c.requests[key]++
	c.requestDuration.observe(latency.Seconds())
	c.mu.Unlock()
}

// ObserveTail 记录一次日志尾部读取的结果、返回行数、扫描字节与耗时。
func (c *Collector) ObserveTail(outcome string, lines int, bytesScanned int64, latency time.Duration) {
	if c == nil {
		return
	}
	if lines > 0 {
		c.tailLinesTotal.Add(uint64(lines))
	}
	label := normalizeMetricLabel(outcome)
	c.mu.Lock()
	c.tailByOutcome[label]++
	c.tailDuration.observe(latency.Seconds())
	if bytesScanned > 0 {
		c.tailBytes.observe(float64(bytesScanned))
	}
	c.mu.Unlock()
}

// ObserveConfigReload 记录一次配置重载结果。
func (c *Collector) ObserveConfigReload(err error) {
	if c == nil {
		return
	}
	c.configReloadTotal.Add(1)
	if err != nil {
		c.configReloadFailed.Add(1)
	}
}

// RenderPrometheus 以 text exposition 格式导出指标。
func (c *Collector) RenderPrometheus() string {
	if c == nil {
		return ""
	}
	builder := strings.Builder{}
	builder.Grow(4096)

	writeMetricHeader(&builder, "sysmon_http_inflight_requests", "gauge", "Current in-flight HTTP requests.")
	writeGaugeInt(&builder, "sysmon_http_inflight_requests", c.inFlight.Load(), nil)

	requests := make(map[requestKey]uint64)
	tailByOutcome := make(map[string]uint64)
	c.mu.RLock()
	for key, count := range c.requests {
		requests[key] = count
	}
	for outcome, count := range c.tailByOutcome {
		tailByOutcome[outcome] = count
	}
	requestDurationCopy := cloneHistogram(c.requestDuration)
	tailDurationCopy := cloneHistogram(c.tailDuration)
	tailBytesCopy := cloneHistogram(c.tailBytes)
	c.mu.RUnlock()

	writeMetricHeader(&builder, "sysmon_http_requests_total", "counter", "HTTP requests grouped by route and status code.")
	keys := make([]requestKey, 0, len(requests))
	for key := range requests {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].route == keys[j].route {
			return keys[i].code < keys[j].code
		}
		return keys[i].route < keys[j].route
	})
	for _, key := range keys {
		writeCounter(&builder, "sysmon_http_requests_total", requests[key], map[string]string{
			"route": key.route,
			"code":  strconv.Itoa(key.code),
		})
	}

	writeMetricHeader(&builder, "sysmon_http_request_duration_seconds", "histogram", "HTTP request latency distribution in seconds.")
	requestDurationCopy.writePrometheus(&builder, "sysmon_http_request_duration_seconds", nil)

	writeMetricHeader(&builder, "sysmon_tail_requests_total", "counter", "Log tail reads grouped by outcome.")
	// 始终输出 ok 时序，避免零流量时缺失
	if _, ok := tailByOutcome["ok"]; !ok {
		tailByOutcome["ok"] = 0
	}
	for _, outcome := range sortedStringKeysFromUintMap(tailByOutcome) {
		writeCounter(&builder, "sysmon_tail_requests_total", tailByOutcome[outcome], map[string]string{
			"outcome": outcome,
		})
	}

	writeMetricHeader(&builder, "sysmon_tail_lines_total", "counter", "Total log lines returned by tail reads.")
	writeCounter(&builder, "sysmon_tail_lines_total", c.tailLinesTotal.Load(), nil)

	writeMetricHeader(&builder, "sysmon_tail_scanned_bytes", "histogram", "Bytes scanned per tail read.")
	tailBytesCopy.writePrometheus(&builder, "sysmon_tail_scanned_bytes", nil)

	writeMetricHeader(&builder, "sysmon_tail_duration_seconds", "histogram", "Tail read latency distribution in seconds.")
	tailDurationCopy.writePrometheus(&builder, "sysmon_tail_duration_seconds", nil)

	writeMetricHeader(&builder, "sysmon_config_reload_total", "counter", "Total configuration reload attempts.")
	writeCounter(&builder, "sysmon_config_reload_total", c.configReloadTotal.Load(), nil)

	writeMetricHeader(&builder, "sysmon_config_reload_failure_total", "counter", "Total failed configuration reloads.")
	writeCounter(&builder, "sysmon_config_reload_failure_total", c.configReloadFailed.Load(), nil)

	return builder.String()
}

func cloneHistogram(h *histogram) histogram {
	if h == nil {
		return histogram{}
	}
	return histogram{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		count:   h.count,
		sum:     h.sum,
	}
}

func writeMetricHeader(builder *strings.Builder, metric, metricType, help string) {
	builder.WriteString("# HELP ")
	builder.WriteString(metric)
	builder.WriteByte(' ')
	builder.WriteString(help)
	builder.WriteByte('\n')
	builder.WriteString("# TYPE ")
	builder.WriteString(metric)
	builder.WriteByte(' ')
	builder.WriteString(metricType)
	builder.WriteByte('\n')
}

func writeCounter(builder *strings.Builder, metric string, value uint64, labels map[string]string) {
	builder.WriteString(metric)
	writeLabels(builder, labels)
	builder.WriteByte(' ')
	builder.WriteString(strconv.FormatUint(value, 10))
	builder.WriteByte('\n')
}

func writeGaugeInt(builder *strings.Builder, metric string, value int64, labels map[string]string) {
	builder.WriteString(metric)
	writeLabels(builder, labels)
	builder.WriteByte(' ')
	builder.WriteString(strconv.FormatInt(value, 10))
	builder.WriteByte('\n')
}

func writeLabels(builder *strings.Builder, labels map[string]string) {
	if len(labels) == 0 {
		return
	}
	keys := make([]string, 0, len(labels))
	for key := range labels {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	builder.WriteByte('{')
	for idx, key := range keys {
		if idx > 0 {
			builder.WriteByte(',')
		}
		builder.WriteString(key)
		builder.WriteString("=\"")
		builder.WriteString(escapeLabelValue(labels[key]))
		builder.WriteByte('"')
	}
	builder.WriteByte('}')
}

func mergeLabels(base, ext map[string]string) map[string]string {
	if len(base) == 0 && len(ext) == 0 {
		return nil
	}
	merged := make(map[string]string, len(base)+len(ext))
	for key, value := range base {
		merged[key] = value
	}
	for key, value := range ext {
		merged[key] = value
	}
	return merged
}

func normalizeMetricLabel(value string) string {
	clean := strings.TrimSpace(strings.ToLower(value))
	if clean == "" {
		return "unknown"
	}
	clean = strings.Join(strings.Fields(clean), " ")
	if len(clean) > 120 {
		clean = clean[:120]
	}
	return clean
}

func escapeLabelValue(value string) string {
	replacer := strings.NewReplacer(
		`\`, `\\`,
		`"`, `\"`,
		"\n", `\n`,
	)
	return replacer.Replace(value)
}

func sortedStringKeysFromUintMap(items map[string]uint64) []string {
	keys := make([]string, 0, len(items))
	for key := range items {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func trimFloat(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
