package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v2"

	"sys-monitor/internal/models"
	"sys-monitor/internal/tail"
)

const (
	defaultAPIBind           = ":8000"
	defaultAPIReadTimeout    = "5s"
	defaultAPIWriteTimeout   = "15s"
	defaultCPUSampleInterval = "500ms"
	defaultLogsFile          = "/var/log/README"
	defaultLogsLines         = 50
	defaultLogsMaxLines      = 500
	defaultLogsEncoding      = "utf-8"
	defaultLogLevel          = "info"
	defaultLogFormat         = "text"
)

// 环境变量覆盖项，优先级高于配置文件与运行时配置
const (
	envAPIBind         = "SYSMON_API_BIND"
	envLogLevel        = "SYSMON_LOG_LEVEL"
	envLogsDefaultFile = "SYSMON_LOGS_DEFAULT_FILE"
	envLogsAllowedDirs = "SYSMON_LOGS_ALLOWED_DIRS"
)

// Default 返回未提供配置文件时的配置，仍会应用环境变量覆盖
func Default() (*models.Config, error) {
	cfg := &models.Config{}
	applyEnvOverrides(cfg)
	applyDefaults(cfg)
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig 加载配置文件，叠加运行时配置与环境变量后设置默认值并校验
func LoadConfig(configFile string) (*models.Config, error) {
	data, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	var config models.Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	runtime, err := loadRuntimeConfig(configFile)
	if err != nil {
		return nil, err
	}
	applyRuntimeConfig(&config, runtime)
	applyEnvOverrides(&config)
	applyDefaults(&config)

	if err := ValidateConfig(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

func applyDefaults(config *models.Config) {
	if strings.TrimSpace(config.APIBind) == "" {
		config.APIBind = defaultAPIBind
	}
	if strings.TrimSpace(config.APIReadTimeout) == "" {
		config.APIReadTimeout = defaultAPIReadTimeout
	}
	if strings.TrimSpace(config.APIWriteTimeout) == "" {
		config.APIWriteTimeout = defaultAPIWriteTimeout
	}
	if strings.TrimSpace(config.CPUSampleInterval) == "" {
		config.CPUSampleInterval = defaultCPUSampleInterval
	}
	if strings.TrimSpace(config.LogsDefaultFile) == "" {
		config.LogsDefaultFile = defaultLogsFile
	}
	if config.LogsMaxLines <= 0 {
		config.LogsMaxLines = defaultLogsMaxLines
	}
	if config.LogsDefaultLines <= 0 {
		config.LogsDefaultLines = min(defaultLogsLines, config.LogsMaxLines)
	}
	if config.LogsChunkSize <= 0 {
		config.LogsChunkSize = tail.DefaultChunkSize
	}
	if strings.TrimSpace(config.LogsEncoding) == "" {
		config.LogsEncoding = defaultLogsEncoding
	}
	if config.LogLevel == "" {
		config.LogLevel = defaultLogLevel
	}
	if config.LogFormat == "" {
		config.LogFormat = defaultLogFormat
	}
	if config.LogToStd == nil {
		config.LogToStd = boolPtr(true)
	}
}

func applyEnvOverrides(config *models.Config) {
	if v, ok := lookupEnv(envAPIBind); ok {
		config.APIBind = v
	}
	if v, ok := lookupEnv(envLogLevel); ok {
		config.LogLevel = strings.ToLower(v)
	}
	if v, ok := lookupEnv(envLogsDefaultFile); ok {
		config.LogsDefaultFile = v
	}
	if v, ok := lookupEnv(envLogsAllowedDirs); ok {
		config.LogsAllowedDirs = v
	}
}

func lookupEnv(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

// ValidateConfig 验证配置
func ValidateConfig(config *models.Config) error {
	switch strings.ToLower(config.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("日志级别无效: %s", config.LogLevel)
	}
	switch strings.ToLower(config.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("日志格式无效: %s", config.LogFormat)
	}
	if strings.TrimSpace(config.APIBind) == "" {
		return fmt.Errorf("API 监听地址不能为空")
	}
	for name, value := range map[string]string{
		"api_read_timeout":  config.APIReadTimeout,
		"api_write_timeout": config.APIWriteTimeout,
	} {
		d, err := time.ParseDuration(strings.TrimSpace(value))
		if err != nil || d <= 0 {
			return fmt.Errorf("%s 无效: %q", name, value)
		}
	}
	if d, err := time.ParseDuration(strings.TrimSpace(config.CPUSampleInterval)); err != nil || d < 0 {
		return fmt.Errorf("cpu_sample_interval 无效: %q", config.CPUSampleInterval)
	}
	if config.LogsMaxLines <= 0 {
		return fmt.Errorf("logs_max_lines 必须大于 0")
	}
	if config.LogsDefaultLines < 1 || config.LogsDefaultLines > config.LogsMaxLines {
		return fmt.Errorf("logs_default_lines 必须在 1 到 %d 之间", config.LogsMaxLines)
	}
	if config.LogsChunkSize <= 0 {
		return fmt.Errorf("logs_chunk_size 必须大于 0")
	}
	if _, err := tail.NewLossyDecoder(config.LogsEncoding); err != nil {
		return err
	}
	return nil
}

// ParseDuration 解析时长配置，无效或非正值时返回 fallback
func ParseDuration(value string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// SplitList 将逗号分隔的配置拆分为去空白后的列表
func SplitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

func boolPtr(value bool) *bool {
	return &value
}
