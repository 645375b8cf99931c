// 本文件用于运行时配置覆盖文件的读取
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v2"

	"sys-monitor/internal/models"
)

// runtimeConfig 仅包含允许热更新覆盖的字段，nil 表示不覆盖
type runtimeConfig struct {
	LogLevel          *string `yaml:"log_level"`
	CPUSampleInterval *string `yaml:"cpu_sample_interval"`
	LogsDefaultFile   *string `yaml:"logs_default_file"`
	LogsDefaultLines  *int    `yaml:"logs_default_lines"`
	LogsMaxLines      *int    `yaml:"logs_max_lines"`
	LogsAllowedDirs   *string `yaml:"logs_allowed_dirs"`
}

// RuntimeConfigPath 返回配置文件对应的运行时覆盖文件路径
func RuntimeConfigPath(configPath string) string {
	cleaned := strings.TrimSpace(configPath)
	if cleaned == "" {
		return ""
	}
	ext := filepath.Ext(cleaned)
	if ext == "" {
		return cleaned + ".runtime.yaml"
	}
	return strings.TrimSuffix(cleaned, ext) + ".runtime" + ext
}

func loadRuntimeConfig(configPath string) (*runtimeConfig, error) {
	path := RuntimeConfigPath(configPath)
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("读取运行时配置文件失败: %s: %w", path, err)
	}
	var cfg runtimeConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("解析运行时配置文件失败: %s: %w", path, err)
	}
	return &cfg, nil
}

func applyRuntimeConfig(cfg *models.Config, runtime *runtimeConfig) {
	if cfg == nil || runtime == nil {
		return
	}
	if runtime.LogLevel != nil {
		cfg.LogLevel = strings.ToLower(strings.TrimSpace(*runtime.LogLevel))
	}
	if runtime.CPUSampleInterval != nil {
		cfg.CPUSampleInterval = strings.TrimSpace(*runtime.CPUSampleInterval)
	}
	if runtime.LogsDefaultFile != nil {
		cfg.LogsDefaultFile = strings.TrimSpace(*runtime.LogsDefaultFile)
	}
	if runtime.LogsDefaultLines != nil {
		cfg.LogsDefaultLines = *runtime.LogsDefaultLines
	}
	if runtime.LogsMaxLines != nil {
		cfg.LogsMaxLines = *runtime.LogsMaxLines
	}
	if runtime.LogsAllowedDirs != nil {
		cfg.LogsAllowedDirs = strings.TrimSpace(*runtime.LogsAllowedDirs)
	}
}
