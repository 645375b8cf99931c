package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sys-monitor/internal/models"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// 覆盖配置加载流程
func TestLoadConfig(t *testing.T) {
	configPath := writeTempConfig(t, `
api_bind: ":9000"
api_cors_origins: "http://localhost:5173"
api_read_timeout: "3s"
api_write_timeout: "20s"
cpu_sample_interval: "250ms"
logs_default_file: "/var/log/syslog"
logs_default_lines: 20
logs_max_lines: 200
logs_chunk_size: 4096
logs_encoding: "gbk"
logs_allowed_dirs: "/var/log,/tmp"
log_level: "debug"
log_file: "/var/log/sys-monitor.log"
log_format: "json"
log_to_std: false
log_show_caller: true
`)

	cfg, err := LoadConfig(configPath)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.APIBind)
	assert.Equal(t, "http://localhost:5173", cfg.APICORSOrigins)
	assert.Equal(t, "3s", cfg.APIReadTimeout)
	assert.Equal(t, "20s", cfg.APIWriteTimeout)
	assert.Equal(t, "250ms", cfg.CPUSampleInterval)
	assert.Equal(t, "/var/log/syslog", cfg.LogsDefaultFile)
	assert.Equal(t, 20, cfg.LogsDefaultLines)
	assert.Equal(t, 200, cfg.LogsMaxLines)
	assert.Equal(t, 4096, cfg.LogsChunkSize)
	assert.Equal(t, "gbk", cfg.LogsEncoding)
	assert.Equal(t, "/var/log,/tmp", cfg.LogsAllowedDirs)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "/var/log/sys-monitor.log", cfg.LogFile)
	assert.Equal(t, "json", cfg.LogFormat)
	require.NotNil(t, cfg.LogToStd)
	assert.False(t, *cfg.LogToStd)
	assert.True(t, cfg.LogShowCaller)
}

func TestLoadConfigWithDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeTempConfig(t, "log_level: info\n"))
	require.NoError(t, err)

	assert.Equal(t, ":8000", cfg.APIBind)
	assert.Equal(t, "5s", cfg.APIReadTimeout)
	assert.Equal(t, "15s", cfg.APIWriteTimeout)
	assert.Equal(t, "500ms", cfg.CPUSampleInterval)
	assert.Equal(t, "/var/log/README", cfg.LogsDefaultFile)
	assert.Equal(t, 50, cfg.LogsDefaultLines)
	assert.Equal(t, 500, cfg.LogsMaxLines)
	assert.Equal(t, 8192, cfg.LogsChunkSize)
	assert.Equal(t, "utf-8", cfg.LogsEncoding)
	assert.Equal(t, "text", cfg.LogFormat)
	require.NotNil(t, cfg.LogToStd)
	assert.True(t, *cfg.LogToStd)
}

func TestLoadConfigDefaultLinesFollowsSmallMax(t *testing.T) {
	cfg, err := LoadConfig(writeTempConfig(t, "logs_max_lines: 10\n"))
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.LogsDefaultLines)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv(envAPIBind, "127.0.0.1:9100")
	t.Setenv(envLogLevel, "WARN")
	t.Setenv(envLogsDefaultFile, "/var/log/messages")
	t.Setenv(envLogsAllowedDirs, "/var/log")

	cfg, err := LoadConfig(writeTempConfig(t, `
api_bind: ":9000"
log_level: "debug"
logs_default_file: "/var/log/syslog"
`))
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9100", cfg.APIBind)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "/var/log/messages", cfg.LogsDefaultFile)
	assert.Equal(t, "/var/log", cfg.LogsAllowedDirs)
}

func TestLoadConfigRuntimeOverlay(t *testing.T) {
	configPath := writeTempConfig(t, `
log_level: "info"
logs_default_lines: 50
logs_default_file: "/var/log/syslog"
`)
	runtimePath := RuntimeConfigPath(configPath)
	assert.Equal(t, filepath.Join(filepath.Dir(configPath), "config.runtime.yaml"), runtimePath)
	require.NoError(t, os.WriteFile(runtimePath, []byte("log_level: debug\nlogs_default_lines: 80\n"), 0o644))

	cfg, err := LoadConfig(configPath)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 80, cfg.LogsDefaultLines)
	assert.Equal(t, "/var/log/syslog", cfg.LogsDefaultFile)
}

func TestValidateConfig(t *testing.T) {
	valid := func() *models.Config {
		cfg, err := Default()
		require.NoError(t, err)
		copied := *cfg
		return &copied
	}

	t.Run("valid config", func(t *testing.T) {
		assert.NoError(t, ValidateConfig(valid()))
	})

	tests := []struct {
		name   string
		mutate func(*models.Config)
	}{
		{name: "invalid log level", mutate: func(c *models.Config) { c.LogLevel = "infos" }},
		{name: "invalid log format", mutate: func(c *models.Config) { c.LogFormat = "xml" }},
		{name: "empty api bind", mutate: func(c *models.Config) { c.APIBind = " " }},
		{name: "bad read timeout", mutate: func(c *models.Config) { c.APIReadTimeout = "soon" }},
		{name: "zero write timeout", mutate: func(c *models.Config) { c.APIWriteTimeout = "0s" }},
		{name: "negative cpu interval", mutate: func(c *models.Config) { c.CPUSampleInterval = "-1s" }},
		{name: "default lines above max", mutate: func(c *models.Config) { c.LogsDefaultLines = c.LogsMaxLines + 1 }},
		{name: "zero default lines", mutate: func(c *models.Config) { c.LogsDefaultLines = 0 }},
		{name: "zero chunk size", mutate: func(c *models.Config) { c.LogsChunkSize = 0 }},
		{name: "unknown encoding", mutate: func(c *models.Config) { c.LogsEncoding = "klingon" }},
		{name: "utf-16 encoding", mutate: func(c *models.Config) { c.LogsEncoding = "utf-16le" }},
		{name: "stateful encoding", mutate: func(c *models.Config) { c.LogsEncoding = "iso-2022-jp" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.Error(t, ValidateConfig(cfg))
		})
	}
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"/var/log", "/tmp"}, SplitList(" /var/log, ,/tmp "))
	assert.Empty(t, SplitList(""))
}

func TestParseDuration(t *testing.T) {
	assert.Equal(t, 3*time.Second, ParseDuration("3s", time.Second))
	assert.Equal(t, time.Second, ParseDuration("", time.Second))
	assert.Equal(t, time.Second, ParseDuration("-2s", time.Second))
}

func TestManagerReloadKeepsOldConfigOnError(t *testing.T) {
	configPath := writeTempConfig(t, "logs_default_lines: 40\n")
	cfg, err := LoadConfig(configPath)
	require.NoError(t, err)

	m := NewManager(configPath, cfg)
	var seen []int
	m.OnChange(func(oldCfg, newCfg *models.Config) {
		seen = append(seen, oldCfg.LogsDefaultLines, newCfg.LogsDefaultLines)
	})

	require.NoError(t, os.WriteFile(configPath, []byte("logs_default_lines: 60\n"), 0o644))
	require.NoError(t, m.Reload())
	assert.Equal(t, 60, m.Current().LogsDefaultLines)
	assert.Equal(t, []int{40, 60}, seen)

	require.NoError(t, os.WriteFile(configPath, []byte("log_level: loud\n"), 0o644))
	assert.Error(t, m.Reload())
	assert.Equal(t, 60, m.Current().LogsDefaultLines)
}

func TestManagerWatchReloadsOnWrite(t *testing.T) {
	configPath := writeTempConfig(t, "logs_default_lines: 40\n")
	cfg, err := LoadConfig(configPath)
	require.NoError(t, err)

	m := NewManager(configPath, cfg)
	changed := make(chan int, 4)
	m.OnChange(func(_, newCfg *models.Config) {
		changed <- newCfg.LogsDefaultLines
	})
	results := make(chan error, 4)
	m.ObserveReloads(func(err error) { results <- err })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Watch(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	// 等待 watcher 注册完成
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(configPath, []byte("logs_default_lines: 70\n"), 0o644))

	select {
	case lines := <-changed:
		assert.Equal(t, 70, lines)
	case <-time.After(5 * time.Second):
		t.Fatal("config reload not triggered")
	}
	select {
	case err := <-results:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("reload observer not called")
	}
}
