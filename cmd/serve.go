package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"sys-monitor/internal/api"
	"sys-monitor/internal/config"
	"sys-monitor/internal/logger"
	"sys-monitor/internal/metrics"
	"sys-monitor/internal/models"
	"sys-monitor/internal/sysinfo"
	"sys-monitor/internal/tail"
)

const shutdownTimeout = 5 * time.Second

func runServe(cmd *cobra.Command, opts *rootOptions) error {
	cfg, path, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}
	if addr := strings.TrimSpace(opts.addr); addr != "" {
		cfg.APIBind = addr
	}

	if err := logger.InitLogger(cfg); err != nil {
		return err
	}
	defer logger.Close()

	if path == "" {
		logger.Warn("未找到配置文件 %s，使用默认配置", opts.configPath)
	}
	logConfig(cfg)

	reader, err := newTailReader(cfg)
	if err != nil {
		logger.Error("创建日志读取器失败: %v", err)
		return err
	}
	collector := metrics.NewCollector()
	reporter := sysinfo.NewReporter(sysinfo.NewCollector(), config.ParseDuration(cfg.CPUSampleInterval, 0))
	manager := config.NewManager(path, cfg)

	apiServer := api.NewServer(api.ServerConfig{
		Addr:         cfg.APIBind,
		ReadTimeout:  config.ParseDuration(cfg.APIReadTimeout, 5*time.Second),
		WriteTimeout: config.ParseDuration(cfg.APIWriteTimeout, 15*time.Second),
		CORSOrigins:  cfg.APICORSOrigins,
	}, manager, reporter, reader, collector)

	manager.ObserveReloads(collector.ObserveConfigReload)
	manager.OnChange(func(oldCfg, newCfg *models.Config) {
		if oldCfg.LogLevel != newCfg.LogLevel {
			logger.SetLogLevel(newCfg.LogLevel)
			logger.Info("日志级别更新为 %s", newCfg.LogLevel)
		}
		reporter.SetSampleInterval(config.ParseDuration(newCfg.CPUSampleInterval, 0))
		if oldCfg.LogsChunkSize != newCfg.LogsChunkSize || oldCfg.LogsEncoding != newCfg.LogsEncoding {
			next, err := newTailReader(newCfg)
			if err != nil {
				logger.Error("重建日志读取器失败: %v", err)
				return
			}
			apiServer.SetTailReader(next)
		}
		if oldCfg.APIBind != newCfg.APIBind || oldCfg.APICORSOrigins != newCfg.APICORSOrigins {
			logger.Warn("api_bind 与 api_cors_origins 需重启后生效")
		}
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := manager.Watch(ctx); err != nil {
			logger.Warn("配置热加载不可用: %v", err)
		}
	}()
	apiServer.Start()

	<-ctx.Done()
	logger.Info("收到退出信号，正在关闭服务...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("关闭 API 服务失败: %v", err)
	}
	logger.Info("程序已退出")
	return nil
}

func newTailReader(cfg *models.Config) (*tail.Reader, error) {
	return tail.NewReader(tail.Options{
		ChunkSize: cfg.LogsChunkSize,
		Encoding:  cfg.LogsEncoding,
	})
}

func logConfig(cfg *models.Config) {
	logger.Info("配置加载成功")
	logger.Info("API 监听地址: %s", cfg.APIBind)
	if strings.TrimSpace(cfg.APICORSOrigins) != "" {
		logger.Info("CORS 允许来源: %s", cfg.APICORSOrigins)
	}
	logger.Info("CPU 采样间隔: %s", cfg.CPUSampleInterval)
	logger.Info("默认日志文件: %s", cfg.LogsDefaultFile)
	logger.Info("日志行数: 默认 %d，上限 %d", cfg.LogsDefaultLines, cfg.LogsMaxLines)
	logger.Info("日志编码: %s", cfg.LogsEncoding)
	if strings.TrimSpace(cfg.LogsAllowedDirs) == "" {
		logger.Warn("logs_allowed_dirs 未配置，允许读取任意文件")
	} else {
		logger.Info("允许读取的日志目录: %s", cfg.LogsAllowedDirs)
	}
	logToStd := cfg.LogToStd == nil || *cfg.LogToStd
	logger.Info("日志级别: %s", cfg.LogLevel)
	if cfg.LogFile != "" {
		logger.Info("日志文件: %s", cfg.LogFile)
	}
	logger.Info("日志输出到标准输出: %v", logToStd)
}
