package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"sys-monitor/internal/models"
)

var (
	mu           sync.Mutex
	activeLogger = logrus.New()
	logOutput    io.Closer
)

// InitLogger 初始化日志系统。
func InitLogger(config *models.Config) error {
	logToStd := config.LogToStd == nil || *config.LogToStd
	writer, closer, err := buildLogWriter(config.LogFile, logToStd)
	if err != nil {
		return err
	}

	l := logrus.New()
	l.SetOutput(writer)
	l.SetReportCaller(config.LogShowCaller)
	if strings.EqualFold(config.LogFormat, "json") {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	l.SetLevel(parseLevel(config.LogLevel))

	mu.Lock()
	prev := logOutput
	activeLogger = l
	logOutput = closer
	mu.Unlock()
	if prev != nil {
		_ = prev.Close()
	}
	return nil
}

func buildLogWriter(logFile string, logToStd bool) (io.Writer, io.Closer, error) {
	if logFile == "" {
		return os.Stdout, nil, nil
	}

	logDir := filepath.Dir(logFile)
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, nil, fmt.Errorf("创建日志目录失败: %w", err)
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return nil, nil, fmt.Errorf("打开日志文件失败: %w", err)
	}
	if !logToStd {
		return file, file, nil
	}
	return io.MultiWriter(os.Stdout, file), file, nil
}

// Close 关闭日志文件。
func Close() {
	mu.Lock()
	closer := logOutput
	logOutput = nil
	activeLogger.SetOutput(os.Stdout)
	mu.Unlock()
	if closer != nil {
		_ = closer.Close()
	}
}

// Info 记录信息日志。
func Info(format string, v ...interface{}) {
	GetLogger().Infof(format, v...)
}

// Error 记录错误日志。
func Error(format string, v ...interface{}) {
	GetLogger().Errorf(format, v...)
}

// Warn 记录警告日志。
func Warn(format string, v ...interface{}) {
	GetLogger().Warnf(format, v...)
}

// Debug 记录调试日志。
func Debug(format string, v ...interface{}) {
	GetLogger().Debugf(format, v...)
}

// WithFields 返回携带结构化字段的日志条目。
func WithFields(fields logrus.Fields) *logrus.Entry {
	return GetLogger().WithFields(fields)
}

// SetLogLevel 设置日志级别。
func SetLogLevel(level string) {
	GetLogger().SetLevel(parseLevel(level))
}

// GetLogger 获取 logger 实例。
func GetLogger() *logrus.Logger {
	mu.Lock()
	defer mu.Unlock()
	return activeLogger
}

func parseLevel(level string) logrus.Level {
	parsed, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return logrus.InfoLevel
	}
	return parsed
}
