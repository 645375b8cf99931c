package api

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"sys-monitor/internal/config"
	"sys-monitor/internal/logger"
	"sys-monitor/internal/models"
	"sys-monitor/internal/pathutil"
	"sys-monitor/internal/tail"
)

const (
	fallbackLogFile  = "/var/log/README"
	fallbackLines    = 50
	fallbackMaxLines = 500
)

// tail 结果在指标中的分类
const (
	outcomeOK        = "ok"
	outcomeNotFound  = "not_found"
	outcomeForbidden = "permission_denied"
	outcomeInvalid   = "invalid"
	outcomeError     = "error"
)

func (h *handler) config() *models.Config {
	if h.cfg == nil {
		return nil
	}
	return h.cfg.Current()
}

func (h *handler) logs(w http.ResponseWriter, r *http.Request) {
	cfg := h.config()
	defaultFile, defaultLines, maxLines := fallbackLogFile, fallbackLines, fallbackMaxLines
	var allowedDirs []string
	if cfg != nil {
		if strings.TrimSpace(cfg.LogsDefaultFile) != "" {
			defaultFile = cfg.LogsDefaultFile
		}
		if cfg.LogsMaxLines > 0 {
			maxLines = cfg.LogsMaxLines
		}
		if cfg.LogsDefaultLines > 0 {
			defaultLines = cfg.LogsDefaultLines
		}
		allowedDirs = config.SplitList(cfg.LogsAllowedDirs)
	}

	query := r.URL.Query()
	file := strings.TrimSpace(query.Get("file"))
	if file == "" {
		file = defaultFile
	}
	lines := defaultLines
	if raw, ok := query["lines"]; ok {
		n, err := strconv.Atoi(strings.TrimSpace(firstValue(raw)))
		if err != nil || n < 1 || n > maxLines {
			h.metrics.ObserveTail(outcomeInvalid, 0, 0, 0)
			writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("lines must be an integer between 1 and %d", maxLines))
			return
		}
		lines = n
	}

	target, err := logTarget(allowedDirs, file)
	if err != nil {
		logger.Warn("拒绝读取允许目录之外的文件: %s: %v", file, err)
		h.metrics.ObserveTail(outcomeForbidden, 0, 0, 0)
		writeError(w, http.StatusForbidden, "Permission denied")
		return
	}
	if status, msg := checkLogFile(target); status != http.StatusOK {
		h.metrics.ObserveTail(outcomeFor(status), 0, 0, 0)
		writeError(w, status, msg)
		return
	}

	reader := h.reader.Load()
	if reader == nil {
		writeError(w, http.StatusInternalServerError, "tail reader not ready")
		return
	}
	start := time.Now()
	result, err := reader.Do(tail.Request{Path: target, Lines: lines})
	elapsed := time.Since(start)
	if err != nil {
		status := tailStatus(err)
		h.metrics.ObserveTail(outcomeFor(status), 0, result.BytesScanned, elapsed)
		if status == http.StatusInternalServerError {
			logger.Error("读取日志尾部失败: %v", err)
			writeError(w, status, "failed to read log file")
			return
		}
		writeError(w, status, statusMessage(status))
		return
	}
	h.metrics.ObserveTail(outcomeOK, len(result.Lines), result.BytesScanned, elapsed)
	writeJSON(w, http.StatusOK, result)
}

// logTarget 返回实际读取的路径；配置了允许目录时先解析符号链接，
// 校验与读取使用同一个解析结果
func logTarget(allowedDirs []string, file string) (string, error) {
	cleaned := filepath.Clean(file)
	if len(allowedDirs) == 0 {
		return cleaned, nil
	}
	resolved, err := pathutil.ResolvePath(cleaned)
	if err != nil {
		return "", fmt.Errorf("%w: %v", pathutil.ErrOutsideBaseDir, err)
	}
	if err := pathutil.WithinAny(allowedDirs, resolved); err != nil {
		return "", err
	}
	return resolved, nil
}

// checkLogFile 确认路径存在且为普通文件
func checkLogFile(path string) (int, string) {
	info, err := os.Stat(path)
	if err != nil {
		switch {
		case errors.Is(err, fs.ErrNotExist), errors.Is(err, syscall.ENOTDIR):
			return http.StatusNotFound, statusMessage(http.StatusNotFound)
		case errors.Is(err, fs.ErrPermission):
			return http.StatusForbidden, statusMessage(http.StatusForbidden)
		default:
			return http.StatusNotFound, statusMessage(http.StatusNotFound)
		}
	}
	if !info.Mode().IsRegular() {
		return http.StatusNotFound, statusMessage(http.StatusNotFound)
	}
	return http.StatusOK, ""
}

// tailStatus 将读取错误映射为 HTTP 状态码
func tailStatus(err error) int {
	switch {
	case errors.Is(err, tail.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, tail.ErrPermissionDenied):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func statusMessage(status int) string {
	switch status {
	case http.StatusNotFound:
		return "Log file not found"
	case http.StatusForbidden:
		return "Permission denied"
	default:
		return http.StatusText(status)
	}
}

func outcomeFor(status int) string {
	switch status {
	case http.StatusOK:
		return outcomeOK
	case http.StatusNotFound:
		return outcomeNotFound
	case http.StatusForbidden:
		return outcomeForbidden
	default:
		return outcomeError
	}
}

func firstValue(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
