// 本文件用于提供磁盘 CPU 内存等系统资源查询接口
package api

import (
	"errors"
	"io/fs"
	"net/http"
	"strings"
	"syscall"

	"sys-monitor/internal/logger"
)

func (h *handler) storage(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimSpace(r.URL.Query().Get("path"))
	if path == "" {
		path = "/"
	}
	info, err := h.reporter.Storage(r.Context(), path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR) {
			writeError(w, http.StatusNotFound, "path not found")
			return
		}
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (h *handler) partitions(w http.ResponseWriter, r *http.Request) {
	parts, err := h.reporter.Partitions(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, parts)
}

func (h *handler) system(w http.ResponseWriter, r *http.Request) {
	info, err := h.reporter.System(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (h *handler) cpu(w http.ResponseWriter, r *http.Request) {
	info, err := h.reporter.CPU(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (h *handler) memory(w http.ResponseWriter, r *http.Request) {
	info, err := h.reporter.Memory(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) metricsText(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(h.metrics.RenderPrometheus()))
}

func (h *handler) fail(w http.ResponseWriter, err error) {
	logger.Error("读取系统信息失败: %v", err)
	writeError(w, http.StatusInternalServerError, "failed to read system info")
}
