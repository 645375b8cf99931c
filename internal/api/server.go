package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"

	"sys-monitor/internal/logger"
	"sys-monitor/internal/metrics"
	"sys-monitor/internal/models"
	"sys-monitor/internal/sysinfo"
	"sys-monitor/internal/tail"
)

// ServerConfig 描述 HTTP 服务的监听与跨域参数
type ServerConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CORSOrigins  string // 逗号分隔，为空表示允许任意来源
}

// ConfigSource 提供当前生效的配置快照
type ConfigSource interface {
	Current() *models.Config
}

// Reporter 提供对外输出的系统资源读数
type Reporter interface {
	Storage(ctx context.Context, path string) (sysinfo.StorageInfo, error)
	Partitions(ctx context.Context) ([]sysinfo.PartitionInfo, error)
	System(ctx context.Context) (sysinfo.SystemInfo, error)
	CPU(ctx context.Context) (sysinfo.CPUInfo, error)
	Memory(ctx context.Context) (sysinfo.MemoryInfo, error)
}

// Server wraps the HTTP API server.
type Server struct {
	httpServer *http.Server
	handler    *handler
}

type handler struct {
	cfg      ConfigSource
	reporter Reporter
	reader   atomic.Pointer[tail.Reader]
	metrics  *metrics.Collector
}

// NewServer 构建 HTTP 服务，路由与中间件均在此处装配
func NewServer(cfg ServerConfig, source ConfigSource, reporter Reporter, reader *tail.Reader, collector *metrics.Collector) *Server {
	h := &handler{cfg: source, reporter: reporter, metrics: collector}
	h.reader.Store(reader)

	router := mux.NewRouter()
	router.Use(withRecovery)
	router.Use(withRequestLog)
	router.Use(withMetrics(collector))
	router.HandleFunc("/logs", h.logs).Methods(http.MethodGet)
	router.HandleFunc("/storage", h.storage).Methods(http.MethodGet)
	router.HandleFunc("/storage/partitions", h.partitions).Methods(http.MethodGet)
	router.HandleFunc("/system", h.system).Methods(http.MethodGet)
	router.HandleFunc("/cpu", h.cpu).Methods(http.MethodGet)
	router.HandleFunc("/memory", h.memory).Methods(http.MethodGet)
	router.HandleFunc("/health", h.health).Methods(http.MethodGet)
	router.HandleFunc("/metrics", h.metricsText).Methods(http.MethodGet)
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      withCORS(cfg.CORSOrigins, router),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return &Server{httpServer: srv, handler: h}
}

// Handler 返回装配好的根处理器
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// SetTailReader 替换日志读取器，用于配置热更新
func (s *Server) SetTailReader(reader *tail.Reader) {
	if reader == nil {
		return
	}
	s.handler.reader.Store(reader)
}

// Start boots the API server asynchronously.
func (s *Server) Start() {
	go func() {
		logger.Info("API 服务监听 %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("API 服务异常退出: %v", err)
		}
	}()
}

// Shutdown gracefully stops the API server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
