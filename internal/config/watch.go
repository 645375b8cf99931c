// 本文件用于配置热加载：监听配置文件与运行时覆盖文件的变化
package config

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"sys-monitor/internal/logger"
	"sys-monitor/internal/models"
)

const reloadDebounce = 200 * time.Millisecond

// Manager 持有当前生效的配置，Current 返回的对象只读
type Manager struct {
	path string

	mu       sync.RWMutex
	cfg      *models.Config
	handlers []func(oldCfg, newCfg *models.Config)
	observer func(err error)
}

// NewManager 创建配置管理器，path 为空表示不支持重载
func NewManager(path string, cfg *models.Config) *Manager {
	return &Manager{path: path, cfg: cfg}
}

// Current 返回当前配置
func (m *Manager) Current() *models.Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg
}

// OnChange 注册配置变更回调，回调在重载成功后按注册顺序执行
func (m *Manager) OnChange(fn func(oldCfg, newCfg *models.Config)) {
	if fn == nil {
		return
	}
	m.mu.Lock()
	m.handlers = append(m.handlers, fn)
	m.mu.Unlock()
}

// ObserveReloads 注册重载结果观察者，每次自动重载后调用
func (m *Manager) ObserveReloads(fn func(err error)) {
	m.mu.Lock()
	m.observer = fn
	m.mu.Unlock()
}

// Reload 重新读取配置，失败时保留原配置
func (m *Manager) Reload() error {
	if m.path == "" {
		return nil
	}
	cfg, err := LoadConfig(m.path)
	if err != nil {
		return err
	}
	m.mu.Lock()
	oldCfg := m.cfg
	m.cfg = cfg
	handlers := append([]func(oldCfg, newCfg *models.Config){}, m.handlers...)
	m.mu.Unlock()

	for _, fn := range handlers {
		fn(oldCfg, cfg)
	}
	return nil
}

// Watch 监听配置目录，直到 ctx 结束
// 监听目录而非文件本身，编辑器通过重命名替换文件时仍能收到事件
func (m *Manager) Watch(ctx context.Context) error {
	if m.path == "" {
		<-ctx.Done()
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	configPath, err := filepath.Abs(m.path)
	if err != nil {
		return err
	}
	targets := map[string]struct{}{
		configPath:                    {},
		RuntimeConfigPath(configPath): {},
	}
	if err := watcher.Add(filepath.Dir(configPath)); err != nil {
		return err
	}
	logger.Info("配置热加载已启用: %s", configPath)

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if _, hit := targets[filepath.Clean(event.Name)]; !hit {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			// 连续写入合并为一次重载
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(reloadDebounce, m.reloadAndLog)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("配置监听异常: %v", err)
		}
	}
}

func (m *Manager) reloadAndLog() {
	err := m.Reload()
	m.mu.RLock()
	observer := m.observer
	m.mu.RUnlock()
	if observer != nil {
		observer(err)
	}
	if err != nil {
		logger.Error("配置重载失败，继续使用原配置: %v", err)
		return
	}
	logger.Info("配置已重载: %s", m.path)
}
