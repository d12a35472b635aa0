// Package watch 监视存档文件，文件变化时重新载入工程。
package watch

import (
	"accircuit"
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce 默认防抖间隔
const DefaultDebounce = 200 * time.Millisecond

// Options 监视参数
type Options struct {
	Debounce time.Duration              // 连续写入合并为一次载入
	OnReload func(p *accircuit.Project) // 载入成功
	OnError  func(err error)            // 载入失败，监视继续
	Logger   *zap.Logger
}

// Watcher 存档文件监视器
// 监视所在目录，编辑器以改名方式保存时也能收到事件
type Watcher struct {
	mu       sync.Mutex
	path     string
	watcher  *fsnotify.Watcher
	opts     Options
	pending  bool
	lastSeen time.Time
	reloads  int
	stopCh   chan struct{}
	doneCh   chan struct{}
	running  bool
}

// New 创建监视器
func New(path string, opts Options) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Watcher{
		path:    abs,
		watcher: w,
		opts:    opts,
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}, nil
}

// Start 开始监视，不阻塞
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		return err
	}
	w.opts.Logger.Info("开始监视存档", zap.String("path", w.path))
	go w.run(ctx)
	return nil
}

// Stop 停止监视并等待退出
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		w.watcher.Close()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh
	if err := w.watcher.Close(); err != nil {
		w.opts.Logger.Warn("关闭监视失败", zap.Error(err))
	}
	w.opts.Logger.Info("停止监视存档", zap.String("path", w.path))
}

// Reloads 成功载入次数
func (w *Watcher) Reloads() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.reloads
}

// Reload 立即载入一次
func (w *Watcher) Reload() (*accircuit.Project, error) {
	p, err := accircuit.LoadFile(w.path)
	if err != nil {
		w.opts.Logger.Warn("载入存档失败", zap.String("path", w.path), zap.Error(err))
		if w.opts.OnError != nil {
			w.opts.OnError(err)
		}
		return nil, err
	}
	w.mu.Lock()
	w.reloads++
	w.mu.Unlock()
	w.opts.Logger.Debug("存档已载入",
		zap.String("path", w.path),
		zap.Int("components", len(p.Components())),
		zap.Int("circuits", len(p.Circuits())))
	if w.opts.OnReload != nil {
		w.opts.OnReload(p)
	}
	return p, nil
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	tick := w.opts.Debounce / 4
	if tick < time.Millisecond {
		tick = time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.opts.Logger.Warn("监视错误", zap.Error(err))
			if w.opts.OnError != nil {
				w.opts.OnError(err)
			}
		case <-ticker.C:
			w.flush()
		}
	}
}

// handleEvent 只关心目标文件的写入与创建
func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.path {
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}
	w.opts.Logger.Debug("存档变化", zap.String("op", event.Op.String()))
	w.mu.Lock()
	w.pending = true
	w.lastSeen = time.Now()
	w.mu.Unlock()
}

// flush 最后一次事件之后静默超过防抖间隔才载入
func (w *Watcher) flush() {
	w.mu.Lock()
	ready := w.pending && time.Since(w.lastSeen) >= w.opts.Debounce
	if ready {
		w.pending = false
	}
	w.mu.Unlock()
	if ready {
		w.Reload()
	}
}
