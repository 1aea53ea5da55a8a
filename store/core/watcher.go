package core

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// DefaultDebounce 同一文件连续写入事件的合并窗口
const DefaultDebounce = 500 * time.Millisecond

// Watcher 监听目录中的文件变化。
// 同一路径在 debounce 窗口内的多次事件只回调一次（以最后一次为准），
// 大文件复制过程中的连续 Write 事件不会触发多次处理。
type Watcher struct {
	watcher   *fsnotify.Watcher
	base      string
	suffixes  []string
	debounce  time.Duration
	callbacks []func(event fsnotify.Event)
	pending   map[string]*pendingEvent
	mu        sync.RWMutex
	done      chan struct{}
	closeOnce sync.Once
}

type pendingEvent struct {
	timer *time.Timer
}

// NewWatcher 监听 basePath；suffixes 为空时不过滤文件类型。
func NewWatcher(basePath string, debounce time.Duration, suffixes ...string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("创建 watcher 失败: %w", err)
	}

	if err := w.Add(basePath); err != nil {
		w.Close()
		return nil, fmt.Errorf("监控路径 %s 失败: %w", basePath, err)
	}

	lower := make([]string, len(suffixes))
	for i, s := range suffixes {
		lower[i] = strings.ToLower(s)
	}

	return &Watcher{
		watcher:   w,
		base:      basePath,
		suffixes:  lower,
		debounce:  debounce,
		callbacks: make([]func(event fsnotify.Event), 0),
		pending:   make(map[string]*pendingEvent),
		done:      make(chan struct{}),
	}, nil
}

// Base 返回被监听的目录。
func (w *Watcher) Base() string { return w.base }

func (w *Watcher) Start() {
	go func() {
		for {
			select {
			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				if w.accept(event) {
					w.schedule(event)
				}
			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				log.Error().Err(err).Msg("Watcher 错误")
			case <-w.done:
				return
			}
		}
	}()
}

func (w *Watcher) Stop() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)

		w.mu.Lock()
		for path, p := range w.pending {
			p.timer.Stop()
			delete(w.pending, path)
		}
		w.mu.Unlock()

		err = w.watcher.Close()
	})
	return err
}

func (w *Watcher) AddCallback(cb func(event fsnotify.Event)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, cb)
}

// accept 只处理创建、写入、改名进入的事件，并按后缀过滤
func (w *Watcher) accept(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return false
	}
	if len(w.suffixes) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(event.Name))
	for _, s := range w.suffixes {
		if ext == s {
			return true
		}
	}
	return false
}

func (w *Watcher) schedule(event fsnotify.Event) {
	if w.debounce <= 0 {
		w.dispatch(event)
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if old, ok := w.pending[event.Name]; ok {
		old.timer.Stop()
	}
	p := &pendingEvent{}
	p.timer = time.AfterFunc(w.debounce, func() { w.fire(event, p) })
	w.pending[event.Name] = p
}

// fire 只有当 p 仍是该路径当前登记的事件时才分发。
// 旧定时器可能在 Stop 之前已经触发，此时它既不能删掉新登记的事件，也不能重复分发。
func (w *Watcher) fire(event fsnotify.Event, p *pendingEvent) {
	w.mu.Lock()
	if w.pending[event.Name] != p {
		w.mu.Unlock()
		return
	}
	delete(w.pending, event.Name)
	w.mu.Unlock()

	select {
	case <-w.done:
		return
	default:
	}
	w.dispatch(event)
}

func (w *Watcher) dispatch(event fsnotify.Event) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	for _, cb := range w.callbacks {
		// 回调异步执行，慢回调不阻塞事件循环
		go cb(event)
	}
}
