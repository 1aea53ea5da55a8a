package core

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func TestWatcher_FiltersAndDebounces(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir, 100*time.Millisecond, ".json")
	if err != nil {
		t.Fatalf("NewWatcher 失败: %v", err)
	}
	defer w.Stop()

	var calls int32
	got := make(chan string, 10)
	w.AddCallback(func(event fsnotify.Event) {
		atomic.AddInt32(&calls, 1)
		got <- filepath.Base(event.Name)
	})
	w.Start()

	target := filepath.Join(dir, "conversations.json")
	for i := 0; i < 3; i++ {
		if err := os.WriteFile(target, []byte("[]"), 0644); err != nil {
			t.Fatalf("写入失败: %v", err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatalf("写入失败: %v", err)
	}

	select {
	case name := <-got:
		if name != "conversations.json" {
			t.Errorf("期望回调 conversations.json, 实际得到 %s", name)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("等待回调超时")
	}

	// 等待可能的多余回调
	time.Sleep(300 * time.Millisecond)
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("连续写入应只回调 1 次, 实际 %d 次", n)
	}
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	w, err := NewWatcher(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("NewWatcher 失败: %v", err)
	}
	w.Start()
	if err := w.Stop(); err != nil {
		t.Fatalf("Stop 失败: %v", err)
	}
	if err := w.Stop(); err != nil {
		t.Errorf("重复 Stop 不应报错: %v", err)
	}
}

func TestWatcher_StaleTimerDoesNotDispatch(t *testing.T) {
	w, err := NewWatcher(t.TempDir(), 200*time.Millisecond)
	if err != nil {
		t.Fatalf("NewWatcher 失败: %v", err)
	}
	defer w.Stop()

	var calls int32
	w.AddCallback(func(event fsnotify.Event) { atomic.AddInt32(&calls, 1) })

	event := fsnotify.Event{Name: "conversations.json", Op: fsnotify.Write}
	w.schedule(event)
	w.mu.RLock()
	stale := w.pending[event.Name]
	w.mu.RUnlock()

	// 模拟旧定时器在被 Stop 之前已经触发、正在等锁的情况
	w.schedule(event)
	w.fire(event, stale)

	w.mu.RLock()
	current, ok := w.pending[event.Name]
	w.mu.RUnlock()
	if !ok || current == stale {
		t.Fatal("旧定时器不应删除新登记的事件")
	}

	time.Sleep(500 * time.Millisecond)
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("同一文件应只分发 1 次, 实际 %d 次", n)
	}
}
