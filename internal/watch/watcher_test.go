package watch

import (
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

type countingPurger struct {
	calls atomic.Int32
	hit   chan struct{}
}

func newCountingPurger() *countingPurger {
	return &countingPurger{hit: make(chan struct{}, 64)}
}

func (p *countingPurger) Purge() int {
	p.calls.Add(1)
	select {
	case p.hit <- struct{}{}:
	default:
	}
	return 1
}

func (p *countingPurger) wait(t *testing.T) {
	t.Helper()
	select {
	case <-p.hit:
	case <-time.After(5 * time.Second):
		t.Fatalf("等待缓存失效超时")
	}
}

func (p *countingPurger) drain() {
	for {
		select {
		case <-p.hit:
		case <-time.After(200 * time.Millisecond):
			return
		}
	}
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestWatcherPurgesOnWrite(t *testing.T) {
	root := t.TempDir()
	purger := newCountingPurger()
	w, err := New(root, purger, quietLogger())
	if err != nil {
		t.Fatalf("New 返回错误: %v", err)
	}
	t.Cleanup(func() { _ = w.Close() })

	if err := os.WriteFile(filepath.Join(root, "a.txt"), []byte("a"), 0o644); err != nil {
		t.Fatalf("写入失败: %v", err)
	}
	purger.wait(t)
}

func TestWatcherFollowsNewDirectories(t *testing.T) {
	root := t.TempDir()
	purger := newCountingPurger()
	w, err := New(root, purger, quietLogger())
	if err != nil {
		t.Fatalf("New 返回错误: %v", err)
	}
	t.Cleanup(func() { _ = w.Close() })

	sub := filepath.Join(root, "sub")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatalf("创建目录失败: %v", err)
	}
	purger.wait(t)
	purger.drain()

	if err := os.WriteFile(filepath.Join(sub, "b.txt"), []byte("b"), 0o644); err != nil {
		t.Fatalf("写入失败: %v", err)
	}
	purger.wait(t)
}

func TestWatcherRejectsMissingRoot(t *testing.T) {
	if _, err := New(filepath.Join(t.TempDir(), "missing"), newCountingPurger(), quietLogger()); err == nil {
		t.Fatalf("不存在的目录应返回错误")
	}
}

func TestWatcherCloseIsIdempotent(t *testing.T) {
	w, err := New(t.TempDir(), newCountingPurger(), quietLogger())
	if err != nil {
		t.Fatalf("New 返回错误: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close 返回错误: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("重复 Close 不应报错: %v", err)
	}
}
