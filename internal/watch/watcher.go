// Package watch drops cached responses whenever something under the served
// root changes, so edits show up without waiting for the cache lifetime.
package watch

import (
	"io/fs"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// Purger 是被失效的缓存；cache.Store 满足该接口。
type Purger interface {
	Purge() int
}

// Watcher 递归监听 root 下的所有目录，新建的子目录会被自动加入。
type Watcher struct {
	root   string
	fsw    *fsnotify.Watcher
	purger Purger
	logger *logrus.Logger

	done chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

// New 开始监听 root；调用方负责 Close。
func New(root string, purger Purger, logger *logrus.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		root:   root,
		fsw:    fsw,
		purger: purger,
		logger: logger,
		done:   make(chan struct{}),
	}
	if err := w.addTree(root); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	w.wg.Add(1)
	go w.loop()
	return w, nil
}

// addTree 把 dir 及其子目录加入监听；遍历中无法访问的子目录被跳过。
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == dir {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if addErr := w.fsw.Add(p); addErr != nil {
			if p == dir {
				return addErr
			}
			w.logger.WithError(addErr).WithField("path", p).Warn("watch_add_failed")
		}
		return nil
	})
}

func (w *Watcher) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.WithError(err).WithField("action", "watch").Warn("watch_error")
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if event.Op == fsnotify.Chmod {
		return
	}
	if event.Op.Has(fsnotify.Create) {
		// 新建的子目录需要加入监听；已被删除时忽略。
		_ = w.addTree(event.Name)
	}
	dropped := w.purger.Purge()
	w.logger.WithFields(logrus.Fields{
		"action":  "watch",
		"path":    event.Name,
		"op":      event.Op.String(),
		"dropped": dropped,
	}).Debug("cache_purged")
}

// Close 停止监听并等待后台 goroutine 退出，可重复调用。
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.fsw.Close()
		w.wg.Wait()
	})
	return err
}
