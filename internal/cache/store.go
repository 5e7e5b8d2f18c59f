package cache

import (
	"sync"
	"time"

	"github.com/otg-serve/otg-serve/internal/response"
)

// DefaultSweepInterval 是后台清理的默认周期。
const DefaultSweepInterval = time.Second

// Options 控制缓存行为。Now 为空时使用 time.Now，测试可注入假时钟。
type Options struct {
	Enabled       bool
	Lifetime      time.Duration
	SweepInterval time.Duration
	Now           func() time.Time
}

// Entry 表示一条缓存记录。
type Entry struct {
	Key       string
	Payload   response.Response
	ExpiresAt time.Time
}

func (e Entry) expired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}

// Store 是并发安全的响应缓存。禁用时 Save 为空操作、Lookup 永远未命中，
// 调用方无需区分。
type Store struct {
	enabled  bool
	lifetime time.Duration
	now      func() time.Time

	mu      sync.Mutex
	entries map[string]Entry

	stopCh chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
}

// NewStore 构建缓存；启用且 SweepInterval > 0 时启动后台清理，需调用 Close 停止。
func NewStore(opts Options) *Store {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	s := &Store{
		enabled:  opts.Enabled && opts.Lifetime > 0,
		lifetime: opts.Lifetime,
		now:      now,
		entries:  make(map[string]Entry),
		stopCh:   make(chan struct{}),
	}
	if s.enabled && opts.SweepInterval > 0 {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.sweepLoop(opts.SweepInterval)
		}()
	}
	return s
}

// Enabled reports whether the store keeps anything at all.
func (s *Store) Enabled() bool {
	return s.enabled
}

// Save 覆盖 key 对应的条目，并把过期时间重置为 now + lifetime。
func (s *Store) Save(key string, resp response.Response) {
	if !s.enabled {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = Entry{
		Key:       key,
		Payload:   resp,
		ExpiresAt: s.now().Add(s.lifetime),
	}
}

// Lookup 返回未过期的条目。命中时会重新保存以延长寿命（滑动过期），
// 持续被访问的条目因此不会过期，这是有意为之的“热文件常驻”行为。
func (s *Store) Lookup(key string) (response.Response, bool) {
	if !s.enabled {
		return response.Response{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		return response.Response{}, false
	}
	now := s.now()
	if entry.expired(now) {
		delete(s.entries, key)
		return response.Response{}, false
	}
	entry.ExpiresAt = now.Add(s.lifetime)
	s.entries[key] = entry
	return entry.Payload, true
}

// Sweep 删除所有 expiresAt <= now 的条目，返回删除数量。
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for key, entry := range s.entries {
		if entry.expired(now) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}

// Purge 清空全部条目，文件变更时由 watcher 调用。
func (s *Store) Purge() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.entries)
	s.entries = make(map[string]Entry)
	return n
}

// Len returns the number of stored entries, expired ones included until swept.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Close 停止后台清理，可重复调用。
func (s *Store) Close() {
	s.once.Do(func() {
		close(s.stopCh)
	})
	s.wg.Wait()
}

func (s *Store) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}
