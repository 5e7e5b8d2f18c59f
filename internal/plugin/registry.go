// Package plugin keeps an ordered set of named content handlers. A handler
// declares which files it can serve; the registry answers "who handles this
// path" by asking handlers in registration order.
package plugin

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
)

const maxNameLength = 32

var namePattern = regexp.MustCompile(`^[0-9a-z_-]+$`)

// Plugin 是可注册的处理器最小接口。
type Plugin interface {
	Name() string
	Aliases() []string
	CanHandle(path string) bool
}

// Registry 按注册顺序保存插件，名称与别名共享同一命名空间。
type Registry[P Plugin] struct {
	mu      sync.RWMutex
	byName  map[string]P
	ordered []P
}

// NewRegistry returns an empty registry.
func NewRegistry[P Plugin]() *Registry[P] {
	return &Registry[P]{byName: make(map[string]P)}
}

// ValidateName 校验名称：1-32 个字符，仅允许 0-9、a-z、'-'、'_'。
func ValidateName(name string) error {
	if len(name) < 1 {
		return fmt.Errorf("plugin name must not be empty")
	}
	if len(name) > maxNameLength {
		return fmt.Errorf("plugin name %q must be %d characters or shorter", name, maxNameLength)
	}
	if !namePattern.MatchString(name) {
		return fmt.Errorf("plugin name %q can only contain '0-9', 'a-z', '-' and '_'", name)
	}
	return nil
}

// Register 校验名称与别名后加入注册表，任何冲突都会拒绝整个插件。
func (r *Registry[P]) Register(p P) error {
	names := append([]string{p.Name()}, p.Aliases()...)

	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if err := ValidateName(name); err != nil {
			return err
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("plugin name %q is declared twice", name)
		}
		seen[name] = struct{}{}
		if _, exists := r.byName[name]; exists {
			return fmt.Errorf("plugin name %q is already in use", name)
		}
	}
	for _, name := range names {
		r.byName[name] = p
	}
	r.ordered = append(r.ordered, p)
	return nil
}

// Get 按名称或别名查找插件。
func (r *Registry[P]) Get(name string) (P, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byName[strings.TrimSpace(name)]
	return p, ok
}

// Names 返回按注册顺序排列的主名称。
func (r *Registry[P]) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.ordered))
	for i, p := range r.ordered {
		names[i] = p.Name()
	}
	return names
}

// Match 返回第一个声明能处理 path 的插件。
func (r *Registry[P]) Match(path string) (P, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.ordered {
		if p.CanHandle(path) {
			return p, true
		}
	}
	var zero P
	return zero, false
}
