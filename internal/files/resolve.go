package files

import (
	stderrors "errors"
	"path/filepath"

	"github.com/pkg/errors"
)

// DefaultMaxDepth 是索引文件递归解析的默认深度上限。
const DefaultMaxDepth = 16

// ErrIndexDepthExceeded 表示索引文件递归超过上限，通常由指回自身的索引名引起。
var ErrIndexDepthExceeded = stderrors.New("index resolution depth exceeded")

// Resolver 把请求路径解析为需要返回的具体文件，目录会按索引文件列表依次回退。
type Resolver struct {
	gate     *Gate
	indexes  []string
	maxDepth int
}

// NewResolver 构造解析器；indexes 的顺序即优先级，maxDepth <= 0 时使用默认值。
func NewResolver(gate *Gate, indexes []string, maxDepth int) *Resolver {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Resolver{
		gate:     gate,
		indexes:  append([]string(nil), indexes...),
		maxDepth: maxDepth,
	}
}

// Indexes returns a copy of the configured index names.
func (r *Resolver) Indexes() []string {
	return append([]string(nil), r.indexes...)
}

// Resolve 返回 p 对应的具体文件。不可读或目录中没有可用索引时 ok 为 false；
// 只有文件系统异常或超过深度上限才返回 error。
func (r *Resolver) Resolve(p string) (string, bool, error) {
	return r.resolve(filepath.Clean(p), 0)
}

func (r *Resolver) resolve(p string, depth int) (string, bool, error) {
	if depth > r.maxDepth {
		return "", false, errors.Wrapf(ErrIndexDepthExceeded, "resolve %s", p)
	}
	if !r.gate.CanRead(p) {
		return "", false, nil
	}
	info, err := r.gate.FS().Stat(p)
	if err != nil {
		return "", false, errors.Wrapf(err, "stat %s", p)
	}
	if !info.IsDir() {
		return p, true, nil
	}
	for _, name := range r.indexes {
		found, ok, err := r.resolve(filepath.Join(p, name), depth+1)
		if err != nil {
			return "", false, err
		}
		if ok {
			return found, true, nil
		}
	}
	return "", false, nil
}

// IsReadableDir reports whether p is a directory the gate allows reading.
func (g *Gate) IsReadableDir(p string) bool {
	if !g.CanRead(p) {
		return false
	}
	info, err := g.fs.Stat(p)
	return err == nil && info.IsDir()
}
