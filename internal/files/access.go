package files

import (
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// ownerRead 是判断可读所需的权限位。
const ownerRead = 0o400

// Gate 判断路径是否“被授权且可读”：路径必须位于允许的根目录之内、存在，
// 并带有属主读权限位。Gate 只做查询，不修改任何状态。
type Gate struct {
	fs      afero.Fs
	allowed []string
}

// NewGate 构造只允许访问 allowed 路径（及其子路径）的读权限检查器。
func NewGate(fs afero.Fs, allowed ...string) *Gate {
	roots := make([]string, 0, len(allowed))
	for _, root := range allowed {
		if root == "" {
			continue
		}
		roots = append(roots, filepath.Clean(root))
	}
	return &Gate{fs: fs, allowed: roots}
}

// FS returns the filesystem the gate checks against.
func (g *Gate) FS() afero.Fs {
	return g.fs
}

// Authorized reports whether p lies inside one of the allowed roots.
func (g *Gate) Authorized(p string) bool {
	clean := filepath.Clean(p)
	for _, root := range g.allowed {
		if Within(root, clean) {
			return true
		}
	}
	return false
}

// CanRead 组合授权、存在性与权限位三项检查，任何错误都视为不可读。
func (g *Gate) CanRead(p string) bool {
	if !g.Authorized(p) {
		return false
	}
	info, err := g.fs.Stat(p)
	if err != nil {
		return false
	}
	return info.Mode().Perm()&ownerRead == ownerRead
}

// Within reports whether target equals root or is nested below it.
func Within(root, target string) bool {
	root = filepath.Clean(root)
	target = filepath.Clean(target)
	if root == target {
		return true
	}
	prefix := root
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	return strings.HasPrefix(target, prefix)
}
