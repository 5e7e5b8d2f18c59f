// Package transpile turns script sources (TypeScript, JSX, modern JS) into a
// single browser-ready bundle on request. Failures are reported as text in the
// Result, never as a Go error: the dispatcher forwards that text to the client.
package transpile

import (
	"context"
	"path/filepath"
	"strings"
)

// Result 是一次转译的输出；Failed 为 true 时 Output 为错误信息。
type Result struct {
	Output string
	Failed bool
}

// Transpiler 以 root 为工作目录转译 file。
type Transpiler interface {
	Transpile(ctx context.Context, root, file string) Result
}

// Func adapts a plain function to the Transpiler interface.
type Func func(ctx context.Context, root, file string) Result

// Transpile calls f.
func (f Func) Transpile(ctx context.Context, root, file string) Result {
	return f(ctx, root, file)
}

// Extensions 是需要转译的脚本扩展名。
var Extensions = []string{".ts", ".tsx", ".js", ".jsx"}

// Handles reports whether file has a script extension.
func Handles(file string) bool {
	ext := strings.ToLower(filepath.Ext(file))
	for _, candidate := range Extensions {
		if ext == candidate {
			return true
		}
	}
	return false
}

// StripRoot 把输出中泄露的服务根目录绝对路径替换为 "/"。
func StripRoot(output, root string) string {
	if root == "" || root == "/" {
		return output
	}
	root = strings.TrimSuffix(filepath.ToSlash(root), "/")
	output = strings.ReplaceAll(output, root+"/", "/")
	return strings.ReplaceAll(output, root, "/")
}
