package transpile

import (
	"context"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
)

// Esbuild 在进程内调用 esbuild 打包入口文件。
type Esbuild struct {
	// Minify 控制是否压缩输出。
	Minify bool
}

// NewEsbuild returns the default in-process bundler.
func NewEsbuild() *Esbuild {
	return &Esbuild{}
}

// Transpile bundles file with esbuild. The context is unused: esbuild builds
// are synchronous and cannot be interrupted.
func (e *Esbuild) Transpile(_ context.Context, root, file string) Result {
	result := api.Build(api.BuildOptions{
		EntryPoints:       []string{file},
		AbsWorkingDir:     root,
		Bundle:            true,
		Write:             false,
		Format:            api.FormatESModule,
		Platform:          api.PlatformBrowser,
		LogLevel:          api.LogLevelSilent,
		MinifyWhitespace:  e.Minify,
		MinifyIdentifiers: e.Minify,
		MinifySyntax:      e.Minify,
	})
	if len(result.Errors) > 0 {
		messages := api.FormatMessages(result.Errors, api.FormatMessagesOptions{
			Kind: api.ErrorMessage,
		})
		return Result{Output: strings.TrimSpace(strings.Join(messages, "\n")), Failed: true}
	}
	if len(result.OutputFiles) == 0 {
		return Result{Output: "esbuild produced no output for " + file, Failed: true}
	}
	return Result{Output: strings.TrimSpace(string(result.OutputFiles[0].Contents))}
}
