package fileserver

import (
	"context"
	"net/http"
	"strings"

	"github.com/otg-serve/otg-serve/internal/plugin"
	"github.com/otg-serve/otg-serve/internal/render"
	"github.com/otg-serve/otg-serve/internal/response"
	"github.com/otg-serve/otg-serve/internal/transpile"
)

const (
	htmlContentType   = "text/html; charset=utf-8"
	textContentType   = "text/plain; charset=utf-8"
	scriptContentType = "application/javascript; charset=utf-8"
)

// Strategy 是一个可注册的内容分支：声明能处理哪些文件，并为已解析的请求生成响应。
// 分发器按注册顺序询问，第一个 CanHandle 的策略胜出；都不处理时按静态文件返回。
type Strategy interface {
	plugin.Plugin
	Serve(ctx context.Context, req *Request) (response.Response, error)
}

// TemplateStrategy 渲染扩展名为 Extension 的模板文件，结果不进入缓存。
type TemplateStrategy struct {
	Extension string
	Renderer  *render.Renderer
}

// NewTemplateStrategy builds the template branch for files ending in ext.
func NewTemplateStrategy(ext string, renderer *render.Renderer) *TemplateStrategy {
	return &TemplateStrategy{Extension: strings.ToLower(ext), Renderer: renderer}
}

func (s *TemplateStrategy) Name() string      { return "template" }
func (s *TemplateStrategy) Aliases() []string { return []string{"tmpl"} }

func (s *TemplateStrategy) CanHandle(path string) bool {
	return s.Extension != "" && strings.HasSuffix(strings.ToLower(path), s.Extension)
}

// Serve 执行模板；模板可通过 .Headers 修改响应头，默认 Content-Type 为 HTML。
func (s *TemplateStrategy) Serve(_ context.Context, req *Request) (response.Response, error) {
	headers := render.NewHeaders(http.Header{"Content-Type": {htmlContentType}})
	body, err := s.Renderer.Render(req.FilePath, render.Context{
		Request: &render.Request{
			Method:     req.Method,
			URL:        req.URL,
			Path:       req.Path,
			Query:      req.URL.Query(),
			Header:     req.Header.Clone(),
			RemoteAddr: req.RemoteAddr,
		},
		Headers: headers,
	})
	if err != nil {
		return response.Response{}, err
	}
	return response.New(http.StatusOK, body, headers.Header(), false), nil
}

// TranspileStrategy 把脚本源文件转译为浏览器可用的 JavaScript。
type TranspileStrategy struct {
	Root       string
	Transpiler transpile.Transpiler
}

// NewTranspileStrategy builds the transpile branch rooted at root.
func NewTranspileStrategy(root string, t transpile.Transpiler) *TranspileStrategy {
	return &TranspileStrategy{Root: root, Transpiler: t}
}

func (s *TranspileStrategy) Name() string      { return "transpile" }
func (s *TranspileStrategy) Aliases() []string { return []string{"ts"} }

func (s *TranspileStrategy) CanHandle(path string) bool {
	return transpile.Handles(path)
}

// Serve 成功时返回可缓存的脚本，输出中的服务目录绝对路径被替换为 "/"；
// 失败时返回 500 与转译器的错误文本，且不缓存。
func (s *TranspileStrategy) Serve(ctx context.Context, req *Request) (response.Response, error) {
	result := s.Transpiler.Transpile(ctx, s.Root, req.FilePath)
	if result.Failed {
		return response.Text(http.StatusInternalServerError, result.Output, textContentType, false), nil
	}
	return response.Text(http.StatusOK, transpile.StripRoot(result.Output, s.Root), scriptContentType, true), nil
}
