// Package render executes html/template documents found in the served tree.
// Templates receive the request and a header map they may modify; whatever
// they set is sent with the rendered body.
package render

import (
	"bytes"
	"html/template"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// Request 是模板可见的请求视图。
type Request struct {
	Method     string
	URL        *url.URL
	Path       string
	Query      url.Values
	Header     http.Header
	RemoteAddr string
}

// Headers 是模板可写的响应头集合，键大小写无关。
type Headers struct {
	h http.Header
}

// NewHeaders 返回带有初始值的响应头集合。
func NewHeaders(initial http.Header) *Headers {
	h := http.Header{}
	for key, values := range initial {
		for _, v := range values {
			h.Add(key, v)
		}
	}
	return &Headers{h: h}
}

// Set 设置头部。返回空字符串，便于在模板中以 {{ .Headers.Set "K" "V" }} 调用。
func (h *Headers) Set(key, value string) string {
	h.h.Set(key, value)
	return ""
}

// Add appends a header value; returns "" for template use.
func (h *Headers) Add(key, value string) string {
	h.h.Add(key, value)
	return ""
}

// Del removes a header; returns "" for template use.
func (h *Headers) Del(key string) string {
	h.h.Del(key)
	return ""
}

// Get returns the first value for key.
func (h *Headers) Get(key string) string {
	return h.h.Get(key)
}

// Header returns a copy of the collected headers.
func (h *Headers) Header() http.Header {
	return h.h.Clone()
}

// Context 是模板执行时的数据根：{{ .Request.Path }}、{{ .Headers.Set ... }}。
type Context struct {
	Request *Request
	Headers *Headers
}

var funcs = template.FuncMap{
	"lower":     strings.ToLower,
	"upper":     strings.ToUpper,
	"hasPrefix": strings.HasPrefix,
	"join":      strings.Join,
}

// Renderer 从给定文件系统读取并执行模板。
type Renderer struct {
	fs afero.Fs
}

// NewRenderer builds a renderer reading templates from fs.
func NewRenderer(fs afero.Fs) *Renderer {
	return &Renderer{fs: fs}
}

// Render 读取 file 并以 ctx 执行，模板中的读取或执行错误都会带栈返回。
func (r *Renderer) Render(file string, ctx Context) ([]byte, error) {
	src, err := afero.ReadFile(r.fs, file)
	if err != nil {
		return nil, errors.Wrapf(err, "read template %s", file)
	}
	tpl, err := template.New(filepath.Base(file)).Funcs(funcs).Parse(string(src))
	if err != nil {
		return nil, errors.Wrapf(err, "parse template %s", file)
	}
	if ctx.Headers == nil {
		ctx.Headers = NewHeaders(nil)
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, ctx); err != nil {
		return nil, errors.Wrapf(err, "execute template %s", file)
	}
	return buf.Bytes(), nil
}
