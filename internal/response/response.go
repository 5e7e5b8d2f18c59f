// Package response defines the immutable response value shared by the
// dispatcher, the response cache and the transport adapter. A Response is
// built once by the branch that produces it; every accessor hands out copies
// so a cached value can be written to many requests without being mutated.
package response

import (
	"net/http"
	"strconv"
)

// Response 是一次请求的完整结果：正文、状态码、头部以及是否允许进入缓存。
type Response struct {
	body      []byte
	status    int
	header    http.Header
	cacheable bool
}

// New 构造响应；header 会被复制并规范化为大小写无关的 canonical 形式。
func New(status int, body []byte, header http.Header, cacheable bool) Response {
	normalized := make(http.Header, len(header))
	for key, values := range header {
		for _, value := range values {
			normalized.Add(key, value)
		}
	}
	if status == 0 {
		status = http.StatusOK
	}
	return Response{
		body:      append([]byte(nil), body...),
		status:    status,
		header:    normalized,
		cacheable: cacheable,
	}
}

// Text 是 New 的便捷形式，只携带一个 Content-Type 头。
func Text(status int, body string, contentType string, cacheable bool) Response {
	header := http.Header{}
	if contentType != "" {
		header.Set("Content-Type", contentType)
	}
	return New(status, []byte(body), header, cacheable)
}

// Status returns the HTTP status code.
func (r Response) Status() int {
	return r.status
}

// Body 返回正文切片。调用方只读，不得修改。
func (r Response) Body() []byte {
	return r.body
}

// Len returns the body size in bytes.
func (r Response) Len() int {
	return len(r.body)
}

// Cacheable reports whether the producing branch allowed caching.
func (r Response) Cacheable() bool {
	return r.cacheable
}

// Header 返回头部副本。
func (r Response) Header() http.Header {
	return r.header.Clone()
}

// HeaderValue 读取单个头部，键大小写无关。
func (r Response) HeaderValue(key string) string {
	return r.header.Get(key)
}

// WithHeader 返回设置了指定头部的新响应，原值保持不变。
func (r Response) WithHeader(key, value string) Response {
	next := r
	next.header = r.header.Clone()
	if next.header == nil {
		next.header = http.Header{}
	}
	next.header.Set(key, value)
	return next
}

// WithoutHeader 返回删除了指定头部的新响应。
func (r Response) WithoutHeader(key string) Response {
	next := r
	next.header = r.header.Clone()
	next.header.Del(key)
	return next
}

// WithContentLength 依据最终正文长度写入 Content-Length。
func (r Response) WithContentLength() Response {
	return r.WithHeader("Content-Length", strconv.Itoa(len(r.body)))
}

// WithStatus 返回使用新状态码的响应，其余字段不变。
func (r Response) WithStatus(status int) Response {
	next := r
	next.status = status
	return next
}

// Uncacheable 返回禁止进入缓存的副本。
func (r Response) Uncacheable() Response {
	next := r
	next.cacheable = false
	return next
}
