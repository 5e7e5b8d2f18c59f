package fileserver

import (
	"net/http"
	"net/url"
	"path"
	"path/filepath"
)

// Request 是分发器内部的请求视图。Path 是规范化后的 URL 路径，同时作为缓存键；
// FilePath 初始为 root+Path，解析成功后被替换为最终返回的文件。
type Request struct {
	Method     string
	URL        *url.URL
	Path       string
	FilePath   string
	RemoteAddr string
	Header     http.Header
	RequestID  string
}

// NewRequest 解析 target（request-URI 或完整 URL）并计算规范化路径与文件路径。
// 以 "//" 开头的 request-URI 整体视为路径，不会被当作 host 截掉；
// 无法解析的 target 按原样视为路径。
func NewRequest(root, method, target string, header http.Header, remote string) *Request {
	u, err := url.ParseRequestURI(target)
	if err != nil {
		u = &url.URL{Path: target}
	}
	if header == nil {
		header = http.Header{}
	}
	clean := path.Clean("/" + u.Path)
	return &Request{
		Method:     method,
		URL:        u,
		Path:       clean,
		FilePath:   filepath.Join(root, filepath.FromSlash(clean)),
		RemoteAddr: remote,
		Header:     header,
	}
}
