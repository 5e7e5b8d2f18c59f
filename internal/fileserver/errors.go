package fileserver

import (
	stderrors "errors"
	"fmt"
)

var (
	// ErrAlreadyResponded 表示同一请求第二次尝试写出响应，第二次写入被丢弃。
	ErrAlreadyResponded = stderrors.New("response already sent for this request")
	// ErrPathEscapesRoot 表示请求路径解析后落在服务目录之外。
	ErrPathEscapesRoot = stderrors.New("request path escapes the served root")
)

// failureBody 渲染 500 响应正文：verbose 时输出带栈的完整诊断，否则只输出错误信息。
func failureBody(err error, verbose bool) string {
	if verbose {
		return fmt.Sprintf("%+v", err)
	}
	return err.Error()
}
