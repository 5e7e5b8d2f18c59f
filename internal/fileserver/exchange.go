package fileserver

import (
	"net"
	"sync/atomic"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/otg-serve/otg-serve/internal/format"
	"github.com/otg-serve/otg-serve/internal/logging"
	"github.com/otg-serve/otg-serve/internal/response"
)

// exchange 绑定一次请求与它唯一的响应。
type exchange struct {
	h         *Handler
	req       *Request
	write     WriteFunc
	started   time.Time
	fromCache bool
	responded atomic.Bool
}

func newExchange(h *Handler, req *Request, write WriteFunc) *exchange {
	return &exchange{h: h, req: req, write: write, started: h.now()}
}

// respond 写出响应。第二次调用返回 ErrAlreadyResponded 且不写任何内容。
// 可缓存的响应以未附加 CORS/Content-Length 的形式保存，命中缓存时不会重复保存。
func (e *exchange) respond(resp response.Response) error {
	if !e.responded.CompareAndSwap(false, true) {
		e.h.logger.WithFields(logrus.Fields{
			"action":     "respond",
			"path":       e.req.Path,
			"request_id": e.req.RequestID,
		}).Warn(ErrAlreadyResponded.Error())
		return ErrAlreadyResponded
	}

	if resp.Cacheable() && !e.fromCache {
		e.h.cache.Save(e.req.Path, resp)
	}

	final := e.h.finalize(e.req, resp)
	err := e.write(final)
	e.log(final, err)
	if err != nil {
		return pkgerrors.Wrap(err, "write response")
	}
	return nil
}

func (e *exchange) log(resp response.Response, writeErr error) {
	fields := logging.RequestFields(
		e.req.Method,
		remoteHost(e.req.RemoteAddr),
		e.req.Path,
		resp.Status(),
		e.h.now().Sub(e.started),
		e.req.RequestID,
	)
	fields["action"] = "serve"
	fields["cache_hit"] = e.fromCache
	if e.h.verbose {
		fields["size"] = format.Size(int64(resp.Len()))
	}

	entry := e.h.logger.WithFields(fields)
	switch {
	case writeErr != nil:
		entry.WithError(writeErr).Error("response_write_failed")
	case resp.Status() >= 500:
		entry.WithField("body", string(resp.Body())).Error("request_failed")
	default:
		entry.Info("request_served")
	}
}

func remoteHost(addr string) string {
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}
