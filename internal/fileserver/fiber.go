package fileserver

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v3"

	"github.com/otg-serve/otg-serve/internal/response"
	"github.com/otg-serve/otg-serve/internal/server"
)

// Handle 把 Fiber 请求交给 Serve。写出失败已在 Serve 中记录，不再交给 Fiber 的错误处理器。
func (h *Handler) Handle(c fiber.Ctx) error {
	req := NewRequest(h.root, c.Method(), c.OriginalURL(), requestHeader(c), c.IP())
	req.RequestID = server.RequestID(c)

	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}
	_ = h.Serve(ctx, req, func(resp response.Response) error {
		return writeFiber(c, resp)
	})
	return nil
}

func requestHeader(c fiber.Ctx) http.Header {
	header := http.Header{}
	for key, values := range c.GetReqHeaders() {
		for _, v := range values {
			header.Add(key, v)
		}
	}
	return header
}

// writeFiber 把响应写入 Fiber 上下文；Content-Length 由 fasthttp 根据正文设置。
func writeFiber(c fiber.Ctx, resp response.Response) error {
	for key, values := range resp.Header() {
		if key == fiber.HeaderContentLength {
			continue
		}
		c.Response().Header.Del(key)
		for _, v := range values {
			c.Response().Header.Add(key, v)
		}
	}
	c.Status(resp.Status())
	return c.Send(resp.Body())
}
