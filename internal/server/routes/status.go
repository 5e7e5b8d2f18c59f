package routes

import (
	"github.com/gofiber/fiber/v3"
)

// StatusSource 提供诊断接口所需的运行时信息，均为只读查询。
type StatusSource struct {
	Version      string
	Root         string
	Indexes      []string
	Strategies   func() []string
	CacheEnabled bool
	CacheEntries func() int
}

type statusPayload struct {
	Version      string   `json:"version"`
	Root         string   `json:"root"`
	Indexes      []string `json:"indexes"`
	Strategies   []string `json:"strategies"`
	CacheEnabled bool     `json:"cache_enabled"`
	CacheEntries int      `json:"cache_entries"`
}

// RegisterStatusRoutes 暴露 /-/status 诊断接口，便于确认当前启用的内容策略与缓存规模。
func RegisterStatusRoutes(app *fiber.App, src StatusSource) {
	if app == nil {
		return
	}
	app.Get("/-/status", func(c fiber.Ctx) error {
		return c.JSON(encodeStatus(src))
	})
}

func encodeStatus(src StatusSource) statusPayload {
	payload := statusPayload{
		Version:      src.Version,
		Root:         src.Root,
		Indexes:      append([]string{}, src.Indexes...),
		Strategies:   []string{},
		CacheEnabled: src.CacheEnabled,
	}
	if src.Strategies != nil {
		payload.Strategies = append(payload.Strategies, src.Strategies()...)
	}
	if src.CacheEntries != nil {
		payload.CacheEntries = src.CacheEntries()
	}
	return payload
}
