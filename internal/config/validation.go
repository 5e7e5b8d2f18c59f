package config

import (
	"errors"
	"strings"
)

var supportedLogFormats = map[string]struct{}{
	"text": {},
	"json": {},
}

// Validate 针对语义级别做进一步校验，防止非法配置启动服务。
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("配置为空")
	}
	s := c.Server
	if strings.TrimSpace(s.Root) == "" {
		return newFieldError("Root", "不能为空")
	}
	if strings.TrimSpace(s.Host) == "" {
		return newFieldError("Host", "不能为空")
	}
	if s.Port < 0 || s.Port > 65535 {
		return newFieldError("Port", "必须在 0-65535")
	}
	if (s.CertFile == "") != (s.KeyFile == "") {
		return newFieldError("CertFile/KeyFile", "必须同时提供或同时留空")
	}

	content := c.Content
	if content.Cache && content.CacheLifetime.DurationValue() <= 0 {
		return newFieldError("CacheLifetime", "启用缓存时必须大于 0")
	}
	if content.MaxIndexDepth <= 0 {
		return newFieldError("MaxIndexDepth", "必须大于 0")
	}
	if content.Templates && !strings.HasPrefix(content.TemplateExtension, ".") {
		return newFieldError("TemplateExtension", "必须以 . 开头")
	}
	for i, name := range content.IndexFiles {
		if err := validateIndexName(name); err != nil {
			return newFieldError(indexField(i), err.Error())
		}
	}

	format := strings.ToLower(strings.TrimSpace(c.Log.LogFormat))
	if _, ok := supportedLogFormats[format]; !ok {
		return newFieldError("LogFormat", "仅支持 text|json")
	}
	c.Log.LogFormat = format
	return nil
}

// validateIndexName 拒绝会跳出当前目录或指回自身的索引名。
func validateIndexName(name string) error {
	trimmed := strings.TrimSpace(name)
	switch {
	case trimmed == "":
		return errors.New("不能为空")
	case trimmed == "." || trimmed == "..":
		return errors.New("不能指向当前或上级目录")
	case strings.ContainsAny(trimmed, `/\`):
		return errors.New("不能包含路径分隔符")
	}
	return nil
}
