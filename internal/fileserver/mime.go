package fileserver

import (
	"path/filepath"
	"strings"

	"github.com/gofiber/utils/v2"
)

const octetStream = "application/octet-stream"

// contentTypeFor 根据扩展名推断 Content-Type，未知类型按纯文本返回。
func contentTypeFor(file string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(file), "."))
	if ext == "" {
		return textContentType
	}
	mime := utils.GetMIME(ext)
	if mime == "" || mime == octetStream {
		return textContentType
	}
	return mime
}
