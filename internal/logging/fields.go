package logging

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/otg-serve/otg-serve/internal/format"
)

// BaseFields 构建 action + 服务目录等基础字段，便于不同入口复用。
func BaseFields(action, root string) logrus.Fields {
	return logrus.Fields{
		"action": action,
		"root":   root,
	}
}

// RequestFields 提供访问日志的公共字段；elapsed 以 12ms、3s 这样的短格式输出。
func RequestFields(method, host, path string, status int, elapsed time.Duration, requestID string) logrus.Fields {
	fields := logrus.Fields{
		"method":  method,
		"host":    host,
		"path":    path,
		"status":  status,
		"elapsed": format.Elapsed(elapsed),
	}
	if requestID != "" {
		fields["request_id"] = requestID
	}
	return fields
}
