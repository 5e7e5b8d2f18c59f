package logging

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/otg-serve/otg-serve/internal/config"
)

func TestConfigureDefaultsToStdout(t *testing.T) {
	logger, err := InitLogger(config.LogConfig{Logging: true, LogLevel: "info", LogFormat: "text"})
	if err != nil {
		t.Fatalf("配置失败: %v", err)
	}
	if logger.Out != os.Stdout {
		t.Fatalf("未指定文件时应输出到 stdout")
	}
	if _, ok := logger.Formatter.(*logrus.TextFormatter); !ok {
		t.Fatalf("text 格式应使用 TextFormatter，得到 %T", logger.Formatter)
	}
}

func TestInitLoggerDisabledDiscards(t *testing.T) {
	logger, err := InitLogger(config.LogConfig{Logging: false, LogLevel: "info", LogFilePath: "/should/not/exist.log"})
	if err != nil {
		t.Fatalf("配置失败: %v", err)
	}
	if logger.Out != io.Discard {
		t.Fatalf("关闭日志时应丢弃输出")
	}
}

func TestInitLoggerJSONAndColors(t *testing.T) {
	logger, err := InitLogger(config.LogConfig{Logging: true, LogLevel: "warn", LogFormat: "json"})
	if err != nil {
		t.Fatalf("配置失败: %v", err)
	}
	if _, ok := logger.Formatter.(*logrus.JSONFormatter); !ok {
		t.Fatalf("json 格式应使用 JSONFormatter，得到 %T", logger.Formatter)
	}
	if logger.GetLevel() != logrus.WarnLevel {
		t.Fatalf("日志级别未生效: %s", logger.GetLevel())
	}

	logger, err = InitLogger(config.LogConfig{Logging: true, LogLevel: "info", LogFormat: "text", Colors: false})
	if err != nil {
		t.Fatalf("配置失败: %v", err)
	}
	text := logger.Formatter.(*logrus.TextFormatter)
	if !text.DisableColors || text.ForceColors {
		t.Fatalf("Colors=false 时应禁用颜色")
	}
}

func TestInitLoggerRejectsUnknownLevel(t *testing.T) {
	if _, err := InitLogger(config.LogConfig{Logging: true, LogLevel: "loud"}); err == nil {
		t.Fatalf("未知日志级别应返回错误")
	}
}

func TestInitLoggerFallbackOnPermissionDenied(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root 用户不受目录权限限制")
	}
	dir := t.TempDir()
	blocked := filepath.Join(dir, "blocked")
	if err := os.Mkdir(blocked, 0o755); err != nil {
		t.Fatalf("创建目录失败: %v", err)
	}
	if err := os.Chmod(blocked, 0o000); err != nil {
		t.Fatalf("设置目录权限失败: %v", err)
	}
	t.Cleanup(func() { _ = os.Chmod(blocked, 0o755) })

	cfg := config.LogConfig{
		Logging:     true,
		LogLevel:    "info",
		LogFilePath: filepath.Join(blocked, "sub", "otg-serve.log"),
	}
	logger, err := InitLogger(cfg)
	if err != nil {
		t.Fatalf("初始化不应失败: %v", err)
	}
	if logger.Out != os.Stdout {
		t.Fatalf("fallback 时应退回 stdout")
	}
}

func TestConfigureCreatesRotatingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "otg-serve.log")
	cfg := config.LogConfig{Logging: true, LogLevel: "debug", LogFormat: "json", LogFilePath: path}
	logger, err := InitLogger(cfg)
	if err != nil {
		t.Fatalf("配置失败: %v", err)
	}
	logger.Info("test")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("预期创建日志文件: %v", err)
	}
}

func TestRequestFields(t *testing.T) {
	fields := RequestFields("GET", "127.0.0.1", "/a.txt", 200, 1500*time.Millisecond, "")
	if fields["elapsed"] != "2s" {
		t.Fatalf("unexpected elapsed %v", fields["elapsed"])
	}
	if _, ok := fields["request_id"]; ok {
		t.Fatalf("空 request id 不应写入字段")
	}
	fields = RequestFields("GET", "127.0.0.1", "/a.txt", 200, 12*time.Millisecond, "abc")
	if fields["elapsed"] != "12ms" || fields["request_id"] != "abc" {
		t.Fatalf("unexpected fields %v", fields)
	}
}
