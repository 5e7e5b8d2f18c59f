package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/otg-serve/otg-serve/internal/config"
)

func TestParseCLIFlagsPriority(t *testing.T) {
	t.Setenv("OTG_CONFIG", "/tmp/env.toml")

	opts, err := parseCLIFlags([]string{})
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	if opts.configPath != "/tmp/env.toml" {
		t.Fatalf("应优先使用环境变量，得到 %s", opts.configPath)
	}

	opts, err = parseCLIFlags([]string{"--config", "/tmp/flag.toml"})
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	if opts.configPath != "/tmp/flag.toml" {
		t.Fatalf("flag 应高于环境变量，得到 %s", opts.configPath)
	}
}

func TestParseCLIFlagsHelpAndErrors(t *testing.T) {
	opts, err := parseCLIFlags([]string{"--help"})
	if err != nil {
		t.Fatalf("--help 不应返回错误: %v", err)
	}
	if !opts.showHelp || !strings.Contains(opts.usage, "--lifetime") {
		t.Fatalf("--help 应携带用法说明: %+v", opts)
	}
	if _, err := parseCLIFlags([]string{"--no-such-flag"}); err == nil {
		t.Fatalf("未知参数应返回错误")
	}
}

func TestRunCheckConfigSuccess(t *testing.T) {
	_, errOut := captureOutput(t)
	code := run(cliOptions{configPath: configFixture(t, "valid.toml"), checkOnly: true})
	if code != 0 {
		t.Fatalf("期望退出码 0，得到 %d: %s", code, errOut.String())
	}
}

func TestRunCheckConfigFailure(t *testing.T) {
	captureOutput(t)
	code := run(cliOptions{configPath: configFixture(t, "missing.toml"), checkOnly: true})
	if code == 0 {
		t.Fatalf("无效配置应返回非零退出码")
	}
}

func TestRunCheckConfigWithFlags(t *testing.T) {
	_, errOut := captureOutput(t)
	dir := t.TempDir()
	opts, err := parseCLIFlags([]string{"--check-config", "-p", "9000", "-e", "--no-logging", dir})
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	if code := run(opts); code != 0 {
		t.Fatalf("期望退出码 0，得到 %d: %s", code, errOut.String())
	}
}

func TestRunPreflightFailure(t *testing.T) {
	_, errOut := captureOutput(t)
	opts, err := parseCLIFlags([]string{"--no-logging", filepath.Join(t.TempDir(), "missing")})
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	if code := run(opts); code != 1 {
		t.Fatalf("服务目录不存在时应返回 1，得到 %d", code)
	}
	if !strings.Contains(errOut.String(), "启动检查失败") {
		t.Fatalf("应输出启动检查失败原因: %s", errOut.String())
	}
}

func TestRunVersionOutput(t *testing.T) {
	out, _ := captureOutput(t)
	code := run(cliOptions{showVersion: true})
	if code != 0 {
		t.Fatalf("version 模式应成功退出，得到 %d", code)
	}
	if !strings.Contains(out.String(), "otg-serve") {
		t.Fatalf("version 输出应包含 otg-serve 标识")
	}
}

func TestBannerRespectsLoggingAndColors(t *testing.T) {
	cfg := &config.Config{}
	cfg.Server.Root = "/srv/site"
	cfg.Content.Cache = true
	cfg.Content.CORS = true

	var buf bytes.Buffer
	printBanner(&buf, cfg, "http://127.0.0.1:8080")
	if buf.Len() != 0 {
		t.Fatalf("关闭日志时不应输出 banner")
	}

	cfg.Log.Logging = true
	printBanner(&buf, cfg, "http://127.0.0.1:8080")
	out := buf.String()
	if !strings.Contains(out, "http://127.0.0.1:8080") || !strings.Contains(out, "cors") {
		t.Fatalf("banner 缺少地址或功能: %q", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("Colors=false 时不应输出转义序列: %q", out)
	}
}

func TestServiceServesDirectory(t *testing.T) {
	root := t.TempDir()
	writeSiteFile(t, root, "index.html", "<h1>home</h1>")
	writeSiteFile(t, root, "page.tmpl", `{{ .Headers.Set "X-Page" "1" }}path={{ .Request.Path }}`)
	writeSiteFile(t, root, "docs/readme.txt", "readme")

	cfg := loadTestConfig(t, "--cache", "-e", "-C", "--diagnostics", root)
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	svc, err := buildService(cfg, afero.NewOsFs(), logger)
	if err != nil {
		t.Fatalf("构建服务失败: %v", err)
	}
	t.Cleanup(svc.Close)

	body, resp := getBody(t, svc, "/")
	if resp.StatusCode != 200 || body != "<h1>home</h1>" {
		t.Fatalf("unexpected index response %d %q", resp.StatusCode, body)
	}
	if resp.Header.Get("Access-Control-Allow-Origin") != "*" || resp.Header.Get("X-Request-ID") == "" {
		t.Fatalf("缺少 CORS 或请求 ID 头: %v", resp.Header)
	}

	body, resp = getBody(t, svc, "/page.tmpl")
	if body != "path=/page.tmpl" || resp.Header.Get("X-Page") != "1" {
		t.Fatalf("模板未渲染: %q %v", body, resp.Header)
	}

	body, _ = getBody(t, svc, "/docs")
	if !strings.Contains(body, "readme.txt") {
		t.Fatalf("目录列表缺少文件: %s", body)
	}

	body, resp = getBody(t, svc, "/-/status")
	if resp.StatusCode != 200 || !strings.Contains(body, `"template"`) || !strings.Contains(body, `"cache_entries":1`) {
		t.Fatalf("unexpected status payload %s", body)
	}

	_, resp = getBody(t, svc, "/missing.txt")
	if resp.StatusCode != 404 {
		t.Fatalf("期望 404，得到 %d", resp.StatusCode)
	}
}

func loadTestConfig(t *testing.T, args ...string) *config.Config {
	t.Helper()
	opts, err := parseCLIFlags(args)
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	cfg, err := config.Load("", opts.flags)
	if err != nil {
		t.Fatalf("加载配置失败: %v", err)
	}
	return cfg
}

func writeSiteFile(t *testing.T, root, name, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("创建目录失败: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("写入失败: %v", err)
	}
}
