package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/otg-serve/otg-serve/internal/config"
	"github.com/otg-serve/otg-serve/internal/version"
)

// printVersion 输出注入的版本 + 提交信息。
func printVersion() {
	fmt.Fprintln(stdOut, version.Full())
}

// printBanner 在监听成功后输出服务地址与启用的功能；关闭日志时保持安静。
func printBanner(w io.Writer, cfg *config.Config, origin string) {
	if !cfg.Log.Logging {
		return
	}
	title := color.New(color.FgGreen, color.Bold)
	link := color.New(color.FgCyan, color.Underline)
	dim := color.New(color.Faint)
	if !cfg.Log.Colors {
		title.DisableColor()
		link.DisableColor()
		dim.DisableColor()
	}

	fmt.Fprintf(w, "%s serving %s\n", title.Sprint("otg-serve"), cfg.Server.Root)
	fmt.Fprintf(w, "  %s\n", link.Sprint(origin))
	if features := enabledFeatures(cfg); len(features) > 0 {
		fmt.Fprintf(w, "  %s\n", dim.Sprint(strings.Join(features, ", ")))
	}
}

func enabledFeatures(cfg *config.Config) []string {
	var features []string
	if cfg.Content.Cache {
		features = append(features, "cache "+cfg.Content.CacheLifetime.DurationValue().String())
	}
	if cfg.Content.CORS {
		features = append(features, "cors")
	}
	if cfg.Content.Indexing {
		features = append(features, "indexing")
	}
	if cfg.Content.Templates {
		features = append(features, "templates ("+cfg.Content.TemplateExtension+")")
	}
	if cfg.Content.Transpile {
		features = append(features, "transpile")
	}
	if cfg.Content.Watch {
		features = append(features, "watch")
	}
	return features
}
