package server

import (
	"fmt"

	"github.com/spf13/afero"

	"github.com/otg-serve/otg-serve/internal/config"
	"github.com/otg-serve/otg-serve/internal/files"
)

// Preflight 在监听前检查服务目录与 TLS 文件，任何失败都应让进程以 1 退出。
func Preflight(fs afero.Fs, cfg *config.Config) error {
	root := cfg.Server.Root
	gate := files.NewGate(fs, root)
	if !gate.IsReadableDir(root) {
		return fmt.Errorf("服务目录不可读或不是目录: %s", root)
	}
	if !cfg.TLSEnabled() {
		return nil
	}
	for _, p := range []string{cfg.Server.CertFile, cfg.Server.KeyFile} {
		if !files.NewGate(fs, p).CanRead(p) {
			return fmt.Errorf("TLS 文件不可读: %s", p)
		}
	}
	return nil
}
