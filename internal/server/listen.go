package server

import (
	"fmt"
	"net"
	"strconv"

	"github.com/gofiber/fiber/v3"
)

// ListenOptions 描述监听地址与 TLS 材料；证书与私钥同时存在时启用 HTTPS。
type ListenOptions struct {
	Address  string
	CertFile string
	KeyFile  string
	// OnListen 在监听成功后以 http(s)://host[:port] 形式回调实际地址。
	OnListen func(origin string)
}

// TLS reports whether both certificate and key are configured.
func (o ListenOptions) TLS() bool {
	return o.CertFile != "" && o.KeyFile != ""
}

// Listen 阻塞运行 app，直到监听失败或 app 被关闭。
func Listen(app *fiber.App, opts ListenOptions) error {
	cfg := fiber.ListenConfig{
		DisableStartupMessage: true,
		ListenerAddrFunc: func(addr net.Addr) {
			if opts.OnListen != nil {
				opts.OnListen(OriginFor(addr, opts.TLS()))
			}
		},
	}
	if opts.TLS() {
		cfg.CertFile = opts.CertFile
		cfg.CertKeyFile = opts.KeyFile
	}
	if err := app.Listen(opts.Address, cfg); err != nil {
		return fmt.Errorf("listen %s: %w", opts.Address, err)
	}
	return nil
}

// OriginFor 把监听地址转换为对外展示的 origin。
func OriginFor(addr net.Addr, tls bool) string {
	if tcp, ok := addr.(*net.TCPAddr); ok {
		return Origin(tcp.IP.String(), tcp.Port, tls)
	}
	host, portStr, err := net.SplitHostPort(addr.String())
	if err != nil {
		return Origin(addr.String(), 0, tls)
	}
	port, _ := strconv.Atoi(portStr)
	return Origin(host, port, tls)
}

// Origin 返回 http(s)://host[:port]；只有与协议匹配的默认端口（http 80、https 443）与 0 不显示。
func Origin(host string, port int, tls bool) string {
	scheme := "http"
	if tls {
		scheme = "https"
	}
	if host == "" {
		host = "localhost"
	}
	if port == 0 || (!tls && port == 80) || (tls && port == 443) {
		if ip := net.ParseIP(host); ip != nil && ip.To4() == nil {
			host = "[" + host + "]"
		}
		return scheme + "://" + host
	}
	return scheme + "://" + net.JoinHostPort(host, strconv.Itoa(port))
}
