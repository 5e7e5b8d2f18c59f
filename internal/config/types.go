package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

// Duration 提供更灵活的反序列化能力，兼容纯秒整数、0x/0o/0b 整数、
// Go Duration 字符串以及 "d" 天数后缀。
type Duration time.Duration

// UnmarshalText 使 Viper 可以识别诸如 "30s"、"2d" 或纯数字秒值等配置写法。
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DurationValue 返回真实的 time.Duration，便于调用方计算。
func (d Duration) DurationValue() time.Duration {
	return time.Duration(d)
}

// ParseDuration 解析缓存寿命等时长配置：纯整数按秒计算。
func ParseDuration(raw string) (Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Duration(0), nil
	}
	if seconds, err := parseInt(raw); err == nil {
		return Duration(time.Duration(seconds) * time.Second), nil
	}
	if parsed, err := time.ParseDuration(raw); err == nil {
		return Duration(parsed), nil
	}
	if days, ok := strings.CutSuffix(raw, "d"); ok {
		if n, err := strconv.ParseFloat(days, 64); err == nil {
			return Duration(time.Duration(n * float64(24*time.Hour))), nil
		}
	}
	if seconds, err := strconv.ParseFloat(raw, 64); err == nil {
		return Duration(time.Duration(seconds * float64(time.Second))), nil
	}
	return 0, fmt.Errorf("invalid duration value: %s", raw)
}

// parseInt 支持十进制以及 0x/0o/0b 前缀的整数字符串。
func parseInt(value string) (int64, error) {
	lower := strings.ToLower(value)
	if strings.HasPrefix(lower, "0x") || strings.HasPrefix(lower, "0o") || strings.HasPrefix(lower, "0b") {
		return strconv.ParseInt(value, 0, 64)
	}
	return strconv.ParseInt(value, 10, 64)
}

// ServerConfig 描述监听地址、服务根目录与 TLS 材料。
type ServerConfig struct {
	Root     string `mapstructure:"Root"`
	Host     string `mapstructure:"Host"`
	Port     int    `mapstructure:"Port"`
	CertFile string `mapstructure:"CertFile"`
	KeyFile  string `mapstructure:"KeyFile"`

	// Diagnostics 开启 /-/status 诊断接口。
	Diagnostics bool `mapstructure:"Diagnostics"`
}

// ContentConfig 控制请求分发：缓存、CORS、目录列表、索引文件、模板与转译。
type ContentConfig struct {
	Cache             bool     `mapstructure:"Cache"`
	CacheLifetime     Duration `mapstructure:"CacheLifetime"`
	CORS              bool     `mapstructure:"CORS"`
	Indexing          bool     `mapstructure:"Indexing"`
	IndexFiles        []string `mapstructure:"IndexFiles"`
	Templates         bool     `mapstructure:"Templates"`
	TemplateExtension string   `mapstructure:"TemplateExtension"`
	Transpile         bool     `mapstructure:"Transpile"`
	TranspileCommand  []string `mapstructure:"TranspileCommand"`
	Watch             bool     `mapstructure:"Watch"`
	MaxIndexDepth     int      `mapstructure:"MaxIndexDepth"`
}

// LogConfig 描述日志输出；Logging=false 时丢弃所有日志。
type LogConfig struct {
	Logging       bool   `mapstructure:"Logging"`
	Debug         bool   `mapstructure:"Debug"`
	Colors        bool   `mapstructure:"Colors"`
	LogLevel      string `mapstructure:"LogLevel"`
	LogFormat     string `mapstructure:"LogFormat"`
	LogFilePath   string `mapstructure:"LogFilePath"`
	LogMaxSize    int    `mapstructure:"LogMaxSize"`
	LogMaxBackups int    `mapstructure:"LogMaxBackups"`
	LogCompress   bool   `mapstructure:"LogCompress"`
}

// Config 是配置文件、环境变量与命令行合并后的整体结构，启动时构建一次后只读传递。
type Config struct {
	Server  ServerConfig  `mapstructure:",squash"`
	Content ContentConfig `mapstructure:",squash"`
	Log     LogConfig     `mapstructure:",squash"`
}

// TLSEnabled 表示是否同时配置了证书与私钥。
func (c *Config) TLSEnabled() bool {
	return c.Server.CertFile != "" && c.Server.KeyFile != ""
}

// Address 返回 host:port 形式的监听地址。
func (c *Config) Address() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// IndexNames 返回最终的索引文件优先级：启用模板时 index<ext> 最先，
// 其后是 index.html 与用户追加的名称，重复项只保留第一次出现。
func (c *Config) IndexNames() []string {
	var names []string
	if c.Content.Templates {
		names = append(names, "index"+c.Content.TemplateExtension)
	}
	names = append(names, "index.html")
	names = append(names, c.Content.IndexFiles...)

	seen := make(map[string]struct{}, len(names))
	result := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		result = append(result, name)
	}
	return result
}
