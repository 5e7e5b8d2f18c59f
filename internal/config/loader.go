package config

import (
	"fmt"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix 是环境变量前缀，例如 OTG_PORT、OTG_CACHELIFETIME。
const EnvPrefix = "OTG"

// DefaultCacheLifetime 与命令行未指定 --lifetime 时的默认值一致（30,000,000ms）。
const DefaultCacheLifetime = 30_000_000 * time.Millisecond

// flagBinding 把命令行标志映射到配置键；invert 用于 --no-xxx 形式的开关。
type flagBinding struct {
	key    string
	flag   string
	invert bool
}

var flagBindings = []flagBinding{
	{key: "Debug", flag: "debug"},
	{key: "Port", flag: "port"},
	{key: "Host", flag: "host"},
	{key: "CertFile", flag: "cert"},
	{key: "KeyFile", flag: "key"},
	{key: "IndexFiles", flag: "index"},
	{key: "CacheLifetime", flag: "lifetime"},
	{key: "Cache", flag: "cache"},
	{key: "Templates", flag: "templates"},
	{key: "Transpile", flag: "transpile"},
	{key: "TranspileCommand", flag: "transpile-command"},
	{key: "CORS", flag: "cors"},
	{key: "Watch", flag: "watch"},
	{key: "Diagnostics", flag: "diagnostics"},
	{key: "LogLevel", flag: "log-level"},
	{key: "LogFormat", flag: "log-format"},
	{key: "LogFilePath", flag: "log-file"},
	{key: "Indexing", flag: "no-indexing", invert: true},
	{key: "Colors", flag: "no-color", invert: true},
	{key: "Logging", flag: "no-logging", invert: true},
}

// RegisterFlags 注册与配置键对应的命令行标志，短标志沿用早期 CLI 的写法。
func RegisterFlags(fs *pflag.FlagSet) {
	fs.BoolP("debug", "d", false, "Show debug information and full error details.")
	fs.IntP("port", "p", 0, "The port to run the file server on (0 picks a free port).")
	fs.StringP("host", "H", "127.0.0.1", "The host to run the file server on.")
	fs.StringP("cert", "c", "", "TLS certificate file (enables TLS together with --key).")
	fs.StringP("key", "k", "", "TLS key file (enables TLS together with --cert).")
	fs.StringSliceP("index", "i", nil, "An extra index file name tried when entering a directory (repeatable).")
	fs.StringP("lifetime", "L", "", "The cache lifetime, e.g. 30m, 2h, 1d or plain seconds.")
	fs.Bool("cache", false, "Cache generated responses.")
	fs.BoolP("templates", "e", false, "Render template files.")
	fs.BoolP("transpile", "t", false, "Transpile .ts/.tsx/.js/.jsx files on request.")
	fs.StringSlice("transpile-command", nil, "External transpiler command; empty uses the built-in bundler.")
	fs.BoolP("cors", "C", false, `Enable CORS via the "Access-Control-Allow-Origin" header.`)
	fs.Bool("watch", false, "Drop cached responses when files under the root change.")
	fs.Bool("diagnostics", false, "Expose runtime status under /-/status.")
	fs.String("log-level", "", "Log level (debug, info, warn, error).")
	fs.String("log-format", "", "Log format (text or json).")
	fs.String("log-file", "", "Write logs to a rotating file instead of stdout.")
	fs.BoolP("no-indexing", "N", false, "Disable directory listing.")
	fs.BoolP("no-color", "n", false, "Disable colors in logs.")
	fs.BoolP("no-logging", "l", false, "Disable logging.")
}

// Load 合并默认值、配置文件（可选）、环境变量与命令行标志，注入默认值并校验。
// flags 为 nil 时只读取文件与环境变量；flags 的第一个位置参数视为服务根目录。
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("读取配置失败: %w", err)
		}
	}

	if flags != nil {
		if err := bindFlags(v, flags); err != nil {
			return nil, err
		}
		if flags.NArg() > 0 {
			v.Set("Root", flags.Arg(0))
		}
	}

	var cfg Config
	hook := mapstructure.ComposeDecodeHookFunc(
		durationDecodeHook(),
		mapstructure.StringToSliceHookFunc(","),
	)
	if err := v.Unmarshal(&cfg, viper.DecodeHook(hook)); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}
	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	absRoot, err := filepath.Abs(cfg.Server.Root)
	if err != nil {
		return nil, fmt.Errorf("无法解析服务目录: %w", err)
	}
	cfg.Server.Root = absRoot
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("Root", ".")
	v.SetDefault("Host", "127.0.0.1")
	v.SetDefault("Port", 0)
	v.SetDefault("CertFile", "")
	v.SetDefault("KeyFile", "")
	v.SetDefault("Diagnostics", false)
	v.SetDefault("Cache", false)
	v.SetDefault("CacheLifetime", DefaultCacheLifetime)
	v.SetDefault("CORS", false)
	v.SetDefault("Indexing", true)
	v.SetDefault("IndexFiles", []string{})
	v.SetDefault("Templates", false)
	v.SetDefault("TemplateExtension", ".tmpl")
	v.SetDefault("Transpile", false)
	v.SetDefault("TranspileCommand", []string{})
	v.SetDefault("Watch", false)
	v.SetDefault("MaxIndexDepth", 16)
	v.SetDefault("Logging", true)
	v.SetDefault("Debug", false)
	v.SetDefault("Colors", true)
	v.SetDefault("LogLevel", "info")
	v.SetDefault("LogFormat", "text")
	v.SetDefault("LogFilePath", "")
	v.SetDefault("LogMaxSize", 100)
	v.SetDefault("LogMaxBackups", 10)
	v.SetDefault("LogCompress", true)
}

// bindFlags 只让用户显式传入的标志覆盖其它来源；取反标志直接写入最终值。
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for _, b := range flagBindings {
		f := flags.Lookup(b.flag)
		if f == nil {
			continue
		}
		if b.invert {
			if f.Changed {
				set, err := flags.GetBool(b.flag)
				if err != nil {
					return fmt.Errorf("解析参数 --%s 失败: %w", b.flag, err)
				}
				v.Set(b.key, !set)
			}
			continue
		}
		if err := v.BindPFlag(b.key, f); err != nil {
			return fmt.Errorf("绑定参数 --%s 失败: %w", b.flag, err)
		}
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Content.CacheLifetime.DurationValue() == 0 {
		cfg.Content.CacheLifetime = Duration(DefaultCacheLifetime)
	}
	if cfg.Content.MaxIndexDepth == 0 {
		cfg.Content.MaxIndexDepth = 16
	}
	if ext := strings.TrimSpace(cfg.Content.TemplateExtension); ext != "" && !strings.HasPrefix(ext, ".") {
		cfg.Content.TemplateExtension = "." + ext
	}
	if cfg.Log.LogLevel == "" {
		cfg.Log.LogLevel = "info"
	}
	if cfg.Log.LogFormat == "" {
		cfg.Log.LogFormat = "text"
	}
	if cfg.Log.Debug {
		cfg.Log.LogLevel = "debug"
	}
}

func durationDecodeHook() mapstructure.DecodeHookFunc {
	targetType := reflect.TypeOf(Duration(0))
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != targetType {
			return data, nil
		}
		switch v := data.(type) {
		case string:
			parsed, err := ParseDuration(v)
			if err != nil {
				return nil, fmt.Errorf("无法解析 Duration 字段: %s", v)
			}
			return parsed, nil
		case int:
			return Duration(time.Duration(v) * time.Second), nil
		case int64:
			return Duration(time.Duration(v) * time.Second), nil
		case float64:
			return Duration(time.Duration(v * float64(time.Second))), nil
		case time.Duration:
			return Duration(v), nil
		case Duration:
			return v, nil
		default:
			return nil, fmt.Errorf("不支持的 Duration 类型: %T", v)
		}
	}
}
