package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"

	"github.com/otg-serve/otg-serve/internal/cache"
	"github.com/otg-serve/otg-serve/internal/config"
	"github.com/otg-serve/otg-serve/internal/fileserver"
	"github.com/otg-serve/otg-serve/internal/files"
	"github.com/otg-serve/otg-serve/internal/logging"
	"github.com/otg-serve/otg-serve/internal/render"
	"github.com/otg-serve/otg-serve/internal/server"
	"github.com/otg-serve/otg-serve/internal/server/routes"
	"github.com/otg-serve/otg-serve/internal/transpile"
	"github.com/otg-serve/otg-serve/internal/version"
	"github.com/otg-serve/otg-serve/internal/watch"
)

// cliOptions 汇总 CLI 标志解析后的结果，便于在测试中注入。
type cliOptions struct {
	configPath  string
	checkOnly   bool
	showVersion bool
	showHelp    bool
	usage       string
	flags       *pflag.FlagSet
}

var (
	stdOut io.Writer = os.Stdout
	stdErr io.Writer = os.Stderr
)

func main() {
	opts, err := parseCLIFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(stdErr, err.Error())
		os.Exit(2)
	}
	os.Exit(run(opts))
}

// run 根据解析到的 CLI 选项执行业务流程，并返回退出码，方便测试。
func run(opts cliOptions) int {
	if opts.showVersion {
		printVersion()
		return 0
	}
	if opts.showHelp {
		fmt.Fprintf(stdOut, "Usage: otg-serve [flags] [directory]\n\n%s", opts.usage)
		return 0
	}

	cfg, err := config.Load(opts.configPath, opts.flags)
	if err != nil {
		fmt.Fprintf(stdErr, "加载配置失败: %v\n", err)
		return 1
	}

	logger, err := logging.InitLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(stdErr, "初始化日志失败: %v\n", err)
		return 1
	}

	if opts.checkOnly {
		fields := logging.BaseFields("check_config", cfg.Server.Root)
		fields["config"] = opts.configPath
		fields["address"] = cfg.Address()
		fields["indexes"] = cfg.IndexNames()
		fields["result"] = "ok"
		logger.WithFields(fields).Info("配置校验通过")
		return 0
	}

	fs := afero.NewOsFs()
	if err := server.Preflight(fs, cfg); err != nil {
		fmt.Fprintf(stdErr, "启动检查失败: %v\n", err)
		return 1
	}

	// 启动顺序为“配置 → 缓存 → 内容策略 → 分发器 → Fiber server”，
	// 所有请求共享同一个缓存与策略注册表。
	svc, err := buildService(cfg, fs, logger)
	if err != nil {
		fmt.Fprintf(stdErr, "初始化服务失败: %v\n", err)
		return 1
	}
	defer svc.Close()

	fields := logging.BaseFields("startup", cfg.Server.Root)
	fields["config"] = opts.configPath
	fields["cache"] = cfg.Content.Cache
	fields["strategies"] = svc.handler.Strategies()
	fields["version"] = version.Full()
	logger.WithFields(fields).Info("配置加载完成")

	if err := startHTTPServer(cfg, svc.app, logger); err != nil {
		fmt.Fprintf(stdErr, "HTTP 服务启动失败: %v\n", err)
		return 1
	}
	return 0
}

// parseCLIFlags 解析 CLI 参数，并结合环境变量计算最终的配置路径。
// 配置文件是可选的：未指定时只使用默认值、环境变量与命令行。
func parseCLIFlags(args []string) (cliOptions, error) {
	fs := pflag.NewFlagSet("otg-serve", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.SortFlags = false

	var (
		configFlag string
		checkOnly  bool
		showVer    bool
	)

	fs.StringVar(&configFlag, "config", "", "配置文件路径（可被 OTG_CONFIG 指定）")
	fs.BoolVar(&checkOnly, "check-config", false, "仅校验配置后退出")
	fs.BoolVarP(&showVer, "version", "v", false, "显示版本信息")
	config.RegisterFlags(fs)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return cliOptions{showHelp: true, usage: fs.FlagUsages()}, nil
		}
		return cliOptions{}, fmt.Errorf("解析参数失败: %w", err)
	}

	path := os.Getenv("OTG_CONFIG")
	if configFlag != "" {
		path = configFlag
	}

	return cliOptions{
		configPath:  path,
		checkOnly:   checkOnly,
		showVersion: showVer,
		flags:       fs,
	}, nil
}

func startHTTPServer(cfg *config.Config, app *fiber.App, logger *logrus.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		_ = app.Shutdown()
	}()

	return server.Listen(app, server.ListenOptions{
		Address:  cfg.Address(),
		CertFile: cfg.Server.CertFile,
		KeyFile:  cfg.Server.KeyFile,
		OnListen: func(origin string) {
			printBanner(stdOut, cfg, origin)
			logger.WithFields(logrus.Fields{
				"action": "listen",
				"origin": origin,
				"tls":    cfg.TLSEnabled(),
			}).Info("Fiber 服务启动")
		},
	})
}

// service 持有运行期需要关闭的组件。
type service struct {
	app     *fiber.App
	handler *fileserver.Handler
	store   *cache.Store
	watcher *watch.Watcher
}

// Close 停止文件监听与缓存清理。
func (s *service) Close() {
	if s.watcher != nil {
		_ = s.watcher.Close()
	}
	s.store.Close()
}

func buildService(cfg *config.Config, fs afero.Fs, logger *logrus.Logger) (*service, error) {
	store := cache.NewStore(cache.Options{
		Enabled:       cfg.Content.Cache,
		Lifetime:      cfg.Content.CacheLifetime.DurationValue(),
		SweepInterval: cache.DefaultSweepInterval,
	})

	strategies, err := buildStrategies(cfg, fs)
	if err != nil {
		store.Close()
		return nil, err
	}

	gate := files.NewGate(fs, cfg.Server.Root)
	handler, err := fileserver.NewHandler(fileserver.Options{
		Root:              cfg.Server.Root,
		Gate:              gate,
		Resolver:          files.NewResolver(gate, cfg.IndexNames(), cfg.Content.MaxIndexDepth),
		Cache:             store,
		Logger:            logger,
		Strategies:        strategies,
		Indexing:          cfg.Content.Indexing,
		CORS:              cfg.Content.CORS,
		Templates:         cfg.Content.Templates,
		TemplateExtension: cfg.Content.TemplateExtension,
		Verbose:           cfg.Log.Debug,
	})
	if err != nil {
		store.Close()
		return nil, err
	}

	app, err := server.NewApp(server.AppOptions{
		Logger:      logger,
		Handler:     handler,
		Diagnostics: cfg.Server.Diagnostics,
	})
	if err != nil {
		store.Close()
		return nil, err
	}
	if cfg.Server.Diagnostics {
		routes.RegisterStatusRoutes(app, routes.StatusSource{
			Version:      version.Full(),
			Root:         cfg.Server.Root,
			Indexes:      cfg.IndexNames(),
			Strategies:   handler.Strategies,
			CacheEnabled: store.Enabled(),
			CacheEntries: store.Len,
		})
	}

	svc := &service{app: app, handler: handler, store: store}
	if cfg.Content.Watch && store.Enabled() {
		w, err := watch.New(cfg.Server.Root, store, logger)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("监听服务目录失败: %w", err)
		}
		svc.watcher = w
	}
	return svc, nil
}

// buildStrategies 按“模板 → 转译”的顺序注册启用的内容策略。
func buildStrategies(cfg *config.Config, fs afero.Fs) ([]fileserver.Strategy, error) {
	var strategies []fileserver.Strategy
	if cfg.Content.Templates {
		strategies = append(strategies, fileserver.NewTemplateStrategy(cfg.Content.TemplateExtension, render.NewRenderer(fs)))
	}
	if cfg.Content.Transpile {
		var t transpile.Transpiler = transpile.NewEsbuild()
		if len(cfg.Content.TranspileCommand) > 0 {
			cmd, err := transpile.NewCommand(cfg.Content.TranspileCommand)
			if err != nil {
				return nil, err
			}
			t = cmd
		}
		strategies = append(strategies, fileserver.NewTranspileStrategy(cfg.Server.Root, t))
	}
	return strategies, nil
}
