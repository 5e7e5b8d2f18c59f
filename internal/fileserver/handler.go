package fileserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/otg-serve/otg-serve/internal/cache"
	"github.com/otg-serve/otg-serve/internal/files"
	"github.com/otg-serve/otg-serve/internal/plugin"
	"github.com/otg-serve/otg-serve/internal/response"
)

// Options 汇总分发器依赖，均在启动时构建一次。
type Options struct {
	Root     string
	Gate     *files.Gate
	Resolver *files.Resolver
	Cache    *cache.Store
	Logger   *logrus.Logger
	// Strategies 按顺序注册，先注册者优先。
	Strategies []Strategy

	Indexing          bool
	CORS              bool
	Templates         bool
	TemplateExtension string
	Verbose           bool

	Now func() time.Time
}

// Handler 负责 orchestrate “缓存查找 → 解析 → 内容分支 → 写出” 的全流程。
type Handler struct {
	root       string
	gate       *files.Gate
	resolver   *files.Resolver
	cache      *cache.Store
	logger     *logrus.Logger
	strategies *plugin.Registry[Strategy]

	indexing    bool
	cors        bool
	templates   bool
	templateExt string
	verbose     bool
	now         func() time.Time
}

// WriteFunc 把最终响应交给传输层，返回的错误只会被记录。
type WriteFunc func(response.Response) error

// NewHandler 校验依赖并注册内容策略；策略名称冲突会直接返回错误。
func NewHandler(opts Options) (*Handler, error) {
	if opts.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if opts.Root == "" {
		return nil, errors.New("root is required")
	}
	if opts.Gate == nil {
		return nil, errors.New("readability gate is required")
	}
	if opts.Resolver == nil {
		return nil, errors.New("resolver is required")
	}
	store := opts.Cache
	if store == nil {
		store = cache.NewStore(cache.Options{})
	}
	registry := plugin.NewRegistry[Strategy]()
	for _, s := range opts.Strategies {
		if err := registry.Register(s); err != nil {
			return nil, fmt.Errorf("注册内容策略失败: %w", err)
		}
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Handler{
		root:        filepath.Clean(opts.Root),
		gate:        opts.Gate,
		resolver:    opts.Resolver,
		cache:       store,
		logger:      opts.Logger,
		strategies:  registry,
		indexing:    opts.Indexing,
		cors:        opts.CORS,
		templates:   opts.Templates,
		templateExt: opts.TemplateExtension,
		verbose:     opts.Verbose,
		now:         now,
	}, nil
}

// Strategies returns the registered strategy names in priority order.
func (h *Handler) Strategies() []string {
	return h.strategies.Names()
}

// Serve 为 req 产生且只产生一个响应。分支中的任何错误都被转换为 500，
// 只有写出失败会作为 error 返回（已记录日志）。
func (h *Handler) Serve(ctx context.Context, req *Request, write WriteFunc) error {
	ex := newExchange(h, req, write)
	resp, hit, err := h.dispatch(ctx, req)
	if err != nil {
		resp = h.failure(err)
	}
	ex.fromCache = hit
	return ex.respond(resp)
}

func (h *Handler) dispatch(ctx context.Context, req *Request) (response.Response, bool, error) {
	if !files.Within(h.root, req.FilePath) {
		return response.Response{}, false, pkgerrors.Wrapf(ErrPathEscapesRoot, "path %s", req.Path)
	}

	if cached, ok := h.cache.Lookup(req.Path); ok {
		return cached, true, nil
	}

	file, ok, err := h.resolver.Resolve(req.FilePath)
	if err != nil {
		return response.Response{}, false, err
	}
	if ok {
		req.FilePath = file
		if strategy, found := h.strategies.Match(file); found {
			resp, err := strategy.Serve(ctx, req)
			return resp, false, err
		}
		resp, err := h.static(file, http.StatusOK, true)
		return resp, false, err
	}

	if h.indexing && h.gate.IsReadableDir(req.FilePath) {
		resp, err := h.listing(req)
		return resp, false, err
	}
	resp, err := h.notFound(ctx, req)
	return resp, false, err
}

func (h *Handler) static(file string, status int, cacheable bool) (response.Response, error) {
	body, err := afero.ReadFile(h.gate.FS(), file)
	if err != nil {
		return response.Response{}, pkgerrors.Wrapf(err, "read %s", file)
	}
	header := http.Header{}
	header.Set("Content-Type", contentTypeFor(file))
	return response.New(status, body, header, cacheable), nil
}

func (h *Handler) listing(req *Request) (response.Response, error) {
	entries, err := files.List(h.gate.FS(), req.FilePath)
	if err != nil {
		return response.Response{}, err
	}
	body, err := files.RenderListing(req.Path, entries)
	if err != nil {
		return response.Response{}, err
	}
	header := http.Header{}
	header.Set("Content-Type", htmlContentType)
	return response.New(http.StatusOK, body, header, false), nil
}

// notFound 依次尝试根目录下的 404.html、404 模板，最后返回纯文本说明。
// 这些响应都不缓存，新建的文件可以立即被访问到。
func (h *Handler) notFound(ctx context.Context, req *Request) (response.Response, error) {
	page := filepath.Join(h.root, "404.html")
	if h.isReadableFile(page) {
		return h.static(page, http.StatusNotFound, false)
	}
	if h.templates && h.templateExt != "" {
		tpl := filepath.Join(h.root, "404"+h.templateExt)
		if strategy, ok := h.strategies.Get("template"); ok && h.isReadableFile(tpl) {
			req.FilePath = tpl
			resp, err := strategy.Serve(ctx, req)
			if err != nil {
				return response.Response{}, err
			}
			return resp.WithStatus(http.StatusNotFound).Uncacheable(), nil
		}
	}
	body := fmt.Sprintf("Cannot get %s: resource not found", req.Path)
	return response.Text(http.StatusNotFound, body, textContentType, false), nil
}

func (h *Handler) isReadableFile(p string) bool {
	if !h.gate.CanRead(p) {
		return false
	}
	info, err := h.gate.FS().Stat(p)
	return err == nil && !info.IsDir()
}

func (h *Handler) failure(err error) response.Response {
	return response.Text(http.StatusInternalServerError, failureBody(err, h.verbose), textContentType, false)
}

// finalize 在每个分支之后统一补齐 Content-Length 与 CORS 头。
func (h *Handler) finalize(req *Request, resp response.Response) response.Response {
	resp = resp.WithContentLength()
	if !h.cors {
		return resp.WithoutHeader("Access-Control-Allow-Origin")
	}
	origin := strings.TrimSpace(req.Header.Get("Origin"))
	if origin == "" {
		origin = "*"
	}
	return resp.WithHeader("Access-Control-Allow-Origin", origin)
}
