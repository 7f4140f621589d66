package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/itsatony/go-webtmpl"
	"github.com/itsatony/go-webtmpl/applog"
	"github.com/itsatony/go-webtmpl/errorpage"
	"github.com/itsatony/go-webtmpl/session"
)

func (c *cli) newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     CmdNameServe,
		Short:   HelpServeShort,
		Example: HelpServeExample,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runServe(cmd.Context())
		},
	}

	flags := cmd.Flags()
	flags.StringP(FlagAddr, FlagAddrShort, FlagDefaultAddr, "listen address")
	flags.Bool(FlagCache, false, "cache templates in memory and reload them on change")
	flags.String(FlagLogFolder, FlagDefaultLogDir, "folder of application.log and error.log")
	flags.String(FlagErrorPage, "", "error page template, inline HTML or a file")
	flags.String(FlagIndex, webtmpl.DefaultIndexName, "template served for /")
	flags.String(FlagSessPrefix, "", "session key prefix")

	c.bind(flags, map[string]string{
		KeyServerAddr:     FlagAddr,
		KeyTemplatesCache: FlagCache,
		KeyLogFolder:      FlagLogFolder,
		KeyErrorTemplate:  FlagErrorPage,
		KeyTemplatesIndex: FlagIndex,
		KeySessionPrefix:  FlagSessPrefix,
	})
	return cmd
}

// server is everything serve runs, built before anything starts.
type server struct {
	app     *applog.App
	handler http.Handler
	watcher *webtmpl.Watcher
}

// buildServer wires the logger, engine, error page, sessions and metrics
// into one http.Handler.
func (c *cli) buildServer() (*server, error) {
	app, err := applog.New(c.v.GetBool(KeyLogDebug), applog.Config{
		Folder:   c.v.GetString(KeyLogFolder),
		Prefix:   c.v.GetString(KeyLogPrefix),
		Timezone: c.v.GetString(KeyLogTimezone),
	})
	if err != nil {
		return nil, fail(ExitCodeInputError, ErrMsgLoggerFailed, err)
	}
	logger := app.Logger()

	var source webtmpl.TemplateSource = webtmpl.NewOSSource()
	var cache *webtmpl.CachedSource
	if c.v.GetBool(KeyTemplatesCache) {
		cache = webtmpl.NewCachedSource(source, webtmpl.DefaultCacheConfig())
		source = cache
	}

	engine, err := c.newEngine(
		webtmpl.WithSource(source),
		webtmpl.WithDebugFlag(app),
		webtmpl.WithLogger(logger),
	)
	if err != nil {
		_ = app.Close()
		return nil, err
	}

	page, err := errorpage.New(
		errorpage.WithTemplate(c.v.GetString(KeyErrorTemplate)),
		errorpage.WithTimezone(c.v.GetString(KeyLogTimezone)),
		errorpage.WithLogger(logger),
	)
	if err != nil {
		_ = app.Close()
		return nil, fail(ExitCodeInputError, ErrMsgErrorPageFailed, err)
	}

	registry := prometheus.NewRegistry()
	handler, err := webtmpl.NewHandler(engine,
		webtmpl.WithIndex(c.v.GetString(KeyTemplatesIndex)),
		webtmpl.WithVars(sessionVars),
		webtmpl.WithErrorFunc(page.ServeError),
		webtmpl.WithHandlerLogger(logger),
		webtmpl.WithMetrics(registry),
	)
	if err != nil {
		_ = app.Close()
		return nil, fail(ExitCodeError, ErrMsgEngineFailed, err)
	}

	sessions := session.NewManager(session.NewMemoryStore(),
		session.WithPrefix(c.v.GetString(KeySessionPrefix)),
		session.WithLogger(logger),
	)
	minutes := c.v.GetInt(KeySessionMinutes)

	mux := http.NewServeMux()
	mux.Handle(PathMetrics, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	mux.Handle(PathRoot, page.Recover(sessions.Middleware(registerSession(app, minutes, handler))))

	srv := &server{app: app, handler: mux}
	if cache != nil {
		w, err := webtmpl.NewWatcher(engine.Folder(), cache, 0, logger)
		if err != nil {
			_ = app.Close()
			return nil, fail(ExitCodeInputError, ErrMsgWatcherFailed, err)
		}
		w.OnChange(func(paths []string) {
			logger.Info(LogMsgTemplateChange, zap.Strings(LogFieldPaths, paths))
		})
		srv.watcher = w
	}
	return srv, nil
}

// registerSession logs each request and keeps the visitor session valid.
func registerSession(app *applog.App, minutes int, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		app.LogRequest(r)
		if s, ok := session.FromContext(r.Context()); ok {
			if !s.IsRegistered() || s.IsExpired() {
				s.Register(minutes)
			} else {
				s.Renew()
			}
		}
		next.ServeHTTP(w, r)
	})
}

// sessionVars exposes the session values as placeholders.
func sessionVars(r *http.Request) map[string]any {
	s, ok := session.FromContext(r.Context())
	if !ok {
		return nil
	}
	return s.All()
}

func (c *cli) runServe(ctx context.Context) error {
	srv, err := c.buildServer()
	if err != nil {
		return err
	}
	defer srv.app.Close()
	logger := srv.app.Logger()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	addr := c.v.GetString(KeyServerAddr)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.handler,
		ReadHeaderTimeout: ServerReadHeaderTimeout,
		ReadTimeout:       ServerReadTimeout,
		WriteTimeout:      ServerWriteTimeout,
		IdleTimeout:       ServerIdleTimeout,
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info(LogMsgServerStarting, zap.String(LogFieldAddr, addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		logger.Info(LogMsgServerStopping)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ServerShutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})
	if srv.watcher != nil {
		g.Go(func() error {
			return srv.watcher.Run(gCtx)
		})
	}

	if err := g.Wait(); err != nil {
		return fail(ExitCodeError, ErrMsgServeFailed, err)
	}
	logger.Info(LogMsgServerStopped)
	return nil
}
