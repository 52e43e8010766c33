package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"finbot/internal/advice"
	"finbot/internal/advice/gemini"
	"finbot/internal/backend"
	"finbot/internal/bot"
	"finbot/internal/cache"
	"finbot/internal/cli"
	"finbot/internal/config"
	apphttp "finbot/internal/http"
	"finbot/internal/ledger"
	applog "finbot/internal/log"
	"finbot/internal/metrics"
	"finbot/internal/ratelimit"
	"finbot/internal/telegram"
)

func main() {
	cli.LoadEnvFile()

	cfg := config.Load()
	logger := cli.SetupLogger(cfg)
	logger.Info("Starting finbot")
	cli.MustValidate(logger, cfg.Validate)

	loc, err := cfg.Location()
	if err != nil {
		logger.Error("Invalid timezone", applog.FieldError, err)
		os.Exit(1)
	}

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err)
		os.Exit(1)
	}
	result, err := backend.NewFactory(logger).Create(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", applog.FieldError, err, "backend", backendCfg.Type.String())
		os.Exit(1)
	}

	cacheManager := cache.NewManager(logger.WithComponent(applog.ComponentLedger))
	userCache := cache.NewLRUCache[int64, struct{}](cfg.UserCacheSize, cfg.UserCacheTTL)
	cacheManager.Register(userCache)
	cacheManager.StartCleanup(10 * time.Minute)

	ledgerOpts := []ledger.Option{
		ledger.WithUserCache(userCache),
		ledger.WithLocation(loc),
		ledger.WithLogger(logger),
	}
	if result.Events != nil {
		ledgerOpts = append(ledgerOpts, ledger.WithEvents(result.Events))
	}
	service := ledger.NewService(result.Store, ledgerOpts...)
	format := ledger.NewFormatter(cfg.CurrencySymbol, loc)
	m := metrics.New()

	completer, err := gemini.New(ctx, gemini.Config{
		APIKey:  cfg.GeminiAPIKey,
		Model:   cfg.GeminiModel,
		Timeout: cfg.GeminiTimeout,
	}, logger)
	if err != nil {
		logger.Error("Failed to initialize Gemini client", applog.FieldError, err)
		os.Exit(1)
	}

	adviceLimiter := ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: cfg.AdviceRatePerMinute})
	m.WatchLimiter("advice", limiterStats(adviceLimiter))
	responder := advice.NewResponder(service, completer, format,
		advice.WithLimiter(adviceLimiter),
		advice.WithMetrics(m),
		advice.WithLogger(logger))
	dispatcher := bot.NewDispatcher(service, responder, format, m, logger)

	api, err := telegram.Connect(cfg.TelegramToken)
	if err != nil {
		logger.Error("Failed to connect to Telegram", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Authorized on Telegram", "bot", api.Self.UserName)
	tg := telegram.New(api, dispatcher, time.Duration(cfg.PollTimeout)*time.Second, logger)

	var (
		srv           *apphttp.Server
		scrapeLimiter *ratelimit.Limiter
	)
	if cfg.HTTPAddr != "" {
		scrapeLimiter = ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: 60})
		m.WatchLimiter("ops_http", limiterStats(scrapeLimiter))
		srv = apphttp.NewServer(cfg.HTTPAddr, apphttp.Options{
			Store:   result.Store,
			Metrics: m,
			Limiter: scrapeLimiter,
			Logger:  logger,
		})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// A closed update channel stops the whole process.
		defer cancel()
		return tg.Run(gctx)
	})
	if srv != nil {
		g.Go(srv.ListenAndServe)
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer shutdownCancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	runErr := g.Wait()
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		logger.Error("Bot stopped with error", applog.FieldError, runErr)
	}

	st := userCache.Stats()
	logger.Info("User cache stats", "hits", st.Hits, "misses", st.Misses, "size", st.Size)

	cli.RunCleanup(logger, 30*time.Second, func(context.Context) error {
		cacheManager.Stop()
		adviceLimiter.Stop()
		if scrapeLimiter != nil {
			scrapeLimiter.Stop()
		}
		return result.Cleanup()
	})

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		os.Exit(1)
	}
}

func limiterStats(rl *ratelimit.Limiter) func() (int64, int64) {
	return func() (int64, int64) {
		s := rl.GetMetrics()
		return s.TotalHits, s.ClientCount
	}
}
