package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sambv/internal/app/port"
	"sambv/internal/app/provider"
	"sambv/internal/app/service"
	"sambv/internal/client"
	"sambv/internal/infrastructure/configloader"
	"sambv/internal/infrastructure/eventstream"
	"sambv/internal/infrastructure/flagstore"
	"sambv/internal/infrastructure/hostframe"
	networkclient "sambv/internal/infrastructure/network/client"
	networkdefinition "sambv/internal/infrastructure/network/definition"
	"sambv/internal/infrastructure/restapi"
	"sambv/internal/infrastructure/tokenloader"
	"sambv/internal/pkg/logger"
	"sambv/internal/pkg/metrics"

	"github.com/benbjohnson/clock"
	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP and websocket server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func runServe(ctx context.Context) error {
	cfg, err := configloader.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	zapLogger, err := logger.NewZap(cfg.Logging.Level, cfg.Logging.Development)
	if err != nil {
		return fmt.Errorf("init zap logger: %w", err)
	}
	defer func() { _ = zapLogger.Sync() }()
	logger.Init(zapLogger, cfg.Logging.Level)
	appLogger := logger.NewSlogAdapter()
	appLogger.Info("Logger initialized", "level", cfg.Logging.Level)

	metrics.MustRegisterMetrics()
	gin.SetMode(cfg.Server.Mode)

	network, err := networkdefinition.NewNetworkDefinitionProvider(appLogger, cfg.Chain.Identifier, cfg.Chain.RPCURL)
	if err != nil {
		return err
	}
	netDef := network.Current()
	zapLogger.Info("Network selected", zap.String("network", netDef.Identifier), zap.Uint64("chain_id", netDef.ChainID))

	limiter := rate.NewLimiter(rate.Limit(float64(cfg.DEXScreener.RequestsPerMinute)/60.0), cfg.DEXScreener.Burst)
	dexScreenerClient := client.NewDEXScreenerClient(
		cfg.DEXScreener.BaseURL,
		configloader.Millis(cfg.DEXScreener.RequestTimeoutMillis),
		limiter,
		zapLogger,
	)
	zeroExClient := client.NewZeroExClient(
		cfg.ZeroEx.BaseURL,
		cfg.ZeroEx.APIKey,
		configloader.Millis(cfg.ZeroEx.RequestTimeoutMillis),
		zapLogger,
	)

	nativeLogo := cfg.LogoCache.NativeLogoURL
	if netDef.NativeLogoURL != "" {
		nativeLogo = netDef.NativeLogoURL
	}
	logoService := service.NewLogoService(
		dexScreenerClient,
		clock.New(),
		time.Duration(cfg.LogoCache.TTLMinutes)*time.Minute,
		time.Duration(cfg.LogoCache.CleanupIntervalMinutes)*time.Minute,
		nativeLogo,
		appLogger,
	)
	searchService := service.NewTokenSearchService(dexScreenerClient, appLogger)
	quoteService := service.NewQuoteService(zeroExClient, cfg.ZeroEx.SlippagePercentage, appLogger)

	tokens, err := tokenloader.Load(cfg.TokensFile, netDef.ChainID, appLogger)
	if err != nil {
		return fmt.Errorf("load swap tokens: %w", err)
	}
	tokenProvider := provider.NewTokenProvider(tokens, appLogger)
	go func() {
		resolveCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		found := tokenProvider.ResolveLogos(resolveCtx, logoService)
		appLogger.Info("Token logos resolved", "found", found)
	}()

	host, err := hostframe.New(cfg.HostFrame, appLogger)
	if err != nil {
		return err
	}
	flags, err := flagstore.New(cfg.FlagStore, appLogger)
	if err != nil {
		return err
	}
	defer func() {
		if err := flags.Close(); err != nil {
			appLogger.Warn("Failed to close flag store", "error", err)
		}
	}()

	var chain port.BlockchainClient
	if netDef.RPCURL != "" {
		evm := networkclient.NewLazyEVMClient(
			netDef,
			configloader.Millis(cfg.Chain.RPCTimeoutMillis),
			configloader.Millis(cfg.Chain.RPCTimeoutMillis),
			cfg.Chain.MaxConcurrency,
			appLogger,
		)
		defer evm.Close()
		chain = evm
		appLogger.Info("Live portfolio balances enabled", "network", netDef.Identifier)
	}

	var prices port.PriceService
	if cfg.Prices.Enabled {
		prices = service.NewPriceService(
			dexScreenerClient,
			netDef,
			time.Duration(cfg.Prices.TTLSeconds)*time.Second,
			cfg.Prices.MaxConcurrency,
			appLogger,
		)
		appLogger.Info("Live portfolio prices enabled", "ttl_seconds", cfg.Prices.TTLSeconds)
	}

	var sessions *service.SessionManager
	hub := eventstream.NewHub(
		func(id string) bool {
			_, err := sessions.Get(id)
			return err == nil
		},
		originChecker(cfg.Server.AllowedOrigins),
		appLogger,
	)
	sessions = service.NewSessionManager(service.SessionDeps{
		Tokens: tokenProvider,
		Quotes: quoteService,
		Host:   host,
		Flags:  flags,
		Chain:  chain,
		Prices: prices,
		Leaderboard: service.NewLeaderboardService(
			cfg.Leaderboard.Entries,
			cfg.Leaderboard.CurrentUsername,
			cfg.Leaderboard.BaseXP,
			cfg.Leaderboard.CurrentAvatar,
		),
		Publisher: hub,
		Clock:     clock.New(),
		Logger:    appLogger,
	}, service.SessionConfig{
		QuoteDebounce:    configloader.Millis(cfg.Quote.DebounceMillis),
		ToastTTL:         configloader.Millis(cfg.Panels.ToastDismissMillis),
		SwapConfirm:      configloader.Millis(cfg.Panels.SwapConfirmMillis),
		LimitOrder:       configloader.Millis(cfg.Panels.LimitOrderMillis),
		Deposit:          configloader.Millis(cfg.Panels.DepositMillis),
		Launch:           configloader.Millis(cfg.Panels.LaunchMillis),
		Notification:     configloader.Millis(cfg.Panels.NotificationMillis),
		BlockExplorerURL: netDef.BlockExplorerURL,
		Vaults:           cfg.Vaults,
		Holdings:         cfg.Holdings,
	},
		time.Duration(cfg.Sessions.IdleTTLMinutes)*time.Minute,
		time.Duration(cfg.Sessions.CleanupIntervalMinutes)*time.Minute,
	)

	opts := restapi.RouterOptions{
		AllowOrigins: cfg.Server.AllowedOrigins,
		EnablePprof:  cfg.Server.Pprof,
		Events:       hub.Handler(),
	}
	if cfg.Swagger.Enabled {
		opts.SwaggerFile = cfg.Swagger.SpecPath
		zapLogger.Info("Swagger UI enabled", zap.String("path", "/docs/index.html"))
	}
	router := restapi.SetupRouter(
		restapi.NewSessionHandler(sessions, zapLogger),
		restapi.NewMarketHandler(tokenProvider, logoService, searchService, quoteService, network, zapLogger),
		zapLogger,
		opts,
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		zapLogger.Info("Server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-serverErr:
		if err != nil {
			zapLogger.Error("Failed to start server", zap.Error(err))
			return err
		}
	case <-ctx.Done():
	}
	zapLogger.Info("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownSeconds)*time.Second)
	defer cancelShutdown()

	hub.Close()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}
	sessions.Shutdown()

	zapLogger.Info("Server exiting")
	return nil
}

// originChecker accepts websocket upgrades from the configured CORS origins.
func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 || lo.Contains(allowed, "*") {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || lo.Contains(allowed, origin)
	}
}
