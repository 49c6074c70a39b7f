package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	cartapp "github.com/ugmart/storefront/internal/application/cart"
	catalogapp "github.com/ugmart/storefront/internal/application/catalog"
	"github.com/ugmart/storefront/internal/application/checkout"
	customerapp "github.com/ugmart/storefront/internal/application/customer"
	identityapp "github.com/ugmart/storefront/internal/application/identity"
	paymentapp "github.com/ugmart/storefront/internal/application/payment"
	promotionapp "github.com/ugmart/storefront/internal/application/promotion"
	settingsapp "github.com/ugmart/storefront/internal/application/settings"
	"github.com/ugmart/storefront/internal/application/sitemap"
	tradeapp "github.com/ugmart/storefront/internal/application/trade"
	"github.com/ugmart/storefront/internal/domain/payment"
	"github.com/ugmart/storefront/internal/domain/shared"
	"github.com/ugmart/storefront/internal/infrastructure/auth"
	"github.com/ugmart/storefront/internal/infrastructure/backend"
	"github.com/ugmart/storefront/internal/infrastructure/cache"
	"github.com/ugmart/storefront/internal/infrastructure/config"
	"github.com/ugmart/storefront/internal/infrastructure/logger"
	"github.com/ugmart/storefront/internal/infrastructure/persistence"
	"github.com/ugmart/storefront/internal/infrastructure/protection"
	"github.com/ugmart/storefront/internal/infrastructure/storage"
	"github.com/ugmart/storefront/internal/infrastructure/telemetry"
	"github.com/ugmart/storefront/internal/interfaces/http/handler"
	"github.com/ugmart/storefront/internal/interfaces/http/middleware"
	"github.com/ugmart/storefront/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	ctx := context.Background()
	bootLog, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	// Telemetry providers come first so the final logger can tee into OTLP
	telemetryCfg := telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetryCfg, bootLog)
	if err != nil {
		bootLog.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetryCfg, 15*time.Second, bootLog)
	if err != nil {
		bootLog.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	logProvider, err := telemetry.NewLoggerProvider(ctx, telemetryCfg, bootLog)
	if err != nil {
		bootLog.Fatal("Failed to initialize logger provider", zap.Error(err))
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	}, logger.WithTee(logProvider.ZapCore(telemetryCfg.ServiceName, logger.ParseLevel(cfg.Log.Level))))
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting UG Mart storefront gateway",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("backend", cfg.Backend.BaseURL),
	)

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         cfg.Profiling.Enabled,
		ServerAddress:   cfg.Profiling.ServerAddress,
		ApplicationName: cfg.Profiling.ApplicationTag,
		Tags:            map[string]string{"env": cfg.App.Env},
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if cfg.Profiling.Enabled {
		tracerProvider.EnableSpanProfiles()
	}

	meter := meterProvider.Meter("ugmart-storefront")
	httpMetrics, err := telemetry.NewHTTPMetrics(meter)
	if err != nil {
		log.Fatal("Failed to create HTTP metrics", zap.Error(err))
	}
	checkoutMetrics, err := telemetry.NewCheckoutMetrics(meter, log)
	if err != nil {
		log.Fatal("Failed to create checkout metrics", zap.Error(err))
	}

	// Redis, when enabled and reachable, backs limits, capture claims,
	// revoked tokens and the read cache. Otherwise everything stays in memory.
	cacheFactory := cache.NewFactory(cfg.Redis, cache.WithLogger(log))
	defer func() {
		if err := cacheFactory.Close(); err != nil {
			log.Error("Error closing redis client", zap.Error(err))
		}
	}()

	var (
		limitStore protection.LimitStore
		blacklist  auth.TokenBlacklist
	)
	if client := cacheFactory.Client(); client != nil {
		limitStore = protection.NewRedisStore(client, "ugmart:limit:")
		blacklist = auth.NewRedisTokenBlacklist(client)
	} else {
		memStore := protection.NewMemoryStore(0)
		defer func() { _ = memStore.Close() }()
		limitStore = memStore
		blacklist = auth.NewInMemoryTokenBlacklist()
	}
	claims := cacheFactory.IdempotencyStore()
	defer func() { _ = claims.Close() }()

	var readCache shared.ReadCache
	if cfg.Cache.Enabled {
		readCache = cacheFactory.ReadCache()
	}

	verifier := auth.NewJWTVerifier(cfg.JWT, auth.WithBlacklist(blacklist))
	if cfg.JWT.Secret == "" {
		log.Warn("JWT secret is not set; every protected page and endpoint will refuse access")
	}

	protectionService, err := protection.NewService(protection.Settings{
		Enabled:           cfg.Protection.Enabled,
		DryRun:            cfg.Protection.DryRun,
		HostingCIDRs:      cfg.Protection.HostingCIDRs,
		DisposableDomains: cfg.Protection.DisposableDomains,
		VerifyMX:          cfg.Protection.VerifyMX,
		VerifyBots:        cfg.Protection.VerifyBots,
	}, limitStore, net.DefaultResolver,
		protection.WithServiceLogger(log),
		protection.WithDecisionHook(func(ctx context.Context, policy protection.PolicyName, d protection.Decision) {
			checkoutMetrics.RecordProtectionDecision(ctx, string(policy), conclusion(d), string(d.Reason))
		}),
	)
	if err != nil {
		log.Fatal("Failed to configure protection", zap.Error(err))
	}

	// Object storage for uploaded product and banner images
	var images shared.ImageStore
	if cfg.Storage.Enabled {
		s3Store, err := storage.NewS3ObjectStorage(&cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to configure object storage", zap.Error(err))
		}
		if err := s3Store.EnsureBucket(ctx); err != nil {
			log.Warn("Image bucket check failed", zap.String("bucket", s3Store.Bucket()), zap.Error(err))
		}
		images = s3Store
	}

	// Payment ledger
	var ledger payment.Repository
	healthChecks := map[string]handler.HealthCheck{}
	if cfg.Database.Enabled {
		gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
		db, err := persistence.NewDatabase(&cfg.Database, persistence.WithGormLogger(gormLog))
		if err != nil {
			log.Fatal("Failed to connect to ledger database", zap.Error(err))
		}
		defer func() {
			if err := db.Close(); err != nil {
				log.Error("Error closing database", zap.Error(err))
			}
		}()
		if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
			Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
			DBName:          cfg.Database.DBName,
			SlowQueryThresh: 200 * time.Millisecond,
			WithVariables:   cfg.App.Env == "development",
		}, log); err != nil {
			log.Warn("Failed to register ledger tracing", zap.Error(err))
		}
		if err := migrateLedger(db, cfg.Database.Driver, log); err != nil {
			log.Fatal("Failed to migrate ledger", zap.Error(err))
		}
		ledger = persistence.NewGormPaymentRepository(db.DB)
		healthChecks["database"] = func(context.Context) error { return db.Ping() }
		log.Info("Payment ledger connected", zap.String("driver", cfg.Database.Driver))
	} else {
		log.Warn("Payment ledger disabled; captures rely on the checkout form alone")
	}
	if client := cacheFactory.Client(); client != nil {
		healthChecks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
	}

	// Store backend clients
	backendClient, err := backend.NewClient(backend.Config{
		BaseURL: cfg.Backend.BaseURL,
		Timeout: cfg.Backend.Timeout,
	}, backend.WithLogger(log))
	if err != nil {
		log.Fatal("Invalid backend configuration", zap.Error(err))
	}
	productClient := backend.NewProductClient(backendClient)
	categoryClient := backend.NewCategoryClient(backendClient)
	cartClient := backend.NewCartClient(backendClient)
	couponClient := backend.NewCouponClient(backendClient)
	orderClient := backend.NewOrderClient(backendClient)
	addressClient := backend.NewAddressClient(backendClient)
	authClient := backend.NewAuthClient(backendClient)
	settingsClient := backend.NewSettingsClient(backendClient)

	gateway, provider, err := paymentGateway(cfg.PayPal, backendClient, log)
	if err != nil {
		log.Fatal("Failed to configure PayPal", zap.Error(err))
	}

	// Application services
	catalogService := catalogapp.NewService(productClient, categoryClient,
		catalogapp.WithReadCache(readCache, cfg.Cache.TTL),
		catalogapp.WithImageStore(images),
		catalogapp.WithGuard(protectionService),
		catalogapp.WithLogger(log),
	)
	debouncer := cartapp.NewDebouncer(cfg.Checkout.CartDebounce)
	cartService := cartapp.NewService(cartClient, debouncer,
		cartapp.WithSyncRecorder(checkoutMetrics),
		cartapp.WithLogger(log),
	)
	couponService := promotionapp.NewService(couponClient)
	checkoutOpts := []checkout.Option{
		checkout.WithIdempotency(claims, checkout.DefaultCaptureClaimTTL),
		checkout.WithGuard(protectionService),
		checkout.WithMetrics(checkoutMetrics, provider),
		checkout.WithLogger(log),
	}
	if ledger != nil {
		checkoutOpts = append(checkoutOpts, checkout.WithLedger(ledger))
	}
	checkoutService := checkout.NewService(cartClient, couponClient, orderClient, gateway,
		decimal.NewFromFloat(cfg.Checkout.UGXPerUSD), checkoutOpts...)
	orderService := tradeapp.NewOrderService(orderClient)
	addressService := customerapp.NewAddressService(addressClient)
	authService := identityapp.NewAuthService(authClient,
		identityapp.WithGuard(protectionService),
		identityapp.WithRevoker(verifier),
		identityapp.WithLogger(log),
	)
	settingsService := settingsapp.NewService(settingsClient,
		settingsapp.WithReadCache(readCache, cfg.Cache.TTL),
		settingsapp.WithImageStore(images),
		settingsapp.WithLogger(log),
	)
	sitemapBuilder := sitemap.NewBuilder(catalogService, cfg.App.PublicURL, log)

	handlers := router.Handlers{
		Auth:     handler.NewAuthHandler(authService),
		Catalog:  handler.NewCatalogHandler(catalogService),
		Cart:     handler.NewCartHandler(cartService),
		Coupon:   handler.NewCouponHandler(couponService),
		Checkout: handler.NewCheckoutHandler(checkoutService),
		Order:    handler.NewOrderHandler(orderService),
		Address:  handler.NewAddressHandler(addressService),
		Settings: handler.NewSettingsHandler(settingsService),
	}
	if ledger != nil {
		handlers.Payment = handler.NewPaymentHandler(paymentapp.NewLedgerService(ledger))
	} else {
		handlers.Payment = handler.NewPaymentHandler(paymentapp.NewLedgerService(disabledLedger{}))
	}

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware stack, in order:
	// 1. RequestID
	// 2. Recovery
	// 3. Logger
	// 4. Tracing (when enabled)
	// 5. Metrics
	// 6. Security headers
	// 7. CORS
	// 8. BodyLimit
	// 9. RateLimit (when enabled)
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log, "/health"))
	if cfg.Telemetry.Enabled {
		tracingCfg := middleware.DefaultTracingConfig()
		tracingCfg.ServiceName = telemetryCfg.ServiceName
		engine.Use(middleware.TracingWithConfig(tracingCfg))
	}
	engine.Use(middleware.HTTPMetrics(httpMetrics))
	engine.Use(middleware.SecureWithConfig(middleware.DefaultSecurityConfig()))
	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsCfg.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsCfg.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(corsCfg))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	if cfg.HTTP.RateLimitEnabled {
		globalLimiter, err := protection.NewLimiter(protection.LimitConfig{
			Name:      "global",
			Algorithm: protection.SlidingWindow,
			Max:       cfg.HTTP.RateLimitRequests,
			Window:    cfg.HTTP.RateLimitWindow,
		}, limitStore)
		if err != nil {
			log.Fatal("Invalid rate limit configuration", zap.Error(err))
		}
		engine.Use(middleware.RateLimit(globalLimiter, log))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Request-scoped identity for everything below
	engine.Use(middleware.RequestContext())
	engine.Use(middleware.Authenticate(verifier, log))
	if cfg.Telemetry.Enabled {
		engine.Use(middleware.TracingAttributeInjector())
		engine.Use(middleware.SpanErrorMarker())
	}
	if cfg.Profiling.Enabled {
		engine.Use(middleware.Profiling())
	}

	engine.GET("/health", handler.NewHealthHandler(healthChecks).Health)
	engine.GET("/sitemap.xml", handler.NewSitemapHandler(sitemapBuilder).Sitemap)

	// /api/* is the backend, reached through the same origin as the pages
	apiProxy, err := middleware.NewReverseProxy(cfg.Backend.BaseURL, log)
	if err != nil {
		log.Fatal("Invalid backend URL for proxy", zap.Error(err))
	}
	engine.Any("/api/*path", middleware.APIProxy(apiProxy))

	// Typed gateway API
	r := router.New(engine).Mount(router.StorefrontSections(handlers, router.Access{
		RequireAuth:  middleware.RequireAuth(),
		RequireAdmin: middleware.RequireAdmin(),
	})...)
	r.Setup()
	log.Info("Gateway API mounted", zap.String("prefix", r.Prefix()), zap.Int("routes", len(r.Routes())))

	// Everything else is a page: guard it, then hand it to the renderer
	var pages http.Handler
	if cfg.Frontend.UpstreamURL != "" {
		pageProxy, err := middleware.NewReverseProxy(cfg.Frontend.UpstreamURL, log)
		if err != nil {
			log.Fatal("Invalid frontend upstream URL", zap.Error(err))
		}
		pages = pageProxy
	}
	engine.NoRoute(middleware.RouteGuard(verifier, pages, cfg.Cookie, log))

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		var err error
		if cfg.TLS.Enabled {
			log.Info("Server starting with TLS", zap.String("addr", srv.Addr))
			err = srv.ListenAndServeTLS(cfg.TLS.CertFile, cfg.TLS.KeyFile)
		} else {
			log.Info("Server starting", zap.String("addr", srv.Addr))
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	// Pending quantity changes are written before the process exits
	log.Info("Flushing cart writes", zap.Int("pending", debouncer.Pending()))
	cartService.Flush()
	debouncer.Stop()

	if err := profiler.Stop(); err != nil {
		log.Warn("Error stopping profiler", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Error shutting down tracer provider", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Error shutting down meter provider", zap.Error(err))
	}
	log.Info("Server exited gracefully")
	if err := logProvider.Shutdown(shutdownCtx); err != nil {
		bootLog.Warn("Error shutting down logger provider", zap.Error(err))
	}
}
