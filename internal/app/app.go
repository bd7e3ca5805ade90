// Package app wires the application together: configuration, storage,
// domain services, HTTP handlers, and graceful shutdown.
package app

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/almasdimas/shop-api/db"
	"github.com/almasdimas/shop-api/internal/domain/auth"
	"github.com/almasdimas/shop-api/internal/domain/cart"
	"github.com/almasdimas/shop-api/internal/domain/order"
	"github.com/almasdimas/shop-api/internal/domain/product"
	"github.com/almasdimas/shop-api/internal/handler"
	"github.com/almasdimas/shop-api/internal/memstore"
	"github.com/almasdimas/shop-api/internal/repository"
	"github.com/almasdimas/shop-api/pkg/health"
	"github.com/almasdimas/shop-api/pkg/httpmiddleware"
)

// storage bundles the repository ports provided by a persistence adapter.
type storage struct {
	products product.Repository
	carts    cart.Repository
	orders   order.Repository
	apikeys  auth.Repository
	tx       order.Transactor
	ping     func(ctx context.Context) error
	close    func()
}

// Run creates all dependencies, starts the HTTP server, and handles
// graceful shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing",
		zap.String("addr", cfg.Addr),
		zap.String("storage", cfg.Storage.Driver),
	)

	st, err := openStorage(ctx, lg, cfg)
	if err != nil {
		return err
	}
	defer st.close()

	// Health check service.
	healthSvc := health.New()
	if st.ping != nil {
		healthSvc.AddReadinessCheck("postgres", 5*time.Second, st.ping)
	}
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	// Domain services.
	cartSvc := cart.NewService(st.products, st.carts)
	orderSvc := order.NewService(st.products, st.carts, st.orders, st.tx)
	authenticator := auth.NewAuthenticator(st.apikeys, []byte(cfg.Storage.APIKeyPepper))

	// HTTP handlers.
	h := handler.New(
		handler.Config{ImageBaseURL: cfg.ImageBaseURL},
		st.products,
		cartSvc,
		orderSvc,
		authenticator,
	)

	mux := http.NewServeMux()
	h.Register(mux)
	mux.HandleFunc("GET /livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("GET /readyz", healthSvc.ReadyEndpoint)
	mux.HandleFunc("GET /health", healthEndpoint)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(
			otelhttp.NewHandler(mux, "shop-api",
				otelhttp.WithTracerProvider(m.TracerProvider()),
				otelhttp.WithMeterProvider(m.MeterProvider()),
			),
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins:     cfg.CORS.Origins,
				AllowHeaders:     []string{"Content-Type", "Authorization", "api_key"},
				AllowCredentials: cfg.CORS.AllowCredentials,
				MaxAge:           86400,
			}),
			httpmiddleware.RateLimitWithCleanup(ctx, httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.LogRequests(),
		),
	}

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}

// openStorage builds the configured persistence adapter.
func openStorage(ctx context.Context, lg *zap.Logger, cfg *Config) (*storage, error) {
	switch cfg.Storage.Driver {
	case DriverPostgres:
		pool, err := repository.NewPool(ctx, cfg.Storage.DatabaseURL)
		if err != nil {
			return nil, errors.Wrap(err, "create db pool")
		}
		if err := repository.RunMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, errors.Wrap(err, "run migrations")
		}
		return &storage{
			products: repository.NewProductRepository(pool),
			carts:    repository.NewCartRepository(pool),
			orders:   repository.NewOrderRepository(pool),
			apikeys:  repository.NewAPIKeyRepository(pool),
			tx:       repository.NewTransactor(pool),
			ping:     pool.Ping,
			close:    pool.Close,
		}, nil

	case DriverMemory:
		store, err := memstore.NewFromSeed(db.SeedProducts)
		if err != nil {
			return nil, errors.Wrap(err, "seed memory store")
		}
		pepper := []byte(cfg.Storage.APIKeyPepper)
		store.AddAPIKey(auth.HashKey(cfg.Storage.DevAPIKey, pepper), auth.Identity{
			KeyID:  uuid.New().String(),
			UserID: "dev-user",
			Name:   "development user",
		})
		store.AddAPIKey(auth.HashKey(cfg.Storage.DevAdminAPIKey, pepper), auth.Identity{
			KeyID:  uuid.New().String(),
			UserID: "dev-admin",
			Name:   "development admin",
			Admin:  true,
		})
		lg.Info("Using in-memory storage with embedded catalog")
		return &storage{
			products: store.Products(),
			carts:    store.Carts(),
			orders:   store.Orders(),
			apikeys:  store.APIKeys(),
			tx:       store,
			close:    func() {},
		}, nil

	default:
		return nil, errors.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

// healthEndpoint serves the legacy GET /health route with the standard
// response envelope.
func healthEndpoint(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success":   true,
		"message":   "Shop API operational",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
