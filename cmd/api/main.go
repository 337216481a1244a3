package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/agrishop-billing/internal/application/service"
	"github.com/sangkips/agrishop-billing/internal/config"
	domainRepo "github.com/sangkips/agrishop-billing/internal/domain/repository"
	"github.com/sangkips/agrishop-billing/internal/infrastructure/database"
	"github.com/sangkips/agrishop-billing/internal/infrastructure/memory"
	"github.com/sangkips/agrishop-billing/internal/infrastructure/repository"
	"github.com/sangkips/agrishop-billing/internal/presentation/http/handler"
	"github.com/sangkips/agrishop-billing/internal/presentation/http/middleware"
	"github.com/sangkips/agrishop-billing/internal/presentation/http/routes"
	"github.com/sangkips/agrishop-billing/pkg/invoice"
	"github.com/sangkips/agrishop-billing/pkg/logger"
)

// repositories is the storage backend selected by DB_DRIVER
type repositories struct {
	products    domainRepo.ProductRepository
	employees   domainRepo.EmployeeRepository
	dealers     domainRepo.DealerRepository
	bills       domainRepo.BillRepository
	sequences   domainRepo.SequenceRepository
	idempotency domainRepo.IdempotencyRepository
	tx          domainRepo.TxManager
	close       func()
}

func main() {
	cfg := config.Load()

	log, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.Log.Development,
	})
	if err != nil {
		log = logger.Default()
		log.Warnw("falling back to default logger", "error", err)
	}
	defer func() { _ = log.Sync() }()

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	repos, err := openRepositories(cfg, log)
	if err != nil {
		log.Fatalw("failed to open storage", "driver", cfg.Database.Driver, "error", err)
	}
	defer repos.close()

	location, err := time.LoadLocation(cfg.Database.Timezone)
	if err != nil {
		log.Warnw("unknown timezone, using UTC", "timezone", cfg.Database.Timezone, "error", err)
		location = time.UTC
	}

	renderer := invoice.NewRenderer(invoice.Branding{
		CompanyName: cfg.Invoice.CompanyName,
		Tagline:     cfg.Invoice.Tagline,
		Contact:     cfg.Invoice.Contact,
		TaxID:       cfg.Invoice.TaxID,
		Currency:    cfg.Invoice.Currency,
	}, invoice.WithLocation(location), invoice.WithLogger(log.WithComponent("invoice")))

	billService := service.NewBillService(
		service.NewPricingEngine(repos.products),
		repos.bills,
		repos.products,
		repos.employees,
		repos.sequences,
		repos.tx,
		renderer,
		cfg.Billing,
		log,
	)
	productService := service.NewProductService(repos.products)
	employeeService := service.NewEmployeeService(repos.employees)
	dealerService := service.NewDealerService(repos.dealers, repos.employees)
	dashboardService := service.NewDashboardService(repos.products, repos.bills)

	handlers := &routes.Handlers{
		Bill: handler.NewBillHandler(billService, cfg.App.BaseURL,
			invoice.ParseDisposition(cfg.Invoice.Disposition, invoice.DispositionAttachment), location),
		Product:   handler.NewProductHandler(productService),
		Employee:  handler.NewEmployeeHandler(employeeService),
		Dealer:    handler.NewDealerHandler(dealerService),
		Dashboard: handler.NewDashboardHandler(dashboardService),
	}

	rateLimiter := middleware.NewClientRateLimiter(middleware.RateLimiterConfigFor(
		cfg.RateLimit.Requests,
		time.Duration(cfg.RateLimit.Duration)*time.Second,
	))
	defer rateLimiter.Stop()

	router := routes.Setup(handlers, &routes.Deps{
		Cfg:             cfg,
		IdempotencyRepo: repos.idempotency,
		RateLimiter:     rateLimiter,
		Log:             log,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go cleanupIdempotencyKeys(ctx, repos.idempotency,
		time.Duration(cfg.Idempotency.CleanupInterval)*time.Minute, log)

	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infow("starting server", "app", cfg.App.Name, "port", port, "env", cfg.App.Env, "driver", cfg.Database.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("graceful shutdown failed", "error", err)
	}
}

func openRepositories(cfg *config.Config, log *logger.Logger) (*repositories, error) {
	if cfg.Database.Driver == "memory" {
		store := memory.NewStore()
		log.Warn("using in-memory storage; data is lost on restart")
		return &repositories{
			products:    store.Products(),
			employees:   store.Employees(),
			dealers:     store.Dealers(),
			bills:       store.Bills(),
			sequences:   store.Sequences(),
			idempotency: store.Idempotency(),
			tx:          store.TxManager(),
			close:       func() {},
		}, nil
	}

	db, err := database.NewPostgresDB(&cfg.Database, cfg.App.Debug, log)
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrate(db, log); err != nil {
		return nil, err
	}
	if err := database.SeedSequences(db, cfg.Billing.NumberPrefix, log); err != nil {
		return nil, err
	}

	return &repositories{
		products:    repository.NewProductRepository(db),
		employees:   repository.NewEmployeeRepository(db),
		dealers:     repository.NewDealerRepository(db),
		bills:       repository.NewBillRepository(db),
		sequences:   repository.NewSequenceRepository(db),
		idempotency: repository.NewIdempotencyRepository(db),
		tx:          repository.NewTxManager(db),
		close: func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		},
	}, nil
}

// cleanupIdempotencyKeys deletes expired keys every interval until ctx ends
func cleanupIdempotencyKeys(ctx context.Context, repo domainRepo.IdempotencyRepository, interval time.Duration, log *logger.Logger) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := repo.DeleteExpired(ctx)
			if err != nil {
				log.Warnw("idempotency cleanup failed", "error", err)
				continue
			}
			if n > 0 {
				log.Infow("expired idempotency keys removed", "count", n)
			}
		}
	}
}
