package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/agrishop-billing/internal/config"
	domainRepo "github.com/sangkips/agrishop-billing/internal/domain/repository"
	"github.com/sangkips/agrishop-billing/internal/presentation/http/handler"
	"github.com/sangkips/agrishop-billing/internal/presentation/http/middleware"
	"github.com/sangkips/agrishop-billing/pkg/logger"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Bill      *handler.BillHandler
	Product   *handler.ProductHandler
	Employee  *handler.EmployeeHandler
	Dealer    *handler.DealerHandler
	Dashboard *handler.DashboardHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	Cfg             *config.Config
	IdempotencyRepo domainRepo.IdempotencyRepository
	RateLimiter     *middleware.ClientRateLimiter // nil disables rate limiting
	Log             *logger.Logger
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	handler.UseJSONFieldNames()

	router := gin.New()

	router.Use(middleware.Recovery(deps.Log))
	router.Use(middleware.LoggerMiddleware(deps.Log))
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		})
	})

	v1 := router.Group("/api/v1")
	if deps.RateLimiter != nil {
		v1.Use(deps.RateLimiter.Middleware())
	}

	registerBillRoutes(v1, h, deps)
	registerProductRoutes(v1, h)
	registerPeopleRoutes(v1, h)

	v1.GET("/dashboard/stats", h.Dashboard.GetStats)

	return router
}

func registerBillRoutes(rg *gin.RouterGroup, h *Handlers, deps *Deps) {
	idempotency := middleware.Idempotency(middleware.IdempotencyConfig{
		Repo: deps.IdempotencyRepo,
		TTL:  time.Duration(deps.Cfg.Idempotency.TTLHours) * time.Hour,
		Log:  deps.Log,
	})

	bills := rg.Group("/bills")
	{
		bills.POST("", idempotency, h.Bill.Create)
		bills.GET("", h.Bill.List)
		bills.GET("/dealers", h.Bill.Dealers)
		bills.GET("/:id", h.Bill.Get)
		bills.GET("/:id/pdf", h.Bill.PDF)
		bills.DELETE("/:id", h.Bill.Delete)
	}
}

func registerProductRoutes(rg *gin.RouterGroup, h *Handlers) {
	products := rg.Group("/products")
	{
		products.GET("", h.Product.List)
		products.POST("", h.Product.Create)
		products.GET("/:id", h.Product.Get)
		products.PUT("/:id", h.Product.Update)
		products.DELETE("/:id", h.Product.Delete)
	}
}

func registerPeopleRoutes(rg *gin.RouterGroup, h *Handlers) {
	employees := rg.Group("/employees")
	{
		employees.GET("", h.Employee.List)
		employees.POST("", h.Employee.Create)
		employees.GET("/:id", h.Employee.Get)
		employees.PUT("/:id", h.Employee.Update)
		employees.DELETE("/:id", h.Employee.Delete)
	}

	dealers := rg.Group("/dealers")
	{
		dealers.GET("", h.Dealer.List)
		dealers.POST("", h.Dealer.Create)
		dealers.GET("/:id", h.Dealer.Get)
		dealers.PUT("/:id", h.Dealer.Update)
		dealers.DELETE("/:id", h.Dealer.Delete)
	}
}
