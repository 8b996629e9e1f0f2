package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"craftmart/internal/domain"
	"craftmart/internal/repository"
	"craftmart/internal/service"
)

type Server struct {
	engine   *gin.Engine
	auth     *service.AuthService
	products *service.ProductService
	orders   *service.OrderService
	customs  *service.CustomOrderService
	logger   *zap.Logger
}

// Services зависимости сервера
type Services struct {
	Auth         *service.AuthService
	Products     *service.ProductService
	Orders       *service.OrderService
	CustomOrders *service.CustomOrderService
}

// Options настройки HTTP-слоя
type Options struct {
	Logger      *zap.Logger
	CORSOrigins []string
}

func NewServer(svc Services, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	r := gin.New()
	r.MaxMultipartMemory = 8 << 20
	r.Use(requestID(), accessLog(logger), gin.Recovery(), corsMiddleware(opts.CORSOrigins))
	s := &Server{
		engine:   r,
		auth:     svc.Auth,
		products: svc.Products,
		orders:   svc.Orders,
		customs:  svc.CustomOrders,
		logger:   logger,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Engine() *gin.Engine { return s.engine }

func (s *Server) registerRoutes() {
	// Swagger UI
	s.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	s.engine.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	public := s.engine.Group("/v1/public/api")
	{
		public.GET("/product/filter-latest", s.latestProducts)
		public.POST("/product/filter", s.filterProducts)
		public.GET("/product/seller-products/id/:id", s.sellerProducts)
		public.POST("/auth/login", s.login)
		public.POST("/auth/register", s.register)
	}
	// storefront owner profile is readable without a token
	s.engine.GET("/v1/api/user/id/:id", s.getUser)

	api := s.engine.Group("/v1/api", s.requireAuth())
	{
		api.GET("/user/info", s.userInfo)
		api.POST("/user/update", s.updateUser)
		api.GET("/categories/list", s.listCategories)

		api.POST("/product/saveorupdate", s.saveProduct)
		api.GET("/product/owner-products", s.ownerProducts)
		api.GET("/product/delete/id/:id", noStore, s.deleteProduct)

		api.POST("/order/saveorupdate", s.saveOrder)
		api.GET("/order/status/id/:id/:status", noStore, s.changeOrderStatus)
		api.GET("/order/list/user/id/:id", s.buyerOrders)
		api.GET("/order/list/store/id/:id", s.sellerOrders)
	}

	custom := s.engine.Group("/v1/custom-order", s.requireAuth())
	{
		custom.POST("/saveorupdate", s.saveCustomOrder)
		custom.GET("/status/id/:id/:status", noStore, s.changeCustomOrderStatus)
		custom.GET("/list/buyer/:id", s.buyerCustomOrders)
		custom.GET("/list/owner/:id", s.sellerCustomOrders)
	}
}

const ctxUserID = "userId"

// requireAuth проверяет bearer-токен и кладёт id пользователя в контекст
func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if !strings.HasPrefix(h, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid token"})
			return
		}
		claims, err := s.auth.Authenticate(strings.TrimPrefix(h, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(ctxUserID, claims.UserID)
		c.Next()
	}
}

func currentUser(c *gin.Context) int64 { return c.GetInt64(ctxUserID) }

// status changes travel as GET; keep every cache out of it
func noStore(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.Next()
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("requestId", id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

func accessLog(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", c.GetString("requestId")),
			zap.Int64("user_id", currentUser(c)))
	}
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Authorization", "Content-Type", "X-Request-ID", "Cache-Control", "Pragma"},
		ExposeHeaders: []string{"Content-Length", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err == nil && id <= 0 {
		err = errors.New("id must be positive")
	}
	return id, err
}

func (s *Server) fail(c *gin.Context, err error) {
	status := mapErrorToStatus(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func mapErrorToStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, domain.ErrEmptyOrder),
		errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrSellerMismatch):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthenticated), errors.Is(err, service.ErrBadCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, repository.ErrDuplicate):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
