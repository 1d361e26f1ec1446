package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"medilink/internal/apperrors"
	"medilink/internal/auth"
	"medilink/internal/logger"
	"medilink/internal/marketplace"
)

// Deps are the services and settings the HTTP surface is built from.
type Deps struct {
	Accounts      *marketplace.AccountService
	Orders        *marketplace.OrderService
	Bids          *marketplace.BidService
	Notifications *marketplace.NotificationService

	JWTSecret      string
	UploadDir      string
	MaxUploadBytes int64
	// Health reports whether backing stores are reachable. Nil means always healthy.
	Health func(ctx context.Context) error
	Log    *logger.Logger
	Debug  bool
}

type Server struct {
	engine *gin.Engine
	deps   Deps
	errs   *apperrors.GinErrorHandler
	log    *logger.Logger
}

func NewServer(deps Deps) *Server {
	if deps.Log == nil {
		deps.Log = logger.Discard()
	}
	if !deps.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	s := &Server{engine: gin.New(), deps: deps, log: deps.Log}
	s.errs = &apperrors.GinErrorHandler{
		Debug: deps.Debug,
		LogError: func(c *gin.Context, err error) {
			s.log.Errorf("HTTP", "%s %s [%s]: %v", c.Request.Method, c.Request.URL.Path, requestID(c), err)
		},
	}
	s.engine.Use(requestIDMiddleware(), s.requestLogger(), s.recovery())
	s.registerRoutes()
	return s
}

func (s *Server) Engine() *gin.Engine { return s.engine }

func (s *Server) registerRoutes() {
	s.engine.GET("/healthz", s.healthz)

	if s.deps.UploadDir != "" {
		uploads := s.engine.Group("/uploads", func(c *gin.Context) {
			c.Header("Access-Control-Allow-Origin", "*")
		})
		uploads.Static("/", s.deps.UploadDir)
	}

	api := s.engine.Group("/api")
	{
		a := api.Group("/auth")
		a.POST("/register/user", s.registerUser)
		a.POST("/register/pharmacy", s.registerPharmacy)
		a.POST("/login/user", s.loginUser)
		a.POST("/login/pharmacy", s.loginPharmacy)
	}

	authed := api.Group("", auth.GinMiddleware(s.deps.JWTSecret, s.errs.Handle))
	customer := auth.RequireCustomer(s.errs.Handle)
	pharmacy := auth.RequirePharmacy(s.errs.Handle)
	{
		authed.GET("/auth/me", s.me)

		orders := authed.Group("/orders")
		orders.POST("", customer, s.createOrder)
		orders.GET("", customer, s.listOrders)
		orders.GET("/:id", s.getOrder)
		orders.GET("/:id/bids", s.listOrderBids)
		orders.PATCH("/:id/cancel", customer, s.cancelOrder)

		ph := authed.Group("/pharmacy", pharmacy)
		ph.GET("/orders", s.pharmacyOrders)
		ph.GET("/bids", s.pharmacyBids)
		ph.PATCH("/location", s.setPharmacyLocation)

		bids := authed.Group("/bids")
		bids.POST("", pharmacy, s.submitBid)
		bids.PATCH("/:id/accept", customer, s.acceptBid)
		bids.PATCH("/:id/reject", customer, s.rejectBid)

		n := authed.Group("/notifications")
		n.GET("", s.listNotifications)
		n.GET("/unread-count", s.unreadCount)
		n.PATCH("/read-all", s.markAllRead)
		n.PATCH("/:id/read", s.markRead)
	}
}

func (s *Server) healthz(c *gin.Context) {
	if s.deps.Health != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := s.deps.Health(ctx); err != nil {
			s.log.Errorf("HTTP", "health check failed: %v", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// fail writes err as the standard error envelope.
func (s *Server) fail(c *gin.Context, err error) {
	s.errs.Handle(c, err)
}
