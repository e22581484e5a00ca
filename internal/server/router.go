package server

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/risick/microcredito-api/internal/auth"
	"github.com/risick/microcredito-api/internal/config"
	userdomain "github.com/risick/microcredito-api/internal/domain/user"
	"github.com/risick/microcredito-api/internal/http/handlers"
	"github.com/risick/microcredito-api/internal/http/middleware"
	"github.com/risick/microcredito-api/internal/http/response"
	"github.com/risick/microcredito-api/internal/version"
	"github.com/risick/microcredito-api/internal/ws"
)

type Dependencies struct {
	Pinger          handlers.Pinger
	AuthService     handlers.AuthService
	UserService     handlers.UserAdminService
	BorrowerService handlers.BorrowerService
	LoanService     handlers.LoanService
	PaymentService  handlers.PaymentService
	WSHandler       *ws.Handler
	JWTManager      *auth.JWTManager
}

var staffRoles = []string{userdomain.RoleAdmin, userdomain.RoleLoanOfficer, userdomain.RoleManager}

func NewRouter(cfg config.Config, logger *slog.Logger, deps Dependencies) *gin.Engine {
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.RequestBodyLimit(cfg.MaxBodyBytes))

	errs := handlers.NewErrors(logger, cfg.IsDevelopment())
	health := handlers.NewHealthHandler(deps.Pinger)
	meta := handlers.NewMetaHandler(cfg.Env, version.Version)

	r.GET("/health", health.Health)
	r.GET("/ready", health.Ready)

	api := r.Group("/api")
	api.GET("/meta", meta.GetMeta)

	if deps.JWTManager != nil {
		requireAuth := middleware.RequireAuth(deps.JWTManager, cfg.AuthEnableCookie)
		adminOnly := middleware.RequireRole(userdomain.RoleAdmin)
		staffOnly := middleware.RequireRole(staffRoles...)

		if deps.AuthService != nil {
			h := handlers.NewAuthHandler(deps.AuthService, auth.CookieConfig{Domain: cfg.CookieDomain, Secure: cfg.CookieSecure}, cfg.AuthEnableCookie, errs)
			authGroup := api.Group("/auth")
			authGroup.POST("/register", h.Register)
			authGroup.POST("/login", h.Login)
			authGroup.POST("/refresh", h.Refresh)
			authGroup.POST("/logout", h.Logout)
			authGroup.GET("/profile", requireAuth, h.Profile)
		}

		if deps.UserService != nil {
			h := handlers.NewUserHandler(deps.UserService, errs)
			users := api.Group("/users", requireAuth, adminOnly)
			users.GET("", h.List)
			users.GET("/stats", h.Stats)
			users.GET("/:id", h.Get)
			users.PUT("/:id", h.Update)
			users.DELETE("/:id", h.Delete)
		}

		if deps.BorrowerService != nil {
			h := handlers.NewBorrowerHandler(deps.BorrowerService, errs)
			borrowers := api.Group("/borrowers", requireAuth)
			borrowers.POST("", h.Create)
			borrowers.GET("", staffOnly, h.List)
			borrowers.GET("/me", h.Me)
			borrowers.PUT("/me", h.UpdateMe)
			borrowers.GET("/stats", staffOnly, h.Stats)
			borrowers.POST("/rescore", adminOnly, h.Rescore)
			borrowers.GET("/:id", staffOnly, h.Get)
			borrowers.PUT("/:id", staffOnly, h.Update)
			borrowers.DELETE("/:id", adminOnly, h.Delete)
			borrowers.POST("/:id/recalculate-score", staffOnly, h.RecalculateScore)
		}

		if deps.LoanService != nil && deps.PaymentService != nil {
			h := handlers.NewLoanHandler(deps.LoanService, deps.PaymentService, errs)
			staff := api.Group("", requireAuth, staffOnly)
			staff.GET("/loans", h.ListLoans)
			staff.GET("/loans/analytics", h.GetPortfolioAnalytics)
			staff.GET("/loans/:id", h.GetLoan)
			staff.GET("/loans/:id/payments", h.ListLoanPayments)
			staff.GET("/payments", h.ListPayments)
		}

		if deps.WSHandler != nil {
			r.GET("/ws", requireAuth, staffOnly, deps.WSHandler.HandleWebSocket)
		}
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, response.Envelope{
			Success: false,
			Message: "Route not found",
			Error:   "Cannot " + c.Request.Method + " " + c.Request.URL.Path,
		})
	})

	return r
}
