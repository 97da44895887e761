package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"task-tracker/internal/auth"
	"task-tracker/internal/service"
)

// Version is reported by the info and docs endpoints.
const Version = "1.0.0"

// isoMillis matches the timestamp layout browsers produce with toISOString.
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

// Options carries the collaborators of a Handler.
type Options struct {
	Tasks       service.TaskService
	Users       service.UserService
	Exports     service.ExportService
	Tokens      *auth.Issuer
	Logger      *logrus.Logger
	Environment string
	Development bool
}

// Handler wires HTTP routes to domain services.
type Handler struct {
	tasks   service.TaskService
	users   service.UserService
	exports service.ExportService
	tokens  *auth.Issuer
	logger  *logrus.Logger
	env     string
	dev     bool
}

func NewHandler(opts Options) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.New()
	}
	return &Handler{
		tasks:   opts.Tasks,
		users:   opts.Users,
		exports: opts.Exports,
		tokens:  opts.Tokens,
		logger:  logger,
		env:     opts.Environment,
		dev:     opts.Development,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(requestLogger(h.logger), h.recovery(), corsMiddleware())
	router.NoRoute(notFound)

	router.GET("/", h.serverInfo)

	api := router.Group("/api")
	{
		api.GET("", h.apiDocs)
		api.GET("/health", health)
	}

	tasks := api.Group("/tasks")
	{
		tasks.GET("", h.listTasks)
		tasks.GET("/stats", h.taskStats)
		tasks.GET("/:id", h.getTask)
		tasks.POST("", OptionalAuth(h.tokens), h.createTask)
		tasks.PUT("/:id", h.updateTask)
		tasks.DELETE("/:id", h.deleteTask)
		tasks.POST("/export", RequireAuth(h.tokens), h.exportTasks)
		tasks.GET("/exports", RequireAuth(h.tokens), h.listExports)
	}

	users := api.Group("/users")
	{
		users.POST("/register", h.register)
		users.POST("/login", h.login)

		protected := users.Group("", RequireAuth(h.tokens))
		protected.GET("/profile", h.getProfile)
		protected.PUT("/profile", h.updateProfile)
		protected.POST("/logout", h.logout)
		protected.GET("/test", h.authTest)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "X-Request-ID")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "OK",
		"message":   "Server is running",
		"timestamp": time.Now().UTC().Format(isoMillis),
	})
}

func (h *Handler) apiDocs(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Todo List API",
		"version": Version,
		"endpoints": gin.H{
			"health":       "/api/health",
			"tasks":        "/api/tasks",
			"taskStats":    "/api/tasks/stats",
			"taskExport":   "/api/tasks/export (protected)",
			"taskExports":  "/api/tasks/exports (protected)",
			"userRegister": "/api/users/register",
			"userLogin":    "/api/users/login",
			"userProfile":  "/api/users/profile (protected)",
			"userLogout":   "/api/users/logout (protected)",
		},
	})
}

func (h *Handler) serverInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message":     "Todo List API Server",
		"version":     Version,
		"status":      "Running",
		"environment": h.env,
		"endpoints": gin.H{
			"api":    "/api",
			"health": "/api/health",
			"tasks":  "/api/tasks",
			"users":  "/api/users",
		},
	})
}

func notFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{
		"error":   "Route not found",
		"message": fmt.Sprintf("Cannot %s %s", c.Request.Method, c.Request.URL.RequestURI()),
	})
}
