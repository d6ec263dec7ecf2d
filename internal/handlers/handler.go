package handlers

import (
	"net/http"
	"time"

	"blog_api/internal/logger"
	"blog_api/internal/metrics"
	"blog_api/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
	metrics  metrics.Recorder
	gatherer prometheus.Gatherer
	interval time.Duration
}

type Option func(*Handler)

// WithMetrics records request and auth metrics to rec and serves gatherer on /metrics.
func WithMetrics(rec metrics.Recorder, gatherer prometheus.Gatherer) Option {
	return func(h *Handler) {
		if rec != nil {
			h.metrics = rec
		}
		h.gatherer = gatherer
	}
}

// WithStreamInterval sets the default push interval of the comment stream.
func WithStreamInterval(d time.Duration) Option {
	return func(h *Handler) {
		if d > 0 && d <= maxInterval {
			h.interval = d
		}
	}
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger, opts ...Option) *Handler {
	h := &Handler{
		services: services,
		log:      log,
		metrics:  metrics.Nop{},
		interval: defaultInterval,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), h.requestLogger)

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/health", h.health)
	if h.gatherer != nil {
		router.GET("/metrics", gin.WrapH(metrics.Handler(h.gatherer)))
	}

	router.POST("/register", h.register)
	router.POST("/login", h.login)

	api := router.Group("/", h.authMiddleware)
	{
		api.POST("/logout", h.logout)
		api.GET("/me", h.me)
		api.GET("/activity", h.getActivity)

		h.registerPostRoutes(api)
		h.registerCommentRoutes(api)

		api.GET("/ws/posts/:post/comments", h.wsComments)
	}

	return router
}

func (h *Handler) registerPostRoutes(api *gin.RouterGroup) {
	posts := api.Group("/posts")
	{
		posts.GET("", h.listPosts)
		posts.GET("/my-posts", h.listMyPosts)
		posts.POST("", h.createPost)
		posts.GET("/:id", h.getPost)
		posts.PUT("/:id", h.updatePost)
		posts.PATCH("/:id", h.updatePost)
		posts.DELETE("/:id", h.deletePost)
	}
}

func (h *Handler) registerCommentRoutes(api *gin.RouterGroup) {
	comments := api.Group("/comments")
	{
		comments.GET("", h.listComments)
		comments.GET("/my-comments", h.listMyComments)
		comments.GET("/by-post/:post", h.listPostComments)
		comments.POST("", h.createComment)
		comments.GET("/:id", h.getComment)
		comments.PUT("/:id", h.updateComment)
		comments.PATCH("/:id", h.updateComment)
		comments.DELETE("/:id", h.deleteComment)
	}
}

// @Summary  Health check
// @Tags     health
// @Produce  json
// @Success  200  {object}  map[string]string
// @Router   /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
