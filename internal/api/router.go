package api

import (
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	_ "github.com/d60-Lab/microblog/docs"
	"github.com/d60-Lab/microblog/internal/api/handler"
	"github.com/d60-Lab/microblog/internal/api/middleware"
	"github.com/d60-Lab/microblog/pkg/auth"
)

// RouterOptions 路由依赖
type RouterOptions struct {
	Mode        string
	ServiceName string
	Tracing     bool
	Swagger     bool
	Tokens      *auth.Manager
	CookieName  string
	Toucher     middleware.Toucher
	Limiter     *middleware.IPRateLimiter
	Metrics     *middleware.Metrics
}

// NewRouter 组装中间件与 /api/v1 路由
func NewRouter(h *handler.Handler, opts RouterOptions) *gin.Engine {
	if opts.Mode != "" {
		gin.SetMode(opts.Mode)
	}
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), middleware.Recovery())
	if opts.Tracing {
		r.Use(otelgin.Middleware(opts.ServiceName))
	}
	r.Use(opts.Metrics.Middleware(), gzip.Gzip(gzip.DefaultCompression))

	r.GET("/healthz", h.Healthz)
	if opts.Metrics != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Metrics.Registry, promhttp.HandlerOpts{})))
	}
	if opts.Swagger {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	v1 := r.Group("/api/v1", middleware.RateLimit(opts.Limiter))
	{
		a := v1.Group("/auth")
		a.POST("/register", h.Register)
		a.POST("/login", h.Login)
		a.POST("/logout", h.Logout)
	}

	authed := v1.Group("", middleware.Auth(opts.Tokens, opts.CookieName, opts.Toucher))
	{
		authed.PUT("/users/me", h.UpdateProfile)
		authed.GET("/users/:username", h.GetProfile)
		authed.POST("/users/:username/follow", h.Follow)
		authed.POST("/users/:username/unfollow", h.Unfollow)
		authed.GET("/users/:username/followers", h.ListFollowers)
		authed.GET("/users/:username/following", h.ListFollowing)
		authed.GET("/users/:username/posts", h.ListUserPosts)
		authed.POST("/posts", h.CreatePost)
		authed.GET("/feed", h.Feed)
	}
	return r
}
