package http

import (
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"chatsync/internal/app/adapters/http/handlers"
	"chatsync/internal/app/adapters/http/middlewares"
	"chatsync/internal/app/domain/session"
	"chatsync/internal/app/infrastructure/config"
	"chatsync/pkg/logger"
)

type Router struct {
	router      *gin.Engine
	handlers    *handlers.Handlers
	middlewares *middlewares.Middlewares

	log     logger.Logger
	manager *config.Manager
}

func NewRouter(log logger.Logger, manager *config.Manager, reg *session.Registry) *Router {
	r := &Router{
		router:      gin.Default(),
		handlers:    handlers.New(log, manager, reg),
		middlewares: middlewares.New(),
		log:         log,
		manager:     manager,
	}
	cfg := manager.Get()

	pprofGroup := r.router.Group("/", gin.BasicAuth(gin.Accounts{
		"admin": cfg.App.AuthToken,
	}))
	pprof.Register(pprofGroup)

	r.router.GET("/metrics", gin.BasicAuth(gin.Accounts{
		"admin": cfg.App.AuthToken,
	}), gin.WrapH(promhttp.Handler()))

	r.router.GET("/", r.handlers.StatusHandler)

	api := r.router.Group("/", r.middlewares.Auth(cfg.App.AuthToken))
	api.GET("/channels/:channel/messages", r.handlers.ChannelMessagesHandler)
	api.GET("/channels/:channel/chatters", r.handlers.ChannelChattersHandler)
	api.GET("/mentions", r.handlers.MentionsHandler)
	api.GET("/whispers", r.handlers.WhispersHandler)
	return r
}

func (r *Router) Run() error {
	return r.router.Run(r.manager.Get().App.HTTPAddr)
}
