package http

import (
	"github.com/gin-gonic/gin"

	"newsrag/internal/bootstrap"
	"newsrag/internal/transport/http/handler"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	healthHandler := handler.NewHealthHandler(app)
	chatHandler := handler.NewChatHandler(app.ChatService)
	sessionHandler := handler.NewSessionHandler(app.Sessions)
	wsHandler := handler.NewWSHandler(app.ChatService, app.Logger)

	// The typed nil must not become a non-nil interface value when the
	// queue is degraded.
	var publisher handler.ArticlePublisher
	if app.Publisher != nil {
		publisher = app.Publisher
	}
	ingestHandler := handler.NewIngestHandler(publisher, app.Logger)

	router.GET("/healthz", healthHandler.Check)
	router.POST("/chat", chatHandler.Send)
	router.GET("/ws/:session_id", wsHandler.Chat)

	router.POST("/sessions", sessionHandler.Create)
	router.GET("/sessions", sessionHandler.List)
	router.GET("/sessions/:id/history", sessionHandler.History)
	router.DELETE("/sessions/:id", sessionHandler.Clear)

	admin := router.Group("/admin")
	admin.POST("/sessions/cleanup", sessionHandler.Cleanup)
	admin.POST("/articles", ingestHandler.Enqueue)

	return router
}
