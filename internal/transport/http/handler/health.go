package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"newsrag/internal/bootstrap"
)

type HealthHandler struct {
	app *bootstrap.App
}

type dependencyStatus struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

func NewHealthHandler(app *bootstrap.App) *HealthHandler {
	return &HealthHandler{app: app}
}

// Check reports per-dependency health. Degraded dependencies were replaced
// with in-process fallbacks at startup, so the service stays "ok" as long as
// the session store answers; the dependency map tells the rest of the story.
func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	sessionsStatus := h.checkSessions(ctx)
	mysqlStatus := h.checkMySQL(ctx)
	vectorStatus := h.checkVectorStore(ctx)
	rmqStatus := h.checkRabbitMQ()

	statusCode := http.StatusOK
	status := "ok"
	if !sessionsStatus.OK {
		statusCode = http.StatusServiceUnavailable
		status = "unavailable"
	} else if len(h.app.Degraded) > 0 {
		status = "degraded"
	}

	c.JSON(statusCode, gin.H{
		"status":     status,
		"app":        h.app.Config.App.Name,
		"env":        h.app.Config.App.Env,
		"uptime_sec": int(time.Since(h.app.StartedAt).Seconds()),
		"degraded":   h.app.Degraded,
		"dependencies": gin.H{
			"sessions":     sessionsStatus,
			"mysql":        mysqlStatus,
			"vector_store": vectorStatus,
			"rabbitmq":     rmqStatus,
		},
	})
}

func (h *HealthHandler) checkSessions(ctx context.Context) dependencyStatus {
	if err := h.app.Sessions.Ping(ctx); err != nil {
		return dependencyStatus{OK: false, Message: err.Error()}
	}
	return dependencyStatus{OK: true}
}

func (h *HealthHandler) checkMySQL(ctx context.Context) dependencyStatus {
	if h.app.MySQL == nil {
		return dependencyStatus{OK: false, Message: "archive disabled"}
	}
	sqlDB, err := h.app.MySQL.DB()
	if err != nil {
		return dependencyStatus{OK: false, Message: err.Error()}
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return dependencyStatus{OK: false, Message: err.Error()}
	}
	return dependencyStatus{OK: true}
}

func (h *HealthHandler) checkVectorStore(ctx context.Context) dependencyStatus {
	// Read-only; a health probe must not create the collection.
	if err := h.app.VectorStore.Ping(ctx); err != nil {
		return dependencyStatus{OK: false, Message: err.Error()}
	}
	return dependencyStatus{OK: true}
}

func (h *HealthHandler) checkRabbitMQ() dependencyStatus {
	if h.app.MQConn == nil {
		return dependencyStatus{OK: false, Message: "ingest queue disabled"}
	}
	if h.app.MQConn.IsClosed() {
		return dependencyStatus{OK: false, Message: "connection closed"}
	}
	return dependencyStatus{OK: true}
}
