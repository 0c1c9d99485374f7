package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"stocksage/internal/bootstrap"
	"stocksage/internal/transport/http/response"
)

type HealthHandler struct {
	app *bootstrap.App
}

type dependencyStatus struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

type healthReport struct {
	App          string                      `json:"app"`
	Env          string                      `json:"env"`
	ShareBackend string                      `json:"share_backend"`
	UptimeSec    int                         `json:"uptime_sec"`
	Dependencies map[string]dependencyStatus `json:"dependencies"`
}

func NewHealthHandler(app *bootstrap.App) *HealthHandler {
	return &HealthHandler{app: app}
}

// Check pings only the dependencies the current configuration enabled.
func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	deps := make(map[string]dependencyStatus)
	if h.app.MySQL != nil {
		deps["mysql"] = h.checkMySQL(ctx)
	}
	if h.app.Redis != nil {
		deps["redis"] = h.checkRedis(ctx)
	}
	if h.app.MQConn != nil {
		deps["rabbitmq"] = h.checkRabbitMQ()
	}

	allOK := true
	for _, status := range deps {
		allOK = allOK && status.OK
	}

	report := healthReport{
		App:          h.app.Config.App.Name,
		Env:          h.app.Config.App.Env,
		ShareBackend: h.app.Config.Share.Backend,
		UptimeSec:    int(time.Since(h.app.StartedAt).Seconds()),
		Dependencies: deps,
	}
	if !allOK {
		response.WithData(c, http.StatusServiceUnavailable, response.CodeServiceUnavailable, "degraded", report)
		return
	}
	response.OK(c, report)
}

func (h *HealthHandler) checkMySQL(ctx context.Context) dependencyStatus {
	sqlDB, err := h.app.MySQL.DB()
	if err != nil {
		return dependencyStatus{OK: false, Message: err.Error()}
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return dependencyStatus{OK: false, Message: err.Error()}
	}
	return dependencyStatus{OK: true}
}

func (h *HealthHandler) checkRedis(ctx context.Context) dependencyStatus {
	if err := h.app.Redis.Ping(ctx).Err(); err != nil {
		return dependencyStatus{OK: false, Message: err.Error()}
	}
	return dependencyStatus{OK: true}
}

func (h *HealthHandler) checkRabbitMQ() dependencyStatus {
	if h.app.MQConn.IsClosed() {
		return dependencyStatus{OK: false, Message: "connection closed"}
	}
	return dependencyStatus{OK: true}
}
