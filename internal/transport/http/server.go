package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"stocksage/internal/bootstrap"
	"stocksage/internal/transport/http/handler"
	"stocksage/internal/transport/http/middleware"
	"stocksage/internal/transport/http/response"
	"stocksage/internal/viewer"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(middleware.RequestID(), middleware.Logging(app.Logger), gin.Recovery())
	router.SetHTMLTemplate(viewer.PageTemplate)

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/healthz", healthHandler.Check)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	RegisterShareRoutes(router, handler.NewShareHandler(app.ShareService))

	router.NoRoute(func(c *gin.Context) {
		response.Error(c, http.StatusNotFound, response.CodeNotFound, "route not found")
	})
	return router
}

// RegisterShareRoutes mounts the share API and the read-only page.
func RegisterShareRoutes(router gin.IRouter, shareHandler *handler.ShareHandler) {
	api := router.Group("/api")
	api.POST("/share", shareHandler.Create)
	api.GET("/share", shareHandler.Get)

	router.GET("/shared/:shareId", shareHandler.Page)
}
