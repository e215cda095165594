package router

import (
	"github.com/cloudwego/hertz/pkg/app/server"

	"habitlog/internal/handler"
	"habitlog/internal/middleware"
)

func Register(h *server.Hertz) {
	h.Use(middleware.RecoverMiddleware())
	h.Use(middleware.CORSMiddleware())

	v1 := h.Group("/v1")

	v1.GET("/healthz", handler.Healthz)

	auth := v1.Group("/auth")
	auth.Use(middleware.AuthRateLimitMiddleware())
	{
		auth.POST("/token/refresh", handler.RefreshToken)
	}

	// Reads run behind the optional auth: an anonymous request is answered
	// with an empty data set, not a 401.
	logs := v1.Group("/logs")
	logs.Use(middleware.GeneralRateLimitMiddleware())
	{
		logs.GET("", middleware.OptionalAuthMiddleware(), handler.ListLogs)
		logs.PUT("/:date", middleware.AuthMiddleware(), middleware.WriteRateLimitMiddleware(), handler.UpsertLog)
	}

	habits := v1.Group("/habits")
	habits.Use(middleware.GeneralRateLimitMiddleware(), middleware.OptionalAuthMiddleware())
	{
		habits.GET("", handler.ListHabitFields)
		habits.GET("/:key/series", handler.GetHabitSeries)
	}
}
