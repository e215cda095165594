package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"habitlog/internal/middleware"
	"habitlog/internal/model/dto"
	"habitlog/internal/service"
	"habitlog/pkg/response"
)

// GetHabitSeries returns the aggregated chart series for one habit key.
// GET /v1/habits/:key/series
func GetHabitSeries(ctx context.Context, c *app.RequestContext) {
	userID, _ := middleware.GetUserID(ctx, c)

	var q dto.SeriesQuery
	if err := c.BindQuery(&q); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	series, err := service.Series().BuildSeries(ctx, userID, c.Param("key"), q)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, series)
}
