package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"habitlog/internal/middleware"
	"habitlog/internal/model/dto"
	"habitlog/internal/service"
	"habitlog/pkg/response"
)

// ListLogs returns every normalized daily record, newest first. Anonymous
// callers get an empty set, not an error.
// GET /v1/logs
func ListLogs(ctx context.Context, c *app.RequestContext) {
	userID, _ := middleware.GetUserID(ctx, c)

	var q dto.LogListQuery
	if err := c.BindQuery(&q); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	records, err := service.Log().ListRecords(ctx, userID, q.From, q.To, q.Fresh)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.SuccessWithMeta(ctx, c, records, map[string]interface{}{
		"count": len(records),
	})
}

// UpsertLog writes one day's record, overwriting any previous record for
// that date.
// PUT /v1/logs/:date
func UpsertLog(ctx context.Context, c *app.RequestContext) {
	userID, ok := middleware.GetUserID(ctx, c)
	if !ok {
		response.Error(ctx, c, middleware.ErrNoIdentity)
		return
	}

	var req dto.UpsertLogRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	rec, err := service.Log().UpsertRecord(ctx, userID, c.Param("date"), req.Fields)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, dto.UpsertLogResponse{Record: rec})
}
