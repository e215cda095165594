package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"habitlog/internal/service"
	"habitlog/pkg/response"
)

// ListHabitFields returns the active field mapping (key, kind, label) so
// clients build forms and dashboards from configuration.
// GET /v1/habits
func ListHabitFields(ctx context.Context, c *app.RequestContext) {
	response.Success(ctx, c, service.Field().ListFields())
}
