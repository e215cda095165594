package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"habitlog/config"
	"habitlog/pkg/response"
)

// Healthz is the liveness probe.
// GET /v1/healthz
func Healthz(ctx context.Context, c *app.RequestContext) {
	response.Success(ctx, c, map[string]interface{}{
		"status":  "ok",
		"backend": config.Cfg.LogStoreBackend,
	})
}
