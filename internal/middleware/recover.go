package middleware

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/cloudwego/hertz/pkg/app"
	"go.uber.org/zap"

	"habitlog/config"
	"habitlog/pkg/errors"
	"habitlog/pkg/logger"
)

// RecoverConfig controls panic handling.
type RecoverConfig struct {
	EnableStackTrace bool
	// Whether detailed panic values leak into responses.
	ExposeDetails bool
}

func NewRecoverConfig() RecoverConfig {
	return RecoverConfig{
		EnableStackTrace: true,
		ExposeDetails:    !config.Cfg.IsProduction(),
	}
}

func RecoverMiddleware() app.HandlerFunc {
	return RecoverMiddlewareWithConfig(NewRecoverConfig())
}

func RecoverMiddlewareWithConfig(cfg RecoverConfig) app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		defer func() {
			if err := recover(); err != nil {
				handlePanic(ctx, c, err, cfg)
			}
		}()

		c.Next(ctx)
	}
}

func handlePanic(ctx context.Context, c *app.RequestContext, err interface{}, cfg RecoverConfig) {
	var stack []byte
	if cfg.EnableStackTrace {
		stack = debug.Stack()
	}

	logger.Logger.Error("Recovered from panic in handler",
		zap.Any("panic", err),
		zap.String("method", string(c.Method())),
		zap.String("path", string(c.Path())),
		zap.ByteString("stack", stack),
	)

	errDef := errors.Definition{
		Code:    "INTERNAL_SERVER_ERROR",
		Message: "Internal server error, try again later",
	}
	if cfg.ExposeDetails {
		errDef.Message = fmt.Sprintf("Internal error: %v", err)
	}

	c.JSON(500, map[string]interface{}{
		"error": map[string]interface{}{
			"code":    errDef.Code,
			"message": errDef.Message,
		},
	})
	c.Abort()
}
