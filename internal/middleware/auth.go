package middleware

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/cloudwego/hertz/pkg/app"
	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/hertz-contrib/jwt"

	"habitlog/config"
	pkgerrors "habitlog/pkg/errors"
	"habitlog/pkg/token"
)

const (
	IdentityKey = token.IdentityKey
)

// ErrNoIdentity is returned by handlers that reached a guarded route
// without an identity in context, which should not happen.
var ErrNoIdentity = pkgerrors.Unauthorized

var (
	authMiddleware *jwt.HertzJWTMiddleware
)

func initAuthMiddleware() error {
	sharedGenerator := token.GetGenerator()
	if sharedGenerator == nil {
		return fmt.Errorf("token generator not initialized, call token.Init() first")
	}

	authMiddleware = &jwt.HertzJWTMiddleware{
		Realm:       "habitlog API",
		Key:         sharedGenerator.Key,
		Timeout:     sharedGenerator.Timeout,
		MaxRefresh:  sharedGenerator.MaxRefresh,
		IdentityKey: sharedGenerator.IdentityKey,
		TimeFunc:    sharedGenerator.TimeFunc,

		IdentityHandler: func(ctx context.Context, c *app.RequestContext) interface{} {
			claims := jwt.ExtractClaims(ctx, c)
			uid, ok := claims[IdentityKey].(string)
			if !ok {
				if uidFloat, ok := claims[IdentityKey].(float64); ok {
					uid = fmt.Sprintf("%.0f", uidFloat)
				} else {
					return nil
				}
			}
			return uid
		},

		Unauthorized: func(ctx context.Context, c *app.RequestContext, code int, message string) {
			c.JSON(code, map[string]interface{}{
				"error": map[string]interface{}{
					"code":    "UNAUTHORIZED",
					"message": message,
				},
			})
		},

		TokenLookup:   "header: Authorization, query: token, cookie: jwt",
		TokenHeadName: "Bearer",
	}

	return nil
}

// AuthMiddleware rejects requests without a valid session. Used on write
// routes, where there is no soft-fail.
func AuthMiddleware() app.HandlerFunc {
	if authMiddleware == nil {
		panic("AuthMiddleware not initialized, call Init() first")
	}
	return authMiddleware.MiddlewareFunc()
}

// OptionalAuthMiddleware attaches the identity when a valid token is
// present and lets the request through either way. Read routes use it so
// "no session" degrades to "no data yet" instead of a 401.
func OptionalAuthMiddleware() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		const prefix = "Bearer "
		header := string(c.GetHeader("Authorization"))
		if !strings.HasPrefix(header, prefix) {
			c.Next(ctx)
			return
		}

		parsed, err := jwtv5.Parse(strings.TrimPrefix(header, prefix), func(t *jwtv5.Token) (interface{}, error) {
			if t.Method != jwtv5.SigningMethodHS256 {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return []byte(config.Cfg.JWTSecret), nil
		})
		if err == nil && parsed.Valid {
			if claims, ok := parsed.Claims.(jwtv5.MapClaims); ok {
				if uid, ok := claims[IdentityKey].(string); ok {
					c.Set(IdentityKey, uid)
				}
			}
		}

		c.Next(ctx)
	}
}

// GetUserID extracts the numeric user id from the request context. The
// second return is false for anonymous requests.
func GetUserID(ctx context.Context, c *app.RequestContext) (int64, bool) {
	raw, exists := c.Get(IdentityKey)
	if !exists {
		return 0, false
	}

	uid, ok := raw.(string)
	if !ok {
		return 0, false
	}

	id, err := strconv.ParseInt(uid, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}

	return id, true
}
