package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"habitlog/internal/model/dto"
	pkgerrors "habitlog/pkg/errors"
	"habitlog/pkg/response"
	"habitlog/pkg/token"
)

// RefreshToken rotates the access/refresh token pair. Full authentication
// flows live outside this service; the core only needs a live session.
// POST /v1/auth/token/refresh
func RefreshToken(ctx context.Context, c *app.RequestContext) {
	var req dto.RefreshTokenRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	userID, err := token.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		response.Error(ctx, c, pkgerrors.InvalidToken)
		return
	}

	accessToken, refreshToken, expiresIn, err := token.GenerateTokenPair(userID)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, dto.TokenPairResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    expiresIn,
	})
}
