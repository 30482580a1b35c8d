package inbound

import (
	"context"

	"github.com/shandysiswandi/dragonfruit/internal/identity/entity"
	"github.com/shandysiswandi/dragonfruit/internal/identity/usecase"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/router"
)

type uc interface {
	Register(ctx context.Context, in usecase.RegisterInput) (*entity.User, error)
	Login(ctx context.Context, in usecase.LoginInput) (*usecase.LoginOutput, error)

	Profile(ctx context.Context) (*entity.User, error)
	ProfileUpdate(ctx context.Context, in usecase.ProfileUpdateInput) (*entity.User, error)

	TOTPGenerate(ctx context.Context) (*usecase.TOTPGenerateOutput, error)
	TOTPEnable(ctx context.Context, in usecase.TOTPEnableInput) (*usecase.TOTPEnableOutput, error)
	TOTPDisable(ctx context.Context, in usecase.TOTPDisableInput) error
	TOTPQRCode(ctx context.Context) ([]byte, error)
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	r.POST("/auth/register", end.Register)
	r.POST("/auth/login", end.Login)

	// need authenticated
	r.GET("/auth/profile", end.Profile)
	r.PUT("/auth/profile", end.ProfileUpdate)

	r.POST("/auth/totp/generate", end.TOTPGenerate)
	r.POST("/auth/totp/enable", end.TOTPEnable)
	r.POST("/auth/totp/disable", end.TOTPDisable)
	r.GET("/auth/totp/qr", end.TOTPQRCode)
}
