package inbound

import (
	"context"

	"github.com/google/uuid"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/router"
	"github.com/shandysiswandi/dragonfruit/internal/vault/entity"
	"github.com/shandysiswandi/dragonfruit/internal/vault/usecase"
)

type uc interface {
	CategoryList(ctx context.Context) ([]entity.Category, error)
	CategoryGet(ctx context.Context, id uuid.UUID) (*entity.Category, error)
	CategoryCreate(ctx context.Context, in usecase.CategoryCreateInput) (*entity.Category, error)
	CategoryUpdate(ctx context.Context, in usecase.CategoryUpdateInput) (*entity.Category, error)
	CategoryDelete(ctx context.Context, id uuid.UUID) error
	CategoryCredentials(ctx context.Context, id uuid.UUID) ([]entity.Credential, error)

	CredentialList(ctx context.Context) ([]entity.Credential, error)
	CredentialGet(ctx context.Context, id uuid.UUID) (*entity.Credential, error)
	CredentialCreate(ctx context.Context, in usecase.CredentialCreateInput) (*entity.Credential, error)
	CredentialReveal(ctx context.Context, id uuid.UUID) (*usecase.RevealOutput, error)
	CredentialUpdate(ctx context.Context, in usecase.CredentialUpdateInput) (*entity.Credential, error)
	CredentialDelete(ctx context.Context, id uuid.UUID) error

	Export(ctx context.Context) (*usecase.ExportOutput, error)
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	r.GET("/categories", end.CategoryList)
	r.POST("/categories", end.CategoryCreate)
	r.GET("/categories/:id", end.CategoryGet)
	r.PUT("/categories/:id", end.CategoryUpdate)
	r.DELETE("/categories/:id", end.CategoryDelete)
	r.GET("/categories/:id/credentials", end.CategoryCredentials)

	r.GET("/credentials", end.CredentialList)
	r.POST("/credentials", end.CredentialCreate)
	r.GET("/credentials/:id", end.CredentialGet)
	r.GET("/credentials/:id/password", end.CredentialReveal)
	r.PUT("/credentials/:id", end.CredentialUpdate)
	r.DELETE("/credentials/:id", end.CredentialDelete)

	r.POST("/vault/export", end.Export)
}
