package inbound

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shandysiswandi/dragonfruit/internal/vault/entity"
)

type CategoryResponse struct {
	ID          uuid.UUID  `json:"id"`
	ParentID    *uuid.UUID `json:"parent_id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func toCategoryResponse(c *entity.Category) CategoryResponse {
	return CategoryResponse{
		ID:          c.ID,
		ParentID:    c.ParentID,
		Name:        c.Name,
		Description: c.Description,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func toCategoryResponses(cats []entity.Category) []CategoryResponse {
	return lo.Map(cats, func(c entity.Category, _ int) CategoryResponse { return toCategoryResponse(&c) })
}

// CredentialResponse never carries the password.
type CredentialResponse struct {
	ID         uuid.UUID  `json:"id"`
	CategoryID *uuid.UUID `json:"category_id"`
	Name       string     `json:"name"`
	Username   string     `json:"username"`
	Website    string     `json:"website"`
	Notes      string     `json:"notes"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func toCredentialResponse(c *entity.Credential) CredentialResponse {
	return CredentialResponse{
		ID:         c.ID,
		CategoryID: c.CategoryID,
		Name:       c.Name,
		Username:   c.Username,
		Website:    c.Website,
		Notes:      c.Notes,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}

func toCredentialResponses(creds []entity.Credential) []CredentialResponse {
	return lo.Map(creds, func(c entity.Credential, _ int) CredentialResponse { return toCredentialResponse(&c) })
}

type CategoryCreateRequest struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	ParentID    *uuid.UUID `json:"parent_id"`
}

type CategoryCreateResponse struct {
	CategoryResponse
}

func (CategoryCreateResponse) StatusCode() int { return http.StatusCreated }

func (CategoryCreateResponse) Message() string { return "Category created successfully" }

type CategoryUpdateRequest struct {
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	ParentID    *uuid.UUID `json:"parent_id"`
	ClearParent bool       `json:"clear_parent"`
}

type CategoryUpdateResponse struct {
	CategoryResponse
}

func (CategoryUpdateResponse) Message() string { return "Category updated successfully" }

type CredentialCreateRequest struct {
	CategoryID *uuid.UUID `json:"category_id"`
	Name       string     `json:"name"`
	Username   string     `json:"username"`
	Password   string     `json:"password"`
	Website    string     `json:"website"`
	Notes      string     `json:"notes"`
}

type CredentialCreateResponse struct {
	CredentialResponse
}

func (CredentialCreateResponse) StatusCode() int { return http.StatusCreated }

func (CredentialCreateResponse) Message() string { return "Credential created successfully" }

type CredentialUpdateRequest struct {
	CategoryID    *uuid.UUID `json:"category_id"`
	ClearCategory bool       `json:"clear_category"`
	Name          *string    `json:"name"`
	Username      *string    `json:"username"`
	Password      *string    `json:"password"`
	Website       *string    `json:"website"`
	Notes         *string    `json:"notes"`
}

type CredentialUpdateResponse struct {
	CredentialResponse
}

func (CredentialUpdateResponse) Message() string { return "Credential updated successfully" }

type RevealResponse struct {
	ID       uuid.UUID `json:"id"`
	Password string    `json:"password"`
}

type ExportResponse struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (ExportResponse) Message() string { return "Vault exported successfully" }

type CategoryDeleteResponse struct{}

func (CategoryDeleteResponse) Message() string { return "Category deleted successfully" }

type CredentialDeleteResponse struct{}

func (CredentialDeleteResponse) Message() string { return "Credential deleted successfully" }
