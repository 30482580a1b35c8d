package inbound

import (
	"github.com/shandysiswandi/dragonfruit/internal/pkg/router"
	"github.com/shandysiswandi/dragonfruit/internal/vault/usecase"
)

// HTTPEndpoint exposes the caller's categories, credentials and vault export.
type HTTPEndpoint struct {
	uc uc
}

func (h *HTTPEndpoint) CategoryList(r *router.Request) (any, error) {
	cats, err := h.uc.CategoryList(r.Context())
	if err != nil {
		return nil, err
	}

	return toCategoryResponses(cats), nil
}

func (h *HTTPEndpoint) CategoryCreate(r *router.Request) (any, error) {
	var req CategoryCreateRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	cat, err := h.uc.CategoryCreate(r.Context(), usecase.CategoryCreateInput{
		Name:        req.Name,
		Description: req.Description,
		ParentID:    req.ParentID,
	})
	if err != nil {
		return nil, err
	}

	return CategoryCreateResponse{CategoryResponse: toCategoryResponse(cat)}, nil
}

func (h *HTTPEndpoint) CategoryGet(r *router.Request) (any, error) {
	id, err := r.GetParamUUID("id")
	if err != nil {
		return nil, err
	}

	cat, err := h.uc.CategoryGet(r.Context(), id)
	if err != nil {
		return nil, err
	}

	return toCategoryResponse(cat), nil
}

func (h *HTTPEndpoint) CategoryUpdate(r *router.Request) (any, error) {
	id, err := r.GetParamUUID("id")
	if err != nil {
		return nil, err
	}

	var req CategoryUpdateRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	cat, err := h.uc.CategoryUpdate(r.Context(), usecase.CategoryUpdateInput{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		ParentID:    req.ParentID,
		ClearParent: req.ClearParent,
	})
	if err != nil {
		return nil, err
	}

	return CategoryUpdateResponse{CategoryResponse: toCategoryResponse(cat)}, nil
}

func (h *HTTPEndpoint) CategoryDelete(r *router.Request) (any, error) {
	id, err := r.GetParamUUID("id")
	if err != nil {
		return nil, err
	}

	if err := h.uc.CategoryDelete(r.Context(), id); err != nil {
		return nil, err
	}

	return CategoryDeleteResponse{}, nil
}

func (h *HTTPEndpoint) CategoryCredentials(r *router.Request) (any, error) {
	id, err := r.GetParamUUID("id")
	if err != nil {
		return nil, err
	}

	creds, err := h.uc.CategoryCredentials(r.Context(), id)
	if err != nil {
		return nil, err
	}

	return toCredentialResponses(creds), nil
}

func (h *HTTPEndpoint) CredentialList(r *router.Request) (any, error) {
	creds, err := h.uc.CredentialList(r.Context())
	if err != nil {
		return nil, err
	}

	return toCredentialResponses(creds), nil
}

// CredentialCreate honors the Idempotency-Key header.
func (h *HTTPEndpoint) CredentialCreate(r *router.Request) (any, error) {
	var req CredentialCreateRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	cred, err := h.uc.CredentialCreate(r.Context(), usecase.CredentialCreateInput{
		IdempotencyKey: r.GetHeader("Idempotency-Key"),
		CategoryID:     req.CategoryID,
		Name:           req.Name,
		Username:       req.Username,
		Password:       req.Password,
		Website:        req.Website,
		Notes:          req.Notes,
	})
	if err != nil {
		return nil, err
	}

	return CredentialCreateResponse{CredentialResponse: toCredentialResponse(cred)}, nil
}

func (h *HTTPEndpoint) CredentialGet(r *router.Request) (any, error) {
	id, err := r.GetParamUUID("id")
	if err != nil {
		return nil, err
	}

	cred, err := h.uc.CredentialGet(r.Context(), id)
	if err != nil {
		return nil, err
	}

	return toCredentialResponse(cred), nil
}

func (h *HTTPEndpoint) CredentialReveal(r *router.Request) (any, error) {
	id, err := r.GetParamUUID("id")
	if err != nil {
		return nil, err
	}

	out, err := h.uc.CredentialReveal(r.Context(), id)
	if err != nil {
		return nil, err
	}

	return RevealResponse{ID: out.ID, Password: out.Password}, nil
}

func (h *HTTPEndpoint) CredentialUpdate(r *router.Request) (any, error) {
	id, err := r.GetParamUUID("id")
	if err != nil {
		return nil, err
	}

	var req CredentialUpdateRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	cred, err := h.uc.CredentialUpdate(r.Context(), usecase.CredentialUpdateInput{
		ID:            id,
		CategoryID:    req.CategoryID,
		ClearCategory: req.ClearCategory,
		Name:          req.Name,
		Username:      req.Username,
		Password:      req.Password,
		Website:       req.Website,
		Notes:         req.Notes,
	})
	if err != nil {
		return nil, err
	}

	return CredentialUpdateResponse{CredentialResponse: toCredentialResponse(cred)}, nil
}

func (h *HTTPEndpoint) CredentialDelete(r *router.Request) (any, error) {
	id, err := r.GetParamUUID("id")
	if err != nil {
		return nil, err
	}

	if err := h.uc.CredentialDelete(r.Context(), id); err != nil {
		return nil, err
	}

	return CredentialDeleteResponse{}, nil
}

func (h *HTTPEndpoint) Export(r *router.Request) (any, error) {
	out, err := h.uc.Export(r.Context())
	if err != nil {
		return nil, err
	}

	return ExportResponse{Key: out.Key, URL: out.URL, ExpiresAt: out.ExpiresAt}, nil
}
