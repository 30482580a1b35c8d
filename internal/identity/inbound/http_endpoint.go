package inbound

import (
	"github.com/shandysiswandi/dragonfruit/internal/identity/usecase"
	"github.com/shandysiswandi/dragonfruit/internal/pkg/router"
)

// HTTPEndpoint exposes HTTP handlers for registration, login, profile and TOTP workflows.
type HTTPEndpoint struct {
	uc uc
}

func clientInfo(r *router.Request) usecase.ClientInfo {
	return usecase.ClientInfo{IP: r.ClientIP(), UserAgent: r.GetHeader("User-Agent")}
}

func (h *HTTPEndpoint) Register(r *router.Request) (any, error) {
	var req RegisterRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	user, err := h.uc.Register(r.Context(), usecase.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Client:   clientInfo(r),
	})
	if err != nil {
		return nil, err
	}

	return RegisterResponse{UserResponse: toUserResponse(user)}, nil
}

// Login authenticates with username and password, plus a TOTP or recovery code
// when the account has TOTP enabled.
func (h *HTTPEndpoint) Login(r *router.Request) (any, error) {
	var req LoginRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Login(r.Context(), usecase.LoginInput{
		Username:     req.Username,
		Password:     req.Password,
		TOTPCode:     req.TOTPCode,
		RecoveryCode: req.RecoveryCode,
		Client:       clientInfo(r),
	})
	if err != nil {
		return nil, err
	}

	return LoginResponse{User: toUserResponse(&resp.User), Token: resp.Token}, nil
}

func (h *HTTPEndpoint) Profile(r *router.Request) (any, error) {
	user, err := h.uc.Profile(r.Context())
	if err != nil {
		return nil, err
	}

	return toUserResponse(user), nil
}

func (h *HTTPEndpoint) ProfileUpdate(r *router.Request) (any, error) {
	var req ProfileUpdateRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	user, err := h.uc.ProfileUpdate(r.Context(), usecase.ProfileUpdateInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Client:   clientInfo(r),
	})
	if err != nil {
		return nil, err
	}

	return ProfileUpdateResponse{UserResponse: toUserResponse(user)}, nil
}

func (h *HTTPEndpoint) TOTPGenerate(r *router.Request) (any, error) {
	resp, err := h.uc.TOTPGenerate(r.Context())
	if err != nil {
		return nil, err
	}

	return TOTPGenerateResponse{Secret: resp.Secret, URI: resp.URI}, nil
}

func (h *HTTPEndpoint) TOTPEnable(r *router.Request) (any, error) {
	var req TOTPEnableRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.TOTPEnable(r.Context(), usecase.TOTPEnableInput{Code: req.Code, Client: clientInfo(r)})
	if err != nil {
		return nil, err
	}

	return TOTPEnableResponse{RecoveryCodes: resp.RecoveryCodes}, nil
}

func (h *HTTPEndpoint) TOTPDisable(r *router.Request) (any, error) {
	var req TOTPDisableRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.TOTPDisable(r.Context(), usecase.TOTPDisableInput{
		Code:         req.Code,
		RecoveryCode: req.RecoveryCode,
		Client:       clientInfo(r),
	}); err != nil {
		return nil, err
	}

	return TOTPDisableResponse{}, nil
}

func (h *HTTPEndpoint) TOTPQRCode(r *router.Request) (any, error) {
	png, err := h.uc.TOTPQRCode(r.Context())
	if err != nil {
		return nil, err
	}

	return router.Binary{ContentType: "image/png", Body: png}, nil
}
