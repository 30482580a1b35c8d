package inbound

import (
	"net/http"
	"time"

	"github.com/shandysiswandi/dragonfruit/internal/identity/entity"
)

type UserResponse struct {
	ID          string     `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	TOTPEnabled bool       `json:"totp_enabled"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	LastLogin   *time.Time `json:"last_login,omitempty"`
}

func toUserResponse(u *entity.User) UserResponse {
	return UserResponse{
		ID:          u.ID.String(),
		Username:    u.Username,
		Email:       u.Email,
		TOTPEnabled: u.TOTPState == entity.TOTPStateEnabled,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
		LastLogin:   u.LastLogin,
	}
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterResponse struct {
	UserResponse
}

func (RegisterResponse) StatusCode() int { return http.StatusCreated }

func (RegisterResponse) Message() string { return "User registered successfully" }

type LoginRequest struct {
	Username     string `json:"username"`
	Password     string `json:"password"`
	TOTPCode     string `json:"totp_code,omitempty"`
	RecoveryCode string `json:"recovery_code,omitempty"`
}

type LoginResponse struct {
	User  UserResponse `json:"user"`
	Token string       `json:"token"`
}

func (LoginResponse) Message() string { return "Login successful" }

type ProfileUpdateRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

type ProfileUpdateResponse struct {
	UserResponse
}

func (ProfileUpdateResponse) Message() string { return "Profile updated successfully" }

type TOTPGenerateResponse struct {
	Secret string `json:"secret"`
	URI    string `json:"uri"`
}

type TOTPEnableRequest struct {
	Code string `json:"code"`
}

type TOTPEnableResponse struct {
	RecoveryCodes []string `json:"recovery_codes"`
}

func (TOTPEnableResponse) Message() string { return "TOTP enabled successfully" }

type TOTPDisableRequest struct {
	Code         string `json:"code,omitempty"`
	RecoveryCode string `json:"recovery_code,omitempty"`
}

type TOTPDisableResponse struct{}

func (TOTPDisableResponse) Message() string { return "TOTP disabled successfully" }
