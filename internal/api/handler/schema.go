package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/clipstream/accounts-api/internal/core/domain"
)

// apiResponse is the envelope every endpoint renders, success or failure.
type apiResponse struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

// respond writes a success envelope. An empty message defaults to "success";
// nil data is rendered as an empty object so clients always see a payload.
func respond(c echo.Context, status int, data any, message string) error {
	if message == "" {
		message = "success"
	}
	if data == nil {
		data = map[string]any{}
	}
	return c.JSON(status, apiResponse{
		StatusCode: status,
		Data:       data,
		Message:    message,
		Success:    status < http.StatusBadRequest,
	})
}

// --- Request types ---

type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required"`
}

type updateProfileRequest struct {
	FullName *string `json:"fullName" validate:"omitempty,min=1"`
	Email    *string `json:"email"    validate:"omitempty,email"`
}

// --- Response payloads ---

type loginResponse struct {
	User         *domain.User `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
}

type tokenPairResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type userResponse struct {
	User *domain.User `json:"user"`
}
