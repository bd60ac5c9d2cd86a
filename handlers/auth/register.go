package auth

import (
	"github.com/gofiber/fiber/v2"
	"github.com/studyhall-app/studyhall-api/model"
	authutil "github.com/studyhall-app/studyhall-api/utils/auth"
	"github.com/studyhall-app/studyhall-api/utils/response"
	"github.com/studyhall-app/studyhall-api/utils/validation"
)

// MaxDisplayNameLength is counted in characters, not bytes
const MaxDisplayNameLength = 50

// RegisterRequest represents a user registration request
type RegisterRequest struct {
	StudentCode string `json:"student_code" validate:"required"`
	DisplayName string `json:"display_name" validate:"required"`
	Password    string `json:"password" validate:"required"`
}

// Register handles user registration
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	req.StudentCode = validation.SanitizeString(req.StudentCode)
	req.DisplayName = validation.SanitizeString(req.DisplayName)

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	if !authutil.IsPasswordValid(req.Password) {
		return response.BadRequest(c, "Password must be at least 4 characters long")
	}

	if validation.RuneLength(req.DisplayName) > MaxDisplayNameLength {
		return response.BadRequest(c, "Display name must be 50 characters or fewer")
	}

	// Check if the student code is taken
	var count int64
	if err := h.db.Model(&model.User{}).Where("student_code = ?", req.StudentCode).Count(&count).Error; err != nil {
		return response.InternalServerError(c, "Failed to check student code")
	}
	if count > 0 {
		return response.Conflict(c, "This student code is already registered")
	}

	hashedPassword, err := authutil.HashPassword(req.Password)
	if err != nil {
		return response.InternalServerError(c, "Failed to process password")
	}

	user := model.User{
		StudentCode:  req.StudentCode,
		DisplayName:  req.DisplayName,
		PasswordHash: hashedPassword,
	}
	if err := h.db.Create(&user).Error; err != nil {
		return response.InternalServerError(c, "Failed to create user")
	}

	// Auto-login after registration
	accessToken, _, err := h.jwtManager.GenerateAccessToken(user.ID, user.StudentCode, user.TokenVersion)
	if err != nil {
		return response.InternalServerError(c, "Failed to generate access token")
	}

	refreshToken, _, err := h.jwtManager.GenerateRefreshToken(user.ID, user.StudentCode, user.TokenVersion)
	if err != nil {
		return response.InternalServerError(c, "Failed to generate refresh token")
	}

	res := TokenResponse{
		User:         toUserResponse(&user),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    24 * 60 * 60, // 24 hours in seconds
	}

	return response.Created(c, res)
}
