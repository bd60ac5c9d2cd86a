package auth

import (
	"github.com/gofiber/fiber/v2"
	"github.com/studyhall-app/studyhall-api/model"
	authutil "github.com/studyhall-app/studyhall-api/utils/auth"
	"github.com/studyhall-app/studyhall-api/utils/response"
	"github.com/studyhall-app/studyhall-api/utils/validation"
)

// LoginRequest represents a user login request
type LoginRequest struct {
	StudentCode string `json:"student_code" validate:"required"`
	Password    string `json:"password" validate:"required"`
}

// Login handles user login. Unknown code and wrong password share one error
// message so the response does not reveal which field was wrong.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	req.StudentCode = validation.SanitizeString(req.StudentCode)

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	var user model.User
	if err := h.db.Where("student_code = ?", req.StudentCode).First(&user).Error; err != nil {
		return response.Unauthorized(c, "Student code or password is incorrect")
	}

	if err := authutil.VerifyPassword(user.PasswordHash, req.Password); err != nil {
		return response.Unauthorized(c, "Student code or password is incorrect")
	}

	// Every successful login counts as a study day
	streak, err := h.streakService.Touch(c.UserContext(), user.ID)
	if err != nil {
		return response.InternalServerError(c, "Failed to update study streak")
	}

	// Rotate the token version so credentials issued before this login stop
	// working (session fixation defense).
	if err := h.blacklistService.RevokeAllUserTokens(c.UserContext(), user.ID); err != nil {
		return response.InternalServerError(c, "Failed to rotate credentials")
	}
	tokenVersion, err := h.blacklistService.GetUserTokenVersion(c.UserContext(), user.ID)
	if err != nil {
		return response.InternalServerError(c, "Failed to rotate credentials")
	}

	accessToken, _, err := h.jwtManager.GenerateAccessToken(user.ID, user.StudentCode, tokenVersion)
	if err != nil {
		return response.InternalServerError(c, "Failed to generate access token")
	}

	refreshToken, _, err := h.jwtManager.GenerateRefreshToken(user.ID, user.StudentCode, tokenVersion)
	if err != nil {
		return response.InternalServerError(c, "Failed to generate refresh token")
	}

	user.CurrentStreak = streak
	res := TokenResponse{
		User:         toUserResponse(&user),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    24 * 60 * 60, // 24 hours in seconds
	}

	return response.SuccessWithMessage(c, "Logged in", res)
}
