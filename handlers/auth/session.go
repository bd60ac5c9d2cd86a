package auth

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/studyhall-app/studyhall-api/utils/middleware"
	"github.com/studyhall-app/studyhall-api/utils/response"
)

// CheckResponse reports whether the caller holds a live credential
type CheckResponse struct {
	Authenticated bool          `json:"authenticated"`
	User          *UserResponse `json:"user,omitempty"`
}

// Check handles GET /auth/check. It never fails: an absent or stale
// credential simply yields authenticated=false for the client to branch on.
func (h *AuthHandler) Check(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Success(c, CheckResponse{Authenticated: false})
	}

	res := toUserResponse(user)
	return response.Success(c, CheckResponse{
		Authenticated: true,
		User:          &res,
	})
}

// Logout revokes the presented token. It always succeeds; a blacklist write
// failure is logged but the credential still expires on its own.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	user, _ := middleware.GetUser(c)
	claims, ok := middleware.GetClaims(c)
	if ok && claims.ExpiresAt != nil {
		err := h.blacklistService.RevokeToken(c.UserContext(), claims.ID, user.ID, claims.ExpiresAt.Time, "logout")
		if err != nil {
			log.Printf("Warning: failed to blacklist token on logout for user %d: %v", user.ID, err)
		}
	}

	return response.SuccessWithMessage(c, "Logged out", nil)
}
