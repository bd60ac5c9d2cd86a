package auth

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/studyhall-app/studyhall-api/model"
	"github.com/studyhall-app/studyhall-api/utils/response"
)

const (
	subjectsCacheKey = "subjects:all"
	subjectsCacheTTL = 5 * time.Minute
)

// Subjects handles GET /auth/subjects: the public static subject list,
// served from Redis when available.
func (h *AuthHandler) Subjects(c *fiber.Ctx) error {
	if h.cache != nil {
		var cached []model.Subject
		if err := h.cache.GetJSON(c.UserContext(), subjectsCacheKey, &cached); err == nil {
			return response.Success(c, fiber.Map{"subjects": cached})
		}
	}

	var subjects []model.Subject
	if err := h.db.Order("subject_id ASC").Find(&subjects).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch subjects")
	}

	if h.cache != nil {
		// Static reference data; a stale entry is harmless
		_ = h.cache.SetJSON(c.UserContext(), subjectsCacheKey, subjects, subjectsCacheTTL)
	}

	return response.Success(c, fiber.Map{"subjects": subjects})
}
