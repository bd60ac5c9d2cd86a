package reflection

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/studyhall-app/studyhall-api/model"
	"github.com/studyhall-app/studyhall-api/services"
	"github.com/studyhall-app/studyhall-api/utils/middleware"
	"github.com/studyhall-app/studyhall-api/utils/response"
	"github.com/studyhall-app/studyhall-api/utils/validation"
	"gorm.io/gorm"
)

// ReflectionHandler handles end-of-session reflection requests
type ReflectionHandler struct {
	db        *gorm.DB
	validator *validation.Validator
	sessions  *services.SessionService
}

// NewReflectionHandler creates a new reflection handler
func NewReflectionHandler(db *gorm.DB, sessionService *services.SessionService) *ReflectionHandler {
	return &ReflectionHandler{
		db:        db,
		validator: validation.NewValidator(),
		sessions:  sessionService,
	}
}

// SaveReflectionRequest replaces a session's reflection wholesale.
// Individual fields may be empty.
type SaveReflectionRequest struct {
	SessionID      uint   `json:"session_id" validate:"required,min=1"`
	GoalText       string `json:"goal_text"`
	UnderstoodText string `json:"understood_text"`
	QuestionText   string `json:"question_text"`
}

// Get handles GET /reflections?session_id=. Absence of a reflection is
// not an error; the client needs to know whether to show an empty form.
func (h *ReflectionHandler) Get(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	sessionID, err := strconv.Atoi(c.Query("session_id", "0"))
	if err != nil || sessionID <= 0 {
		return response.BadRequest(c, "Session ID is required")
	}

	if _, err := h.sessions.Get(c.UserContext(), user.ID, uint(sessionID)); err != nil {
		return response.NotFound(c, "Session not found")
	}

	var reflection model.Reflection
	if err := h.db.Where("session_id = ?", sessionID).First(&reflection).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.Success(c, fiber.Map{"reflection": nil})
		}
		return response.InternalServerError(c, "Failed to fetch reflection")
	}

	return response.Success(c, fiber.Map{"reflection": reflection})
}

// Save handles POST /reflections. One reflection per session: saving
// again overwrites all three fields of the existing row.
func (h *ReflectionHandler) Save(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	var req SaveReflectionRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	if _, err := h.sessions.Authorize(c.UserContext(), user.ID, req.SessionID); err != nil {
		if err == services.ErrSessionNotFound {
			return response.NotFound(c, "Session not found")
		}
		return response.Forbidden(c, "Invalid session")
	}

	goal := validation.SanitizeString(req.GoalText)
	understood := validation.SanitizeString(req.UnderstoodText)
	question := validation.SanitizeString(req.QuestionText)

	var reflection model.Reflection
	err := h.db.Where("session_id = ?", req.SessionID).First(&reflection).Error
	switch {
	case err == nil:
		reflection.GoalText = goal
		reflection.UnderstoodText = understood
		reflection.QuestionText = question
		if err := h.db.Save(&reflection).Error; err != nil {
			return response.InternalServerError(c, "Failed to save reflection")
		}
	case err == gorm.ErrRecordNotFound:
		reflection = model.Reflection{
			SessionID:      req.SessionID,
			GoalText:       goal,
			UnderstoodText: understood,
			QuestionText:   question,
		}
		if err := h.db.Create(&reflection).Error; err != nil {
			return response.InternalServerError(c, "Failed to save reflection")
		}
	default:
		return response.InternalServerError(c, "Failed to fetch reflection")
	}

	return response.SuccessWithMessage(c, "Reflection saved", fiber.Map{"reflection": reflection})
}
