package question

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/studyhall-app/studyhall-api/model"
	"github.com/studyhall-app/studyhall-api/services"
	"github.com/studyhall-app/studyhall-api/utils/cache"
	"github.com/studyhall-app/studyhall-api/utils/middleware"
	"github.com/studyhall-app/studyhall-api/utils/response"
	"github.com/studyhall-app/studyhall-api/utils/validation"
	"gorm.io/gorm"
)

const (
	recentQuestionsCacheKey = "questions:recent"
	recentQuestionsCacheTTL = 30 * time.Second
)

// QuestionHandler handles shared question requests. Listing is public;
// create and delete require authentication.
type QuestionHandler struct {
	db        *gorm.DB
	validator *validation.Validator
	sessions  *services.SessionService
	cache     *cache.RedisCache
}

// NewQuestionHandler creates a new shared question handler
func NewQuestionHandler(db *gorm.DB, sessionService *services.SessionService, redisCache *cache.RedisCache) *QuestionHandler {
	return &QuestionHandler{
		db:        db,
		validator: validation.NewValidator(),
		sessions:  sessionService,
		cache:     redisCache,
	}
}

// QuestionListEntry is one row of the public questions feed
type QuestionListEntry struct {
	QuestionID  uint      `json:"question_id"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"created_at"`
	DisplayName string    `json:"display_name"`
	SubjectName string    `json:"subject_name"`
	UnitName    string    `json:"unit_name"`
	StudyDate   string    `json:"study_date"`
}

// CreateQuestionRequest represents the request to share a question
type CreateQuestionRequest struct {
	SessionID uint   `json:"session_id" validate:"required,min=1"`
	Content   string `json:"content" validate:"required"`
}

type questionListPayload struct {
	Questions []QuestionListEntry `json:"questions"`
	Meta      response.ListMeta   `json:"meta"`
}

// List handles GET /questions. No authentication required; every
// student's shared questions are visible. An optional date query
// restricts results to sessions on that exact day.
func (h *QuestionHandler) List(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))
	limit, offset = response.ClampLimit(limit, offset, 50)
	date := c.Query("date", "")

	if date != "" {
		if _, err := time.Parse(model.DateFormat, date); err != nil {
			return response.BadRequest(c, "Date must be in YYYY-MM-DD format")
		}
	}

	// The default first page is what every student's feed shows; serve
	// it from cache when possible.
	cacheable := h.cache != nil && date == "" && limit == 50 && offset == 0
	if cacheable {
		var payload questionListPayload
		if err := h.cache.GetJSON(c.UserContext(), recentQuestionsCacheKey, &payload); err == nil {
			return response.List(c, fiber.Map{"questions": payload.Questions}, payload.Meta)
		}
	}

	countQuery := h.db.Model(&model.SharedQuestion{})
	query := h.db.
		Table("shared_questions").
		Select(`shared_questions.question_id,
			shared_questions.content,
			shared_questions.created_at,
			users.display_name,
			subjects.subject_name,
			class_sessions.unit_name,
			class_sessions.study_date`).
		Joins("JOIN users ON users.id = shared_questions.user_id").
		Joins("JOIN class_sessions ON class_sessions.session_id = shared_questions.session_id").
		Joins("JOIN subjects ON subjects.subject_id = class_sessions.subject_id")

	if date != "" {
		countQuery = countQuery.
			Joins("JOIN class_sessions ON class_sessions.session_id = shared_questions.session_id").
			Where("class_sessions.study_date = ?", date)
		query = query.Where("class_sessions.study_date = ?", date)
	}

	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return response.InternalServerError(c, "Failed to count questions")
	}

	questions := []QuestionListEntry{}
	if err := query.
		Order("shared_questions.created_at DESC").
		Limit(limit).
		Offset(offset).
		Scan(&questions).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch questions")
	}

	meta := response.ListMeta{Total: total, Limit: limit, Offset: offset}
	if cacheable {
		_ = h.cache.SetJSON(c.UserContext(), recentQuestionsCacheKey, questionListPayload{
			Questions: questions,
			Meta:      meta,
		}, recentQuestionsCacheTTL)
	}

	return response.List(c, fiber.Map{"questions": questions}, meta)
}

// Create handles POST /questions
func (h *QuestionHandler) Create(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	var req CreateQuestionRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	req.Content = validation.SanitizeString(req.Content)
	if req.Content == "" {
		return response.BadRequest(c, "Please enter a question")
	}
	if validation.RuneLength(req.Content) > model.MaxQuestionLength {
		return response.BadRequest(c, "Questions must be 50 characters or fewer")
	}

	if _, err := h.sessions.Authorize(c.UserContext(), user.ID, req.SessionID); err != nil {
		if err == services.ErrSessionNotFound {
			return response.NotFound(c, "Session not found")
		}
		return response.Forbidden(c, "Invalid session")
	}

	question := model.SharedQuestion{
		SessionID: req.SessionID,
		UserID:    user.ID,
		Content:   req.Content,
	}
	if err := h.db.Create(&question).Error; err != nil {
		return response.InternalServerError(c, "Failed to share question")
	}

	h.invalidateFeed(c)

	return response.Created(c, fiber.Map{
		"question": fiber.Map{
			"question_id":  question.ID,
			"session_id":   question.SessionID,
			"content":      question.Content,
			"created_at":   question.CreatedAt,
			"display_name": user.DisplayName,
		},
	})
}

// Delete handles DELETE /questions/:id; only the author may remove a
// shared question.
func (h *QuestionHandler) Delete(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	questionID, err := strconv.Atoi(c.Params("id"))
	if err != nil || questionID <= 0 {
		return response.BadRequest(c, "Question ID is required")
	}

	var question model.SharedQuestion
	if err := h.db.First(&question, questionID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Question not found")
		}
		return response.InternalServerError(c, "Failed to fetch question")
	}
	if question.UserID != user.ID {
		return response.Forbidden(c, "You cannot delete this question")
	}

	if err := h.db.Delete(&question).Error; err != nil {
		return response.InternalServerError(c, "Failed to delete question")
	}

	h.invalidateFeed(c)

	return response.SuccessWithMessage(c, "Question deleted", nil)
}

func (h *QuestionHandler) invalidateFeed(c *fiber.Ctx) {
	if h.cache == nil {
		return
	}
	_ = h.cache.Delete(c.UserContext(), recentQuestionsCacheKey)
}
