package session

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/studyhall-app/studyhall-api/services"
	"github.com/studyhall-app/studyhall-api/utils/middleware"
	"github.com/studyhall-app/studyhall-api/utils/response"
	"github.com/studyhall-app/studyhall-api/utils/validation"
	"gorm.io/gorm"
)

// SessionHandler handles lesson-session requests
type SessionHandler struct {
	db        *gorm.DB
	validator *validation.Validator
	sessions  *services.SessionService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(db *gorm.DB, sessionService *services.SessionService) *SessionHandler {
	return &SessionHandler{
		db:        db,
		validator: validation.NewValidator(),
		sessions:  sessionService,
	}
}

// CreateSessionRequest represents the request to create a session
type CreateSessionRequest struct {
	SubjectID uint   `json:"subject_id" validate:"required,min=1"`
	StudyDate string `json:"study_date" validate:"omitempty,datetime=2006-01-02"`
	Period    int    `json:"period" validate:"omitempty,min=1,max=12"`
	UnitName  string `json:"unit_name" validate:"omitempty,max=100"`
}

// Create handles POST /sessions
func (h *SessionHandler) Create(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	var req CreateSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	if req.Period == 0 {
		req.Period = 1
	}

	created, err := h.sessions.Create(c.UserContext(), user.ID, services.CreateSessionInput{
		SubjectID: req.SubjectID,
		StudyDate: req.StudyDate,
		Period:    req.Period,
		UnitName:  validation.SanitizeString(req.UnitName),
	})
	if err != nil {
		return h.mapServiceError(c, err)
	}

	return response.Created(c, fiber.Map{"session": created})
}

// Current handles GET /sessions/current: find-or-create for today's lesson
func (h *SessionHandler) Current(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	subjectID, _ := strconv.Atoi(c.Query("subject_id", "0"))
	period, _ := strconv.Atoi(c.Query("period", "1"))
	studyDate := c.Query("study_date", "")
	unitName := validation.SanitizeString(c.Query("unit_name", ""))

	if subjectID < 0 {
		subjectID = 0
	}

	session, created, err := h.sessions.GetOrCreateCurrent(c.UserContext(), user.ID, services.CreateSessionInput{
		SubjectID: uint(subjectID),
		StudyDate: studyDate,
		Period:    period,
		UnitName:  unitName,
	})
	if err != nil {
		return h.mapServiceError(c, err)
	}

	return response.Success(c, fiber.Map{
		"session": session,
		"created": created,
	})
}

// Get handles GET /sessions/:id
func (h *SessionHandler) Get(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	sessionID, err := strconv.Atoi(c.Params("id"))
	if err != nil || sessionID <= 0 {
		return response.BadRequest(c, "Session ID is required")
	}

	session, err := h.sessions.Get(c.UserContext(), user.ID, uint(sessionID))
	if err != nil {
		return h.mapServiceError(c, err)
	}

	return response.Success(c, fiber.Map{"session": session})
}

// List handles GET /sessions: the history listing with pagination
func (h *SessionHandler) List(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))
	limit, offset = response.ClampLimit(limit, offset, 20)

	entries, total, err := h.sessions.ListHistory(c.UserContext(), user.ID, limit, offset)
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch session history")
	}

	return response.List(c, fiber.Map{"sessions": entries}, response.ListMeta{
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}

// Update handles PUT /sessions/:id with a present-or-absent partial update
func (h *SessionHandler) Update(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	sessionID, err := strconv.Atoi(c.Params("id"))
	if err != nil || sessionID <= 0 {
		return response.BadRequest(c, "Session ID is required")
	}

	var update services.SessionUpdate
	if err := c.BodyParser(&update); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if update.UnitName != nil {
		trimmed := validation.SanitizeString(*update.UnitName)
		update.UnitName = &trimmed
	}

	session, err := h.sessions.Update(c.UserContext(), user.ID, uint(sessionID), update)
	if err != nil {
		return h.mapServiceError(c, err)
	}

	return response.SuccessWithMessage(c, "Session updated", fiber.Map{"session": session})
}

func (h *SessionHandler) mapServiceError(c *fiber.Ctx, err error) error {
	switch err {
	case services.ErrSessionNotFound:
		return response.NotFound(c, "Session not found")
	case services.ErrSessionForbidden:
		return response.Forbidden(c, "Session does not belong to you")
	case services.ErrInvalidSubject:
		return response.BadRequest(c, "Please select a valid subject")
	case services.ErrInvalidPeriod:
		return response.BadRequest(c, "Period must be between 1 and 12")
	case services.ErrEmptyUpdate:
		return response.BadRequest(c, "No fields to update")
	default:
		return response.InternalServerError(c, "Failed to process session")
	}
}
