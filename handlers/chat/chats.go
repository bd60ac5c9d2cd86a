package chat

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/studyhall-app/studyhall-api/services"
	"github.com/studyhall-app/studyhall-api/utils/middleware"
	"github.com/studyhall-app/studyhall-api/utils/response"
	"github.com/studyhall-app/studyhall-api/utils/validation"
	"gorm.io/gorm"
)

// ChatHandler handles chat requests, delegating the heavy lifting to the
// tutor service.
type ChatHandler struct {
	db        *gorm.DB
	validator *validation.Validator
	tutor     *services.TutorService
}

// NewChatHandler creates a new chat handler
func NewChatHandler(db *gorm.DB, tutorService *services.TutorService) *ChatHandler {
	return &ChatHandler{
		db:        db,
		validator: validation.NewValidator(),
		tutor:     tutorService,
	}
}

// SendMessageRequest represents the request to send a chat message
type SendMessageRequest struct {
	SessionID uint   `json:"session_id" validate:"required,min=1"`
	Message   string `json:"message" validate:"required"`
}

// Send handles POST /chat: one user message in, one AI answer out, with the
// optional derived note/question pair as a side effect.
func (h *ChatHandler) Send(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	var req SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	req.Message = validation.SanitizeString(req.Message)
	if req.Message == "" {
		return response.BadRequest(c, "Please enter a message")
	}

	exchange, err := h.tutor.SendMessage(c.UserContext(), user.ID, req.SessionID, req.Message)
	if err != nil {
		switch err {
		case services.ErrSessionNotFound, services.ErrSessionForbidden:
			return response.Forbidden(c, "Invalid session")
		default:
			// Generation failures surface verbatim: this runs against a
			// locally hosted model and the operator needs the real cause.
			return response.InternalServerError(c, "AI response error: "+err.Error())
		}
	}

	return response.Success(c, exchange)
}

// History handles GET /chat?session_id=: the full transcript in display order
func (h *ChatHandler) History(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	sessionID, err := strconv.Atoi(c.Query("session_id", "0"))
	if err != nil || sessionID <= 0 {
		return response.BadRequest(c, "Session ID is required")
	}

	messages, err := h.tutor.History(c.UserContext(), user.ID, uint(sessionID))
	if err != nil {
		if err == services.ErrSessionNotFound {
			return response.NotFound(c, "Session not found")
		}
		return response.InternalServerError(c, "Failed to fetch chat history")
	}

	return response.Success(c, fiber.Map{
		"messages":   messages,
		"session_id": sessionID,
	})
}

// TestConnection handles GET /chat/test: the unauthenticated connectivity
// probe against the generation service.
func (h *ChatHandler) TestConnection(c *fiber.Ctx) error {
	result := h.tutor.Client().TestConnection(c.UserContext())
	return response.Success(c, result)
}
