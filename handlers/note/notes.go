package note

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/studyhall-app/studyhall-api/model"
	"github.com/studyhall-app/studyhall-api/services"
	"github.com/studyhall-app/studyhall-api/utils/middleware"
	"github.com/studyhall-app/studyhall-api/utils/response"
	"github.com/studyhall-app/studyhall-api/utils/validation"
	"gorm.io/gorm"
)

// NoteHandler handles personal note requests
type NoteHandler struct {
	db        *gorm.DB
	validator *validation.Validator
	sessions  *services.SessionService
}

// NewNoteHandler creates a new note handler
func NewNoteHandler(db *gorm.DB, sessionService *services.SessionService) *NoteHandler {
	return &NoteHandler{
		db:        db,
		validator: validation.NewValidator(),
		sessions:  sessionService,
	}
}

// NoteListEntry is one row of the notes listing, enriched for display
type NoteListEntry struct {
	NoteID      uint      `json:"note_id"`
	SessionID   uint      `json:"session_id"`
	Content     string    `json:"content"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	SubjectName string    `json:"subject_name"`
	UnitName    string    `json:"unit_name"`
	StudyDate   string    `json:"study_date"`
}

// CreateNoteRequest represents the request to create a note
type CreateNoteRequest struct {
	SessionID uint   `json:"session_id" validate:"required,min=1"`
	Content   string `json:"content" validate:"required"`
}

// UpdateNoteRequest is a present-or-absent partial update
type UpdateNoteRequest struct {
	Content *string `json:"content"`
	Status  *string `json:"status"`
}

// List handles GET /notes. With session_id it returns that session's notes;
// otherwise all of the caller's notes with optional status filtering and
// pagination.
func (h *NoteHandler) List(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	if sessionID, err := strconv.Atoi(c.Query("session_id", "0")); err == nil && sessionID > 0 {
		return h.listBySession(c, user.ID, uint(sessionID))
	}

	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))
	limit, offset = response.ClampLimit(limit, offset, 50)
	status := c.Query("status", "")

	countQuery := h.db.Model(&model.Note{}).Where("user_id = ?", user.ID)
	if model.IsValidNoteStatus(status) {
		countQuery = countQuery.Where("status = ?", status)
	}

	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return response.InternalServerError(c, "Failed to count notes")
	}

	query := h.db.
		Table("class_notes").
		Select(`class_notes.note_id,
			class_notes.session_id,
			class_notes.content,
			class_notes.status,
			class_notes.created_at,
			class_notes.updated_at,
			subjects.subject_name,
			class_sessions.unit_name,
			class_sessions.study_date`).
		Joins("JOIN class_sessions ON class_sessions.session_id = class_notes.session_id").
		Joins("JOIN subjects ON subjects.subject_id = class_sessions.subject_id").
		Where("class_notes.user_id = ?", user.ID)
	if model.IsValidNoteStatus(status) {
		query = query.Where("class_notes.status = ?", status)
	}

	notes := []NoteListEntry{}
	if err := query.
		Order("class_notes.created_at DESC").
		Limit(limit).
		Offset(offset).
		Scan(&notes).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch notes")
	}

	return response.List(c, fiber.Map{"notes": notes}, response.ListMeta{
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}

func (h *NoteHandler) listBySession(c *fiber.Ctx, userID, sessionID uint) error {
	if _, err := h.sessions.Get(c.UserContext(), userID, sessionID); err != nil {
		return response.NotFound(c, "Session not found")
	}

	notes := []model.Note{}
	if err := h.db.
		Where("session_id = ? AND user_id = ?", sessionID, userID).
		Order("created_at DESC").
		Find(&notes).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch notes")
	}

	return response.Success(c, fiber.Map{
		"notes":      notes,
		"session_id": sessionID,
	})
}

// Create handles POST /notes
func (h *NoteHandler) Create(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	var req CreateNoteRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	req.Content = validation.SanitizeString(req.Content)
	if req.Content == "" {
		return response.BadRequest(c, "Please enter note content")
	}
	if validation.RuneLength(req.Content) > model.MaxNoteLength {
		return response.BadRequest(c, "Notes must be 200 characters or fewer")
	}

	if _, err := h.sessions.Authorize(c.UserContext(), user.ID, req.SessionID); err != nil {
		if err == services.ErrSessionNotFound {
			return response.NotFound(c, "Session not found")
		}
		return response.Forbidden(c, "Invalid session")
	}

	note := model.Note{
		SessionID: req.SessionID,
		UserID:    user.ID,
		Content:   req.Content,
		Status:    model.NoteStatusUnsolved,
	}
	if err := h.db.Create(&note).Error; err != nil {
		return response.InternalServerError(c, "Failed to create note")
	}

	return response.Created(c, fiber.Map{"note": note})
}

// Update handles PUT /notes/:id (status flips and content edits)
func (h *NoteHandler) Update(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	noteID, err := strconv.Atoi(c.Params("id"))
	if err != nil || noteID <= 0 {
		return response.BadRequest(c, "Note ID is required")
	}

	var note model.Note
	if err := h.db.First(&note, noteID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Note not found")
		}
		return response.InternalServerError(c, "Failed to fetch note")
	}
	if note.UserID != user.ID {
		return response.Forbidden(c, "You cannot modify this note")
	}

	var req UpdateNoteRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	fields := map[string]interface{}{}
	if req.Status != nil {
		if !model.IsValidNoteStatus(*req.Status) {
			return response.BadRequest(c, "Invalid status")
		}
		fields["status"] = *req.Status
	}
	if req.Content != nil {
		content := validation.SanitizeString(*req.Content)
		if content == "" {
			return response.BadRequest(c, "Please enter note content")
		}
		if validation.RuneLength(content) > model.MaxNoteLength {
			return response.BadRequest(c, "Notes must be 200 characters or fewer")
		}
		fields["content"] = content
	}

	if len(fields) == 0 {
		return response.BadRequest(c, "No fields to update")
	}

	if err := h.db.Model(&note).Updates(fields).Error; err != nil {
		return response.InternalServerError(c, "Failed to update note")
	}

	if err := h.db.First(&note, noteID).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch note")
	}

	return response.SuccessWithMessage(c, "Note updated", fiber.Map{"note": note})
}

// Delete handles DELETE /notes/:id; notes are hard-deleted
func (h *NoteHandler) Delete(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	noteID, err := strconv.Atoi(c.Params("id"))
	if err != nil || noteID <= 0 {
		return response.BadRequest(c, "Note ID is required")
	}

	var note model.Note
	if err := h.db.First(&note, noteID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Note not found")
		}
		return response.InternalServerError(c, "Failed to fetch note")
	}
	if note.UserID != user.ID {
		return response.Forbidden(c, "You cannot delete this note")
	}

	if err := h.db.Delete(&note).Error; err != nil {
		return response.InternalServerError(c, "Failed to delete note")
	}

	return response.SuccessWithMessage(c, "Note deleted", nil)
}
