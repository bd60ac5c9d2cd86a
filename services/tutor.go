package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/studyhall-app/studyhall-api/model"
	"github.com/studyhall-app/studyhall-api/services/llm"
	"gorm.io/gorm"
)

const (
	// contextWindow is how many recent messages are replayed into the prompt
	contextWindow = 5

	// summaryMinLength / summaryMaxLength control the derived-summary rule:
	// user messages longer than summaryMinLength characters get a summary of
	// their first summaryMaxLength characters.
	summaryMinLength = 5
	summaryMaxLength = 20
)

// TutorService turns one user message into a persisted exchange with the
// generation service, plus the optional derived note/question pair.
type TutorService struct {
	db       *gorm.DB
	client   *llm.Client
	sessions *SessionService
}

// NewTutorService creates a new tutor service
func NewTutorService(db *gorm.DB, client *llm.Client) *TutorService {
	return &TutorService{
		db:       db,
		client:   client,
		sessions: NewSessionService(db),
	}
}

// Client exposes the underlying generation client for the connectivity probe
func (s *TutorService) Client() *llm.Client {
	return s.client
}

// Exchange is the result of one handled user message
type Exchange struct {
	Answer        string `json:"answer"`
	Summary       string `json:"summary,omitempty"`
	UserMessageID uint   `json:"user_message_id"`
	AIMessageID   uint   `json:"ai_message_id"`
}

// SendMessage runs the full pipeline: authorize the session, persist the
// user's message, call the generation service with a bounded conversation
// window, persist the answer, and fan a derived summary out into the shared
// questions and personal notes tables. The user message is stored before the
// external call so it survives a generation failure; the dual write at the
// end is best-effort and never fails the request.
func (s *TutorService) SendMessage(ctx context.Context, userID, sessionID uint, message string) (*Exchange, error) {
	session, err := s.sessions.Authorize(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	userMsg := model.ChatMessage{
		SessionID: sessionID,
		Sender:    model.SenderUser,
		Content:   message,
	}
	if err := s.db.WithContext(ctx).Create(&userMsg).Error; err != nil {
		return nil, err
	}

	history, err := s.recentHistory(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	prompt := s.buildPrompt(session, history, message)

	answer, err := s.client.Generate(ctx, prompt)
	if err != nil {
		// The user message stays behind as an unanswered entry; the next
		// history read simply shows it without a reply.
		return nil, err
	}

	aiMsg := model.ChatMessage{
		SessionID: sessionID,
		Sender:    model.SenderAI,
		Content:   answer,
	}
	if err := s.db.WithContext(ctx).Create(&aiMsg).Error; err != nil {
		return nil, err
	}

	summary := DeriveSummary(message)
	if summary != "" {
		s.fanOutSummary(ctx, session, userID, summary)
	}

	return &Exchange{
		Answer:        answer,
		Summary:       summary,
		UserMessageID: userMsg.ID,
		AIMessageID:   aiMsg.ID,
	}, nil
}

// History returns the full transcript of an owned session in display order
func (s *TutorService) History(ctx context.Context, userID, sessionID uint) ([]model.ChatMessage, error) {
	session, err := s.sessions.byID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.UserID != userID {
		return nil, ErrSessionNotFound
	}

	messages := []model.ChatMessage{}
	err = s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC, message_id ASC").
		Find(&messages).Error
	return messages, err
}

// recentHistory fetches the newest messages and reverses them back into
// chronological order for the transcript.
func (s *TutorService) recentHistory(ctx context.Context, sessionID uint) ([]model.ChatMessage, error) {
	var newest []model.ChatMessage
	err := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at DESC, message_id DESC").
		Limit(contextWindow).
		Find(&newest).Error
	if err != nil {
		return nil, err
	}

	for i, j := 0, len(newest)-1; i < j; i, j = i+1, j-1 {
		newest[i], newest[j] = newest[j], newest[i]
	}
	return newest, nil
}

func (s *TutorService) buildPrompt(session *model.StudySession, history []model.ChatMessage, message string) string {
	unit := session.UnitName
	if unit == "" {
		unit = "not specified"
	}

	var transcript strings.Builder
	for _, msg := range history {
		role := "Student"
		if msg.Sender == model.SenderAI {
			role = "Teacher"
		}
		fmt.Fprintf(&transcript, "%s: %s\n", role, msg.Content)
	}

	return fmt.Sprintf(`You are a junior high school teacher. Answer the student's question in a %s lesson (unit: %s).

Rules:
- Answer kindly and patiently
- Do not give the answer right away; offer hints so the student thinks for themselves
- End with one short check question

%sStudent: %s

Teacher:`, session.Subject.Name, unit, transcript.String(), message)
}

// fanOutSummary appends the derived summary as a shared question and an
// unsolved note. Both writes are independent; a failure is logged and
// swallowed.
func (s *TutorService) fanOutSummary(ctx context.Context, session *model.StudySession, userID uint, summary string) {
	question := model.SharedQuestion{
		SessionID: session.ID,
		UserID:    userID,
		Content:   summary,
	}
	if err := s.db.WithContext(ctx).Create(&question).Error; err != nil {
		log.Printf("Warning: failed to save derived shared question for session %d: %v", session.ID, err)
	}

	note := model.Note{
		SessionID: session.ID,
		UserID:    userID,
		Content:   summary,
		Status:    model.NoteStatusUnsolved,
	}
	if err := s.db.WithContext(ctx).Create(&note).Error; err != nil {
		log.Printf("Warning: failed to save derived note for session %d: %v", session.ID, err)
	}
}

// DeriveSummary returns the short form of a user message used for the
// note/question fan-out: empty for messages of summaryMinLength characters
// or fewer, otherwise the first summaryMaxLength characters with a trailing
// ellipsis when truncated. Lengths count characters, not bytes.
func DeriveSummary(message string) string {
	runes := []rune(message)
	if len(runes) <= summaryMinLength {
		return ""
	}
	if len(runes) <= summaryMaxLength {
		return message
	}
	return string(runes[:summaryMaxLength]) + "..."
}
