package auth

import (
	"time"

	"github.com/studyhall-app/studyhall-api/model"
	"github.com/studyhall-app/studyhall-api/services"
	authutil "github.com/studyhall-app/studyhall-api/utils/auth"
	"github.com/studyhall-app/studyhall-api/utils/cache"
	"github.com/studyhall-app/studyhall-api/utils/validation"
	"gorm.io/gorm"
)

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	db               *gorm.DB
	validator        *validation.Validator
	jwtManager       *authutil.JWTManager
	blacklistService *authutil.BlacklistService
	streakService    *services.StreakService
	cache            *cache.RedisCache
}

// NewAuthHandler creates a new auth handler. cache may be nil; the subjects
// listing then always hits the database.
func NewAuthHandler(db *gorm.DB, jwtManager *authutil.JWTManager, redisCache *cache.RedisCache) *AuthHandler {
	return &AuthHandler{
		db:               db,
		validator:        validation.NewValidator(),
		jwtManager:       jwtManager,
		blacklistService: authutil.NewBlacklistService(db),
		streakService:    services.NewStreakService(db),
		cache:            redisCache,
	}
}

// StreakService exposes the streak service, used by tests to fix the clock
func (h *AuthHandler) StreakService() *services.StreakService {
	return h.streakService
}

// UserResponse represents user data in responses
type UserResponse struct {
	ID            uint      `json:"id"`
	StudentCode   string    `json:"student_code"`
	DisplayName   string    `json:"display_name"`
	CurrentStreak int       `json:"current_streak"`
	LastStudyDate string    `json:"last_study_date,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

func toUserResponse(user *model.User) UserResponse {
	return UserResponse{
		ID:            user.ID,
		StudentCode:   user.StudentCode,
		DisplayName:   user.DisplayName,
		CurrentStreak: user.CurrentStreak,
		LastStudyDate: user.LastStudyDate,
		CreatedAt:     user.CreatedAt,
	}
}

// TokenResponse carries an issued credential pair
type TokenResponse struct {
	User         UserResponse `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int          `json:"expires_in"` // in seconds
}
