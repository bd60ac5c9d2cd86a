package cron

import (
	"context"
	"log"
	"time"

	"github.com/studyhall-app/studyhall-api/utils/auth"
)

// CleanupExpiredBlacklistTokens removes blacklist entries whose tokens have
// expired anyway. Revoked-token checks only consider live entries, so this is
// purely to keep the table small.
func (m *CronManager) CleanupExpiredBlacklistTokens() {
	log.Println("Running job: cleanup_expired_blacklist_tokens")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	blacklist := auth.NewBlacklistService(m.db)
	if err := blacklist.CleanupExpiredTokens(ctx); err != nil {
		log.Printf("Warning: blacklist cleanup failed: %v", err)
		return
	}

	log.Println("Blacklist cleanup completed")
}
