package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/aquidolado/aqui/internal/apperror"
	"github.com/aquidolado/aqui/internal/server/models"
	"github.com/aquidolado/aqui/internal/server/repositories/repomanager"
)

// ModerationService records ad reports and the best-effort analytics rows
// the client sends (contact clicks, generic events).
type ModerationService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	ads         *AdService
}

func NewModerationService(db *sql.DB, m repomanager.RepositoryManager, ads *AdService) *ModerationService {
	return &ModerationService{db: db, repomanager: m, ads: ads}
}

// Report files a report against an ad the user can see.
func (s *ModerationService) Report(ctx context.Context, userID, adID int64, reason models.ReportReason) error {
	if !models.ValidReportReason(reason) {
		return apperror.ValidationField("reason", "unknown report reason")
	}
	if _, err := s.ads.Get(ctx, userID, adID); err != nil {
		return err
	}

	if err := s.repomanager.Moderation(s.db).CreateReport(ctx, &models.Report{
		AdID:   adID,
		UserID: userID,
		Reason: reason,
	}); err != nil {
		return fmt.Errorf("error creating report: %w", err)
	}
	return nil
}

// RecordContactClick notes that the user opened an ad's WhatsApp link.
func (s *ModerationService) RecordContactClick(ctx context.Context, userID, adID, communityID int64) error {
	return s.repomanager.Moderation(s.db).CreateContactClick(ctx, &models.ContactClick{
		AdID:        adID,
		CommunityID: communityID,
		UserID:      userID,
	})
}

// RecordEvent stores a generic client analytics event.
func (s *ModerationService) RecordEvent(ctx context.Context, userID int64, eventType string, communityID *int64) error {
	if eventType == "" {
		return apperror.ValidationField("eventType", "eventType is required")
	}
	return s.repomanager.Moderation(s.db).CreateEvent(ctx, &models.Event{
		EventType:   eventType,
		CommunityID: communityID,
		UserID:      userID,
	})
}
