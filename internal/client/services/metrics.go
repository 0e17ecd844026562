package services

import (
	"context"

	"github.com/aquidolado/aqui/internal/client/api"
	"github.com/aquidolado/aqui/internal/logging"
)

// MetricsService wraps the reporting and analytics endpoints. Reporting an
// ad is a real user action and surfaces errors; the click and event calls
// are fire-and-forget analytics whose failures are logged and swallowed so
// the action they decorate (opening a WhatsApp link) proceeds regardless.
type MetricsService struct {
	api    *api.Client
	logger logging.Logger
}

func NewMetricsService(client *api.Client, logger logging.Logger) *MetricsService {
	return &MetricsService{api: client, logger: logger}
}

func (s *MetricsService) ReportAd(ctx context.Context, adID int64, reason string) error {
	return s.api.Post(ctx, "/api/reports", map[string]any{
		"adId":   adID,
		"reason": reason,
	}, nil)
}

// ContactClick records that the user opened a contact link. Best effort.
func (s *MetricsService) ContactClick(ctx context.Context, adID, communityID int64) {
	err := s.api.Post(ctx, "/api/contact/click", map[string]int64{
		"adId":        adID,
		"communityId": communityID,
	}, nil)
	if err != nil {
		s.logger.Debug(ctx, "contact click not recorded", "error", err)
	}
}

// Event records a generic analytics event. Best effort.
func (s *MetricsService) Event(ctx context.Context, eventType string, communityID *int64) {
	err := s.api.Post(ctx, "/api/events", map[string]any{
		"eventType":   eventType,
		"communityId": communityID,
	}, nil)
	if err != nil {
		s.logger.Debug(ctx, "event not recorded", "error", err)
	}
}
