// Package moderation stores ad reports and best-effort analytics rows
// (contact clicks, client events).
package moderation

import (
	"context"

	"github.com/aquidolado/aqui/internal/server/models"
)

type Repository interface {
	CreateReport(ctx context.Context, report *models.Report) error
	CreateContactClick(ctx context.Context, click *models.ContactClick) error
	CreateEvent(ctx context.Context, event *models.Event) error
}
