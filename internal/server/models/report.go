package models

import "time"

type ReportReason string

const (
	ReportSpam           ReportReason = "SPAM"
	ReportScam           ReportReason = "SCAM"
	ReportOffensive      ReportReason = "OFFENSIVE"
	ReportProhibitedItem ReportReason = "PROHIBITED_ITEM"
	ReportOther          ReportReason = "OTHER"
)

func ValidReportReason(r ReportReason) bool {
	switch r {
	case ReportSpam, ReportScam, ReportOffensive, ReportProhibitedItem, ReportOther:
		return true
	}
	return false
}

type Report struct {
	ID        int64
	AdID      int64
	UserID    int64
	Reason    ReportReason
	CreatedAt time.Time
}

// ContactClick records that a user opened the WhatsApp contact link of an
// ad. Best-effort analytics; the client ignores failures.
type ContactClick struct {
	AdID        int64
	CommunityID int64
	UserID      int64
	CreatedAt   time.Time
}

// Event is a generic client-side analytics event.
type Event struct {
	EventType   string
	CommunityID *int64
	UserID      int64
	CreatedAt   time.Time
}
