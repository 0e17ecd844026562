package models

import "time"

type Community struct {
	ID          int64
	Name        string
	AccessCode  string
	IsPrivate   bool
	PostalCode  string
	CreatedByID int64
	CreatedAt   time.Time
}

// Member is a community membership row joined with the user's display data.
type Member struct {
	UserID   int64
	Name     string
	IsAdmin  bool
	JoinedAt time.Time
}

type JoinRequestStatus string

const (
	JoinRequestPending  JoinRequestStatus = "PENDING"
	JoinRequestApproved JoinRequestStatus = "APPROVED"
	JoinRequestRejected JoinRequestStatus = "REJECTED"
)

// JoinRequest is a pending membership request for a private community.
type JoinRequest struct {
	ID          int64
	CommunityID int64
	UserID      int64
	UserName    string
	Status      JoinRequestStatus
	CreatedAt   time.Time
}
