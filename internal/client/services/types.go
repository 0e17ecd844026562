// Package services wraps the HTTP API in typed calls for the rest of the
// client. Each service holds the shared API client; none of them retry.
package services

import "time"

// Page mirrors the server's list envelope.
type Page[T any] struct {
	Content       []T   `json:"content"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
	Size          int   `json:"size"`
	Number        int   `json:"number"`
	Last          bool  `json:"last"`
}

// Ad is the wire shape of a listing.
type Ad struct {
	ID                 int64     `json:"id"`
	CommunityID        int64     `json:"communityId"`
	UserID             int64     `json:"userId"`
	Type               string    `json:"type"`
	Title              string    `json:"title"`
	Description        string    `json:"description,omitempty"`
	Price              *int64    `json:"price,omitempty"`
	ServiceType        string    `json:"serviceType,omitempty"`
	RecommendedContact string    `json:"recommendedContact,omitempty"`
	Status             string    `json:"status"`
	ImageURLs          []string  `json:"imageUrls"`
	CreatedAt          time.Time `json:"createdAt"`
	UserName           string    `json:"userName"`
	UserWhatsapp       string    `json:"userWhatsapp,omitempty"`
	AverageRating      float64   `json:"averageRating,omitempty"`
	RatingCount        int       `json:"ratingCount,omitempty"`
	CurrentUserRating  *int      `json:"currentUserRating,omitempty"`
}

// Comment is the wire shape of an ad comment.
type Comment struct {
	ID        int64     `json:"id"`
	AdID      int64     `json:"adId"`
	UserID    int64     `json:"userId"`
	UserName  string    `json:"userName"`
	Body      string    `json:"body"`
	LikeCount int       `json:"likeCount"`
	LikedByMe bool      `json:"likedByMe"`
	CreatedAt time.Time `json:"createdAt"`
}

// CommunityInfo is the wire shape of a community.
type CommunityInfo struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	AccessCode  string    `json:"accessCode,omitempty"`
	IsPrivate   bool      `json:"isPrivate"`
	PostalCode  string    `json:"postalCode,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	JoinPending bool      `json:"joinPending,omitempty"`
}

// Member is one row of a community's member list.
type Member struct {
	UserID   int64     `json:"userId"`
	Name     string    `json:"name"`
	IsAdmin  bool      `json:"isAdmin"`
	JoinedAt time.Time `json:"joinedAt"`
}

// JoinRequest is one pending join request of a private community.
type JoinRequest struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	UserName  string    `json:"userName"`
	CreatedAt time.Time `json:"createdAt"`
}

// Profile is the current user's account data.
type Profile struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Whatsapp      string `json:"whatsapp,omitempty"`
	Address       string `json:"address,omitempty"`
	EmailVerified bool   `json:"emailVerified"`
}
