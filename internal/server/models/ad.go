package models

import "time"

type AdType string

const (
	AdSaleTrade      AdType = "SALE_TRADE"
	AdRent           AdType = "RENT"
	AdService        AdType = "SERVICE"
	AdDonation       AdType = "DONATION"
	AdRecommendation AdType = "RECOMMENDATION"
)

// ValidAdType reports whether t is one of the known ad types.
func ValidAdType(t AdType) bool {
	switch t {
	case AdSaleTrade, AdRent, AdService, AdDonation, AdRecommendation:
		return true
	}
	return false
}

type AdStatus string

const (
	AdActive AdStatus = "ACTIVE"
	AdPaused AdStatus = "PAUSED"
	AdClosed AdStatus = "CLOSED"
)

type Ad struct {
	ID          int64
	CommunityID int64
	UserID      int64
	Type        AdType
	Title       string
	Description string
	// Price is stored in centavos to avoid float drift; nil for donation
	// and recommendation ads.
	Price *int64
	// ServiceType and RecommendedContact are set only for recommendation ads.
	ServiceType        string
	RecommendedContact string
	Status             AdStatus
	ImageKeys          []string
	// ImageURLs holds presigned download URLs, filled by the service layer
	// from ImageKeys. Never persisted.
	ImageURLs []string
	CreatedAt time.Time

	// Denormalized user data, filled by list/detail queries.
	UserName     string
	UserWhatsapp string

	// Rating aggregates, recommendation ads only.
	AverageRating     float64
	RatingCount       int
	CurrentUserRating *int
}

// MaxAdImages caps the number of images per ad.
const MaxAdImages = 5

// MaxImageSizeBytes caps a single uploaded image file (25MB).
const MaxImageSizeBytes = 25 * 1024 * 1024

type Comment struct {
	ID        int64
	AdID      int64
	UserID    int64
	UserName  string
	Body      string
	LikeCount int
	// LikedByMe reflects the requesting user, filled per query.
	LikedByMe bool
	CreatedAt time.Time
}

// Page is the envelope returned by paginated list endpoints. The field
// names mirror what the web client consumes.
type Page[T any] struct {
	Content       []T   `json:"content"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
	Size          int   `json:"size"`
	Number        int   `json:"number"`
	Last          bool  `json:"last"`
}
