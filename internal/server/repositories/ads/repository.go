// Package ads contains the ad repository: listings, images, ratings and
// comments.
package ads

import (
	"context"

	"github.com/aquidolado/aqui/internal/server/models"
)

// Sort keys accepted by List. Anything else falls back to SortNewest.
const (
	SortNewest    = "newest"
	SortOldest    = "oldest"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
)

// ListFilter narrows the ad listing query. Types empty means all types.
// Search is matched case-insensitively against title and description.
// ViewerID feeds the current-user rating column of each row.
type ListFilter struct {
	CommunityID int64
	ViewerID    int64
	Types       []models.AdType
	Search      string
	Sort        string
	Page        int
	Size        int
}

type Repository interface {
	Create(ctx context.Context, ad *models.Ad) (*models.Ad, error)
	Update(ctx context.Context, ad *models.Ad) error
	GetByID(ctx context.Context, id, viewerID int64) (*models.Ad, error)
	List(ctx context.Context, f ListFilter) ([]*models.Ad, int64, error)
	ListByUser(ctx context.Context, userID int64, page, size int) ([]*models.Ad, int64, error)
	SetStatus(ctx context.Context, id int64, status models.AdStatus) error
	Delete(ctx context.Context, id int64) error
	ReplaceImages(ctx context.Context, adID int64, keys []string) error

	UpsertRating(ctx context.Context, adID, userID int64, rating int) error
	DeleteRating(ctx context.Context, adID, userID int64) error

	ListComments(ctx context.Context, adID, viewerID int64, page, size int) ([]*models.Comment, int64, error)
	CreateComment(ctx context.Context, c *models.Comment) (*models.Comment, error)
	GetComment(ctx context.Context, id int64) (*models.Comment, error)
	DeleteComment(ctx context.Context, id int64) error
	ToggleCommentLike(ctx context.Context, commentID, userID int64) error
}
