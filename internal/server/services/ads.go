package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aquidolado/aqui/internal/apperror"
	"github.com/aquidolado/aqui/internal/common"
	"github.com/aquidolado/aqui/internal/logging"
	"github.com/aquidolado/aqui/internal/server/models"
	adsrepo "github.com/aquidolado/aqui/internal/server/repositories/ads"
	"github.com/aquidolado/aqui/internal/server/repositories/repomanager"
)

// DefaultPageSize applies when a list request carries no size parameter.
const DefaultPageSize = 20

// MaxPageSize caps the page size a client may request.
const MaxPageSize = 100

// AdInput carries the client-supplied fields of an ad create/update.
// ImageKeys lists the already-stored images the client wants to keep; on
// create it must be empty.
type AdInput struct {
	CommunityID        int64
	Type               models.AdType
	Title              string
	Description        string
	Price              *int64
	ServiceType        string
	RecommendedContact string
	ImageKeys          []string
}

// ImageUpload is one uploaded image file from a multipart request.
type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// AdService manages ads, their images, ratings, and comments.
type AdService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	images      ImageStore
	logger      logging.Logger
}

func NewAdService(db *sql.DB, m repomanager.RepositoryManager, images ImageStore, logger logging.Logger) *AdService {
	return &AdService{db: db, repomanager: m, images: images, logger: logger}
}

// List returns one page of a community's feed. The viewer must be a member
// of the community.
func (s *AdService) List(ctx context.Context, viewerID int64, f adsrepo.ListFilter) (*models.Page[*models.Ad], error) {
	if err := s.requireMember(ctx, viewerID, f.CommunityID); err != nil {
		return nil, err
	}

	f.ViewerID = viewerID
	f.Page, f.Size = clampPage(f.Page, f.Size)
	ads, total, err := s.repomanager.Ads(s.db).List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("error listing ads: %w", err)
	}

	s.fillImageURLs(ctx, ads)
	return buildPage(ads, total, f.Page, f.Size), nil
}

// ListMine returns one page of the user's own ads across communities,
// whatever their status.
func (s *AdService) ListMine(ctx context.Context, userID int64, page, size int) (*models.Page[*models.Ad], error) {
	page, size = clampPage(page, size)
	ads, total, err := s.repomanager.Ads(s.db).ListByUser(ctx, userID, page, size)
	if err != nil {
		return nil, fmt.Errorf("error listing ads: %w", err)
	}

	s.fillImageURLs(ctx, ads)
	return buildPage(ads, total, page, size), nil
}

// Get returns a single ad. The viewer must be a member of the ad's
// community; non-members get ErrorNotAMember, which the client's deep-link
// gate relies on to distinguish "join first" from "gone".
func (s *AdService) Get(ctx context.Context, viewerID, adID int64) (*models.Ad, error) {
	ad, err := s.repomanager.Ads(s.db).GetByID(ctx, adID, viewerID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, apperror.NotFound("ad", adID)
		}
		return nil, common.ErrorInternal
	}
	if err := s.requireMember(ctx, viewerID, ad.CommunityID); err != nil {
		return nil, err
	}

	s.fillImageURLs(ctx, []*models.Ad{ad})
	return ad, nil
}

// Create validates and stores a new ad with its uploaded images.
func (s *AdService) Create(ctx context.Context, userID int64, in AdInput, uploads []ImageUpload) (*models.Ad, error) {
	if err := validateAdInput(in); err != nil {
		return nil, err
	}
	if err := validateUploads(uploads, 0); err != nil {
		return nil, err
	}
	if err := s.requireMember(ctx, userID, in.CommunityID); err != nil {
		return nil, err
	}

	ad, err := s.repomanager.Ads(s.db).Create(ctx, &models.Ad{
		CommunityID:        in.CommunityID,
		UserID:             userID,
		Type:               in.Type,
		Title:              strings.TrimSpace(in.Title),
		Description:        strings.TrimSpace(in.Description),
		Price:              in.Price,
		ServiceType:        in.ServiceType,
		RecommendedContact: in.RecommendedContact,
		Status:             models.AdActive,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating ad: %w", err)
	}

	keys, err := s.storeUploads(ctx, ad.ID, uploads)
	if err != nil {
		return nil, err
	}
	if len(keys) > 0 {
		if err := s.repomanager.Ads(s.db).ReplaceImages(ctx, ad.ID, keys); err != nil {
			return nil, fmt.Errorf("error saving images: %w", err)
		}
		ad.ImageKeys = keys
	}

	s.fillImageURLs(ctx, []*models.Ad{ad})
	return ad, nil
}

// Update replaces an ad's fields and reconciles its image set: keys in
// in.ImageKeys survive, removed ones are deleted from storage, and new
// uploads are appended. Only the owner may update.
func (s *AdService) Update(ctx context.Context, userID, adID int64, in AdInput, uploads []ImageUpload) (*models.Ad, error) {
	ad, err := s.getOwned(ctx, userID, adID)
	if err != nil {
		return nil, err
	}

	in.CommunityID = ad.CommunityID // ads cannot move between communities
	if err := validateAdInput(in); err != nil {
		return nil, err
	}

	kept := intersectKeys(ad.ImageKeys, in.ImageKeys)
	if err := validateUploads(uploads, len(kept)); err != nil {
		return nil, err
	}

	ad.Type = in.Type
	ad.Title = strings.TrimSpace(in.Title)
	ad.Description = strings.TrimSpace(in.Description)
	ad.Price = in.Price
	ad.ServiceType = in.ServiceType
	ad.RecommendedContact = in.RecommendedContact
	if err := s.repomanager.Ads(s.db).Update(ctx, ad); err != nil {
		return nil, fmt.Errorf("error updating ad: %w", err)
	}

	newKeys, err := s.storeUploads(ctx, ad.ID, uploads)
	if err != nil {
		return nil, err
	}
	keys := append(kept, newKeys...)
	if err := s.repomanager.Ads(s.db).ReplaceImages(ctx, ad.ID, keys); err != nil {
		return nil, fmt.Errorf("error saving images: %w", err)
	}
	s.deleteImages(ctx, subtractKeys(ad.ImageKeys, kept))
	ad.ImageKeys = keys

	s.fillImageURLs(ctx, []*models.Ad{ad})
	return ad, nil
}

// SetStatus pauses, unpauses, or closes an ad. Only the owner may change
// status.
func (s *AdService) SetStatus(ctx context.Context, userID, adID int64, status models.AdStatus) error {
	if _, err := s.getOwned(ctx, userID, adID); err != nil {
		return err
	}
	return s.repomanager.Ads(s.db).SetStatus(ctx, adID, status)
}

// Delete removes an ad and its stored images. The owner and community
// admins may delete.
func (s *AdService) Delete(ctx context.Context, userID, adID int64) error {
	ad, err := s.repomanager.Ads(s.db).GetByID(ctx, adID, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return apperror.NotFound("ad", adID)
		}
		return common.ErrorInternal
	}

	if ad.UserID != userID {
		admin, err := s.repomanager.Communities(s.db).IsAdmin(ctx, ad.CommunityID, userID)
		if err != nil {
			return common.ErrorInternal
		}
		if !admin {
			return common.ErrorForbidden
		}
	}

	if err := s.repomanager.Ads(s.db).Delete(ctx, adID); err != nil {
		return fmt.Errorf("error deleting ad: %w", err)
	}
	s.deleteImages(ctx, ad.ImageKeys)
	return nil
}

// Rate records the user's 0-5 rating of a recommendation ad.
func (s *AdService) Rate(ctx context.Context, userID, adID int64, rating int) error {
	if rating < 0 || rating > 5 {
		return apperror.ValidationField("rating", "rating must be between 0 and 5")
	}

	ad, err := s.Get(ctx, userID, adID)
	if err != nil {
		return err
	}
	if ad.Type != models.AdRecommendation {
		return apperror.Conflict("only recommendation ads can be rated")
	}
	return s.repomanager.Ads(s.db).UpsertRating(ctx, adID, userID, rating)
}

// Unrate removes the user's rating from a recommendation ad.
func (s *AdService) Unrate(ctx context.Context, userID, adID int64) error {
	if _, err := s.Get(ctx, userID, adID); err != nil {
		return err
	}
	return s.repomanager.Ads(s.db).DeleteRating(ctx, adID, userID)
}

// ListComments returns one page of an ad's comments, oldest first.
func (s *AdService) ListComments(ctx context.Context, viewerID, adID int64, page, size int) (*models.Page[*models.Comment], error) {
	if _, err := s.Get(ctx, viewerID, adID); err != nil {
		return nil, err
	}

	page, size = clampPage(page, size)
	comments, total, err := s.repomanager.Ads(s.db).ListComments(ctx, adID, viewerID, page, size)
	if err != nil {
		return nil, fmt.Errorf("error listing comments: %w", err)
	}
	return buildPage(comments, total, page, size), nil
}

// AddComment posts a comment on an ad the user can see.
func (s *AdService) AddComment(ctx context.Context, userID, adID int64, body string) (*models.Comment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperror.ValidationField("body", "comment cannot be empty")
	}
	if _, err := s.Get(ctx, userID, adID); err != nil {
		return nil, err
	}

	comment, err := s.repomanager.Ads(s.db).CreateComment(ctx, &models.Comment{
		AdID:   adID,
		UserID: userID,
		Body:   body,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating comment: %w", err)
	}
	return comment, nil
}

// DeleteComment removes a comment. The comment author, the ad owner, and
// community admins may delete.
func (s *AdService) DeleteComment(ctx context.Context, userID, adID, commentID int64) error {
	ad, err := s.Get(ctx, userID, adID)
	if err != nil {
		return err
	}

	comment, err := s.repomanager.Ads(s.db).GetComment(ctx, commentID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return apperror.NotFound("comment", commentID)
		}
		return common.ErrorInternal
	}
	if comment.AdID != adID {
		return apperror.NotFound("comment", commentID)
	}

	if comment.UserID != userID && ad.UserID != userID {
		admin, err := s.repomanager.Communities(s.db).IsAdmin(ctx, ad.CommunityID, userID)
		if err != nil {
			return common.ErrorInternal
		}
		if !admin {
			return common.ErrorForbidden
		}
	}
	return s.repomanager.Ads(s.db).DeleteComment(ctx, commentID)
}

// ToggleCommentLike flips the user's like on a comment.
func (s *AdService) ToggleCommentLike(ctx context.Context, userID, adID, commentID int64) error {
	if _, err := s.Get(ctx, userID, adID); err != nil {
		return err
	}
	comment, err := s.repomanager.Ads(s.db).GetComment(ctx, commentID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return apperror.NotFound("comment", commentID)
		}
		return common.ErrorInternal
	}
	if comment.AdID != adID {
		return apperror.NotFound("comment", commentID)
	}
	return s.repomanager.Ads(s.db).ToggleCommentLike(ctx, commentID, userID)
}

// --- helpers below ---

func (s *AdService) requireMember(ctx context.Context, userID, communityID int64) error {
	member, err := s.repomanager.Communities(s.db).IsMember(ctx, communityID, userID)
	if err != nil {
		return common.ErrorInternal
	}
	if !member {
		return common.ErrorNotAMember
	}
	return nil
}

func (s *AdService) getOwned(ctx context.Context, userID, adID int64) (*models.Ad, error) {
	ad, err := s.repomanager.Ads(s.db).GetByID(ctx, adID, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, apperror.NotFound("ad", adID)
		}
		return nil, common.ErrorInternal
	}
	if ad.UserID != userID {
		return nil, common.ErrorForbidden
	}
	return ad, nil
}

func (s *AdService) storeUploads(ctx context.Context, adID int64, uploads []ImageUpload) ([]string, error) {
	keys := make([]string, 0, len(uploads))
	for _, u := range uploads {
		key := RandomImageKey(adID)
		if err := s.images.Put(ctx, key, u.ContentType, u.Body); err != nil {
			s.deleteImages(ctx, keys)
			return nil, fmt.Errorf("error storing image: %w", err)
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// deleteImages is best-effort cleanup; a leaked object is preferable to a
// failed request.
func (s *AdService) deleteImages(ctx context.Context, keys []string) {
	for _, key := range keys {
		if err := s.images.Delete(ctx, key); err != nil {
			s.logger.Warn(ctx, "error deleting image", "key", key, "error", err)
		}
	}
}

func (s *AdService) fillImageURLs(ctx context.Context, ads []*models.Ad) {
	for _, ad := range ads {
		urls := make([]string, 0, len(ad.ImageKeys))
		for _, key := range ad.ImageKeys {
			url, err := s.images.PresignGet(ctx, key)
			if err != nil {
				s.logger.Warn(ctx, "error presigning image", "key", key, "error", err)
				continue
			}
			urls = append(urls, url)
		}
		ad.ImageURLs = urls
	}
}

func validateAdInput(in AdInput) error {
	fields := map[string]string{}
	if !models.ValidAdType(in.Type) {
		fields["type"] = "unknown ad type"
	}
	if strings.TrimSpace(in.Title) == "" {
		fields["title"] = "title is required"
	}
	if in.Price != nil && *in.Price < 0 {
		fields["price"] = "price cannot be negative"
	}
	switch in.Type {
	case models.AdSaleTrade, models.AdRent:
		if in.Price == nil {
			fields["price"] = "price is required"
		}
	case models.AdRecommendation:
		if strings.TrimSpace(in.RecommendedContact) == "" {
			fields["recommendedContact"] = "contact is required"
		}
	}
	if len(fields) > 0 {
		return apperror.Validation(fields)
	}
	return nil
}

func validateUploads(uploads []ImageUpload, existing int) error {
	if existing+len(uploads) > models.MaxAdImages {
		return apperror.ValidationField("images", fmt.Sprintf("at most %d images per ad", models.MaxAdImages))
	}
	for _, u := range uploads {
		if u.Size > models.MaxImageSizeBytes {
			return apperror.ValidationField("images", fmt.Sprintf("%s exceeds the %dMB limit", u.Filename, models.MaxImageSizeBytes/(1024*1024)))
		}
	}
	return nil
}

func clampPage(page, size int) (int, int) {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return page, size
}

func buildPage[T any](content []T, total int64, page, size int) *models.Page[T] {
	totalPages := int((total + int64(size) - 1) / int64(size))
	return &models.Page[T]{
		Content:       content,
		TotalElements: total,
		TotalPages:    totalPages,
		Size:          size,
		Number:        page,
		Last:          page >= totalPages-1,
	}
}

func intersectKeys(have, want []string) []string {
	set := map[string]bool{}
	for _, k := range have {
		set[k] = true
	}
	out := make([]string, 0, len(want))
	for _, k := range want {
		if set[k] {
			out = append(out, k)
		}
	}
	return out
}

func subtractKeys(have, keep []string) []string {
	set := map[string]bool{}
	for _, k := range keep {
		set[k] = true
	}
	var out []string
	for _, k := range have {
		if !set[k] {
			out = append(out, k)
		}
	}
	return out
}
