package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/aquidolado/aqui/internal/client/api"
	"github.com/aquidolado/aqui/internal/client/feed"
)

// MaxAdImages is the upload limit per ad.
const MaxAdImages = 5

// AdPayload is the JSON part of an ad create/update request.
type AdPayload struct {
	CommunityID        int64    `json:"communityId"`
	Type               string   `json:"type"`
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	Price              *int64   `json:"price,omitempty"`
	ServiceType        string   `json:"serviceType,omitempty"`
	RecommendedContact string   `json:"recommendedContact,omitempty"`
	ImageKeys          []string `json:"imageKeys,omitempty"`
}

// ImageFile is one image attached to an ad.
type ImageFile struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// AdService wraps the /api/ads endpoints. It satisfies feed.Fetcher and
// the router's ad resolver.
type AdService struct {
	api *api.Client
}

func NewAdService(client *api.Client) *AdService {
	return &AdService{api: client}
}

// FetchAds runs the feed list query.
func (s *AdService) FetchAds(ctx context.Context, f feed.Filters) (*feed.Result, error) {
	q := url.Values{}
	q.Set("communityId", strconv.FormatInt(f.CommunityID, 10))
	if len(f.Types) > 0 {
		q.Set("types", strings.Join(f.Types, ","))
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.Sort != "" {
		q.Set("sort", f.Sort)
	}
	q.Set("page", strconv.Itoa(f.Page))
	if f.Size > 0 {
		q.Set("size", strconv.Itoa(f.Size))
	}

	var page Page[Ad]
	if err := s.api.Get(ctx, "/api/ads?"+q.Encode(), &page); err != nil {
		return nil, err
	}

	out := &feed.Result{
		TotalElements: page.TotalElements,
		TotalPages:    page.TotalPages,
		Page:          page.Number,
		Last:          page.Last,
	}
	for _, a := range page.Content {
		out.Ads = append(out.Ads, feed.Ad{
			ID:          a.ID,
			Type:        a.Type,
			Title:       a.Title,
			Description: a.Description,
			Price:       a.Price,
			Status:      a.Status,
			OwnerName:   a.UserName,
			ImageURLs:   a.ImageURLs,
			CreatedAt:   a.CreatedAt,
		})
	}
	return out, nil
}

func (s *AdService) Get(ctx context.Context, adID int64) (*Ad, error) {
	var ad Ad
	if err := s.api.Get(ctx, adPath(adID), &ad); err != nil {
		return nil, err
	}
	return &ad, nil
}

// ResolveAdCommunity fetches an ad only to learn its community, for
// deep-link adoption.
func (s *AdService) ResolveAdCommunity(ctx context.Context, adID int64) (int64, error) {
	ad, err := s.Get(ctx, adID)
	if err != nil {
		return 0, err
	}
	return ad.CommunityID, nil
}

func (s *AdService) ListMine(ctx context.Context, page, size int) (*Page[Ad], error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	if size > 0 {
		q.Set("size", strconv.Itoa(size))
	}
	var out Page[Ad]
	if err := s.api.Get(ctx, "/api/ads/me?"+q.Encode(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *AdService) Create(ctx context.Context, payload AdPayload, images []ImageFile) (*Ad, error) {
	return s.submitMultipart(ctx, http.MethodPost, "/api/ads", payload, images)
}

func (s *AdService) Update(ctx context.Context, adID int64, payload AdPayload, images []ImageFile) (*Ad, error) {
	return s.submitMultipart(ctx, http.MethodPut, adPath(adID), payload, images)
}

func (s *AdService) Pause(ctx context.Context, adID int64) error {
	return s.api.Patch(ctx, adPath(adID)+"/pause", nil, nil)
}

func (s *AdService) Unpause(ctx context.Context, adID int64) error {
	return s.api.Patch(ctx, adPath(adID)+"/unpause", nil, nil)
}

func (s *AdService) Close(ctx context.Context, adID int64) error {
	return s.api.Patch(ctx, adPath(adID)+"/close", nil, nil)
}

func (s *AdService) Delete(ctx context.Context, adID int64) error {
	return s.api.Delete(ctx, adPath(adID))
}

// Rate sets the caller's 0-5 rating on a recommendation ad.
func (s *AdService) Rate(ctx context.Context, adID int64, rating int) error {
	return s.api.Put(ctx, adPath(adID)+"/rating", map[string]int{"rating": rating}, nil)
}

func (s *AdService) Unrate(ctx context.Context, adID int64) error {
	return s.api.Delete(ctx, adPath(adID)+"/rating")
}

func (s *AdService) ListComments(ctx context.Context, adID int64, page, size int) (*Page[Comment], error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	if size > 0 {
		q.Set("size", strconv.Itoa(size))
	}
	var out Page[Comment]
	if err := s.api.Get(ctx, adPath(adID)+"/comments?"+q.Encode(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *AdService) AddComment(ctx context.Context, adID int64, body string) (*Comment, error) {
	var out Comment
	if err := s.api.Post(ctx, adPath(adID)+"/comments", map[string]string{"body": body}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *AdService) DeleteComment(ctx context.Context, adID, commentID int64) error {
	return s.api.Delete(ctx, fmt.Sprintf("%s/comments/%d", adPath(adID), commentID))
}

func (s *AdService) ToggleCommentLike(ctx context.Context, adID, commentID int64) error {
	return s.api.Post(ctx, fmt.Sprintf("%s/comments/%d/like", adPath(adID), commentID), nil, nil)
}

// submitMultipart builds the "ad" JSON part plus one "images" part per
// file, as the server expects.
func (s *AdService) submitMultipart(ctx context.Context, method, path string, payload AdPayload, images []ImageFile) (*Ad, error) {
	if len(images) > MaxAdImages {
		return nil, fmt.Errorf("at most %d images per ad", MaxAdImages)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode ad: %w", err)
	}
	if err := mw.WriteField("ad", string(raw)); err != nil {
		return nil, fmt.Errorf("failed to write ad part: %w", err)
	}

	for _, img := range images {
		part, err := mw.CreateFormFile("images", img.Filename)
		if err != nil {
			return nil, fmt.Errorf("failed to write image part: %w", err)
		}
		if _, err := io.Copy(part, img.Body); err != nil {
			return nil, fmt.Errorf("failed to read image %s: %w", img.Filename, err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish upload body: %w", err)
	}

	var out Ad
	if err := s.api.PostMultipart(ctx, method, path, mw.FormDataContentType(), &buf, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func adPath(adID int64) string {
	return "/api/ads/" + strconv.FormatInt(adID, 10)
}
