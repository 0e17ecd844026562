package httpapi

import (
	"time"

	"github.com/aquidolado/aqui/internal/server/models"
)

// Wire DTOs. Field names match what the web client consumes; keep them
// stable.

type authResponse struct {
	Token         string `json:"token"`
	UserID        int64  `json:"userId"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Whatsapp      string `json:"whatsapp,omitempty"`
	EmailVerified bool   `json:"emailVerified"`
}

type userResponse struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Whatsapp      string `json:"whatsapp,omitempty"`
	Address       string `json:"address,omitempty"`
	EmailVerified bool   `json:"emailVerified"`
}

type communityResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	AccessCode  string    `json:"accessCode,omitempty"`
	IsPrivate   bool      `json:"isPrivate"`
	PostalCode  string    `json:"postalCode,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	JoinPending bool      `json:"joinPending,omitempty"`
}

type memberResponse struct {
	UserID   int64     `json:"userId"`
	Name     string    `json:"name"`
	IsAdmin  bool      `json:"isAdmin"`
	JoinedAt time.Time `json:"joinedAt"`
}

type joinRequestResponse struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	UserName  string    `json:"userName"`
	CreatedAt time.Time `json:"createdAt"`
}

type adResponse struct {
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

type commentResponse struct {
	ID        int64     `json:"id"`
	AdID      int64     `json:"adId"`
	UserID    int64     `json:"userId"`
	UserName  string    `json:"userName"`
	Body      string    `json:"body"`
	LikeCount int       `json:"likeCount"`
	LikedByMe bool      `json:"likedByMe"`
	CreatedAt time.Time `json:"createdAt"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{
		ID:            u.ID,
		Name:          u.Name,
		Email:         u.Email,
		Whatsapp:      u.Whatsapp,
		Address:       u.Address,
		EmailVerified: u.EmailVerified,
	}
}

func toCommunityResponse(c *models.Community, includeCode bool) communityResponse {
	out := communityResponse{
		ID:         c.ID,
		Name:       c.Name,
		IsPrivate:  c.IsPrivate,
		PostalCode: c.PostalCode,
		CreatedAt:  c.CreatedAt,
	}
	if includeCode {
		out.AccessCode = c.AccessCode
	}
	return out
}

func toCommunityResponses(cs []*models.Community, includeCode bool) []communityResponse {
	out := make([]communityResponse, 0, len(cs))
	for _, c := range cs {
		out = append(out, toCommunityResponse(c, includeCode))
	}
	return out
}

func toAdResponse(a *models.Ad) adResponse {
	urls := a.ImageURLs
	if urls == nil {
		urls = []string{}
	}
	return adResponse{
		ID:                 a.ID,
		CommunityID:        a.CommunityID,
		UserID:             a.UserID,
		Type:               string(a.Type),
		Title:              a.Title,
		Description:        a.Description,
		Price:              a.Price,
		ServiceType:        a.ServiceType,
		RecommendedContact: a.RecommendedContact,
		Status:             string(a.Status),
		ImageURLs:          urls,
		CreatedAt:          a.CreatedAt,
		UserName:           a.UserName,
		UserWhatsapp:       a.UserWhatsapp,
		AverageRating:      a.AverageRating,
		RatingCount:        a.RatingCount,
		CurrentUserRating:  a.CurrentUserRating,
	}
}

func toAdPage(p *models.Page[*models.Ad]) models.Page[adResponse] {
	content := make([]adResponse, 0, len(p.Content))
	for _, a := range p.Content {
		content = append(content, toAdResponse(a))
	}
	return models.Page[adResponse]{
		Content:       content,
		TotalElements: p.TotalElements,
		TotalPages:    p.TotalPages,
		Size:          p.Size,
		Number:        p.Number,
		Last:          p.Last,
	}
}

func toCommentResponse(c *models.Comment) commentResponse {
	return commentResponse{
		ID:        c.ID,
		AdID:      c.AdID,
		UserID:    c.UserID,
		UserName:  c.UserName,
		Body:      c.Body,
		LikeCount: c.LikeCount,
		LikedByMe: c.LikedByMe,
		CreatedAt: c.CreatedAt,
	}
}

func toCommentPage(p *models.Page[*models.Comment]) models.Page[commentResponse] {
	content := make([]commentResponse, 0, len(p.Content))
	for _, c := range p.Content {
		content = append(content, toCommentResponse(c))
	}
	return models.Page[commentResponse]{
		Content:       content,
		TotalElements: p.TotalElements,
		TotalPages:    p.TotalPages,
		Size:          p.Size,
		Number:        p.Number,
		Last:          p.Last,
	}
}
