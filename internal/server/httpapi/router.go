// Package httpapi exposes the REST API. Handlers stay thin: decode the
// request, call the service, translate the result. Authorization beyond
// token validation lives in the service layer.
package httpapi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/aquidolado/aqui/internal/logging"
	"github.com/aquidolado/aqui/internal/server/models"
	adsrepo "github.com/aquidolado/aqui/internal/server/repositories/ads"
	"github.com/aquidolado/aqui/internal/server/services"
)

// Service interfaces consumed by the handlers. The concrete implementations
// live in internal/server/services; tests substitute fakes.

type AuthService interface {
	Register(ctx context.Context, name, email, password, whatsapp string) (*services.AuthResult, error)
	Login(ctx context.Context, email, password string) (*services.AuthResult, error)
	VerifyEmail(ctx context.Context, token string) error
	ResendVerification(ctx context.Context, userID int64) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
}

type AdService interface {
	List(ctx context.Context, viewerID int64, f adsrepo.ListFilter) (*models.Page[*models.Ad], error)
	ListMine(ctx context.Context, userID int64, page, size int) (*models.Page[*models.Ad], error)
	Get(ctx context.Context, viewerID, adID int64) (*models.Ad, error)
	Create(ctx context.Context, userID int64, in services.AdInput, uploads []services.ImageUpload) (*models.Ad, error)
	Update(ctx context.Context, userID, adID int64, in services.AdInput, uploads []services.ImageUpload) (*models.Ad, error)
	SetStatus(ctx context.Context, userID, adID int64, status models.AdStatus) error
	Delete(ctx context.Context, userID, adID int64) error
	Rate(ctx context.Context, userID, adID int64, rating int) error
	Unrate(ctx context.Context, userID, adID int64) error
	ListComments(ctx context.Context, viewerID, adID int64, page, size int) (*models.Page[*models.Comment], error)
	AddComment(ctx context.Context, userID, adID int64, body string) (*models.Comment, error)
	DeleteComment(ctx context.Context, userID, adID, commentID int64) error
	ToggleCommentLike(ctx context.Context, userID, adID, commentID int64) error
}

type CommunityService interface {
	Create(ctx context.Context, userID int64, name string, isPrivate bool, postalCode string) (*models.Community, error)
	ListMine(ctx context.Context, userID int64) ([]*models.Community, error)
	ListWhereAdmin(ctx context.Context, userID int64) ([]*models.Community, error)
	Get(ctx context.Context, userID, communityID int64) (*models.Community, error)
	JoinByCode(ctx context.Context, userID int64, code string) (*services.JoinResult, error)
	Leave(ctx context.Context, userID, communityID int64) error
	ListJoinRequests(ctx context.Context, userID, communityID int64) ([]*models.JoinRequest, error)
	ResolveJoinRequest(ctx context.Context, userID, communityID, requestID int64, approve bool) error
	ListMembers(ctx context.Context, userID, communityID int64) ([]*models.Member, error)
	PromoteAdmin(ctx context.Context, userID, communityID, targetID int64) error
	ResignAdmin(ctx context.Context, userID, communityID int64) error
	RemoveMember(ctx context.Context, userID, communityID, targetID int64) error
	Rename(ctx context.Context, userID, communityID int64, name string) error
	RegenerateAccessCode(ctx context.Context, userID, communityID int64) (string, error)
	Delete(ctx context.Context, userID, communityID int64) error
}

type UserService interface {
	Get(ctx context.Context, userID int64) (*models.User, error)
	UpdateProfile(ctx context.Context, userID int64, name, whatsapp, address string) (*models.User, error)
	Delete(ctx context.Context, userID int64) error
}

type ModerationService interface {
	Report(ctx context.Context, userID, adID int64, reason models.ReportReason) error
	RecordContactClick(ctx context.Context, userID, adID, communityID int64) error
	RecordEvent(ctx context.Context, userID int64, eventType string, communityID *int64) error
}

// Handlers bundles the services behind the REST surface.
type Handlers struct {
	auth        AuthService
	ads         AdService
	communities CommunityService
	users       UserService
	moderation  ModerationService
	logger      logging.Logger
}

func NewHandlers(auth AuthService, ads AdService, communities CommunityService, users UserService, moderation ModerationService, logger logging.Logger) *Handlers {
	return &Handlers{
		auth:        auth,
		ads:         ads,
		communities: communities,
		users:       users,
		moderation:  moderation,
		logger:      logger,
	}
}

// NewRouter builds the chi router for the /api surface.
func NewRouter(h *Handlers, jwtSecret []byte) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(h.logger))
	r.Use(chimiddleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.handleRegister)
			r.Post("/login", h.handleLogin)
			r.Post("/verify-email", h.handleVerifyEmail)
			r.Post("/forgot-password", h.handleForgotPassword)
			r.Post("/reset-password", h.handleResetPassword)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth(jwtSecret))
				r.Post("/resend-verification", h.handleResendVerification)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(requireAuth(jwtSecret))

			r.Route("/ads", func(r chi.Router) {
				r.Get("/", h.handleListAds)
				r.Post("/", h.handleCreateAd)
				r.Get("/me", h.handleListMyAds)

				r.Route("/{adID}", func(r chi.Router) {
					r.Get("/", h.handleGetAd)
					r.Put("/", h.handleUpdateAd)
					r.Delete("/", h.handleDeleteAd)
					r.Patch("/pause", h.handleSetAdStatus(models.AdPaused))
					r.Patch("/unpause", h.handleSetAdStatus(models.AdActive))
					r.Patch("/close", h.handleSetAdStatus(models.AdClosed))

					r.Put("/rating", h.handleRateAd)
					r.Delete("/rating", h.handleUnrateAd)

					r.Route("/comments", func(r chi.Router) {
						r.Get("/", h.handleListComments)
						r.Post("/", h.handleAddComment)
						r.Delete("/{commentID}", h.handleDeleteComment)
						r.Post("/{commentID}/like", h.handleToggleCommentLike)
					})
				})
			})

			r.Route("/communities", func(r chi.Router) {
				r.Get("/", h.handleListCommunities)
				r.Post("/", h.handleCreateCommunity)
				r.Get("/admin", h.handleListAdminCommunities)
				r.Post("/join", h.handleJoinCommunity)

				r.Route("/{communityID}", func(r chi.Router) {
					r.Get("/", h.handleGetCommunity)
					r.Delete("/leave", h.handleLeaveCommunity)

					r.Route("/admin", func(r chi.Router) {
						r.Patch("/", h.handleRenameCommunity)
						r.Delete("/", h.handleDeleteCommunity)
						r.Get("/requests", h.handleListJoinRequests)
						r.Post("/requests/{requestID}/approve", h.handleResolveJoinRequest(true))
						r.Post("/requests/{requestID}/reject", h.handleResolveJoinRequest(false))
						r.Get("/members", h.handleListMembers)
						r.Delete("/members/{memberID}", h.handleRemoveMember)
						r.Post("/admins", h.handlePromoteAdmin)
						r.Delete("/me", h.handleResignAdmin)
						r.Post("/regenerate-access-code", h.handleRegenerateAccessCode)
					})
				})
			})

			r.Route("/users/me", func(r chi.Router) {
				r.Get("/", h.handleGetMe)
				r.Put("/", h.handleUpdateMe)
				r.Delete("/", h.handleDeleteMe)
			})

			r.Post("/reports", h.handleReport)
			r.Post("/contact/click", h.handleContactClick)
			r.Post("/events", h.handleEvent)
		})
	})

	return r
}
