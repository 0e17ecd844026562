package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/aquidolado/aqui/internal/apperror"
	"github.com/aquidolado/aqui/internal/server/models"
	adsrepo "github.com/aquidolado/aqui/internal/server/repositories/ads"
	"github.com/aquidolado/aqui/internal/server/services"
)

// multipartMemoryLimit is the in-memory threshold for multipart parsing;
// larger files spill to temp storage.
const multipartMemoryLimit = 32 << 20

// adPayload is the JSON carried in the "ad" part of the multipart
// create/update request.
type adPayload struct {
	CommunityID        int64    `json:"communityId"`
	Type               string   `json:"type"`
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	Price              *int64   `json:"price"`
	ServiceType        string   `json:"serviceType"`
	RecommendedContact string   `json:"recommendedContact"`
	ImageKeys          []string `json:"imageKeys"`
}

func (p adPayload) toInput() services.AdInput {
	return services.AdInput{
		CommunityID:        p.CommunityID,
		Type:               models.AdType(p.Type),
		Title:              p.Title,
		Description:        p.Description,
		Price:              p.Price,
		ServiceType:        p.ServiceType,
		RecommendedContact: p.RecommendedContact,
		ImageKeys:          p.ImageKeys,
	}
}

func (h *Handlers) handleListAds(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	communityID, err := strconv.ParseInt(q.Get("communityId"), 10, 64)
	if err != nil {
		writeError(w, apperror.ValidationField("communityId", "communityId is required"))
		return
	}

	f := adsrepo.ListFilter{
		CommunityID: communityID,
		Search:      q.Get("search"),
		Sort:        q.Get("sort"),
		Page:        intParam(q.Get("page"), 0),
		Size:        intParam(q.Get("size"), 0),
	}
	// Both ?type=X and ?types=X,Y are accepted; the web client used each at
	// some point.
	for _, raw := range append(q["type"], strings.Split(q.Get("types"), ",")...) {
		if t := models.AdType(strings.TrimSpace(raw)); models.ValidAdType(t) {
			f.Types = append(f.Types, t)
		}
	}

	page, err := h.ads.List(r.Context(), userID(r.Context()), f)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAdPage(page))
}

func (h *Handlers) handleListMyAds(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := h.ads.ListMine(r.Context(), userID(r.Context()), intParam(q.Get("page"), 0), intParam(q.Get("size"), 0))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAdPage(page))
}

func (h *Handlers) handleGetAd(w http.ResponseWriter, r *http.Request) {
	adID, err := idParam(r, "adID")
	if err != nil {
		writeError(w, err)
		return
	}

	ad, err := h.ads.Get(r.Context(), userID(r.Context()), adID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAdResponse(ad))
}

func (h *Handlers) handleCreateAd(w http.ResponseWriter, r *http.Request) {
	payload, uploads, err := parseAdMultipart(r)
	if err != nil {
		writeError(w, err)
		return
	}

	ad, err := h.ads.Create(r.Context(), userID(r.Context()), payload.toInput(), uploads)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAdResponse(ad))
}

func (h *Handlers) handleUpdateAd(w http.ResponseWriter, r *http.Request) {
	adID, err := idParam(r, "adID")
	if err != nil {
		writeError(w, err)
		return
	}

	payload, uploads, err := parseAdMultipart(r)
	if err != nil {
		writeError(w, err)
		return
	}

	ad, err := h.ads.Update(r.Context(), userID(r.Context()), adID, payload.toInput(), uploads)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAdResponse(ad))
}

func (h *Handlers) handleSetAdStatus(status models.AdStatus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		adID, err := idParam(r, "adID")
		if err != nil {
			writeError(w, err)
			return
		}

		if err := h.ads.SetStatus(r.Context(), userID(r.Context()), adID, status); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (h *Handlers) handleDeleteAd(w http.ResponseWriter, r *http.Request) {
	adID, err := idParam(r, "adID")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.ads.Delete(r.Context(), userID(r.Context()), adID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) handleRateAd(w http.ResponseWriter, r *http.Request) {
	adID, err := idParam(r, "adID")
	if err != nil {
		writeError(w, err)
		return
	}

	var req struct {
		Rating int `json:"rating"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.ads.Rate(r.Context(), userID(r.Context()), adID, req.Rating); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) handleUnrateAd(w http.ResponseWriter, r *http.Request) {
	adID, err := idParam(r, "adID")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.ads.Unrate(r.Context(), userID(r.Context()), adID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) handleListComments(w http.ResponseWriter, r *http.Request) {
	adID, err := idParam(r, "adID")
	if err != nil {
		writeError(w, err)
		return
	}

	q := r.URL.Query()
	page, err := h.ads.ListComments(r.Context(), userID(r.Context()), adID, intParam(q.Get("page"), 0), intParam(q.Get("size"), 0))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCommentPage(page))
}

func (h *Handlers) handleAddComment(w http.ResponseWriter, r *http.Request) {
	adID, err := idParam(r, "adID")
	if err != nil {
		writeError(w, err)
		return
	}

	var req struct {
		Body string `json:"body"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	comment, err := h.ads.AddComment(r.Context(), userID(r.Context()), adID, req.Body)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCommentResponse(comment))
}

func (h *Handlers) handleDeleteComment(w http.ResponseWriter, r *http.Request) {
	adID, err := idParam(r, "adID")
	if err != nil {
		writeError(w, err)
		return
	}
	commentID, err := idParam(r, "commentID")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.ads.DeleteComment(r.Context(), userID(r.Context()), adID, commentID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) handleToggleCommentLike(w http.ResponseWriter, r *http.Request) {
	adID, err := idParam(r, "adID")
	if err != nil {
		writeError(w, err)
		return
	}
	commentID, err := idParam(r, "commentID")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.ads.ToggleCommentLike(r.Context(), userID(r.Context()), adID, commentID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// parseAdMultipart reads the "ad" JSON part and the "images" file parts.
// Size limits are enforced again in the service layer; the handler-level
// checks just fail fast before buffering large bodies.
func parseAdMultipart(r *http.Request) (adPayload, []services.ImageUpload, error) {
	var payload adPayload

	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		return payload, nil, apperror.ValidationField("body", "invalid multipart body")
	}

	raw := r.FormValue("ad")
	if raw == "" {
		return payload, nil, apperror.ValidationField("ad", "missing ad part")
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return payload, nil, apperror.ValidationField("ad", "invalid ad JSON")
	}

	files := r.MultipartForm.File["images"]
	if len(files) > models.MaxAdImages {
		return payload, nil, apperror.ValidationField("images", "too many images")
	}

	uploads := make([]services.ImageUpload, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			return payload, nil, apperror.ValidationField("images", "unreadable image upload")
		}
		uploads = append(uploads, services.ImageUpload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			Body:        f,
		})
	}
	return payload, uploads, nil
}

func intParam(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func idParam(r *http.Request, name string) (int64, error) {
	v, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		return 0, apperror.ValidationField(name, "invalid id")
	}
	return v, nil
}
