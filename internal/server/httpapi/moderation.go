package httpapi

import (
	"net/http"

	"github.com/aquidolado/aqui/internal/server/models"
)

func (h *Handlers) handleReport(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AdID   int64  `json:"adId"`
		Reason string `json:"reason"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.moderation.Report(r.Context(), userID(r.Context()), req.AdID, models.ReportReason(req.Reason)); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *Handlers) handleContactClick(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AdID        int64 `json:"adId"`
		CommunityID int64 `json:"communityId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.moderation.RecordContactClick(r.Context(), userID(r.Context()), req.AdID, req.CommunityID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) handleEvent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		EventType   string `json:"eventType"`
		CommunityID *int64 `json:"communityId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.moderation.RecordEvent(r.Context(), userID(r.Context()), req.EventType, req.CommunityID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
