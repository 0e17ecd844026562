package httpapi

import (
	"net/http"
)

func (h *Handlers) handleListCommunities(w http.ResponseWriter, r *http.Request) {
	communities, err := h.communities.ListMine(r.Context(), userID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCommunityResponses(communities, false))
}

func (h *Handlers) handleListAdminCommunities(w http.ResponseWriter, r *http.Request) {
	communities, err := h.communities.ListWhereAdmin(r.Context(), userID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCommunityResponses(communities, true))
}

func (h *Handlers) handleCreateCommunity(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name       string `json:"name"`
		IsPrivate  bool   `json:"isPrivate"`
		PostalCode string `json:"postalCode"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	community, err := h.communities.Create(r.Context(), userID(r.Context()), req.Name, req.IsPrivate, req.PostalCode)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCommunityResponse(community, true))
}

func (h *Handlers) handleJoinCommunity(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AccessCode string `json:"accessCode"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	res, err := h.communities.JoinByCode(r.Context(), userID(r.Context()), req.AccessCode)
	if err != nil {
		writeError(w, err)
		return
	}

	body := toCommunityResponse(res.Community, false)
	body.JoinPending = res.Pending
	status := http.StatusOK
	if res.Pending {
		status = http.StatusAccepted
	}
	writeJSON(w, status, body)
}

func (h *Handlers) handleGetCommunity(w http.ResponseWriter, r *http.Request) {
	communityID, err := idParam(r, "communityID")
	if err != nil {
		writeError(w, err)
		return
	}

	community, err := h.communities.Get(r.Context(), userID(r.Context()), communityID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCommunityResponse(community, true))
}

func (h *Handlers) handleLeaveCommunity(w http.ResponseWriter, r *http.Request) {
	communityID, err := idParam(r, "communityID")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.communities.Leave(r.Context(), userID(r.Context()), communityID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) handleListJoinRequests(w http.ResponseWriter, r *http.Request) {
	communityID, err := idParam(r, "communityID")
	if err != nil {
		writeError(w, err)
		return
	}

	requests, err := h.communities.ListJoinRequests(r.Context(), userID(r.Context()), communityID)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]joinRequestResponse, 0, len(requests))
	for _, req := range requests {
		out = append(out, joinRequestResponse{
			ID:        req.ID,
			UserID:    req.UserID,
			UserName:  req.UserName,
			CreatedAt: req.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) handleResolveJoinRequest(approve bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		communityID, err := idParam(r, "communityID")
		if err != nil {
			writeError(w, err)
			return
		}
		requestID, err := idParam(r, "requestID")
		if err != nil {
			writeError(w, err)
			return
		}

		if err := h.communities.ResolveJoinRequest(r.Context(), userID(r.Context()), communityID, requestID, approve); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (h *Handlers) handleListMembers(w http.ResponseWriter, r *http.Request) {
	communityID, err := idParam(r, "communityID")
	if err != nil {
		writeError(w, err)
		return
	}

	members, err := h.communities.ListMembers(r.Context(), userID(r.Context()), communityID)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]memberResponse, 0, len(members))
	for _, m := range members {
		out = append(out, memberResponse{
			UserID:   m.UserID,
			Name:     m.Name,
			IsAdmin:  m.IsAdmin,
			JoinedAt: m.JoinedAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) handlePromoteAdmin(w http.ResponseWriter, r *http.Request) {
	communityID, err := idParam(r, "communityID")
	if err != nil {
		writeError(w, err)
		return
	}

	var req struct {
		UserID int64 `json:"userId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.communities.PromoteAdmin(r.Context(), userID(r.Context()), communityID, req.UserID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) handleResignAdmin(w http.ResponseWriter, r *http.Request) {
	communityID, err := idParam(r, "communityID")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.communities.ResignAdmin(r.Context(), userID(r.Context()), communityID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) handleRemoveMember(w http.ResponseWriter, r *http.Request) {
	communityID, err := idParam(r, "communityID")
	if err != nil {
		writeError(w, err)
		return
	}
	memberID, err := idParam(r, "memberID")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.communities.RemoveMember(r.Context(), userID(r.Context()), communityID, memberID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) handleRenameCommunity(w http.ResponseWriter, r *http.Request) {
	communityID, err := idParam(r, "communityID")
	if err != nil {
		writeError(w, err)
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.communities.Rename(r.Context(), userID(r.Context()), communityID, req.Name); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) handleRegenerateAccessCode(w http.ResponseWriter, r *http.Request) {
	communityID, err := idParam(r, "communityID")
	if err != nil {
		writeError(w, err)
		return
	}

	code, err := h.communities.RegenerateAccessCode(r.Context(), userID(r.Context()), communityID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"accessCode": code})
}

func (h *Handlers) handleDeleteCommunity(w http.ResponseWriter, r *http.Request) {
	communityID, err := idParam(r, "communityID")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.communities.Delete(r.Context(), userID(r.Context()), communityID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
