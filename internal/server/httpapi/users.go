package httpapi

import "net/http"

func (h *Handlers) handleGetMe(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.Get(r.Context(), userID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

func (h *Handlers) handleUpdateMe(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Whatsapp string `json:"whatsapp"`
		Address  string `json:"address"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.users.UpdateProfile(r.Context(), userID(r.Context()), req.Name, req.Whatsapp, req.Address)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

func (h *Handlers) handleDeleteMe(w http.ResponseWriter, r *http.Request) {
	if err := h.users.Delete(r.Context(), userID(r.Context())); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
