package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/smartcardai/trialdesk/internal/http/response"
	"github.com/smartcardai/trialdesk/internal/service"
)

// actingInternID resolves which intern a request operates as. Interns
// always act as themselves; admins may supply intern_id to act on an
// intern's behalf.
func (h *Handlers) actingInternID(r *http.Request) (int64, bool) {
	claims := getClaims(r)
	if claims == nil {
		return 0, false
	}
	if claims.Role == service.RoleIntern {
		return claims.Sub, true
	}
	if raw := r.URL.Query().Get("intern_id"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil && id > 0 {
			return id, true
		}
	}
	return 0, false
}

func (h *Handlers) ListInternRequests(w http.ResponseWriter, r *http.Request) {
	internID, ok := h.actingInternID(r)
	if !ok {
		response.Error(w, http.StatusBadRequest, "intern_id is required")
		return
	}

	trials, err := h.trialService.ListByIntern(r.Context(), internID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	response.OK(w, "Assigned requests retrieved", trials)
}

func (h *Handlers) UpdateInternRequestNote(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	internID, ok := h.actingInternID(r)
	if !ok {
		response.Error(w, http.StatusBadRequest, "intern_id is required")
		return
	}

	var body notePayload
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	updated, err := h.trialService.AddInternNote(r.Context(), internID, id, body.internNote())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	response.OK(w, "Note updated successfully", updated)
}

func (h *Handlers) ListInternDemos(w http.ResponseWriter, r *http.Request) {
	internID, ok := h.actingInternID(r)
	if !ok {
		response.Error(w, http.StatusBadRequest, "intern_id is required")
		return
	}

	demos, err := h.demoService.ListByIntern(r.Context(), internID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	response.OK(w, "Assigned demo accounts retrieved", demos)
}

func (h *Handlers) UpdateInternDemoNote(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	internID, ok := h.actingInternID(r)
	if !ok {
		response.Error(w, http.StatusBadRequest, "intern_id is required")
		return
	}

	var body notePayload
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	updated, err := h.demoService.AddInternNote(r.Context(), internID, id, body.internNote())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	response.OK(w, "Note updated successfully", updated)
}
