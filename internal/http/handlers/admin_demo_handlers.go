package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/smartcardai/trialdesk/internal/domain"
	"github.com/smartcardai/trialdesk/internal/http/middleware"
	"github.com/smartcardai/trialdesk/internal/http/response"
)

func (h *Handlers) ListDemos(w http.ResponseWriter, r *http.Request) {
	demos, err := h.demoService.List(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	response.OK(w, "Demo accounts retrieved", demos)
}

func (h *Handlers) UpdateDemo(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	var patch domain.DemoPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	updated, err := h.demoService.Update(r.Context(), id, patch)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	response.OK(w, "Demo account updated", updated)
}

func (h *Handlers) DeleteDemo(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	if err := h.demoService.Delete(r.Context(), id); err != nil {
		writeDomainError(w, r, err)
		return
	}
	response.OK(w, "Demo account deleted", nil)
}

func (h *Handlers) RegenerateDemoCredentials(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	updated, err := h.demoService.Regenerate(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	middleware.RecordDemoRegeneration()
	response.OK(w, "Credentials regenerated successfully", updated)
}

func (h *Handlers) AssignDemoIntern(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	var body struct {
		InternID json.RawMessage `json:"intern_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	internID, err := parseOptionalID(body.InternID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	updated, err := h.demoService.Assign(r.Context(), id, internID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	response.OK(w, "Demo assignment updated", updated)
}

func (h *Handlers) UpdateDemoAdminNote(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	var body notePayload
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	updated, err := h.demoService.UpdateAdminNote(r.Context(), id, body.adminNote())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	response.OK(w, "Admin note updated", updated)
}

// UpdateDemoInternNote is the admin-side variant: it writes the intern
// note field without the assignment check interns themselves get.
func (h *Handlers) UpdateDemoInternNote(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	var body notePayload
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	d, err := h.demoService.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if d.AssignedInternID == nil {
		response.Error(w, http.StatusBadRequest, "Demo account has no assigned intern")
		return
	}

	updated, err := h.demoService.AddInternNote(r.Context(), *d.AssignedInternID, id, body.internNote())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	response.OK(w, "Intern note updated", updated)
}
