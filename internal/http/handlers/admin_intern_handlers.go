package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/smartcardai/trialdesk/internal/domain"
	"github.com/smartcardai/trialdesk/internal/http/response"
)

func (h *Handlers) ListInterns(w http.ResponseWriter, r *http.Request) {
	interns, err := h.staffService.List(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	response.OK(w, "Interns retrieved", interns)
}

func (h *Handlers) CreateIntern(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateInternRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	created, err := h.staffService.Create(r.Context(), &req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	response.Created(w, "Intern created successfully", created)
}

func (h *Handlers) UpdateIntern(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	var patch domain.InternPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	updated, err := h.staffService.Update(r.Context(), id, patch)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	response.OK(w, "Intern updated successfully", updated)
}

func (h *Handlers) UpdateInternCredentials(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	var creds domain.InternCredentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	updated, err := h.staffService.UpdateCredentials(r.Context(), id, &creds)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	response.OK(w, "Credentials updated successfully", updated)
}

func (h *Handlers) DeleteIntern(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	if err := h.staffService.Delete(r.Context(), id); err != nil {
		writeDomainError(w, r, err)
		return
	}
	response.OK(w, "Intern deleted successfully", nil)
}
