package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/smartcardai/trialdesk/internal/domain"
	"github.com/smartcardai/trialdesk/internal/http/middleware"
	"github.com/smartcardai/trialdesk/internal/http/response"
)

func (h *Handlers) ListCustomers(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)
	trials, err := h.trialService.List(r.Context(), limit, offset)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	response.OK(w, "Customers retrieved", trials)
}

// CreateCustomer is the admin-side signup: same payload as the public
// form, but always lands as a trial request row regardless of account
// type, so demo-type customers show up in the customer list with
// status demo_active.
func (h *Handlers) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	created, err := h.trialService.Register(r.Context(), &req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	response.Created(w, "Customer created successfully", created)
}

func (h *Handlers) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	var patch domain.TrialPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	updated, err := h.trialService.Update(r.Context(), id, patch)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	response.OK(w, "Customer updated successfully", updated)
}

func (h *Handlers) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	if err := h.trialService.Delete(r.Context(), id); err != nil {
		writeDomainError(w, r, err)
		return
	}
	response.OK(w, "Customer deleted successfully", nil)
}

// parseOptionalID accepts a number, a numeric string, an empty string
// or null; the last two mean "clear the assignment".
func parseOptionalID(raw json.RawMessage) (*int64, error) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" || s == `""` {
		return nil, nil
	}
	s = strings.Trim(s, `"`)
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return nil, domain.NewValidationError("invalid intern_id")
	}
	return &id, nil
}

func (h *Handlers) AssignRequest(w http.ResponseWriter, r *http.Request) {
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

	updated, err := h.trialService.Assign(r.Context(), id, internID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	middleware.RecordAssignment()
	response.OK(w, "Request assignment updated", updated)
}

func (h *Handlers) UpdateRequestStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	updated, err := h.trialService.UpdateStatus(r.Context(), id, body.Status)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	response.OK(w, "Status updated successfully", updated)
}

// UpdateRequestProject shallow-merges the posted fields into the
// stored project info.
func (h *Handlers) UpdateRequestProject(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	var fields map[string]any
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	updated, err := h.trialService.MergeProject(r.Context(), id, fields)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	response.OK(w, "Project info updated", updated)
}
