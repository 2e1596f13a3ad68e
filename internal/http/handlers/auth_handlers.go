package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/smartcardai/trialdesk/internal/domain"
	"github.com/smartcardai/trialdesk/internal/http/middleware"
	"github.com/smartcardai/trialdesk/internal/http/response"
)

// Register handles the public signup form. An "ld" signup opens a trial
// request; a "demo" signup provisions demo credentials immediately and
// returns them in the response.
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	accountType := req.AccountType
	if accountType == "" {
		accountType = string(domain.AccountTypeLD)
	}

	if accountType == string(domain.AccountTypeDemo) {
		demo, err := h.demoService.Register(r.Context(), &req)
		if err != nil {
			middleware.RecordSignup(accountType, "error")
			writeDomainError(w, r, err)
			return
		}
		middleware.RecordSignup(accountType, "ok")
		response.Created(w, "Demo account created successfully", map[string]any{
			"username":   demo.Username,
			"password":   demo.Password,
			"expires_at": demo.ExpiresAt,
		})
		return
	}

	created, err := h.trialService.Register(r.Context(), &req)
	if err != nil {
		middleware.RecordSignup(accountType, "error")
		writeDomainError(w, r, err)
		return
	}
	middleware.RecordSignup(accountType, "ok")
	response.Created(w, "Registration successful", created)
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	result, err := h.authService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	response.OK(w, "Login successful", result)
}

// Logout is stateless: tokens expire on their own, the client just
// drops its copy.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	response.OK(w, "Logged out", nil)
}
