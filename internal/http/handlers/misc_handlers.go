package handlers

import (
	"net/http"
	"time"

	"github.com/smartcardai/trialdesk/internal/http/response"
)

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	response.OK(w, "ok", map[string]string{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// The profile and dashboard views never shipped; the routes answer 501
// so clients see an explicit contract instead of a 404.
func (h *Handlers) UserProfile(w http.ResponseWriter, r *http.Request) {
	response.NotImplemented(w)
}

func (h *Handlers) UserDashboard(w http.ResponseWriter, r *http.Request) {
	response.NotImplemented(w)
}

func (h *Handlers) AdminDashboard(w http.ResponseWriter, r *http.Request) {
	response.NotImplemented(w)
}

// AdminUsers is kept for backward compatibility with older clients.
func (h *Handlers) AdminUsers(w http.ResponseWriter, r *http.Request) {
	response.NotImplemented(w)
}

// The integration and domain catalogs were never backed by storage;
// their routes answer 501 like the dashboard ones.
func (h *Handlers) ListIntegrations(w http.ResponseWriter, r *http.Request) {
	response.NotImplemented(w)
}

func (h *Handlers) CreateIntegration(w http.ResponseWriter, r *http.Request) {
	response.NotImplemented(w)
}

func (h *Handlers) ListDomains(w http.ResponseWriter, r *http.Request) {
	response.NotImplemented(w)
}

func (h *Handlers) CreateDomain(w http.ResponseWriter, r *http.Request) {
	response.NotImplemented(w)
}
