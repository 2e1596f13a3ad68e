package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/smartcardai/trialdesk/internal/domain"
	"github.com/smartcardai/trialdesk/internal/http/response"
)

// notificationTarget resolves the {recipientType} path segment plus the
// optional recipient_id query into a store query target.
func notificationTarget(r *http.Request) (domain.RecipientType, *int64, bool) {
	rt, ok := domain.ParseRecipientType(chi.URLParam(r, "recipientType"))
	if !ok {
		return "", nil, false
	}

	var recipientID *int64
	if raw := r.URL.Query().Get("recipient_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return "", nil, false
		}
		recipientID = &id
	}

	// Intern notifications are always per-intern.
	if rt == domain.RecipientIntern && recipientID == nil {
		return "", nil, false
	}

	return rt, recipientID, true
}

func (h *Handlers) ListNotifications(w http.ResponseWriter, r *http.Request) {
	rt, recipientID, ok := notificationTarget(r)
	if !ok {
		response.Error(w, http.StatusBadRequest, "Invalid recipient")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	unreadOnly := r.URL.Query().Get("unread_only") == "true"

	view, err := h.notificationService.List(r.Context(), rt, recipientID, limit, unreadOnly)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	response.OK(w, "Notifications retrieved", view)
}

func (h *Handlers) UnreadNotificationCount(w http.ResponseWriter, r *http.Request) {
	rt, recipientID, ok := notificationTarget(r)
	if !ok {
		response.Error(w, http.StatusBadRequest, "Invalid recipient")
		return
	}

	view, err := h.notificationService.List(r.Context(), rt, recipientID, 1, false)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	response.OK(w, "Unread count retrieved", map[string]int{"unread_count": view.UnreadCount})
}

func (h *Handlers) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	if err := h.notificationService.MarkRead(r.Context(), id); err != nil {
		writeDomainError(w, r, err)
		return
	}
	response.OK(w, "Notification marked as read", nil)
}

func (h *Handlers) MarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	rt, recipientID, ok := notificationTarget(r)
	if !ok {
		response.Error(w, http.StatusBadRequest, "Invalid recipient")
		return
	}

	updated, err := h.notificationService.MarkAllRead(r.Context(), rt, recipientID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	response.OK(w, "All notifications marked as read", map[string]int64{"updated": updated})
}

func (h *Handlers) DeleteNotification(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	if err := h.notificationService.Delete(r.Context(), id); err != nil {
		writeDomainError(w, r, err)
		return
	}
	response.OK(w, "Notification deleted", nil)
}
