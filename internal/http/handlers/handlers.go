package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/smartcardai/trialdesk/internal/domain"
	"github.com/smartcardai/trialdesk/internal/http/response"
	"github.com/smartcardai/trialdesk/internal/service"
	"github.com/smartcardai/trialdesk/pkg/auth"
	"github.com/smartcardai/trialdesk/pkg/config"
	"github.com/smartcardai/trialdesk/pkg/logger"
)

type claimsCtxKey struct{}

type Handlers struct {
	authService         service.AuthService
	trialService        service.TrialService
	staffService        service.StaffService
	demoService         service.DemoService
	notificationService service.NotificationService
	config              *config.Config
}

func New(
	authService service.AuthService,
	trialService service.TrialService,
	staffService service.StaffService,
	demoService service.DemoService,
	notificationService service.NotificationService,
	cfg *config.Config,
) *Handlers {
	return &Handlers{
		authService:         authService,
		trialService:        trialService,
		staffService:        staffService,
		demoService:         demoService,
		notificationService: notificationService,
		config:              cfg,
	}
}

// RequireJWT guards a route group. Admin tokens pass every role check.
func (h *Handlers) RequireJWT(requiredRole string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				response.Error(w, http.StatusUnauthorized, "Missing or invalid authorization header")
				return
			}

			token := strings.TrimPrefix(authHeader, "Bearer ")
			claims, err := auth.Parse(token, h.config.Auth.JWTSecret)
			if err != nil {
				response.Error(w, http.StatusUnauthorized, "Invalid token")
				return
			}

			if requiredRole != "" && claims.Role != requiredRole && claims.Role != service.RoleAdmin {
				response.Error(w, http.StatusForbidden, "Insufficient permissions")
				return
			}

			ctx := context.WithValue(r.Context(), logger.ActorIDKey, claims.Sub)
			ctx = context.WithValue(ctx, logger.ActorRoleKey, claims.Role)
			ctx = context.WithValue(ctx, claimsCtxKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func getClaims(r *http.Request) *auth.Claims {
	if claims, ok := r.Context().Value(claimsCtxKey{}).(*auth.Claims); ok {
		return claims
	}
	return nil
}

// writeDomainError translates service errors into envelope responses.
// Storage errors stay generic on the wire and detailed in the log.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		response.Error(w, http.StatusBadRequest, ve.Msg)
	case errors.Is(err, domain.ErrNotFound):
		response.Error(w, http.StatusNotFound, "Record not found")
	case errors.Is(err, domain.ErrDuplicateEmail):
		response.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrDuplicateActiveEmail):
		response.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrAccessDenied):
		response.Error(w, http.StatusForbidden, "Access denied")
	case errors.Is(err, domain.ErrInvalidCredentials):
		response.Error(w, http.StatusUnauthorized, "Invalid credentials")
	default:
		logger.ErrorContext(r.Context(), "Request failed",
			"error", err,
			"method", r.Method,
			"path", r.URL.Path,
		)
		response.Error(w, http.StatusInternalServerError, "Internal server error")
	}
}

// notePayload accepts the note bodies clients actually send: the admin
// UI posts admin_note / intern_note, so a bare note key is the
// fallback, not the contract. Pointers distinguish an absent key from
// an explicit empty string.
type notePayload struct {
	Note       *string `json:"note"`
	AdminNote  *string `json:"admin_note"`
	InternNote *string `json:"intern_note"`
}

func (p notePayload) adminNote() string {
	if p.AdminNote != nil {
		return *p.AdminNote
	}
	if p.Note != nil {
		return *p.Note
	}
	return ""
}

func (p notePayload) internNote() string {
	if p.InternNote != nil {
		return *p.InternNote
	}
	if p.Note != nil {
		return *p.Note
	}
	return ""
}

func parseID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError("invalid id")
	}
	return id, nil
}

func parsePagination(r *http.Request) (limit, offset int) {
	limit = 50
	offset = 0

	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}

	return limit, offset
}
