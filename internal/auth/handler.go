package auth

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/guarayo/cuentos/internal/session"
	"github.com/guarayo/cuentos/pkg/handlers"
	"github.com/guarayo/cuentos/pkg/routes"
)

// Handler provides HTTP endpoints for accounts and sessions.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler with the given system and logger.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "auth"),
	}
}

// Routes returns the route group definition for auth endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/auth",
		Tags:   []string{"Auth"},
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/signup", Handler: h.SignUp, OpenAPI: docs.SignUp},
			{Method: "POST", Pattern: "/confirm", Handler: h.Confirm, OpenAPI: docs.Confirm},
			{Method: "POST", Pattern: "/signin", Handler: h.SignIn, OpenAPI: docs.SignIn},
			{Method: "POST", Pattern: "/signout", Handler: h.SignOut, OpenAPI: docs.SignOut},
			{Method: "GET", Pattern: "/session", Handler: h.Session, OpenAPI: docs.Session},
		},
	}
}

func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	var creds Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidRequest)
		return
	}

	result, err := h.sys.SignUp(r.Context(), creds)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, result)
}

// ConfirmRequest carries a confirmation token.
type ConfirmRequest struct {
	Token string `json:"token"`
}

func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	var req ConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidRequest)
		return
	}

	user, err := h.sys.Confirm(r.Context(), req.Token)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, user)
}

func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	var creds Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidRequest)
		return
	}

	token, err := h.sys.SignIn(r.Context(), creds)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, token)
}

// SignOut revokes the bearer token of the request. Requests without a token
// succeed since there is nothing to end.
func (h *Handler) SignOut(w http.ResponseWriter, r *http.Request) {
	raw, ok := BearerToken(r)
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if err := h.sys.SignOut(r.Context(), raw); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Session reports the session the middleware resolved for the request.
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, session.FromContext(r.Context()))
}
