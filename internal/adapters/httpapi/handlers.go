package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"zdguide/internal/application"
	"zdguide/internal/application/commands"
	"zdguide/internal/domain"
)

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	perPage, _ := strconv.Atoi(q.Get("per_page"))

	results, err := commands.NewSearchCommand(s.app, q.Get("q"), perPage, parseBool(q.Get("show_excerpt"))).Execute(r.Context())
	if err != nil {
		s.internalError(w, "search failed", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

func (s *Server) handleTerms(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	kind := domain.KindCategory
	if name := q.Get("taxonomy"); name != "" {
		parsed, err := application.ParseEntityKind(name)
		if err != nil || !parsed.IsTerm() {
			writeError(w, http.StatusBadRequest, "taxonomy must be category or section")
			return
		}
		kind = parsed
	}
	limit, _ := strconv.Atoi(q.Get("limit"))

	entries, err := commands.NewListTermsCommand(s.app, kind, limit).Execute(r.Context())
	if err != nil {
		s.internalError(w, "list terms failed", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"terms": entries})
}

func (s *Server) handleTicketForms(w http.ResponseWriter, r *http.Request) {
	forms, err := commands.NewListTicketFormsCommand(s.app).Execute(r.Context())
	if err != nil {
		var cfgErr *application.ConfigurationError
		switch {
		case errors.As(err, &cfgErr):
			writeError(w, http.StatusServiceUnavailable, err.Error())
		default:
			s.app.Log().Warn("list ticket forms failed", zap.Error(err))
			writeError(w, http.StatusBadGateway, application.ErrorMessage(err))
		}
		return
	}
	writeJSON(w, http.StatusOK, forms)
}

func (s *Server) handleIssueNonce(w http.ResponseWriter, r *http.Request) {
	intent, err := application.ParseIntent(r.PathValue("intent"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	token, err := s.nonces.Issue(string(intent))
	if err != nil {
		s.internalError(w, "issue nonce failed", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"nonce": token})
}

// handleAction runs an operator intent. Anything short of an admin request
// with a valid single-use token is ignored with 204 and no body.
func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	if !s.isAdmin(r) {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	token := r.URL.Query().Get("_nonce")
	if token == "" {
		token = r.FormValue("_nonce")
	}

	report, ok := commands.Dispatch(r.Context(), s.app, s.nonces, r.PathValue("intent"), token)
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) internalError(w http.ResponseWriter, msg string, err error) {
	s.app.Log().Error(msg, zap.Error(err))
	writeError(w, http.StatusInternalServerError, msg)
}

// parseBool accepts the usual truthy spellings; anything else is false
func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
