package controllers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ayuuum/HomeServiceAI-sub000/api/responses"
	"github.com/ayuuum/HomeServiceAI-sub000/internal/drafts"
	"github.com/ayuuum/HomeServiceAI-sub000/internal/organizations"
	pkgerrors "github.com/ayuuum/HomeServiceAI-sub000/pkg/errors"
	"github.com/ayuuum/HomeServiceAI-sub000/pkg/logger"
)

const visitorIDHeader = "X-Visitor-Id"

// Draft payloads are whatever the form has typed so far; cap them so Redis
// never stores runaway bodies.
const maxDraftBytes = 64 * 1024

func visitorID(r *http.Request) (string, error) {
	id := strings.TrimSpace(r.Header.Get(visitorIDHeader))
	if id == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "X-Visitor-Id header required")
	}
	return id, nil
}

// DraftFetch returns the visitor's saved draft, or 404 when none survives.
func DraftFetch(orgs organizations.Service, svc drafts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		org, err := orgs.BySlug(r.Context(), chi.URLParam(r, "slug"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		visitor, err := visitorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		draft, err := svc.Get(r.Context(), org.ID, visitor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, draft)
	}
}

// DraftSave stores the in-progress form under the visitor key.
func DraftSave(orgs organizations.Service, svc drafts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		org, err := orgs.BySlug(r.Context(), chi.URLParam(r, "slug"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		visitor, err := visitorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payload, err := io.ReadAll(io.LimitReader(r.Body, maxDraftBytes+1))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read draft body"))
			return
		}
		if len(payload) > maxDraftBytes {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "draft payload too large"))
			return
		}

		if err := svc.Save(r.Context(), org.ID, visitor, json.RawMessage(payload)); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "saved"})
	}
}

// DraftClear discards the visitor's draft.
func DraftClear(orgs organizations.Service, svc drafts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		org, err := orgs.BySlug(r.Context(), chi.URLParam(r, "slug"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		visitor, err := visitorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Clear(r.Context(), org.ID, visitor); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "cleared"})
	}
}
