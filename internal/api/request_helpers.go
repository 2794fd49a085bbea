package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/taskdesk/internal/api/shared"
	"github.com/phrazzld/taskdesk/internal/domain"
)

var errNoPrincipal = &domain.Error{
	Kind:    domain.KindUnauthenticated,
	Message: "authentication required",
	Err:     errors.New("no principal in request context"),
}

// principalOrError returns the authenticated principal, writing a 401 when
// the authentication middleware did not run.
func principalOrError(w http.ResponseWriter, r *http.Request) (domain.Principal, bool) {
	p, ok := shared.PrincipalFrom(r.Context())
	if !ok {
		HandleAPIError(w, r, errNoPrincipal, "")
		return domain.Principal{}, false
	}
	return p, true
}

// getPathUUID parses the named URL parameter as a UUID.
func getPathUUID(r *http.Request, param string) (uuid.UUID, error) {
	raw := chi.URLParam(r, param)
	if raw == "" {
		return uuid.Nil, domain.NewValidationError(param, "is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, domain.NewValidationError(param, "must be a valid id")
	}
	return id, nil
}

// principalAndPathUUID combines principalOrError and getPathUUID, writing
// the error response when either fails.
func principalAndPathUUID(w http.ResponseWriter, r *http.Request, param string) (domain.Principal, uuid.UUID, bool) {
	p, ok := principalOrError(w, r)
	if !ok {
		return p, uuid.Nil, false
	}
	id, err := getPathUUID(r, param)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return p, uuid.Nil, false
	}
	return p, id, true
}

// decodeAndValidate reads the JSON body into v and validates it, writing a
// 400 on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := shared.DecodeJSON(w, r, v); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "invalid request body", err)
		return false
	}
	if err := shared.ValidateRequest(v); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return false
	}
	return true
}

// queryInt parses an optional non-negative integer query parameter.
func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, domain.NewValidationError(name, "must be a non-negative integer")
	}
	return n, nil
}
