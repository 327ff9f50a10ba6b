package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/api/shared"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/service"
)

// getPrincipal extracts the authenticated caller placed in the context by the
// auth middleware. It writes a 401 response and returns false when absent.
func getPrincipal(w http.ResponseWriter, r *http.Request) (shared.Principal, bool) {
	p, ok := shared.GetPrincipal(r.Context())
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "")
		return shared.Principal{}, false
	}
	return p, true
}

// getPathUUID extracts and parses a UUID path parameter.
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	return domain.ParseID(paramName, chi.URLParam(r, paramName))
}

// authorizeOwner returns service.ErrNotOwned unless p may act for ownerID.
func authorizeOwner(p shared.Principal, ownerID uuid.UUID) error {
	if !p.CanAccess(ownerID) {
		return service.ErrNotOwned
	}
	return nil
}

var errMalformedBody = domain.NewValidationError("body", "is not valid JSON for this request", nil)

// decodeAndValidate decodes the JSON body into v and validates it.
func decodeAndValidate(r *http.Request, v interface{}) error {
	if err := shared.DecodeJSON(r, v); err != nil {
		if errors.Is(err, shared.ErrEmptyBody) {
			return err
		}
		return errMalformedBody
	}
	return shared.ValidateRequest(v)
}

// getAuthorizedUserParam resolves the {userId} path parameter and checks the
// caller may act for that user. It writes the error response and returns
// false on failure.
func getAuthorizedUserParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	p, ok := getPrincipal(w, r)
	if !ok {
		return uuid.Nil, false
	}

	userID, err := getPathUUID(r, "userId")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return uuid.Nil, false
	}
	if err := authorizeOwner(p, userID); err != nil {
		HandleAPIError(w, r, err, "")
		return uuid.Nil, false
	}
	return userID, true
}
