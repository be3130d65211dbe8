package controllers

import (
	"net/http"
	"strings"

	"github.com/ceramicarte/preventivi-backend/api/responses"
	"github.com/ceramicarte/preventivi-backend/api/validators"
	pkgauth "github.com/ceramicarte/preventivi-backend/pkg/auth"
	"github.com/ceramicarte/preventivi-backend/pkg/config"
	pkgerrors "github.com/ceramicarte/preventivi-backend/pkg/errors"
	"github.com/ceramicarte/preventivi-backend/pkg/logger"
)

type devTokenRequest struct {
	Subject string `json:"subject" validate:"required,email"`
}

// DevToken mints an admin access token without checking credentials.
// Only routed outside production; real deployments issue tokens from
// the identity provider.
func DevToken(cfg *config.Config, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload devTokenRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		token, err := pkgauth.NewAccessToken(cfg.JWT, strings.TrimSpace(payload.Subject))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "minting token"))
			return
		}

		responses.WriteSuccess(w, map[string]string{"token": token})
	}
}
