package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/Goofygiraffe06/signup/internal/auth"
	"github.com/Goofygiraffe06/signup/internal/logging"
	"github.com/Goofygiraffe06/signup/internal/models"
	"github.com/Goofygiraffe06/signup/internal/provider/local"
)

const (
	msgMissingToken = "Missing verification token"
	msgInvalidToken = "This verification link is invalid or has expired"
	msgVerifyFailed = "Verification failed, please try again later"
)

// Verifier consumes email verification tokens.
type Verifier interface {
	Verify(ctx context.Context, token string) (string, error)
}

type verifyPage struct {
	Verified bool
	Email    string
	Error    string
	LoginURL string
}

// VerifyHandler handles the link sent in verification emails. Clients asking
// for application/json get a VerifyResponse instead of the page.
func VerifyHandler(v Verifier, loginURL string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		asJSON := strings.Contains(r.Header.Get("Accept"), "application/json")
		fail := func(code int, msg string) {
			if asJSON {
				respondJSON(w, code, models.ErrorResponse{Error: msg})
				return
			}
			respondPage(w, code, "verify.html", verifyPage{Error: msg, LoginURL: loginURL})
		}

		token := r.URL.Query().Get("token")
		if token == "" {
			fail(http.StatusBadRequest, msgMissingToken)
			return
		}

		email, err := v.Verify(r.Context(), token)
		switch {
		case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, local.ErrTokenUsed), errors.Is(err, local.ErrAccountMissing):
			fail(http.StatusForbidden, msgInvalidToken)
			return
		case err != nil:
			logging.ErrorLog("Email verification failed: %v", err)
			fail(http.StatusInternalServerError, msgVerifyFailed)
			return
		}

		if asJSON {
			respondJSON(w, http.StatusOK, models.VerifyResponse{Status: "verified", Email: email})
			return
		}
		respondPage(w, http.StatusOK, "verify.html", verifyPage{Verified: true, Email: email, LoginURL: loginURL})
	}
}
