package api

import (
	"net/http"
	"strings"

	"github.com/andrebq/packbox/auth"
	"github.com/andrebq/packbox/internal/httpjson"
	"github.com/andrebq/packbox/internal/logutil"
)

type (
	SecurityRealm struct {
		users   auth.UserStore
		hasher  *auth.Hasher
		tokens  *auth.Issuer
		attempt func(event string, success bool)
	}
)

const (
	msgMissingToken = "Missing token"
	msgInvalidToken = "Invalid token"
)

func NewRealm(users auth.UserStore, hasher *auth.Hasher, tokens *auth.Issuer) *SecurityRealm {
	return &SecurityRealm{
		users:   users,
		hasher:  hasher,
		tokens:  tokens,
		attempt: func(string, bool) {},
	}
}

// RecordAttempts registers fn to be called after every signup, signin and
// token check.
func (s *SecurityRealm) RecordAttempts(fn func(event string, success bool)) {
	if fn == nil {
		fn = func(string, bool) {}
	}
	s.attempt = fn
}

// Protect only lets requests carrying a valid bearer token reach sensitive,
// the identity taken from the token is available via
// auth.IdentityFromContext.
func (s *SecurityRealm) Protect(sensitive http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logutil.GetOrDefault(r.Context())
		scheme, token, ok := bearerToken(r.Header.Get("Authorization"))
		if !ok {
			s.attempt("token", false)
			httpjson.Message(w, http.StatusUnauthorized, msgMissingToken)
			return
		}
		if !strings.EqualFold(scheme, "Bearer") {
			s.attempt("token", false)
			log.Debug().Str("scheme", scheme).Msg("Unsupported authorization scheme")
			httpjson.Message(w, http.StatusUnauthorized, msgInvalidToken)
			return
		}
		id, err := s.tokens.Verify(token)
		if err != nil {
			s.attempt("token", false)
			log.Debug().Err(err).Msg("Token rejected")
			httpjson.Message(w, http.StatusUnauthorized, msgInvalidToken)
			return
		}
		s.attempt("token", true)
		ctx := auth.WithIdentity(r.Context(), id)
		ctx = logutil.WithLogger(ctx, log.With().Str("user", id.Username).Logger())
		sensitive.ServeHTTP(w, r.WithContext(ctx))
	})
}

// bearerToken splits an Authorization header into scheme and token,
// ok is false when there is no token segment at all.
func bearerToken(hdrVal string) (scheme, token string, ok bool) {
	parts := strings.Fields(hdrVal)
	switch len(parts) {
	case 0, 1:
		return "", "", false
	case 2:
		return parts[0], parts[1], true
	default:
		// more than one token segment is never valid
		return parts[0], "", true
	}
}
