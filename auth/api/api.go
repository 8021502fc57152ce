package api

import (
	"errors"
	"net/http"

	"github.com/andrebq/packbox/auth"
	"github.com/andrebq/packbox/internal/httpjson"
	"github.com/andrebq/packbox/internal/logutil"
	"github.com/julienschmidt/httprouter"
)

type (
	credentials struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	tokenResponse struct {
		Token string `json:"token"`
	}
)

// Routes lists the paths served by Mount
var Routes = []string{"/signup", "/signin", "/logout"}

// Mount registers the public account endpoints on router
func (s *SecurityRealm) Mount(router *httprouter.Router) {
	router.HandlerFunc(http.MethodPost, "/signup", s.Signup)
	router.HandlerFunc(http.MethodPost, "/signin", s.Signin)
	router.HandlerFunc(http.MethodPost, "/logout", s.Logout)
}

func (s *SecurityRealm) Signup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logutil.GetOrDefault(ctx)
	var body credentials
	if err := httpjson.Decode(r, &body); err != nil {
		s.attempt("signup", false)
		httpjson.Message(w, http.StatusBadRequest, "Missing username or password")
		return
	}
	err := auth.Register(ctx, s.users, s.hasher, body.Username, body.Password)
	s.attempt("signup", err == nil)
	var taken auth.UsernameTaken
	var missing auth.MissingField
	switch {
	case err == nil:
		log.Info().Str("user", body.Username).Msg("User created")
		httpjson.Message(w, http.StatusOK, "User created successfully")
	case errors.As(err, &taken):
		httpjson.Message(w, http.StatusBadRequest, "Username already exists")
	case errors.As(err, &missing):
		httpjson.Message(w, http.StatusBadRequest, "Missing username or password")
	default:
		log.Error().Err(err).Str("user", body.Username).Msg("Unable to create user")
		httpjson.Message(w, http.StatusInternalServerError, "Error creating user")
	}
}

func (s *SecurityRealm) Signin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logutil.GetOrDefault(ctx)
	var body credentials
	if err := httpjson.Decode(r, &body); err != nil {
		s.attempt("signin", false)
		httpjson.Message(w, http.StatusBadRequest, "Missing username or password")
		return
	}
	token, err := auth.Login(ctx, s.users, s.hasher, s.tokens, body.Username, body.Password)
	s.attempt("signin", err == nil)
	var unknown auth.UnknownUser
	var wrong auth.WrongPassword
	var missing auth.MissingField
	switch {
	case err == nil:
		httpjson.Write(w, http.StatusOK, tokenResponse{Token: token})
	case errors.As(err, &unknown):
		httpjson.Message(w, http.StatusBadRequest, "User not found")
	case errors.As(err, &wrong):
		log.Info().Str("user", body.Username).Msg("Password mismatch")
		httpjson.Message(w, http.StatusBadRequest, "Invalid password")
	case errors.As(err, &missing):
		httpjson.Message(w, http.StatusBadRequest, "Missing username or password")
	default:
		log.Error().Err(err).Str("user", body.Username).Msg("Unable to sign in")
		httpjson.Message(w, http.StatusInternalServerError, "Error logging in")
	}
}

// Logout is informational only, tokens cannot be revoked so the client
// is expected to discard its copy.
func (s *SecurityRealm) Logout(w http.ResponseWriter, r *http.Request) {
	httpjson.Message(w, http.StatusOK, "Client should delete token to logout")
}
