package auth

import (
	"context"
	"fmt"
)

// Login checks passwd against the verifier stored for user and returns a
// new token on success.
func Login(ctx context.Context, users UserStore, hasher *Hasher, tokens *Issuer, user, passwd string) (token string, err error) {
	if len(user) == 0 {
		return "", MissingField{Name: "username"}
	}
	if len(passwd) == 0 {
		return "", MissingField{Name: "password"}
	}
	verifier, found, err := users.LookupVerifier(ctx, user)
	if err != nil {
		return "", fmt.Errorf("unable to lookup user %v, cause %w", user, err)
	} else if !found {
		return "", UnknownUser{Username: user}
	}
	match, err := hasher.Compare(ctx, passwd, verifier)
	if err != nil {
		return "", err
	} else if !match {
		return "", WrongPassword{Username: user}
	}
	return tokens.Issue(user)
}
