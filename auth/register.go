package auth

import (
	"context"
	"errors"
	"fmt"
)

type (
	// UserStore keeps credential records.
	//
	// CreateUser must fail with an error exposing `Conflict() bool` (see
	// store.DuplicateUser) when the username is already taken, even if
	// UserExists said otherwise a moment before.
	UserStore interface {
		UserExists(ctx context.Context, username string) (bool, error)
		CreateUser(ctx context.Context, username, verifier string) error
		LookupVerifier(ctx context.Context, username string) (verifier string, found bool, err error)
	}

	conflict interface {
		Conflict() bool
	}
)

// Register creates a new credential record for user.
//
// The existence check only produces the friendly error earlier, two
// concurrent registrations of the same name are settled by the store's
// unique constraint and the loser gets UsernameTaken as well.
func Register(ctx context.Context, users UserStore, hasher *Hasher, user, passwd string) error {
	if len(user) == 0 {
		return MissingField{Name: "username"}
	}
	if len(passwd) == 0 {
		return MissingField{Name: "password"}
	}
	exists, err := users.UserExists(ctx, user)
	if err != nil {
		return fmt.Errorf("unable to check if %v exists, cause %w", user, err)
	} else if exists {
		return UsernameTaken{Username: user}
	}
	verifier, err := hasher.Hash(ctx, passwd)
	if err != nil {
		return err
	}
	err = users.CreateUser(ctx, user, verifier)
	var c conflict
	if errors.As(err, &c) && c.Conflict() {
		return UsernameTaken{Username: user}
	} else if err != nil {
		return fmt.Errorf("unable to store user %v, cause %w", user, err)
	}
	return nil
}
