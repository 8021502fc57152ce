package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

func (s *Store) UserExists(ctx context.Context, username string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `select count(*) from users where username = $1`, username).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("unable to check user %v, cause %w", username, err)
	}
	return n > 0, nil
}

// CreateUser inserts a credential record, a taken username results in
// DuplicateUser.
func (s *Store) CreateUser(ctx context.Context, username, verifier string) error {
	_, err := s.db.ExecContext(ctx, `insert into users(username, verifier) values ($1, $2)`, username, verifier)
	if isUniqueViolation(err) {
		return DuplicateUser{Username: username}
	} else if err != nil {
		return fmt.Errorf("unable to insert user %v, cause %w", username, err)
	}
	return nil
}

func (s *Store) LookupVerifier(ctx context.Context, username string) (string, bool, error) {
	var verifier string
	err := s.db.QueryRowContext(ctx, `select verifier from users where username = $1`, username).Scan(&verifier)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	} else if err != nil {
		return "", false, fmt.Errorf("unable to load user %v, cause %w", username, err)
	}
	return verifier, true, nil
}
