package auth

import "fmt"

type (
	// TokenError classifies why a token was refused
	TokenError string

	MissingField struct {
		Name string
	}

	UsernameTaken struct {
		Username string
	}

	UnknownUser struct {
		Username string
	}

	WrongPassword struct {
		Username string
	}

	DerivationError struct {
		Op    string
		cause error
	}

	verifyError struct {
		kind  TokenError
		cause error
	}
)

const (
	Malformed        = TokenError("malformed token")
	InvalidSignature = TokenError("invalid token signature")
	Expired          = TokenError("token expired")
)

func (t TokenError) Error() string {
	return string(t)
}

func (m MissingField) Error() string {
	return fmt.Sprintf("missing field %v", m.Name)
}

func (u UsernameTaken) Error() string {
	return fmt.Sprintf("username %v already exists", u.Username)
}

func (u UnknownUser) Error() string {
	return fmt.Sprintf("user %v not found", u.Username)
}

func (w WrongPassword) Error() string {
	return fmt.Sprintf("invalid password for user %v", w.Username)
}

func (d DerivationError) Error() string {
	return fmt.Sprintf("unable to %v, cause %v", d.Op, d.cause)
}

func (d DerivationError) Unwrap() error {
	return d.cause
}

func (v verifyError) Error() string {
	if v.cause == nil {
		return v.kind.Error()
	}
	return fmt.Sprintf("%v, cause %v", v.kind, v.cause)
}

func (v verifyError) Unwrap() error {
	return v.kind
}
