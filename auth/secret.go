package auth

import (
	"fmt"
	"os"
)

type (
	// Secret is the HMAC key used to sign tokens
	Secret []byte
)

const (
	SecretEnvVar = "JWT_SECRET"

	minSecretLen = 8
)

// SecretFromEnv reads the signing secret from varname and clears the
// variable afterwards so child processes never see it.
//
// nil getfn/setfn default to os.Getenv/os.Setenv.
func SecretFromEnv(varname string, getfn func(string) string, setfn func(string, string) error) (Secret, error) {
	if getfn == nil {
		getfn = os.Getenv
	}
	if setfn == nil {
		setfn = os.Setenv
	}
	val := getfn(varname)
	if err := setfn(varname, ""); err != nil {
		return nil, fmt.Errorf("auth: unable to clear %v from the environment, cause %w", varname, err)
	}
	if len(val) == 0 {
		return nil, fmt.Errorf("auth: environment variable %v is empty, a signing secret is required", varname)
	} else if len(val) < minSecretLen {
		return nil, fmt.Errorf("auth: signing secret too short got %v expecting at least %v bytes", len(val), minSecretLen)
	}
	return Secret(val), nil
}

func (s Secret) String() string {
	return "[redacted]"
}
