package testutil

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/andrebq/packbox/auth"
	"github.com/andrebq/packbox/store"
)

type (
	TestLog interface {
		Fatal(...interface{})
		Log(...interface{})
	}
)

// AcquireStore opens a fresh sqlite backed store under a temporary
// directory, the returned func closes it and removes the directory.
func AcquireStore(ctx context.Context, t TestLog, name string) (*store.Store, func()) {
	dir, err := os.MkdirTemp("", "packbox-tests")
	if err != nil {
		t.Fatal(err)
	}
	st, err := store.Open(ctx, store.Options{
		Driver:   store.DriverSQLite,
		DSN:      filepath.Join(dir, name+".db"),
		CacheTTL: time.Minute,
	})
	if err != nil {
		os.RemoveAll(dir)
		t.Fatal(err)
	}
	return st, func() {
		err := st.Close()
		if err != nil {
			t.Log("unable to close store", err)
		}
		err = os.RemoveAll(dir)
		if err != nil {
			t.Log("unable to cleanup temp dir", dir)
		}
	}
}

// FastHasher returns a hasher with a cheap scrypt cost, verifiers it
// produces are only meant for tests.
func FastHasher() *auth.Hasher {
	p := auth.DefaultParams()
	p.N = 1 << 10
	return auth.NewHasher(p, 2)
}

// TestSecret is long enough to be accepted by auth.SecretFromEnv
var TestSecret = auth.Secret("packbox-test-secret")
