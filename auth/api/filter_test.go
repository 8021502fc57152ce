package api

import (
	"fmt"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/andrebq/packbox/auth"
	"github.com/andrebq/packbox/internal/httpjson"
	"github.com/andrebq/packbox/internal/testutil"
	"github.com/steinfletcher/apitest"
	jsonpath "github.com/steinfletcher/apitest-jsonpath"
)

func TestProtect(t *testing.T) {
	tokens := auth.NewIssuer(testutil.TestSecret, time.Hour)
	sr := NewRealm(nil, nil, tokens)
	var okCount, failCount uint32
	sr.RecordAttempts(func(event string, success bool) {
		if event != "token" {
			t.Errorf("unexpected event %v", event)
		}
		if success {
			atomic.AddUint32(&okCount, 1)
		} else {
			atomic.AddUint32(&failCount, 1)
		}
	})
	var count uint32
	protected := sr.Protect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddUint32(&count, 1)
		id, ok := auth.IdentityFromContext(r.Context())
		if !ok {
			httpjson.Message(w, http.StatusInternalServerError, "no identity")
			return
		}
		httpjson.Message(w, http.StatusOK, id.Username)
	}))

	apitest.Handler(protected).Post("/").Expect(t).
		Status(http.StatusUnauthorized).
		Assert(jsonpath.Equal("$.message", "Missing token")).
		End()
	apitest.Handler(protected).Post("/").Header("Authorization", "Bearer").Expect(t).
		Status(http.StatusUnauthorized).
		Assert(jsonpath.Equal("$.message", "Missing token")).
		End()
	apitest.Handler(protected).Post("/").Header("Authorization", "Bearer garbage").Expect(t).
		Status(http.StatusUnauthorized).
		Assert(jsonpath.Equal("$.message", "Invalid token")).
		End()

	token, err := tokens.Issue("bob")
	if err != nil {
		t.Fatal(err)
	}
	apitest.Handler(protected).Post("/").Header("Authorization", fmt.Sprintf("Basic %v", token)).Expect(t).
		Status(http.StatusUnauthorized).
		Assert(jsonpath.Equal("$.message", "Invalid token")).
		End()
	apitest.Handler(protected).Post("/").Header("Authorization", fmt.Sprintf("Bearer %v extra", token)).Expect(t).
		Status(http.StatusUnauthorized).
		Assert(jsonpath.Equal("$.message", "Invalid token")).
		End()

	expired := tokens.WithClock(func() time.Time { return time.Now().Add(-2 * time.Hour) })
	old, err := expired.Issue("bob")
	if err != nil {
		t.Fatal(err)
	}
	apitest.Handler(protected).Post("/").Header("Authorization", fmt.Sprintf("Bearer %v", old)).Expect(t).
		Status(http.StatusUnauthorized).
		Assert(jsonpath.Equal("$.message", "Invalid token")).
		End()

	apitest.Handler(protected).Post("/").Header("Authorization", fmt.Sprintf("Bearer %v", token)).Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal("$.message", "bob")).
		End()
	if count != 1 {
		t.Fatal("Protected endpoint should have been called only once")
	}
	if okCount != 1 || failCount != 6 {
		t.Fatalf("unexpected attempt counts ok=%v fail=%v", okCount, failCount)
	}
}

func TestBearerToken(t *testing.T) {
	for _, tc := range []struct {
		hdr    string
		scheme string
		token  string
		ok     bool
	}{
		{"", "", "", false},
		{"Bearer", "", "", false},
		{"  Bearer   abc  ", "Bearer", "abc", true},
		{"Basic abc", "Basic", "abc", true},
		{"Bearer a b", "Bearer", "", true},
	} {
		scheme, token, ok := bearerToken(tc.hdr)
		if scheme != tc.scheme || token != tc.token || ok != tc.ok {
			t.Errorf("bearerToken(%q) = %q, %q, %v", tc.hdr, scheme, token, ok)
		}
	}
}
