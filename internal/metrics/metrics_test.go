package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareLabels(t *testing.T) {
	m := New()
	h := m.Middleware([]string{"/signin"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	for _, p := range []string{"/signin", "/random/1", "/random/2"} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, p, nil))
	}
	require.Equal(t, 2, testutil.CollectAndCount(m.requestDuration))
	m.AuthAttempt("signin", true)
	m.AuthAttempt("signin", false)
	m.AuthAttempt("signin", false)
	require.Equal(t, float64(2), testutil.ToFloat64(m.authAttempts.WithLabelValues("signin", "false")))
	m.ObserveKDF("hash", 10*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.True(t, strings.Contains(body, `path="unmatched"`))
	require.True(t, strings.Contains(body, `status="418"`))
	require.True(t, strings.Contains(body, "packbox_kdf_duration_seconds"))
}
