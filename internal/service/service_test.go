package service

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/worldinfo/backend/internal/domain"
	"github.com/worldinfo/backend/internal/upstream"
)

// fakeProvider serves a fixed status and body and records the last request
type fakeProvider struct {
	*httptest.Server
	calls   atomic.Int32
	lastURL atomic.Value
}

func newFakeProvider(t *testing.T, status int, body string) *fakeProvider {
	t.Helper()
	fp := &fakeProvider{}
	fp.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fp.calls.Add(1)
		fp.lastURL.Store(r.URL.String())
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(fp.Close)
	return fp
}

func (fp *fakeProvider) LastURL() string {
	v, _ := fp.lastURL.Load().(string)
	return v
}

func testClient(provider string) *upstream.Client {
	return upstream.NewClient(provider, 2*time.Second)
}

func requireKind(t *testing.T, err error, kind domain.UpstreamErrorKind) {
	t.Helper()
	var upErr *domain.UpstreamError
	require.True(t, errors.As(err, &upErr), "expected *domain.UpstreamError, got %v", err)
	require.Equal(t, kind, upErr.Kind)
}
