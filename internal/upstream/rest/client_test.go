package rest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/warden/internal/domain"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c := NewClient("test", srv.URL+"/", "secret", nil)
	c.SetRetryDelay(time.Millisecond)
	return c
}

func TestDo_SendsBearerToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "/admin/identities", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page_size"))
		w.Header().Set("Link", `<http://x/admin/identities?page_token=abc>; rel="next"`)
		w.Write([]byte(`[]`))
	})

	resp, err := c.Do(context.Background(), Request{
		Method: http.MethodGet,
		Path:   "/admin/identities",
		Query:  map[string][]string{"page_size": {"2"}},
	})
	require.NoError(t, err)
	assert.Contains(t, resp.Header.Get("Link"), "page_token=abc")
}

func TestDo_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{}`))
	})

	_, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/health"})
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestDo_GivesUpAfterRetries(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"code":500,"message":"database unavailable"}}`))
	})

	_, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/x"})
	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusInternalServerError))
	assert.Contains(t, err.Error(), "database unavailable")
	assert.Equal(t, int32(maxRetries+1), calls.Load())
}

func TestDo_MapsStatusCodes(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, domain.ErrAuthFailed},
		{http.StatusForbidden, domain.ErrAuthFailed},
		{http.StatusNotFound, domain.ErrNotFound},
		{http.StatusTooManyRequests, domain.ErrRateLimited},
	}
	for _, tc := range cases {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
			})
			_, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/x"})
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestDo_OfflineServer(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	_, err := NewClient("test", srv.URL, "", nil).Do(context.Background(), Request{Method: http.MethodGet, Path: "/"})
	assert.ErrorIs(t, err, domain.ErrServerOffline)
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "The request was malformed: state is invalid",
		errorMessage(400, []byte(`{"error":{"code":400,"message":"The request was malformed","reason":"state is invalid"}}`)))
	assert.Equal(t, "invalid_request: token missing",
		errorMessage(400, []byte(`{"error":"invalid_request","error_description":"token missing"}`)))
	assert.Equal(t, "Conflict", errorMessage(409, nil))
}
