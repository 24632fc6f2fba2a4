package hydra

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/warden/internal/pagination"
)

func newServer(t *testing.T, mux *http.ServeMux) *Client {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "", nil)
}

func TestListClients(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /admin/clients", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "tok", r.URL.Query().Get("page_token"))
		assert.Empty(t, r.Header.Get("Authorization"))
		w.Header().Set("Link", `</admin/clients?page_token=first>; rel="first"`)
		io.WriteString(w, `[{"client_id":"cli-1","client_name":"Billing","grant_types":["client_credentials"]},{"client_id":"cli-2"}]`)
	})
	c := newServer(t, mux)

	cursor, ok := pagination.ParseNextCursor(`</admin/clients?page_token=tok>; rel="next"`)
	require.True(t, ok)

	page, err := c.ListClients(context.Background(), cursor, 50)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "Billing", page.Items[0].DisplayName())
	assert.Equal(t, "cli-2", page.Items[1].DisplayName())

	_, more := pagination.ParseNextCursor(page.Link)
	assert.False(t, more)
}

func TestIntrospectToken(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /admin/oauth2/introspect", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "ory_at_abc", r.PostForm.Get("token"))
		io.WriteString(w, `{"active":true,"sub":"user-1","client_id":"cli-1","token_use":"access_token","exp":1714557600}`)
	})
	c := newServer(t, mux)

	got, err := c.IntrospectToken(context.Background(), "ory_at_abc")
	require.NoError(t, err)
	assert.True(t, got.Active)
	assert.Equal(t, "access_token for user-1 (client cli-1)", got.Summary())
	assert.Equal(t, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), got.ExpiresAt)
	assert.True(t, got.IssuedAt.IsZero())
}

func TestDeleteClient_AbsentCountsAsDeleted(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("DELETE /admin/clients/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	c := newServer(t, mux)

	assert.NoError(t, c.DeleteClient(context.Background(), "cli-1"))
}
