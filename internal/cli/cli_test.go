package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/mmcdole/warden/internal/config"
)

const (
	idAda   = "9f425a8d-7efc-4768-8f23-7647a74fdf13"
	idBob   = "1b7e3a55-5c2f-4a8e-9d7e-2f1c8b9d0a11"
	idCarol = "c3d4e5f6-0718-4a2b-8c9d-0e1f2a3b4c5d"
)

// fakeOry serves the admin endpoints warden talks to
type fakeOry struct {
	mu       sync.Mutex
	patches  map[string]string // identity id -> requested state
	deleted  []string
	failIDs  map[string]string // identity id -> error message
	sessions string
}

func newFakeOry(t *testing.T) (*fakeOry, *httptest.Server) {
	t.Helper()
	f := &fakeOry{patches: map[string]string{}, failIDs: map[string]string{}}
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health/alive", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"status":"ok"}`)
	})
	mux.HandleFunc("GET /version", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"version":"v1.2.0"}`)
	})
	mux.HandleFunc("GET /admin/identities", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page_token") == "" {
			w.Header().Set("Link", `</admin/identities?page_size=250&page_token=second>; rel="next"`)
			fmt.Fprintf(w, `[{"id":%q,"state":"active","traits":{"email":"ada@example.com"}},
				{"id":%q,"state":"active","traits":{"email":"bob@example.com"}}]`, idAda, idBob)
			return
		}
		fmt.Fprintf(w, `[{"id":%q,"state":"inactive","traits":{"username":"carol"}}]`, idCarol)
	})
	mux.HandleFunc("PATCH /admin/identities/{id}", func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		f.mu.Lock()
		defer f.mu.Unlock()
		if msg, ok := f.failIDs[id]; ok {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprintf(w, `{"error":{"code":400,"message":%q}}`, msg)
			return
		}
		var ops []struct {
			Value string `json:"value"`
		}
		json.NewDecoder(r.Body).Decode(&ops)
		f.patches[id] = ops[0].Value
		fmt.Fprintf(w, `{"id":%q}`, id)
	})
	mux.HandleFunc("GET /admin/sessions", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, f.sessions)
	})
	mux.HandleFunc("GET /admin/clients", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[{"client_id":"billing","client_name":"Billing","grant_types":["client_credentials"]}]`)
	})
	mux.HandleFunc("DELETE /admin/clients/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.deleted = append(f.deleted, r.PathValue("id"))
		f.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("POST /admin/oauth2/introspect", func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		if r.PostForm.Get("token") == "ory_at_expired_token_value" {
			io.WriteString(w, `{"active":false}`)
			return
		}
		io.WriteString(w, `{"active":true,"sub":"ada","client_id":"billing","token_use":"access_token"}`)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return f, srv
}

func writeConfig(t *testing.T, serverURL string) string {
	t.Helper()
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Identity.URL = serverURL
	cfg.OAuth2.URL = serverURL
	cfg.Pagination.PageDelay = -1
	cfg.Cache.Dir = ""
	cfg.Logging.File = filepath.Join(dir, "warden.log")
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, config.SaveConfig(cfg, path))
	return path
}

func runCLI(t *testing.T, cfgFile, stdin string, args ...string) (string, string, error) {
	t.Helper()
	app := NewApp("test")
	app.isTerminal = func() bool { return false }
	defer app.Close()

	root := app.RootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--config", cfgFile}, args...))

	err := root.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestIdentitiesList_JSONAcrossPages(t *testing.T) {
	t.Chdir(t.TempDir())
	_, srv := newFakeOry(t)
	cfg := writeConfig(t, srv.URL)

	out, _, err := runCLI(t, cfg, "", "identities", "list", "-o", "json")
	require.NoError(t, err)

	var got []identityView
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 3)
	assert.Equal(t, "ada@example.com", got[0].Name)
	assert.Equal(t, "inactive", got[2].State)

	out, _, err = runCLI(t, cfg, "", "identities", "list", "--filter", "carol", "-o", "json")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 1)
	assert.Equal(t, idCarol, got[0].ID)
}

func TestIdentitiesList_RejectsUnknownFormat(t *testing.T) {
	t.Chdir(t.TempDir())
	_, srv := newFakeOry(t)
	cfg := writeConfig(t, srv.URL)

	_, _, err := runCLI(t, cfg, "", "identities", "list", "-o", "xml")
	assert.ErrorContains(t, err, "unknown output format")
}

func TestBulk_RunsEveryItemAndReportsFailures(t *testing.T) {
	t.Chdir(t.TempDir())
	fake, srv := newFakeOry(t)
	fake.failIDs[idBob] = "identity is locked"
	cfg := writeConfig(t, srv.URL)

	_, stderr, err := runCLI(t, cfg, "", "identities", "bulk", "deactivate", idAda, idBob, idCarol, "--yes")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "identity is locked")
	assert.Contains(t, stderr, "2 succeeded, 1 failed")

	assert.Equal(t, map[string]string{idAda: "inactive", idCarol: "inactive"}, fake.patches)
}

func TestBulk_RequiresYesWithoutTerminal(t *testing.T) {
	t.Chdir(t.TempDir())
	fake, srv := newFakeOry(t)
	cfg := writeConfig(t, srv.URL)

	_, _, err := runCLI(t, cfg, "", "identities", "bulk", "activate", idAda)
	assert.ErrorContains(t, err, "without --yes")
	assert.Empty(t, fake.patches)
}

func TestBulk_ValidatesInputBeforeCalling(t *testing.T) {
	t.Chdir(t.TempDir())
	fake, srv := newFakeOry(t)
	cfg := writeConfig(t, srv.URL)

	_, _, err := runCLI(t, cfg, "", "identities", "bulk", "activate", idAda, "not-a-uuid", "--yes")
	assert.ErrorContains(t, err, "not-a-uuid")

	_, _, err = runCLI(t, cfg, "", "identities", "bulk", "purge", idAda, "--yes")
	assert.ErrorContains(t, err, "unknown bulk operation")
	assert.Empty(t, fake.patches)
}

func TestSessionsList_StopsAtWindow(t *testing.T) {
	t.Chdir(t.TempDir())
	fake, srv := newFakeOry(t)
	now := time.Now().UTC()
	fake.sessions = fmt.Sprintf(`[
		{"id":"s1","active":true,"authenticated_at":%q,"identity":{"id":%q}},
		{"id":"s2","active":true,"authenticated_at":%q,"identity":{"id":%q}},
		{"id":"s3","active":true,"authenticated_at":%q,"identity":{"id":%q}}]`,
		now.Add(-time.Hour).Format(time.RFC3339), idAda,
		now.Add(-30*time.Hour).Format(time.RFC3339), idBob,
		now.Add(-72*time.Hour).Format(time.RFC3339), idCarol)
	cfg := writeConfig(t, srv.URL)

	out, _, err := runCLI(t, cfg, "", "sessions", "list", "--since", "48h", "-o", "yaml")
	require.NoError(t, err)

	var got []sessionView
	require.NoError(t, yaml.Unmarshal([]byte(out), &got))
	require.Len(t, got, 2)
	assert.Equal(t, idBob, got[1].IdentityID)

	out, _, err = runCLI(t, cfg, "", "sessions", "list", "--all", "-o", "yaml")
	require.NoError(t, err)
	require.NoError(t, yaml.Unmarshal([]byte(out), &got))
	assert.Len(t, got, 3)
}

func TestTokensIntrospect(t *testing.T) {
	t.Chdir(t.TempDir())
	_, srv := newFakeOry(t)
	cfg := writeConfig(t, srv.URL)

	out, _, err := runCLI(t, cfg, "", "tokens", "introspect", "ory_at_live_token_value", "ory_at_expired_token_value", "-o", "json")
	require.NoError(t, err)
	assert.NotContains(t, out, "ory_at_live_token_value", "full tokens are never printed")

	var got []tokenView
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 2)
	active := map[string]bool{}
	for _, v := range got {
		active[v.Key] = v.Active
	}
	assert.Equal(t, map[string]bool{"ory_at_live_…": true, "ory_at_expir…": false}, active)
}

func TestClients_ListAndDelete(t *testing.T) {
	t.Chdir(t.TempDir())
	fake, srv := newFakeOry(t)
	cfg := writeConfig(t, srv.URL)

	out, _, err := runCLI(t, cfg, "", "clients", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "billing")
	assert.Contains(t, out, "Billing")

	_, _, err = runCLI(t, cfg, "", "clients", "delete", "billing")
	assert.ErrorContains(t, err, "without --yes")

	_, stderr, err := runCLI(t, cfg, "", "clients", "delete", "billing", "--yes")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Deleted client billing")
	assert.Equal(t, []string{"billing"}, fake.deleted)
}

func TestLogin_ProbesAndSaves(t *testing.T) {
	t.Chdir(t.TempDir())
	_, srv := newFakeOry(t)
	cfgFile := filepath.Join(t.TempDir(), "config.yaml")

	_, stderr, err := runCLI(t, cfgFile, "ory_pat_identity\n\n",
		"login", "--identity-url", srv.URL+"/", "--oauth2-url", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, stderr, "v1.2.0")

	cfg, err := config.LoadConfig(cfgFile)
	require.NoError(t, err)
	assert.Equal(t, srv.URL, cfg.Identity.URL)
	assert.Equal(t, "ory_pat_identity", cfg.Identity.Token)
	assert.Empty(t, cfg.OAuth2.Token)
}

func TestLogin_UnreachableService(t *testing.T) {
	t.Chdir(t.TempDir())
	dead := httptest.NewServer(http.NotFoundHandler())
	dead.Close()
	cfgFile := filepath.Join(t.TempDir(), "config.yaml")

	_, _, err := runCLI(t, cfgFile, "", "login", "--identity-url", dead.URL, "--oauth2-url", dead.URL)
	assert.ErrorContains(t, err, "not reachable")
}
