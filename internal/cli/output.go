package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/mmcdole/warden/internal/domain"
	"github.com/mmcdole/warden/internal/introspect"
)

const timeLayout = "2006-01-02 15:04"

// Output formats accepted by -o
const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

func validateFormat(format string) error {
	switch format {
	case formatTable, formatJSON, formatYAML:
		return nil
	default:
		return fmt.Errorf("unknown output format %q (want table, json or yaml)", format)
	}
}

// render writes rows as a table, or views as JSON/YAML
func render(w io.Writer, format string, views any, header []string, rows [][]string) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(views)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(views); err != nil {
			return err
		}
		return enc.Close()
	default:
		data := pterm.TableData{header}
		data = append(data, rows...)
		return pterm.DefaultTable.WithHasHeader().WithWriter(w).WithData(data).Render()
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(timeLayout)
}

type identityView struct {
	ID        string         `json:"id" yaml:"id"`
	Name      string         `json:"name" yaml:"name"`
	State     string         `json:"state" yaml:"state"`
	SchemaID  string         `json:"schema_id,omitempty" yaml:"schema_id,omitempty"`
	Traits    map[string]any `json:"traits,omitempty" yaml:"traits,omitempty"`
	CreatedAt time.Time      `json:"created_at" yaml:"created_at"`
}

func renderIdentities(w io.Writer, format string, identities []*domain.Identity) error {
	views := make([]identityView, len(identities))
	rows := make([][]string, len(identities))
	for i, ident := range identities {
		views[i] = identityView{
			ID:        ident.ID,
			Name:      ident.DisplayName(),
			State:     string(ident.State),
			SchemaID:  ident.SchemaID,
			Traits:    ident.Traits,
			CreatedAt: ident.CreatedAt,
		}
		rows[i] = []string{ident.ID, ident.DisplayName(), string(ident.State), ident.SchemaID, formatTime(ident.CreatedAt)}
	}
	return render(w, format, views, []string{"ID", "NAME", "STATE", "SCHEMA", "CREATED"}, rows)
}

type sessionView struct {
	ID              string    `json:"id" yaml:"id"`
	IdentityID      string    `json:"identity_id" yaml:"identity_id"`
	Active          bool      `json:"active" yaml:"active"`
	AuthenticatedAt time.Time `json:"authenticated_at" yaml:"authenticated_at"`
	ExpiresAt       time.Time `json:"expires_at" yaml:"expires_at"`
	Devices         []string  `json:"devices,omitempty" yaml:"devices,omitempty"`
}

func renderSessions(w io.Writer, format string, sessions []*domain.Session) error {
	views := make([]sessionView, len(sessions))
	rows := make([][]string, len(sessions))
	for i, s := range sessions {
		var devices []string
		for _, d := range s.Devices {
			devices = append(devices, strings.TrimSpace(d.IPAddress+" "+d.UserAgent))
		}
		views[i] = sessionView{
			ID:              s.ID,
			IdentityID:      s.IdentityID,
			Active:          s.Active,
			AuthenticatedAt: s.AuthenticatedAt,
			ExpiresAt:       s.ExpiresAt,
			Devices:         devices,
		}
		rows[i] = []string{s.ID, s.IdentityID, fmt.Sprint(s.Active), formatTime(s.AuthenticatedAt), formatTime(s.ExpiresAt)}
	}
	return render(w, format, views, []string{"ID", "IDENTITY", "ACTIVE", "AUTHENTICATED", "EXPIRES"}, rows)
}

type clientView struct {
	ClientID     string   `json:"client_id" yaml:"client_id"`
	ClientName   string   `json:"client_name,omitempty" yaml:"client_name,omitempty"`
	Owner        string   `json:"owner,omitempty" yaml:"owner,omitempty"`
	GrantTypes   []string `json:"grant_types,omitempty" yaml:"grant_types,omitempty"`
	RedirectURIs []string `json:"redirect_uris,omitempty" yaml:"redirect_uris,omitempty"`
	Scope        string   `json:"scope,omitempty" yaml:"scope,omitempty"`
}

func renderClients(w io.Writer, format string, clients []*domain.OAuth2Client) error {
	views := make([]clientView, len(clients))
	rows := make([][]string, len(clients))
	for i, c := range clients {
		views[i] = clientView{
			ClientID:     c.ClientID,
			ClientName:   c.ClientName,
			Owner:        c.Owner,
			GrantTypes:   c.GrantTypes,
			RedirectURIs: c.RedirectURIs,
			Scope:        c.Scope,
		}
		rows[i] = []string{c.ClientID, c.DisplayName(), c.Owner, strings.Join(c.GrantTypes, ","), c.Scope}
	}
	return render(w, format, views, []string{"CLIENT ID", "NAME", "OWNER", "GRANTS", "SCOPE"}, rows)
}

type tokenView struct {
	Key       string    `json:"key" yaml:"key"`
	Active    bool      `json:"active" yaml:"active"`
	Subject   string    `json:"sub,omitempty" yaml:"sub,omitempty"`
	ClientID  string    `json:"client_id,omitempty" yaml:"client_id,omitempty"`
	Scope     string    `json:"scope,omitempty" yaml:"scope,omitempty"`
	TokenUse  string    `json:"token_use,omitempty" yaml:"token_use,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitempty" yaml:"expires_at,omitempty"`
}

func renderTokens(w io.Writer, format string, entries []introspect.Entry) error {
	views := make([]tokenView, len(entries))
	rows := make([][]string, len(entries))
	for i, e := range entries {
		r := e.Result
		views[i] = tokenView{
			Key:       e.Key,
			Active:    r.Active,
			Subject:   r.Subject,
			ClientID:  r.ClientID,
			Scope:     r.Scope,
			TokenUse:  r.TokenUse,
			ExpiresAt: r.ExpiresAt,
		}
		rows[i] = []string{e.Key, fmt.Sprint(r.Active), r.Subject, r.ClientID, r.Scope, formatTime(r.ExpiresAt)}
	}
	return render(w, format, views, []string{"TOKEN", "ACTIVE", "SUBJECT", "CLIENT", "SCOPE", "EXPIRES"}, rows)
}

// progress returns a page-progress callback and a stop func. On a terminal it
// drives a pterm spinner; otherwise progress is only logged.
func (a *App) progress(noun string) (domain.ProgressFunc, func(summary domain.FetchSummary, err error)) {
	f, ok := a.errOut.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return nil, func(summary domain.FetchSummary, err error) {
			if err == nil && !summary.Complete {
				a.warning().Printf("Showing the first %d %s; the page budget ran out\n", summary.Count, noun)
			}
		}
	}

	spinner, err := pterm.DefaultSpinner.WithWriter(a.errOut).Start(fmt.Sprintf("Fetching %s...", noun))
	if err != nil {
		return nil, func(domain.FetchSummary, error) {}
	}
	onProgress := func(loaded, page int) {
		spinner.UpdateText(fmt.Sprintf("Fetched %d %s (page %d)", loaded, noun, page))
	}
	stop := func(summary domain.FetchSummary, err error) {
		switch {
		case err != nil:
			spinner.Fail(fmt.Sprintf("Fetch failed after %d %s", summary.Count, noun))
		case summary.FromCache:
			spinner.Success(fmt.Sprintf("%d %s (cached)", summary.Count, noun))
		case !summary.Complete:
			spinner.Warning(fmt.Sprintf("Showing the first %d %s; the page budget ran out", summary.Count, noun))
		default:
			spinner.Success(fmt.Sprintf("%d %s", summary.Count, noun))
		}
	}
	return onProgress, stop
}
