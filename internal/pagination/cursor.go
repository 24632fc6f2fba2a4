package pagination

import (
	"net/url"
	"regexp"
	"strings"
)

// TokenParam is the query parameter upstream list endpoints read the cursor from
const TokenParam = "page_token"

// Cursor is an opaque continuation token for resuming a paginated listing.
// The zero value means "start from the first page". Cursors are only ever
// produced by ParseNextCursor and handed back to the upstream unmodified.
type Cursor struct {
	token string
}

// IsZero reports whether the cursor points at the first page
func (c Cursor) IsZero() bool {
	return c.token == ""
}

// Apply sets the cursor on an outgoing list request's query
func (c Cursor) Apply(query url.Values) {
	if c.token == "" {
		return
	}
	query.Set(TokenParam, c.token)
}

var (
	// <https://host/admin/identities?page_size=250&page_token=abc>; rel="next"
	linkPattern  = regexp.MustCompile(`<([^>]*)>\s*;\s*rel="?([^";,]*)"?`)
	tokenPattern = regexp.MustCompile(`[?&]` + TokenParam + `=([^&#>]*)`)
)

// ParseNextCursor extracts the page_token of the rel="next" link from a Link
// header value. It returns false when the header has no next link, which
// signals the last page.
func ParseNextCursor(link string) (Cursor, bool) {
	if link == "" {
		return Cursor{}, false
	}
	for _, m := range linkPattern.FindAllStringSubmatch(link, -1) {
		if !hasRel(m[2], "next") {
			continue
		}
		tm := tokenPattern.FindStringSubmatch(m[1])
		if tm == nil || tm[1] == "" {
			continue
		}
		token := tm[1]
		if unescaped, err := url.QueryUnescape(token); err == nil {
			token = unescaped
		}
		return Cursor{token: token}, true
	}
	return Cursor{}, false
}

func hasRel(rels, want string) bool {
	for _, r := range strings.Fields(rels) {
		if strings.EqualFold(r, want) {
			return true
		}
	}
	return false
}
