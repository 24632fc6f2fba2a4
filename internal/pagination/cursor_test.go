package pagination

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseNextCursor(t *testing.T) {
	tests := []struct {
		name   string
		link   string
		want   string
		wantOK bool
	}{
		{
			name:   "single next link",
			link:   `<https://kratos.test/admin/identities?page_token=abc&page_size=250>; rel="next"`,
			want:   "abc",
			wantOK: true,
		},
		{
			name:   "token not first param",
			link:   `</admin/identities?page_size=250&page_token=eyJvZmZzZXQiOiIyNTAifQ>; rel="next"`,
			want:   "eyJvZmZzZXQiOiIyNTAifQ",
			wantOK: true,
		},
		{
			name:   "first and next links",
			link:   `</admin/identities?page_size=2&page_token=first>; rel="first",</admin/identities?page_size=2&page_token=second>; rel="next"`,
			want:   "second",
			wantOK: true,
		},
		{
			name:   "percent encoded token",
			link:   `</admin/sessions?page_token=a%3D%3D&page_size=1>; rel="next"`,
			want:   "a==",
			wantOK: true,
		},
		{
			name: "only first link",
			link: `</admin/identities?page_size=2&page_token=first>; rel="first"`,
		},
		{
			name: "next link without token",
			link: `</admin/identities?page_size=2>; rel="next"`,
		},
		{
			name: "empty header",
			link: "",
		},
		{
			name: "garbage",
			link: "not a link header",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseNextCursor(tt.link)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got.token)
			assert.Equal(t, !tt.wantOK, got.IsZero())
		})
	}
}

func TestCursorApply(t *testing.T) {
	q := url.Values{}
	Cursor{}.Apply(q)
	assert.Empty(t, q.Get(TokenParam))

	c, ok := ParseNextCursor(`</admin/sessions?page_token=a%3D%3D>; rel="next"`)
	assert.True(t, ok)
	c.Apply(q)
	assert.Equal(t, "page_token=a%3D%3D", q.Encode())
}
