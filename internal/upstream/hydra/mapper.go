package hydra

import (
	"time"

	"github.com/mmcdole/warden/internal/domain"
)

// MapClients converts a page of OAuth2 clients
func MapClients(dtos []ClientDTO) []*domain.OAuth2Client {
	out := make([]*domain.OAuth2Client, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, &domain.OAuth2Client{
			ClientID:     d.ClientID,
			ClientName:   d.ClientName,
			Owner:        d.Owner,
			GrantTypes:   d.GrantTypes,
			RedirectURIs: d.RedirectURIs,
			Scope:        d.Scope,
			CreatedAt:    d.CreatedAt,
			UpdatedAt:    d.UpdatedAt,
		})
	}
	return out
}

// MapIntrospection converts an introspection response
func MapIntrospection(dto IntrospectionDTO) *domain.Introspection {
	return &domain.Introspection{
		Active:    dto.Active,
		Subject:   dto.Subject,
		ClientID:  dto.ClientID,
		Scope:     dto.Scope,
		TokenUse:  dto.TokenUse,
		IssuedAt:  unixTime(dto.IssuedAt),
		ExpiresAt: unixTime(dto.ExpiresAt),
	}
}

func unixTime(sec int64) time.Time {
	if sec == 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0).UTC()
}
