package kratos

import (
	"github.com/mmcdole/warden/internal/domain"
)

// MapIdentity converts an admin API identity to the domain type
func MapIdentity(dto IdentityDTO) *domain.Identity {
	state := domain.IdentityState(dto.State)
	if !state.Valid() {
		state = domain.IdentityStateActive
	}
	return &domain.Identity{
		ID:        dto.ID,
		SchemaID:  dto.SchemaID,
		State:     state,
		Traits:    dto.Traits,
		CreatedAt: dto.CreatedAt,
		UpdatedAt: dto.UpdatedAt,
	}
}

// MapIdentities converts a page of identities
func MapIdentities(dtos []IdentityDTO) []*domain.Identity {
	out := make([]*domain.Identity, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, MapIdentity(d))
	}
	return out
}

// MapSession converts an admin API session to the domain type
func MapSession(dto SessionDTO) *domain.Session {
	s := &domain.Session{
		ID:              dto.ID,
		Active:          dto.Active,
		AuthenticatedAt: dto.AuthenticatedAt,
		IssuedAt:        dto.IssuedAt,
		ExpiresAt:       dto.ExpiresAt,
	}
	if dto.Identity != nil {
		s.IdentityID = dto.Identity.ID
	}
	for _, d := range dto.Devices {
		s.Devices = append(s.Devices, domain.Device{
			IPAddress: d.IPAddress,
			UserAgent: d.UserAgent,
			Location:  d.Location,
		})
	}
	return s
}

// MapSessions converts a page of sessions
func MapSessions(dtos []SessionDTO) []*domain.Session {
	out := make([]*domain.Session, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, MapSession(d))
	}
	return out
}
