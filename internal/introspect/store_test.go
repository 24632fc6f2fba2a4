package introspect

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/warden/internal/domain"
)

func fixedClock(start time.Time) func() time.Time {
	t := start
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func TestKey_Truncates(t *testing.T) {
	assert.Equal(t, "short", Key("short"))
	assert.Equal(t, "ory_at_abcde…", Key("ory_at_abcdefghijklmnop"))
}

func TestStore_AddRemoveClear(t *testing.T) {
	s := NewStore()
	s.now = fixedClock(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))

	first := s.Add("ory_at_first_token_value", &domain.Introspection{Active: true, Subject: "u1"})
	s.Add("ory_at_second_token_value", &domain.Introspection{Active: false})
	require.Equal(t, 2, s.Len())

	got, ok := s.Get(first.Key)
	require.True(t, ok)
	assert.Equal(t, "u1", got.Result.Subject)

	list := s.List()
	require.Len(t, list, 2)
	assert.Equal(t, Key("ory_at_second_token_value"), list[0].Key, "newest first")

	assert.True(t, s.Remove(first.Key))
	assert.False(t, s.Remove(first.Key))
	assert.Equal(t, 1, s.Len())

	s.Clear()
	assert.Zero(t, s.Len())
	assert.Empty(t, s.List())
}

func TestStore_AddReplacesSameKey(t *testing.T) {
	s := NewStore()
	s.Add("ory_at_same_prefix_AAAA", &domain.Introspection{Subject: "old"})
	s.Add("ory_at_same_prefix_AAAA", &domain.Introspection{Subject: "new"})

	require.Equal(t, 1, s.Len())
	assert.Equal(t, "new", s.List()[0].Result.Subject)
}

func TestStore_InstancesAreIndependent(t *testing.T) {
	a, b := NewStore(), NewStore()
	a.Add("token-a", nil)
	assert.Equal(t, 1, a.Len())
	assert.Zero(t, b.Len())
}
