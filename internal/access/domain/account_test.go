package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vistoriapro/vistoria/internal/access/domain"
)

func TestRoleOrdering(t *testing.T) {
	cases := []struct {
		role, min domain.Role
		want      bool
	}{
		{domain.RoleUser, domain.RoleUser, true},
		{domain.RoleUser, domain.RoleAdmin, false},
		{domain.RoleAdmin, domain.RoleUser, true},
		{domain.RoleAdmin, domain.RoleSuperAdmin, false},
		{domain.RoleSuperAdmin, domain.RoleAdmin, true},
		{domain.Role("owner"), domain.RoleUser, false},
		{domain.RoleSuperAdmin, domain.Role(""), false},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, tc.role.AtLeast(tc.min), "%s >= %s", tc.role, tc.min)
	}

	require.False(t, domain.RoleUser.IsStaff())
	require.True(t, domain.RoleAdmin.IsStaff())
}

func TestParseRole(t *testing.T) {
	r, err := domain.ParseRole(" Super_Admin ")
	require.NoError(t, err)
	require.Equal(t, domain.RoleSuperAdmin, r)

	_, err = domain.ParseRole("root")
	require.Error(t, err)
}

func TestGrantActive(t *testing.T) {
	now := time.Now()
	g := domain.Grant{ExpiresAt: now}
	require.False(t, g.Active(now))
	require.True(t, g.Active(now.Add(-time.Nanosecond)))
}
