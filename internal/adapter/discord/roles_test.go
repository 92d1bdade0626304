package discord

import (
	"context"
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/purochile/pcbot/internal/ports"
)

func TestRoleChecker_ByID(t *testing.T) {
	c := NewRoleChecker(&fakeSession{}, []string{"r1"}, nil)
	ctx := context.Background()

	staff, err := c.IsStaff(ctx, ports.Identity{GuildID: "g1", RoleIDs: []string{"r0", "r1"}})
	require.NoError(t, err)
	assert.True(t, staff)

	staff, err = c.IsStaff(ctx, ports.Identity{GuildID: "g1", RoleIDs: []string{"r0"}})
	require.NoError(t, err)
	assert.False(t, staff)

	staff, err = c.IsStaff(ctx, ports.Identity{GuildID: "g1"})
	require.NoError(t, err)
	assert.False(t, staff)
}

func TestRoleChecker_ByName(t *testing.T) {
	session := &fakeSession{roles: []*discordgo.Role{
		{ID: "r1", Name: "Member"},
		{ID: "r2", Name: "MODERADOR"},
	}}
	c := NewRoleChecker(session, nil, []string{"Staff", "moderador"})
	ctx := context.Background()

	staff, err := c.IsStaff(ctx, ports.Identity{GuildID: "g1", RoleIDs: []string{"r2"}})
	require.NoError(t, err)
	assert.True(t, staff)

	staff, err = c.IsStaff(ctx, ports.Identity{GuildID: "g1", RoleIDs: []string{"r1"}})
	require.NoError(t, err)
	assert.False(t, staff)

	staff, err = c.IsStaff(ctx, ports.Identity{RoleIDs: []string{"r2"}})
	require.NoError(t, err)
	assert.False(t, staff)
}

func TestRoleChecker_RoleFetchFailure(t *testing.T) {
	c := NewRoleChecker(&fakeSession{rolesErr: errors.New("rate limited")}, nil, []string{"staff"})

	_, err := c.IsStaff(context.Background(), ports.Identity{GuildID: "g1", RoleIDs: []string{"r1"}})

	assert.Error(t, err)
}
