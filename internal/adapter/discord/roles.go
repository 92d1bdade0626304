package discord

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/purochile/pcbot/internal/ports"
)

// RoleChecker grants the staff capability to members holding a configured
// role, matched by id or by case-insensitive name
type RoleChecker struct {
	session   Session
	roleIDs   map[string]struct{}
	roleNames map[string]struct{}
}

// NewRoleChecker creates a role-based capability checker
func NewRoleChecker(session Session, roleIDs, roleNames []string) *RoleChecker {
	c := &RoleChecker{
		session:   session,
		roleIDs:   make(map[string]struct{}, len(roleIDs)),
		roleNames: make(map[string]struct{}, len(roleNames)),
	}
	for _, id := range roleIDs {
		c.roleIDs[id] = struct{}{}
	}
	for _, name := range roleNames {
		c.roleNames[strings.ToLower(strings.TrimSpace(name))] = struct{}{}
	}
	return c
}

// IsStaff implements ports.CapabilityChecker
func (c *RoleChecker) IsStaff(ctx context.Context, caller ports.Identity) (bool, error) {
	if len(caller.RoleIDs) == 0 {
		return false, nil
	}
	for _, id := range caller.RoleIDs {
		if _, ok := c.roleIDs[id]; ok {
			return true, nil
		}
	}
	if len(c.roleNames) == 0 || caller.GuildID == "" {
		return false, nil
	}

	roles, err := c.session.GuildRoles(caller.GuildID, discordgo.WithContext(ctx))
	if err != nil {
		return false, fmt.Errorf("failed to fetch guild roles: %w", err)
	}
	held := make(map[string]struct{}, len(caller.RoleIDs))
	for _, id := range caller.RoleIDs {
		held[id] = struct{}{}
	}
	for _, role := range roles {
		if _, ok := held[role.ID]; !ok {
			continue
		}
		if _, ok := c.roleNames[strings.ToLower(role.Name)]; ok {
			return true, nil
		}
	}
	return false, nil
}

var _ ports.CapabilityChecker = (*RoleChecker)(nil)
