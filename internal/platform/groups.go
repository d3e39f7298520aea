package platform

import (
	"context"
	"fmt"
	"net/http"

	"groupkeeper-backend/internal/domain"
	"groupkeeper-backend/internal/ladder"
	"groupkeeper-backend/internal/logger"
)

type rolesResponse struct {
	GroupID int64              `json:"groupId"`
	Roles   []domain.GroupRole `json:"roles"`
}

type userGroupsResponse struct {
	Data []struct {
		Group struct {
			ID   int64  `json:"id"`
			Name string `json:"name"`
		} `json:"group"`
		Role domain.GroupRole `json:"role"`
	} `json:"data"`
}

type setRoleRequest struct {
	RoleID int64 `json:"roleId"`
}

// ListRoles returns the group's roles ordered by rank ascending. Any upstream
// failure yields an empty slice: callers must treat "no roles" as "no
// information", not as "role absent".
func (c *Client) ListRoles(ctx context.Context) []domain.GroupRole {
	resp, err := c.do(ctx, "list_roles", http.MethodGet, c.groupURL("/roles"), nil)
	if err != nil {
		logger.WarnContext(ctx, "Failed to list group roles", "group_id", c.groupID, "error", err)
		return []domain.GroupRole{}
	}

	var body rolesResponse
	if err := decode("list_roles", resp, &body); err != nil {
		logger.WarnContext(ctx, "Failed to decode group roles", "group_id", c.groupID, "error", err)
		return []domain.GroupRole{}
	}
	return ladder.Sorted(body.Roles)
}

// CurrentRole returns the role userID holds in the managed group, or nil when
// the user is not a member.
func (c *Client) CurrentRole(ctx context.Context, userID int64) (*domain.GroupRole, error) {
	url := fmt.Sprintf("%s/v2/users/%d/groups/roles", c.groupsURL, userID)
	resp, err := c.do(ctx, "current_role", http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	var body userGroupsResponse
	if err := decode("current_role", resp, &body); err != nil {
		return nil, err
	}
	for _, entry := range body.Data {
		if entry.Group.ID == c.groupID {
			role := entry.Role
			return &role, nil
		}
	}
	return nil, nil
}

// AcceptJoinRequest accepts userID's pending join request.
func (c *Client) AcceptJoinRequest(ctx context.Context, userID int64) error {
	_, err := c.do(ctx, "accept_join_request", http.MethodPost, c.groupURL(fmt.Sprintf("/join-requests/users/%d", userID)), nil)
	return err
}

// RemoveMember removes userID from the group.
func (c *Client) RemoveMember(ctx context.Context, userID int64) error {
	_, err := c.do(ctx, "remove_member", http.MethodDelete, c.groupURL(fmt.Sprintf("/users/%d", userID)), nil)
	return err
}

// SetRole assigns roleID to userID. The assignment is absolute, so replaying
// it converges on the same state.
func (c *Client) SetRole(ctx context.Context, userID, roleID int64) error {
	_, err := c.do(ctx, "set_role", http.MethodPatch, c.groupURL(fmt.Sprintf("/users/%d", userID)), setRoleRequest{RoleID: roleID})
	return err
}

func (c *Client) groupURL(suffix string) string {
	return fmt.Sprintf("%s/v1/groups/%d%s", c.groupsURL, c.groupID, suffix)
}
