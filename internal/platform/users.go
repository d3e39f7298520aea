package platform

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"groupkeeper-backend/internal/domain"
)

type usernamesRequest struct {
	Usernames          []string `json:"usernames"`
	ExcludeBannedUsers bool     `json:"excludeBannedUsers"`
}

type usernamesResponse struct {
	Data []struct {
		RequestedUsername string `json:"requestedUsername"`
		ID                int64  `json:"id"`
		Name              string `json:"name"`
		DisplayName       string `json:"displayName"`
	} `json:"data"`
}

// ResolveUserID resolves a username to the platform account. Returns
// domain.ErrNotFound when no account matches.
func (c *Client) ResolveUserID(ctx context.Context, username string) (*domain.RemoteUser, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", domain.ErrInvalidArgument)
	}

	resp, err := c.do(ctx, "resolve_user", http.MethodPost, c.usersURL+"/v1/usernames/users", usernamesRequest{
		Usernames: []string{username},
	})
	if err != nil {
		return nil, err
	}

	var body usernamesResponse
	if err := decode("resolve_user", resp, &body); err != nil {
		return nil, err
	}
	if len(body.Data) == 0 || body.Data[0].ID == 0 {
		return nil, fmt.Errorf("%w: %q", domain.ErrNotFound, username)
	}

	u := body.Data[0]
	return &domain.RemoteUser{ID: u.ID, Name: u.Name, DisplayName: u.DisplayName}, nil
}
