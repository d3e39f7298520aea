package platform

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"groupkeeper-backend/internal/domain"
)

type authenticatedResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
}

// CheckSession verifies the session credential with a read-only call and
// returns the account it belongs to. A rejected credential yields
// ErrSessionInvalid.
func (c *Client) CheckSession(ctx context.Context) (*domain.RemoteUser, error) {
	resp, err := c.do(ctx, "check_session", http.MethodGet, c.usersURL+"/v1/users/authenticated", nil)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
			return nil, fmt.Errorf("%w: %w", ErrSessionInvalid, err)
		}
		return nil, err
	}

	var body authenticatedResponse
	if err := decode("check_session", resp, &body); err != nil {
		return nil, err
	}
	return &domain.RemoteUser{ID: body.ID, Name: body.Name, DisplayName: body.DisplayName}, nil
}
