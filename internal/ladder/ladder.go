// Package ladder computes moves along a group's rank ladder. It performs no
// I/O: callers pass in a freshly fetched role list and the member's current
// role, and get back the role to assign.
package ladder

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"groupkeeper-backend/internal/domain"
)

// Sorted returns a copy of roles ordered by rank ascending. Roles sharing a
// rank keep their original relative order.
func Sorted(roles []domain.GroupRole) []domain.GroupRole {
	out := make([]domain.GroupRole, len(roles))
	copy(out, roles)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Rank < out[j].Rank
	})
	return out
}

// Promote returns the role immediately above current.
func Promote(roles []domain.GroupRole, current *domain.GroupRole) (domain.GroupRole, error) {
	ladder, idx, err := locate(roles, current)
	if err != nil {
		return domain.GroupRole{}, err
	}
	if idx == len(ladder)-1 {
		return domain.GroupRole{}, domain.ErrAtCeiling
	}
	return ladder[idx+1], nil
}

// Demote returns the role immediately below current.
func Demote(roles []domain.GroupRole, current *domain.GroupRole) (domain.GroupRole, error) {
	ladder, idx, err := locate(roles, current)
	if err != nil {
		return domain.GroupRole{}, err
	}
	if idx == 0 {
		return domain.GroupRole{}, domain.ErrAtFloor
	}
	return ladder[idx-1], nil
}

// Move applies Promote or Demote depending on direction.
func Move(roles []domain.GroupRole, current *domain.GroupRole, direction domain.Direction) (domain.GroupRole, error) {
	switch direction {
	case domain.DirectionUp:
		return Promote(roles, current)
	case domain.DirectionDown:
		return Demote(roles, current)
	default:
		return domain.GroupRole{}, fmt.Errorf("%w: unknown direction %q", domain.ErrInvalidArgument, direction)
	}
}

// Select finds the role named by selector. A selector that parses as an
// integer is matched against rank numbers first; otherwise, or when no rank
// matches, names are compared case-insensitively.
func Select(roles []domain.GroupRole, selector string) (domain.GroupRole, error) {
	selector = strings.TrimSpace(selector)
	if selector == "" {
		return domain.GroupRole{}, fmt.Errorf("%w: empty rank selector", domain.ErrInvalidArgument)
	}

	ladder := Sorted(roles)
	if rank, err := strconv.Atoi(selector); err == nil {
		for _, r := range ladder {
			if r.Rank == rank {
				return r, nil
			}
		}
	}
	for _, r := range ladder {
		if strings.EqualFold(r.Name, selector) {
			return r, nil
		}
	}
	return domain.GroupRole{}, fmt.Errorf("%w: %q", domain.ErrRoleNotFound, selector)
}

func locate(roles []domain.GroupRole, current *domain.GroupRole) ([]domain.GroupRole, int, error) {
	if current == nil {
		return nil, 0, domain.ErrNotInGroup
	}
	ladder := Sorted(roles)
	for i, r := range ladder {
		if r.ID == current.ID {
			return ladder, i, nil
		}
	}
	return nil, 0, domain.ErrNotInGroup
}
