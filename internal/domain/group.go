package domain

// GroupRole is one rank tier of the managed group. Rank 0 is reserved by the
// platform for guests.
type GroupRole struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Rank        int    `json:"rank"`
	MemberCount int64  `json:"memberCount,omitempty"`
}

// RemoteUser is a platform account resolved from a username.
type RemoteUser struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
}

// Direction selects which way AdjustRank moves a member along the ladder.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// RankChange describes the result of a rank mutation request.
type RankChange struct {
	User    RemoteUser `json:"user"`
	From    *GroupRole `json:"from,omitempty"`
	To      *GroupRole `json:"to,omitempty"`
	Changed bool       `json:"changed"`
	// Reason is set when Changed is false ("at_ceiling" or "at_floor").
	Reason string `json:"reason,omitempty"`
}

// MemberInfo is the current standing of a user in the group. Role is nil when
// the user is not a member.
type MemberInfo struct {
	User    RemoteUser `json:"user"`
	Role    *GroupRole `json:"role,omitempty"`
	InGroup bool       `json:"in_group"`
}

// Redemption is the result of a successful code redemption.
type Redemption struct {
	Code string     `json:"code"`
	User RemoteUser `json:"user"`
}
