package ladder

import (
	"testing"

	"groupkeeper-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	guest   = domain.GroupRole{ID: 1, Rank: 0, Name: "Guest"}
	member  = domain.GroupRole{ID: 2, Rank: 10, Name: "Member"}
	officer = domain.GroupRole{ID: 3, Rank: 50, Name: "Officer"}
)

func testRoles() []domain.GroupRole {
	// Deliberately out of order: the platform does not promise sorted output.
	return []domain.GroupRole{officer, guest, member}
}

func TestPromote(t *testing.T) {
	t.Run("Member to Officer", func(t *testing.T) {
		next, err := Promote(testRoles(), &member)
		require.NoError(t, err)
		assert.Equal(t, officer, next)
	})

	t.Run("At ceiling", func(t *testing.T) {
		_, err := Promote(testRoles(), &officer)
		assert.ErrorIs(t, err, domain.ErrAtCeiling)
	})

	t.Run("Not in group", func(t *testing.T) {
		_, err := Promote(testRoles(), nil)
		assert.ErrorIs(t, err, domain.ErrNotInGroup)
	})

	t.Run("Role missing from list", func(t *testing.T) {
		stranger := domain.GroupRole{ID: 99, Rank: 20, Name: "Other"}
		_, err := Promote(testRoles(), &stranger)
		assert.ErrorIs(t, err, domain.ErrNotInGroup)
	})

	t.Run("Empty list", func(t *testing.T) {
		_, err := Promote(nil, &member)
		assert.ErrorIs(t, err, domain.ErrNotInGroup)
	})
}

func TestDemote(t *testing.T) {
	t.Run("Member to Guest", func(t *testing.T) {
		prev, err := Demote(testRoles(), &member)
		require.NoError(t, err)
		assert.Equal(t, guest, prev)
	})

	t.Run("At floor", func(t *testing.T) {
		_, err := Demote(testRoles(), &guest)
		assert.ErrorIs(t, err, domain.ErrAtFloor)
	})
}

func TestPromoteDemoteRoundTrip(t *testing.T) {
	roles := []domain.GroupRole{
		{ID: 10, Rank: 0, Name: "Guest"},
		{ID: 11, Rank: 1, Name: "Recruit"},
		{ID: 12, Rank: 5, Name: "Private"},
		{ID: 13, Rank: 40, Name: "Sergeant"},
		{ID: 14, Rank: 200, Name: "Captain"},
		{ID: 15, Rank: 255, Name: "Owner"},
	}
	for i := 1; i < len(roles)-1; i++ {
		start := roles[i]
		up, err := Promote(roles, &start)
		require.NoError(t, err)
		back, err := Demote(roles, &up)
		require.NoError(t, err)
		assert.Equal(t, start, back, "promote then demote from %s", start.Name)

		down, err := Demote(roles, &start)
		require.NoError(t, err)
		back, err = Promote(roles, &down)
		require.NoError(t, err)
		assert.Equal(t, start, back, "demote then promote from %s", start.Name)
	}
}

func TestMove(t *testing.T) {
	next, err := Move(testRoles(), &member, domain.DirectionUp)
	require.NoError(t, err)
	assert.Equal(t, officer, next)

	prev, err := Move(testRoles(), &member, domain.DirectionDown)
	require.NoError(t, err)
	assert.Equal(t, guest, prev)

	_, err = Move(testRoles(), &member, domain.Direction("sideways"))
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestSelect(t *testing.T) {
	t.Run("By rank number", func(t *testing.T) {
		r, err := Select(testRoles(), "50")
		require.NoError(t, err)
		assert.Equal(t, officer, r)
	})

	t.Run("By name case-insensitive", func(t *testing.T) {
		r, err := Select(testRoles(), "  mEmBeR ")
		require.NoError(t, err)
		assert.Equal(t, member, r)
	})

	t.Run("Numeric name when no rank matches", func(t *testing.T) {
		roles := append(testRoles(), domain.GroupRole{ID: 7, Rank: 70, Name: "42"})
		r, err := Select(roles, "42")
		require.NoError(t, err)
		assert.Equal(t, int64(7), r.ID)
	})

	t.Run("Not found", func(t *testing.T) {
		_, err := Select(testRoles(), "General")
		assert.ErrorIs(t, err, domain.ErrRoleNotFound)
	})

	t.Run("Empty selector", func(t *testing.T) {
		_, err := Select(testRoles(), " ")
		assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	})
}

func TestSortedDoesNotMutateInput(t *testing.T) {
	roles := testRoles()
	sorted := Sorted(roles)
	assert.Equal(t, []domain.GroupRole{guest, member, officer}, sorted)
	assert.Equal(t, officer, roles[0])
}

func TestSortedIsStableOnTies(t *testing.T) {
	a := domain.GroupRole{ID: 1, Rank: 5, Name: "A"}
	b := domain.GroupRole{ID: 2, Rank: 5, Name: "B"}
	sorted := Sorted([]domain.GroupRole{b, a})
	assert.Equal(t, []domain.GroupRole{b, a}, sorted)
}
