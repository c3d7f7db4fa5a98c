package game

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryCreateGetDestroy(t *testing.T) {
	r := NewRegistry()
	host := &Player{ID: uuid.New(), DisplayName: "alice"}

	room := r.Create("friday night", host)
	require.Len(t, room.ID, roomIDLength)
	assert.Equal(t, host.ID, room.HostID)
	assert.Equal(t, []*Player{host}, room.Players)
	assert.Equal(t, PhaseIdle, room.Phase)

	got, err := r.Get(room.ID)
	require.NoError(t, err)
	assert.Same(t, room, got)

	r.Destroy(room.ID)
	_, err = r.Get(room.ID)
	assert.ErrorIs(t, err, ErrRoomNotFound)
	assert.Equal(t, 0, r.Len())
}

func TestRegistryGetIsCaseInsensitive(t *testing.T) {
	r := NewRegistry()
	r.nextID = func() string { return "AB12CD" }
	room := r.Create("x", &Player{ID: uuid.New()})

	got, err := r.Get(" ab12cd ")
	require.NoError(t, err)
	assert.Same(t, room, got)
}

func TestRegistryRetriesOnCollision(t *testing.T) {
	r := NewRegistry()
	ids := []string{"AAAAAA", "AAAAAA", "AAAAAA", "BBBBBB"}
	r.nextID = func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}

	first := r.Create("one", &Player{ID: uuid.New()})
	second := r.Create("two", &Player{ID: uuid.New()})

	assert.Equal(t, "AAAAAA", first.ID)
	assert.Equal(t, "BBBBBB", second.ID)
	assert.Equal(t, 2, r.Len())
	assert.Empty(t, ids)
}

func TestRandomRoomIDAlphabet(t *testing.T) {
	r := NewRegistry()
	for i := 0; i < 100; i++ {
		room := r.Create("x", &Player{ID: uuid.New()})
		require.Len(t, room.ID, roomIDLength)
		for _, ch := range room.ID {
			assert.Contains(t, roomIDAlphabet, string(ch))
		}
	}
	assert.Equal(t, 100, r.Len())
}

func TestBindingLifecycle(t *testing.T) {
	b := NewBinding()
	conn := uuid.New()

	_, ok := b.DisplayName(conn)
	assert.False(t, ok)

	b.Register(conn, "bob")
	name, ok := b.DisplayName(conn)
	require.True(t, ok)
	assert.Equal(t, "bob", name)

	b.Bind(conn, "ROOM01", RolePending)
	b.Bind(conn, "ROOM02", RolePlayer)
	role, ok := b.RoleIn(conn, "ROOM01")
	require.True(t, ok)
	assert.Equal(t, RolePending, role)

	b.Bind(conn, "ROOM01", RolePlayer)
	role, _ = b.RoleIn(conn, "ROOM01")
	assert.Equal(t, RolePlayer, role)

	rooms := b.Rooms(conn)
	rooms["ROOM99"] = RolePlayer // copy, must not leak back
	assert.Len(t, b.Rooms(conn), 2)

	b.Unbind(conn, "ROOM02")
	_, ok = b.RoleIn(conn, "ROOM02")
	assert.False(t, ok)

	forgotten := b.Forget(conn)
	assert.Equal(t, map[string]Role{"ROOM01": RolePlayer}, forgotten)
	_, ok = b.DisplayName(conn)
	assert.False(t, ok)
	assert.Nil(t, b.Forget(conn))
}

func TestRemoveCards(t *testing.T) {
	hand := []string{"a", "b", "b", "c"}

	rest, ok := removeCards(hand, []string{"b", "c"})
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, rest)
	assert.Equal(t, []string{"a", "b", "b", "c"}, hand)

	_, ok = removeCards(hand, []string{"b", "b", "b"})
	assert.False(t, ok)

	_, ok = removeCards(hand, []string{"z"})
	assert.False(t, ok)
}

func TestErrorKinds(t *testing.T) {
	assert.Equal(t, KindNotFound, KindOf(ErrRoomNotFound))
	assert.Equal(t, KindUnauthorized, KindOf(ErrNotHost))
	assert.Equal(t, KindInvalidState, KindOf(ErrTooFewPlayers))
	assert.Equal(t, KindUnknown, KindOf(assert.AnError))
	assert.Equal(t, "invalid_state", KindInvalidState.String())
}

func TestValidateDisplayName(t *testing.T) {
	name, err := ValidateDisplayName("  carol ")
	require.NoError(t, err)
	assert.Equal(t, "carol", name)

	_, err = ValidateDisplayName("   ")
	assert.ErrorIs(t, err, ErrInvalidName)

	long := make([]rune, maxDisplayNameLen+1)
	for i := range long {
		long[i] = 'x'
	}
	_, err = ValidateDisplayName(string(long))
	assert.ErrorIs(t, err, ErrInvalidName)
}
