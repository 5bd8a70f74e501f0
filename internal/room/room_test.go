package room

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPersonalID(t *testing.T) {
	require.Equal(t, "user:42", Personal(42).ID())
	require.Equal(t, KindPersonal, Personal(42).Kind())
}

func TestDirectIDIsSymmetric(t *testing.T) {
	require.Equal(t, "dm:3_17", Direct(17, 3).ID())
	require.Equal(t, "dm:3_17", Direct(3, 17).ID())
	require.Equal(t, Direct(3, 17), Direct(17, 3))
}

func TestDirectParticipantsAscending(t *testing.T) {
	low, high := Direct(9, 4).Participants()
	require.Equal(t, int64(4), low)
	require.Equal(t, int64(9), high)
}

func TestGroupID(t *testing.T) {
	require.Equal(t, "group:7", Group(7).ID())
	require.Equal(t, KindGroup, Group(7).Kind())
}

func TestKindString(t *testing.T) {
	require.Equal(t, "personal", KindPersonal.String())
	require.Equal(t, "direct", KindDirect.String())
	require.Equal(t, "group", KindGroup.String())
	require.Equal(t, "unknown", Kind(0).String())
}

func TestParseRoundTrip(t *testing.T) {
	for _, r := range []Room{Personal(1), Direct(5, 2), Group(99)} {
		parsed, err := Parse(r.ID())
		require.NoError(t, err)
		require.Equal(t, r, parsed)
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	for _, id := range []string{"", "room:1", "dm:12", "dm:a_b", "user:", "group:x"} {
		_, err := Parse(id)
		require.Error(t, err, "id %q", id)
	}
}
