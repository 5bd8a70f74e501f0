package hub

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Rojan-K/ChatAPP/internal/event"
)

func TestMonitorStatsClassifyRooms(t *testing.T) {
	th := newTestHub(t)
	th.store.addGroup(7, 1)

	alice := th.connect(t, 1, "Alice")
	th.command(alice, event.CommandJoinChat, event.JoinChatPayload{UserID: 2})

	stats := NewMonitorService(th.Hub).GetStats()
	require.Equal(t, "healthy", stats.Status)
	require.Equal(t, 1, stats.Connections.TotalConnections)
	require.Equal(t, 1, stats.Connections.TotalUsers)
	require.Equal(t, 3, stats.Rooms.TotalRooms)

	kinds := make(map[string]string)
	for _, r := range stats.Rooms.RoomDetails {
		kinds[r.RoomID] = r.Kind
	}
	require.Equal(t, map[string]string{
		"user:1":  "personal",
		"dm:1_2":  "direct",
		"group:7": "group",
	}, kinds)
}

func TestMonitorStatsIdleWhenEmpty(t *testing.T) {
	th := newTestHub(t)

	stats := NewMonitorService(th.Hub).GetStats()
	require.Equal(t, "idle", stats.Status)
	require.Zero(t, stats.Connections.TotalConnections)
	require.Empty(t, stats.Rooms.RoomDetails)
}
