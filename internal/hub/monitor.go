package hub

import (
	"github.com/samber/lo"

	"github.com/Rojan-K/ChatAPP/internal/model"
	"github.com/Rojan-K/ChatAPP/internal/room"
)

// MonitorService gathers hub statistics for the monitor API.
type MonitorService struct {
	hub *Hub
}

func NewMonitorService(hub *Hub) *MonitorService {
	return &MonitorService{hub: hub}
}

// GetStats snapshots the registry and room topology.
func (ms *MonitorService) GetStats() model.MonitorResponse {
	connections := ms.getConnectionStats()
	rooms := ms.getRoomStats()
	clients := ms.getClientList()

	status := "healthy"
	if connections.TotalConnections == 0 {
		status = "idle"
	}

	return model.MonitorResponse{
		Status:      status,
		Connections: connections,
		Rooms:       rooms,
		Clients:     clients,
	}
}

func (ms *MonitorService) getConnectionStats() model.ConnectionStats {
	ms.hub.usersMu.RLock()
	defer ms.hub.usersMu.RUnlock()

	stats := model.ConnectionStats{TotalUsers: len(ms.hub.users)}
	for _, conns := range ms.hub.users {
		stats.TotalConnections += len(conns)
	}
	return stats
}

func (ms *MonitorService) getRoomStats() model.RoomStats {
	stats := model.RoomStats{RoomDetails: make([]model.RoomInfo, 0)}

	for _, bucket := range ms.hub.shards {
		bucket.RLock()
		for roomID, members := range bucket.rooms {
			userIDs := lo.Uniq(lo.Map(lo.Values(members), func(c *Client, _ int) int64 {
				return c.UserID()
			}))

			kind := "unknown"
			if r, err := room.Parse(roomID); err == nil {
				kind = r.Kind().String()
			}

			stats.RoomDetails = append(stats.RoomDetails, model.RoomInfo{
				RoomID:      roomID,
				Kind:        kind,
				Connections: len(members),
				UserIDs:     userIDs,
			})
			stats.TotalRooms++
		}
		bucket.RUnlock()
	}

	return stats
}

func (ms *MonitorService) getClientList() []model.ClientInfo {
	ms.hub.usersMu.RLock()
	defer ms.hub.usersMu.RUnlock()

	clients := make([]model.ClientInfo, 0)
	for userID, conns := range ms.hub.users {
		for _, c := range conns {
			clients = append(clients, model.ClientInfo{
				ClientID: c.ID,
				UserID:   userID,
				Rooms:    len(c.roomList()),
			})
		}
	}
	return clients
}
