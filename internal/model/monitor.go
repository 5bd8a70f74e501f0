package model

// -----------------------------------------------------------------
// Monitor API Response Models
// -----------------------------------------------------------------

// MonitorResponse is the main response for the monitor API.
type MonitorResponse struct {
	Status      string          `json:"status"` // "healthy" or "idle"
	Connections ConnectionStats `json:"connections"`
	Rooms       RoomStats       `json:"rooms"`
	Clients     []ClientInfo    `json:"clients"`
}

// ConnectionStats holds connection-related statistics.
type ConnectionStats struct {
	TotalConnections int `json:"totalConnections"` // live sockets
	TotalUsers       int `json:"totalUsers"`       // distinct authenticated users
}

// RoomStats holds room topology statistics.
type RoomStats struct {
	TotalRooms  int        `json:"totalRooms"`
	RoomDetails []RoomInfo `json:"roomDetails"`
}

// RoomInfo describes one live room.
type RoomInfo struct {
	RoomID      string  `json:"roomId"`
	Kind        string  `json:"kind"` // personal, direct or group
	Connections int     `json:"connections"`
	UserIDs     []int64 `json:"userIds"`
}

// ClientInfo describes one connected client.
type ClientInfo struct {
	ClientID string `json:"clientId"`
	UserID   int64  `json:"userId"`
	Rooms    int    `json:"rooms"`
}
