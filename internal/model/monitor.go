package model

// -----------------------------------------------------------------
// Monitor API Response Models
// -----------------------------------------------------------------

// MonitorResponse is the main response for the monitor API
type MonitorResponse struct {
	Status      string          `json:"status"` // "healthy" or "idle"
	Connections ConnectionStats `json:"connections"`
	Rooms       RoomStats       `json:"rooms"`
	Clients     []ClientInfo    `json:"clients"`
}

// ConnectionStats holds presence statistics
type ConnectionStats struct {
	TotalConnected int `json:"totalConnected"` // users with a live connection
}

// RoomStats holds group broadcast-scope statistics
type RoomStats struct {
	TotalRooms  int        `json:"totalRooms"`
	RoomDetails []RoomInfo `json:"roomDetails"`
}

// RoomInfo contains information about a single group scope
type RoomInfo struct {
	GroupID       string   `json:"groupId"`
	Subscribers   int      `json:"subscribers"`
	SubscriberIDs []string `json:"subscriberIds"`
}

// ClientInfo contains information about a connected client
type ClientInfo struct {
	ClientID string `json:"clientId"`
	UserID   string `json:"userId"`
}
