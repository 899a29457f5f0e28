package hub

import (
	"github.com/OmerBirol/lenslight-tr/internal/model"
)

// MonitorService provides methods to gather hub statistics
type MonitorService struct {
	hub *Hub
}

// NewMonitorService creates a new monitor service
func NewMonitorService(hub *Hub) *MonitorService {
	return &MonitorService{hub: hub}
}

// GetStats gathers and returns all hub statistics
func (ms *MonitorService) GetStats() model.MonitorResponse {
	connectionStats := ms.getConnectionStats()
	roomStats := ms.getRoomStats()
	clients := ms.getClientList()

	status := "healthy"
	if connectionStats.TotalConnected == 0 {
		status = "idle"
	}

	return model.MonitorResponse{
		Status:      status,
		Connections: connectionStats,
		Rooms:       roomStats,
		Clients:     clients,
	}
}

func (ms *MonitorService) getConnectionStats() model.ConnectionStats {
	return model.ConnectionStats{
		TotalConnected: ms.hub.presence.Len(),
	}
}

func (ms *MonitorService) getRoomStats() model.RoomStats {
	stats := model.RoomStats{
		RoomDetails: make([]model.RoomInfo, 0),
	}

	for _, bucket := range ms.hub.shards {
		bucket.RLock()
		for groupID, room := range bucket.rooms {
			subscriberIDs := make([]string, 0, len(room))
			for _, c := range room {
				if userID := c.UserID(); userID != "" {
					subscriberIDs = append(subscriberIDs, userID)
				}
			}

			stats.RoomDetails = append(stats.RoomDetails, model.RoomInfo{
				GroupID:       groupID,
				Subscribers:   len(room),
				SubscriberIDs: subscriberIDs,
			})
			stats.TotalRooms++
		}
		bucket.RUnlock()
	}

	return stats
}

func (ms *MonitorService) getClientList() []model.ClientInfo {
	snapshot := ms.hub.presence.Snapshot()

	clients := make([]model.ClientInfo, 0, len(snapshot))
	for userID, clientID := range snapshot {
		clients = append(clients, model.ClientInfo{
			ClientID: clientID,
			UserID:   userID,
		})
	}

	return clients
}
