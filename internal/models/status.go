package models

import "time"

// RelayStatus is the public summary returned by GET /api/status
type RelayStatus struct {
	CameraAvailable bool `json:"cameraAvailable"`
	Viewers         int  `json:"viewers"`
	Connections     int  `json:"connections"`
}

// ConnectionInfo describes one open connection for the operator API
type ConnectionInfo struct {
	ID          string    `json:"id"`
	Role        string    `json:"role"`
	RemoteAddr  string    `json:"remoteAddr,omitempty"`
	ConnectedAt time.Time `json:"connectedAt"`
	LastSeen    time.Time `json:"lastSeen"`
}

// ConnectionList is returned by GET /api/admin/connections
type ConnectionList struct {
	Status      RelayStatus      `json:"status"`
	Connections []ConnectionInfo `json:"connections"`
}
