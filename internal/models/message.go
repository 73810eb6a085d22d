package models

import (
	"encoding/json"
	"errors"
)

// MessageType is the value of the "type" field of every envelope
type MessageType string

const (
	// Peer to server
	TypeRegister      MessageType = "register"
	TypeOffer         MessageType = "offer"
	TypeAnswer        MessageType = "answer"
	TypeCandidate     MessageType = "candidate"
	TypeRequestStream MessageType = "request_stream"
	TypeControl       MessageType = "control"

	// Server to peer
	TypeCameraRegistered MessageType = "camera_registered"
	TypeCameraReplaced   MessageType = "camera_replaced"
	TypeCameraStatus     MessageType = "camera_status"
	TypeStreamRequest    MessageType = "stream_request"
)

// Role values accepted in a register message
const (
	RoleCamera = "camera"
	RoleViewer = "viewer"
)

// AnonymousViewer is used when a request_stream carries no viewerId
const AnonymousViewer = "anonymous"

// ErrMissingType is returned by ParseEnvelope for frames without a type
var ErrMissingType = errors.New("message has no type")

// Envelope is the routing view of an inbound frame. Raw keeps the frame for
// verbatim forwarding; the rest of the payload belongs to the peers.
type Envelope struct {
	Type MessageType

	// Role is only read from register frames and ViewerID only from
	// request_stream frames. Both are empty when absent or not a string.
	Role     string
	ViewerID string

	Raw []byte
}

// ParseEnvelope decodes the routing fields of a raw frame. Keys match
// exactly, so {"TYPE":"offer"} has no type.
func ParseEnvelope(raw []byte) (*Envelope, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}

	typ, ok := stringField(fields, "type")
	if !ok || typ == "" {
		return nil, ErrMissingType
	}

	env := &Envelope{Type: MessageType(typ), Raw: raw}
	switch env.Type {
	case TypeRegister:
		env.Role, _ = stringField(fields, "role")
	case TypeRequestStream:
		env.ViewerID, _ = stringField(fields, "viewerId")
	}
	return env, nil
}

// stringField reports the value of key when it is present and a JSON string
func stringField(fields map[string]json.RawMessage, key string) (string, bool) {
	v, ok := fields[key]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return "", false
	}
	return s, true
}

// CameraRegistered confirms a camera registration
type CameraRegistered struct {
	Type    MessageType `json:"type"`
	Status  string      `json:"status"`
	Message string      `json:"message"`
}

// CameraReplaced is sent to a camera that is being displaced by a newer one
type CameraReplaced struct {
	Type    MessageType `json:"type"`
	Message string      `json:"message"`
}

// CameraStatus tells viewers whether a camera is currently registered
type CameraStatus struct {
	Type      MessageType `json:"type"`
	Available bool        `json:"available"`
}

// StreamRequest asks the camera to start negotiating with a viewer
type StreamRequest struct {
	Type     MessageType `json:"type"`
	ViewerID string      `json:"viewerId"`
}

func NewCameraRegistered() CameraRegistered {
	return CameraRegistered{
		Type:    TypeCameraRegistered,
		Status:  "ready",
		Message: "Camera registered successfully",
	}
}

func NewCameraReplaced() CameraReplaced {
	return CameraReplaced{
		Type:    TypeCameraReplaced,
		Message: "Another camera has connected",
	}
}

func NewCameraStatus(available bool) CameraStatus {
	return CameraStatus{Type: TypeCameraStatus, Available: available}
}

func NewStreamRequest(viewerID string) StreamRequest {
	if viewerID == "" {
		viewerID = AnonymousViewer
	}
	return StreamRequest{Type: TypeStreamRequest, ViewerID: viewerID}
}
