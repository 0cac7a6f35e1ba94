package websocket

import (
	"encoding/json"
	"time"

	"tokenride/pkg/logger"
)

// Event names carried over the relay channel.
const (
	EventLocationUpdate      = "location_update"
	EventUserLocationUpdate  = "user_location_update"
	EventRideRequest         = "ride_request"
	EventNewRideRequest      = "new_ride_request"
	EventRideAccept          = "ride_accept"
	EventRideAccepted        = "ride_accepted"
	EventRideReject          = "ride_reject"
	EventRideRejected        = "ride_rejected"
	EventRideStatusUpdate    = "ride_status_update"
	EventRideStatusChanged   = "ride_status_changed"
	EventSendMessage         = "send_message"
	EventNewMessage          = "new_message"
	EventEmergencyAlert      = "emergency_alert"
	EventToggleAvailability  = "toggle_availability"
	EventAvailabilityChanged = "driver_availability_changed"
	EventUserDisconnected    = "user_disconnected"
	EventError               = "error"
)

type Message struct {
	Type      string                 `json:"type"`
	SenderID  string                 `json:"sender_id,omitempty"`
	Timestamp int64                  `json:"timestamp"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

// PresenceStore is the persistence hook behind the relay: last-write-wins
// location, driver availability, and last-seen stamps. The relay never
// mutates ride or token state.
type PresenceStore interface {
	UpdateLocation(userID string, lat, lng float64, address string) error
	SetAvailability(userID string, available bool) error
	TouchLastSeen(userID string) error
}

// Hub routes best-effort events between connected participants. Point-to-point
// events are silently dropped when the recipient is not registered; there is
// no store-and-forward and no delivery guarantee.
type Hub struct {
	registry Registry
	presence PresenceStore
	log      *logger.Logger
}

func NewHub(registry Registry, presence PresenceStore, log *logger.Logger) *Hub {
	return &Hub{
		registry: registry,
		presence: presence,
		log:      log,
	}
}

func (h *Hub) register(client *Client) {
	if previous := h.registry.Register(client.UserID, client); previous != nil {
		// Last connection wins on reconnect.
		previous.shutdown()
	}

	h.log.WithField("user_id", client.UserID).Debug("Relay client registered")
}

func (h *Hub) unregister(client *Client) {
	if !h.registry.Remove(client.UserID, client) {
		return
	}

	client.shutdown()

	if err := h.presence.TouchLastSeen(client.UserID); err != nil {
		h.log.WithError(err).WithField("user_id", client.UserID).Warn("Failed to stamp last seen")
	}

	h.BroadcastExcept(client.UserID, Message{
		Type:      EventUserDisconnected,
		SenderID:  client.UserID,
		Timestamp: now(),
	})

	h.log.WithField("user_id", client.UserID).Debug("Relay client unregistered")
}

// SendToUser delivers a point-to-point event; returns false when the
// recipient has no live connection.
func (h *Hub) SendToUser(userID string, message Message) bool {
	client, ok := h.registry.Lookup(userID)
	if !ok {
		return false
	}

	message.Timestamp = now()
	client.enqueue(marshal(message))
	return true
}

// NotifyUser pushes a server-originated event to one user. It adapts
// SendToUser for callers that build events from loose data maps.
func (h *Hub) NotifyUser(userID string, event string, data map[string]interface{}) bool {
	return h.SendToUser(userID, Message{Type: event, Data: data})
}

// BroadcastExcept fans an event out to every connected client but the sender.
func (h *Hub) BroadcastExcept(senderID string, message Message) {
	message.Timestamp = now()
	data := marshal(message)

	h.registry.Each(func(userID string, client *Client) {
		if userID == senderID {
			return
		}
		client.enqueue(data)
	})
}

func (h *Hub) ConnectedCount() int {
	return h.registry.Count()
}

func (h *Hub) handleMessage(client *Client, raw []byte) {
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		h.log.WithError(err).WithField("user_id", client.UserID).Warn("Dropping malformed relay message")
		return
	}

	msg.SenderID = client.UserID

	switch msg.Type {
	case EventLocationUpdate:
		h.handleLocationUpdate(client, msg)

	case EventRideRequest:
		h.forward(msg, "driver_id", EventNewRideRequest)

	case EventRideAccept:
		h.forward(msg, "rider_id", EventRideAccepted)

	case EventRideReject:
		h.forward(msg, "rider_id", EventRideRejected)

	case EventRideStatusUpdate:
		h.forward(msg, "target_user_id", EventRideStatusChanged)

	case EventSendMessage:
		h.forward(msg, "recipient_id", EventNewMessage)

	case EventEmergencyAlert:
		h.log.WithField("user_id", client.UserID).Warn("Emergency alert received")
		h.BroadcastExcept(client.UserID, Message{
			Type:     EventEmergencyAlert,
			SenderID: client.UserID,
			Data:     msg.Data,
		})

	case EventToggleAvailability:
		h.handleToggleAvailability(client, msg)

	default:
		h.log.WithField("type", msg.Type).Debug("Ignoring unknown relay event")
	}
}

// forward routes a point-to-point event to the recipient named in the given
// payload field, renaming the event for the receiving side.
func (h *Hub) forward(msg Message, recipientField, outType string) {
	recipientID, ok := msg.Data[recipientField].(string)
	if !ok || recipientID == "" {
		return
	}

	h.SendToUser(recipientID, Message{
		Type:     outType,
		SenderID: msg.SenderID,
		Data:     msg.Data,
	})
}

func (h *Hub) handleLocationUpdate(client *Client, msg Message) {
	lat, latOK := msg.Data["lat"].(float64)
	lng, lngOK := msg.Data["lng"].(float64)
	if !latOK || !lngOK {
		client.sendError("lat and lng are required")
		return
	}

	address, _ := msg.Data["address"].(string)

	if err := h.presence.UpdateLocation(client.UserID, lat, lng, address); err != nil {
		h.log.WithError(err).WithField("user_id", client.UserID).Error("Failed to persist location update")
		client.sendError("Failed to update location")
		return
	}

	h.BroadcastExcept(client.UserID, Message{
		Type:     EventUserLocationUpdate,
		SenderID: client.UserID,
		Data: map[string]interface{}{
			"lat": lat,
			"lng": lng,
		},
	})
}

func (h *Hub) handleToggleAvailability(client *Client, msg Message) {
	available, ok := msg.Data["available"].(bool)
	if !ok {
		client.sendError("available flag is required")
		return
	}

	if err := h.presence.SetAvailability(client.UserID, available); err != nil {
		h.log.WithError(err).WithField("user_id", client.UserID).Error("Failed to persist availability")
		client.sendError("Failed to update availability")
		return
	}

	h.BroadcastExcept(client.UserID, Message{
		Type:     EventAvailabilityChanged,
		SenderID: client.UserID,
		Data: map[string]interface{}{
			"available": available,
		},
	})
}

func marshal(message Message) []byte {
	data, _ := json.Marshal(message)
	return data
}

func now() int64 {
	return time.Now().Unix()
}
