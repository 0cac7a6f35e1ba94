package websocket

import (
	"encoding/json"
	"testing"

	"tokenride/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePresence struct {
	locations    map[string][3]interface{}
	availability map[string]bool
	lastSeen     map[string]int
}

func newFakePresence() *fakePresence {
	return &fakePresence{
		locations:    make(map[string][3]interface{}),
		availability: make(map[string]bool),
		lastSeen:     make(map[string]int),
	}
}

func (f *fakePresence) UpdateLocation(userID string, lat, lng float64, address string) error {
	f.locations[userID] = [3]interface{}{lat, lng, address}
	return nil
}

func (f *fakePresence) SetAvailability(userID string, available bool) error {
	f.availability[userID] = available
	return nil
}

func (f *fakePresence) TouchLastSeen(userID string) error {
	f.lastSeen[userID]++
	return nil
}

func testHub() (*Hub, *fakePresence) {
	log, _ := logger.NewLogger(&logger.Config{Level: "error", Output: "stderr"})
	presence := newFakePresence()
	return NewHub(NewMemoryRegistry(), presence, log), presence
}

func attachClient(h *Hub, userID, role string) *Client {
	client := &Client{
		hub:    h,
		send:   make(chan []byte, 16),
		done:   make(chan struct{}),
		UserID: userID,
		Role:   role,
	}
	h.register(client)
	return client
}

func receive(t *testing.T, client *Client) Message {
	t.Helper()
	select {
	case raw := <-client.send:
		var msg Message
		require.NoError(t, json.Unmarshal(raw, &msg))
		return msg
	default:
		t.Fatal("expected a queued message")
		return Message{}
	}
}

func TestRegistryLastConnectionWins(t *testing.T) {
	registry := NewMemoryRegistry()

	first := &Client{UserID: "u1"}
	second := &Client{UserID: "u1"}

	assert.Nil(t, registry.Register("u1", first))
	assert.Same(t, first, registry.Register("u1", second))
	assert.Equal(t, 1, registry.Count())

	current, ok := registry.Lookup("u1")
	require.True(t, ok)
	assert.Same(t, second, current)

	// The displaced connection's cleanup must not tear down the new one.
	assert.False(t, registry.Remove("u1", first))
	assert.Equal(t, 1, registry.Count())

	assert.True(t, registry.Remove("u1", second))
	assert.Equal(t, 0, registry.Count())
}

func TestSendToUser(t *testing.T) {
	hub, _ := testHub()
	driver := attachClient(hub, "driver-1", "driver")

	delivered := hub.NotifyUser("driver-1", EventRideStatusChanged, map[string]interface{}{
		"ride_id": "r1",
		"status":  "accepted",
	})
	require.True(t, delivered)

	msg := receive(t, driver)
	assert.Equal(t, EventRideStatusChanged, msg.Type)
	assert.Equal(t, "r1", msg.Data["ride_id"])
	assert.NotZero(t, msg.Timestamp)

	assert.False(t, hub.NotifyUser("nobody", EventRideStatusChanged, nil), "offline recipients are dropped")
}

func TestBroadcastExceptSkipsSender(t *testing.T) {
	hub, _ := testHub()
	sender := attachClient(hub, "u1", "driver")
	other := attachClient(hub, "u2", "rider")

	hub.BroadcastExcept("u1", Message{Type: EventEmergencyAlert, SenderID: "u1"})

	msg := receive(t, other)
	assert.Equal(t, EventEmergencyAlert, msg.Type)
	assert.Empty(t, sender.send)
}

func TestLocationUpdatePersistsAndFansOut(t *testing.T) {
	hub, presence := testHub()
	driver := attachClient(hub, "driver-1", "driver")
	rider := attachClient(hub, "rider-1", "rider")

	raw, _ := json.Marshal(Message{
		Type: EventLocationUpdate,
		Data: map[string]interface{}{"lat": 28.6, "lng": 77.2, "address": "Connaught Place"},
	})
	hub.handleMessage(driver, raw)

	stored, ok := presence.locations["driver-1"]
	require.True(t, ok)
	assert.Equal(t, 28.6, stored[0])
	assert.Equal(t, 77.2, stored[1])
	assert.Equal(t, "Connaught Place", stored[2])

	msg := receive(t, rider)
	assert.Equal(t, EventUserLocationUpdate, msg.Type)
	assert.Equal(t, "driver-1", msg.SenderID)
	assert.Equal(t, 28.6, msg.Data["lat"])
	assert.Empty(t, driver.send, "sender does not echo its own location")
}

func TestLocationUpdateRejectsMissingCoordinates(t *testing.T) {
	hub, presence := testHub()
	driver := attachClient(hub, "driver-1", "driver")

	raw, _ := json.Marshal(Message{
		Type: EventLocationUpdate,
		Data: map[string]interface{}{"lat": 28.6},
	})
	hub.handleMessage(driver, raw)

	assert.Empty(t, presence.locations)
	msg := receive(t, driver)
	assert.Equal(t, EventError, msg.Type)
}

func TestToggleAvailability(t *testing.T) {
	hub, presence := testHub()
	driver := attachClient(hub, "driver-1", "driver")
	rider := attachClient(hub, "rider-1", "rider")

	raw, _ := json.Marshal(Message{
		Type: EventToggleAvailability,
		Data: map[string]interface{}{"available": true},
	})
	hub.handleMessage(driver, raw)

	assert.True(t, presence.availability["driver-1"])

	msg := receive(t, rider)
	assert.Equal(t, EventAvailabilityChanged, msg.Type)
	assert.Equal(t, true, msg.Data["available"])
}

func TestForwardedEventsAreRenamed(t *testing.T) {
	hub, _ := testHub()
	rider := attachClient(hub, "rider-1", "rider")
	driver := attachClient(hub, "driver-1", "driver")

	raw, _ := json.Marshal(Message{
		Type: EventRideRequest,
		Data: map[string]interface{}{"driver_id": "driver-1", "ride_id": "r1"},
	})
	hub.handleMessage(rider, raw)

	msg := receive(t, driver)
	assert.Equal(t, EventNewRideRequest, msg.Type)
	assert.Equal(t, "rider-1", msg.SenderID)
	assert.Equal(t, "r1", msg.Data["ride_id"])

	// Missing recipient field drops the event without an error frame.
	raw, _ = json.Marshal(Message{Type: EventRideRequest, Data: map[string]interface{}{"ride_id": "r2"}})
	hub.handleMessage(rider, raw)
	assert.Empty(t, driver.send)
	assert.Empty(t, rider.send)
}

func TestSendRacingDisconnectDoesNotPanic(t *testing.T) {
	hub, _ := testHub()
	client := attachClient(hub, "driver-1", "driver")

	// A fan-out that looked the client up before its disconnect finished must
	// be dropped, not crash the sender's goroutine.
	looked, ok := hub.registry.Lookup("driver-1")
	require.True(t, ok)

	hub.unregister(client)

	assert.NotPanics(t, func() {
		looked.enqueue([]byte(`{"type":"new_message"}`))
	})
	assert.Empty(t, client.send, "messages after shutdown are dropped")
	assert.False(t, hub.NotifyUser("driver-1", EventNewMessage, nil))
}

func TestDisplacedConnectionDropsLateSends(t *testing.T) {
	hub, _ := testHub()
	old := attachClient(hub, "driver-1", "driver")
	fresh := attachClient(hub, "driver-1", "driver")

	assert.NotPanics(t, func() {
		old.enqueue([]byte(`{"type":"ride_accepted"}`))
	})
	assert.Empty(t, old.send)

	require.True(t, hub.NotifyUser("driver-1", EventRideAccepted, nil))
	msg := receive(t, fresh)
	assert.Equal(t, EventRideAccepted, msg.Type)
}

func TestUnregisterStampsLastSeen(t *testing.T) {
	hub, presence := testHub()
	driver := attachClient(hub, "driver-1", "driver")
	rider := attachClient(hub, "rider-1", "rider")

	hub.unregister(driver)

	assert.Equal(t, 1, presence.lastSeen["driver-1"])
	assert.Equal(t, 1, hub.ConnectedCount())

	msg := receive(t, rider)
	assert.Equal(t, EventUserDisconnected, msg.Type)
	assert.Equal(t, "driver-1", msg.SenderID)

	// Stale cleanup after a reconnect already replaced the entry is a no-op.
	hub.unregister(driver)
	assert.Equal(t, 1, presence.lastSeen["driver-1"])
}
