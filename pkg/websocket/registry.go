package websocket

import (
	"sync"
)

// Registry maps an authenticated user id to exactly one live connection.
// Injected into the hub so tests can fake it and deployments can shard it.
type Registry interface {
	Register(userID string, client *Client) (previous *Client)
	Lookup(userID string) (*Client, bool)
	Remove(userID string, client *Client) bool
	Each(fn func(userID string, client *Client))
	Count() int
}

// memoryRegistry is the in-process implementation. The last connection for a
// user wins; the displaced one is returned from Register so the hub can close
// it.
type memoryRegistry struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

func NewMemoryRegistry() Registry {
	return &memoryRegistry{
		clients: make(map[string]*Client),
	}
}

func (r *memoryRegistry) Register(userID string, client *Client) *Client {
	r.mu.Lock()
	defer r.mu.Unlock()

	previous := r.clients[userID]
	r.clients[userID] = client
	return previous
}

func (r *memoryRegistry) Lookup(userID string) (*Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	client, ok := r.clients[userID]
	return client, ok
}

// Remove deletes the entry only if it still points at the given client, so a
// reconnect that already displaced it is not torn down by the old
// connection's cleanup.
func (r *memoryRegistry) Remove(userID string, client *Client) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.clients[userID]
	if !ok || current != client {
		return false
	}

	delete(r.clients, userID)
	return true
}

func (r *memoryRegistry) Each(fn func(userID string, client *Client)) {
	r.mu.RLock()
	snapshot := make(map[string]*Client, len(r.clients))
	for id, c := range r.clients {
		snapshot[id] = c
	}
	r.mu.RUnlock()

	for id, c := range snapshot {
		fn(id, c)
	}
}

func (r *memoryRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}
