package services

import "sync"

// PresenceService tracks which users currently have at least one realtime
// connection. Connections are reference-counted per user so closing one tab
// does not mark a user offline while another tab remains connected.
// It is constructed at gateway start and never persisted.
type PresenceService struct {
	mu          sync.RWMutex
	connections map[string]int // userID -> open connection count
}

// NewPresenceService returns an empty presence set.
func NewPresenceService() *PresenceService {
	return &PresenceService{connections: make(map[string]int)}
}

// Add registers a connection for userID and reports whether the user just
// came online (first connection).
func (p *PresenceService) Add(userID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.connections[userID]++
	return p.connections[userID] == 1
}

// Remove unregisters a connection for userID and reports whether the user
// went offline (last connection closed).
func (p *PresenceService) Remove(userID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	count, ok := p.connections[userID]
	if !ok {
		return false
	}
	if count <= 1 {
		delete(p.connections, userID)
		return true
	}
	p.connections[userID] = count - 1
	return false
}

// Contains reports whether userID has at least one open connection.
func (p *PresenceService) Contains(userID string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.connections[userID]
	return ok
}

// OnlineUsers returns the IDs of all currently connected users.
func (p *PresenceService) OnlineUsers() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	users := make([]string, 0, len(p.connections))
	for id := range p.connections {
		users = append(users, id)
	}
	return users
}
