package hub

import "sync"

// Presence maps a user id to at most one live client. It is the only
// record of who is connected; callers never see the raw map.
type Presence struct {
	mu     sync.RWMutex
	online map[string]*Client
}

func NewPresence() *Presence {
	return &Presence{
		online: make(map[string]*Client),
	}
}

// Announce registers the live client for a user, superseding any previous
// connection's entry.
func (p *Presence) Announce(userID string, c *Client) {
	if userID == "" {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.online[userID] = c
}

// Resolve returns the user's live client, if any.
func (p *Presence) Resolve(userID string) (*Client, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	c, ok := p.online[userID]
	return c, ok
}

// Remove drops the entry for whichever user currently maps to exactly this
// client. A no-op when the entry has been superseded by a newer connection,
// so a stale termination never evicts a live one.
func (p *Presence) Remove(c *Client) {
	userID := c.UserID()
	if userID == "" {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if current, ok := p.online[userID]; ok && current == c {
		delete(p.online, userID)
	}
}

// Len returns the number of users with a live connection.
func (p *Presence) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.online)
}

// Clients returns the currently connected clients.
func (p *Presence) Clients() []*Client {
	p.mu.RLock()
	defer p.mu.RUnlock()

	clients := make([]*Client, 0, len(p.online))
	for _, c := range p.online {
		clients = append(clients, c)
	}
	return clients
}

// Snapshot returns the current userID -> clientID mapping.
func (p *Presence) Snapshot() map[string]string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	snap := make(map[string]string, len(p.online))
	for userID, c := range p.online {
		snap[userID] = c.ID
	}
	return snap
}
