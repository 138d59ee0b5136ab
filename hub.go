package main

import (
	"sync"
	"time"
)

const inviteTTL = 60 * time.Second

type pendingInvite struct {
	InviterID string
	ExpiresAt time.Time
}

// Hub manages all connected clients and the shared server collaborators
type Hub struct {
	mu         sync.RWMutex
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client

	// Connection limiting (mutex-protected, accessed from HTTP handlers)
	connMu        sync.Mutex
	ipConns       map[string]int
	totalConns    int
	maxConns      int
	maxConnsPerIP int

	db        *DB
	auth      *Auth
	queue     *MatchQueue
	rewards   *Rewards
	analytics *Analytics

	// Online auth users: playerID -> *Client
	onlineMu    sync.RWMutex
	onlineUsers map[string]*Client

	// Pending friendly invites: inviteeID -> invite
	inviteMu sync.Mutex
	invites  map[string]pendingInvite
}

// NewHub wires the server collaborators together
func NewHub(db *DB, cfg *Config) *Hub {
	h := &Hub{
		clients:       make(map[*Client]bool),
		register:      make(chan *Client, 64),
		unregister:    make(chan *Client, 64),
		ipConns:       make(map[string]int),
		maxConns:      cfg.MaxConns,
		maxConnsPerIP: cfg.MaxConnsPerIP,
		db:            db,
		auth:          NewAuth(db),
		onlineUsers:   make(map[string]*Client),
		invites:       make(map[string]pendingInvite),
	}
	h.analytics = NewAnalytics(db)
	h.rewards = NewRewards(db, h.analytics, h.pushProfile)
	h.queue = NewMatchQueue(h.rewards.HandleMatchResult)
	return h
}

func (h *Hub) CanAccept(ip string) bool {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	if h.totalConns >= h.maxConns {
		return false
	}
	if h.ipConns[ip] >= h.maxConnsPerIP {
		return false
	}
	return true
}

func (h *Hub) TrackConnect(ip string) {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	h.ipConns[ip]++
	h.totalConns++
}

func (h *Hub) TrackDisconnect(ip string) {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	h.ipConns[ip]--
	if h.ipConns[ip] <= 0 {
		delete(h.ipConns, ip)
	}
	h.totalConns--
}

// Run processes register/unregister events
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			if client.playerID != "" {
				h.SetOffline(client.playerID, client)
				h.queue.Disconnect(client.playerID, client)
			}
		}
	}
}

// SetOnline marks an authenticated player as online
func (h *Hub) SetOnline(playerID string, client *Client) {
	h.onlineMu.Lock()
	defer h.onlineMu.Unlock()
	h.onlineUsers[playerID] = client
}

// SetOffline removes a player from online tracking, but only when the
// departing client is still the registered one.
func (h *Hub) SetOffline(playerID string, client *Client) {
	h.onlineMu.Lock()
	defer h.onlineMu.Unlock()
	if h.onlineUsers[playerID] == client {
		delete(h.onlineUsers, playerID)
	}
}

// GetOnlineClient returns the client for an online player, or nil
func (h *Hub) GetOnlineClient(playerID string) *Client {
	h.onlineMu.RLock()
	defer h.onlineMu.RUnlock()
	return h.onlineUsers[playerID]
}

// IsOnline checks if a player has a live connection
func (h *Hub) IsOnline(playerID string) bool {
	return h.GetOnlineClient(playerID) != nil
}

// RecordInvite stores a pending friendly invite for the invitee
func (h *Hub) RecordInvite(inviteeID, inviterID string) {
	h.inviteMu.Lock()
	defer h.inviteMu.Unlock()
	h.invites[inviteeID] = pendingInvite{
		InviterID: inviterID,
		ExpiresAt: time.Now().Add(inviteTTL),
	}
}

// TakeInvite consumes a pending invite if it matches and hasn't expired
func (h *Hub) TakeInvite(inviteeID, inviterID string) bool {
	h.inviteMu.Lock()
	defer h.inviteMu.Unlock()
	inv, ok := h.invites[inviteeID]
	if !ok || inv.InviterID != inviterID || time.Now().After(inv.ExpiresAt) {
		return false
	}
	delete(h.invites, inviteeID)
	return true
}

// pushProfile sends a fresh profile to a player if they are online. Used by
// the economy layer after rewards land.
func (h *Hub) pushProfile(playerID string) {
	client := h.GetOnlineClient(playerID)
	if client != nil {
		client.sendProfile()
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// TotalConns returns the tracked connection count
func (h *Hub) TotalConns() int {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	return h.totalConns
}
