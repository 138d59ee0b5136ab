package main

import (
	"encoding/json"
	"log"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait         = 10 * time.Second
	pongWait          = 60 * time.Second
	pingPeriod        = (pongWait * 9) / 10
	maxMessageSize    = 4096
	sendBufSize       = 256
	maxMessagesPerSec = 50
)

// Client represents a WebSocket connection. It is the Broadcaster handle the
// match engine writes snapshots and events through.
type Client struct {
	hub        *Hub
	conn       *websocket.Conn
	send       chan []byte
	remoteAddr string
	msgCount   int
	msgResetAt time.Time
	alive      atomic.Bool
	// Auth state
	playerID string // "" = unauthenticated
	username string
	isAdmin  bool
}

// NewClient creates a new Client
func NewClient(hub *Hub, conn *websocket.Conn, remoteAddr string) *Client {
	c := &Client{
		hub:        hub,
		conn:       conn,
		send:       make(chan []byte, sendBufSize),
		remoteAddr: remoteAddr,
	}
	c.alive.Store(true)
	return c
}

// Connected reports whether this handle still has a live socket
func (c *Client) Connected() bool {
	return c.alive.Load()
}

// ReadPump reads messages from the WebSocket connection
func (c *Client) ReadPump() {
	defer func() {
		c.alive.Store(false)
		c.hub.TrackDisconnect(c.remoteAddr)
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("ws error: %v", err)
			}
			break
		}

		// Rate limiting
		now := time.Now()
		if now.After(c.msgResetAt) {
			c.msgCount = 0
			c.msgResetAt = now.Add(time.Second)
		}
		c.msgCount++
		if c.msgCount > maxMessagesPerSec {
			log.Printf("rate limit exceeded for %s, disconnecting", c.remoteAddr)
			break
		}

		c.handleMessage(message)
	}
}

// WritePump writes messages to the WebSocket connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			// Check for binary marker (0xFF prefix from SendBinary)
			var err error
			if len(message) > 0 && message[0] == 0xFF {
				err = c.conn.WriteMessage(websocket.BinaryMessage, message[1:])
			} else {
				err = c.conn.WriteMessage(websocket.TextMessage, message)
			}
			if err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendJSON sends a JSON message to the client
func (c *Client) SendJSON(msg interface{}) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("marshal error: %v", err)
		return
	}
	c.SendRaw(data)
}

// SendRaw sends pre-marshaled bytes as a text message to the client
func (c *Client) SendRaw(data []byte) {
	defer func() { recover() }()
	select {
	case c.send <- data:
	default:
		// Client too slow, drop message
	}
}

// SendBinary sends pre-marshaled bytes as a binary WebSocket message
// Prefixes with 0xFF marker byte so WritePump can distinguish from text
func (c *Client) SendBinary(data []byte) {
	defer func() { recover() }()
	msg := make([]byte, len(data)+1)
	msg[0] = 0xFF // binary marker
	copy(msg[1:], data)
	select {
	case c.send <- msg:
	default:
	}
}

func (c *Client) sendError(msg string) {
	c.SendJSON(Envelope{T: MsgError, Data: ErrorMsg{Msg: msg}})
}

// handleMessage routes incoming messages (single-pass decode via InEnvelope)
func (c *Client) handleMessage(raw []byte) {
	var env InEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		log.Printf("unmarshal error: %v", err)
		return
	}

	switch env.T {
	case MsgRegister:
		c.handleRegister(env.D)
	case MsgLogin:
		c.handleLogin(env.D)
	case MsgAuth:
		c.handleAuth(env.D)
	case MsgProfile:
		c.sendProfile()
	case MsgJoinQueue:
		c.handleJoinQueue()
	case MsgLeaveQueue:
		c.handleLeaveQueue()
	case MsgPlay:
		c.handlePlay(env.D)
	case MsgInvite:
		c.handleInvite(env.D)
	case MsgAcceptInv:
		c.handleAcceptInvite(env.D)
	case MsgOpenChest:
		c.handleOpenChest(env.D)
	case MsgSetDeck:
		c.handleSetDeck(env.D)
	case MsgAdmin:
		c.handleAdmin(env.D)
	}
}

func (c *Client) handleRegister(data json.RawMessage) {
	var msg RegisterMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	id, token, err := c.hub.auth.Register(msg.Username, msg.Password)
	if err != nil {
		c.sendError(err.Error())
		return
	}
	c.authenticated(id, msg.Username, token)
}

func (c *Client) handleLogin(data json.RawMessage) {
	var msg LoginMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	id, token, err := c.hub.auth.Login(msg.Username, msg.Password, c.remoteAddr)
	if err != nil {
		c.sendError(err.Error())
		return
	}
	c.authenticated(id, msg.Username, token)
}

func (c *Client) handleAuth(data json.RawMessage) {
	var msg AuthMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	id, username, err := c.hub.auth.ValidateToken(msg.Token)
	if err != nil {
		c.sendError("invalid token")
		return
	}
	c.authenticated(id, username, msg.Token)

	// Re-attach a live handle if the player has a match in flight
	if match := c.hub.queue.MatchFor(id); match != nil && !match.IsOver() {
		match.SetConn(id, c)
	}
}

// authenticated records auth state, marks the player online and confirms
func (c *Client) authenticated(playerID, username, token string) {
	c.playerID = playerID
	c.username = username
	if player, err := c.hub.db.GetPlayerByID(playerID); err == nil && player != nil {
		c.isAdmin = player.IsAdmin
	}
	c.hub.SetOnline(playerID, c)
	c.hub.analytics.Track(EvtLogin, playerID, "", "")
	c.SendJSON(Envelope{T: MsgAuthOK, Data: AuthOKMsg{
		Token:    token,
		Username: username,
		PlayerID: playerID,
	}})
}

func (c *Client) sendProfile() {
	if c.playerID == "" {
		c.sendError("not authenticated")
		return
	}
	profile, err := c.hub.db.GetProfile(c.playerID)
	if err != nil || profile == nil {
		c.sendError("profile not found")
		return
	}
	chests, _ := c.hub.db.ListChests(c.playerID)
	infos := make([]ChestInfo, 0, len(chests))
	for _, ch := range chests {
		infos = append(infos, ChestInfo{ID: ch.ID, Type: ch.Type})
	}
	c.SendJSON(Envelope{T: MsgProfileData, Data: ProfileDataMsg{
		PlayerID: c.playerID,
		Username: c.username,
		Gold:     profile.Gold,
		Gems:     profile.Gems,
		Trophies: profile.Trophies,
		Wins:     profile.Wins,
		Losses:   profile.Losses,
		Deck:     profile.Deck,
		Chests:   infos,
	}})
}

// participant builds the queue entry for this client, loading the saved deck
func (c *Client) participant() (Participant, bool) {
	profile, err := c.hub.db.GetProfile(c.playerID)
	if err != nil || profile == nil {
		return Participant{}, false
	}
	deck := profile.Deck
	if len(deck) == 0 {
		deck = DefaultDeck
	}
	return Participant{
		ID:   c.playerID,
		Name: c.username,
		Conn: c,
		Deck: deck,
	}, true
}

func (c *Client) handleJoinQueue() {
	// Unauthenticated players get a throwaway guest account
	if c.playerID == "" {
		id, username, token, err := c.hub.auth.RegisterGuest()
		if err != nil {
			c.sendError(err.Error())
			return
		}
		c.authenticated(id, username, token)
	}

	p, ok := c.participant()
	if !ok {
		c.sendError("profile not found")
		return
	}
	if !c.hub.queue.Enqueue(p) {
		c.sendError("already in a match")
		return
	}
	c.hub.analytics.Track(EvtQueueJoin, c.playerID, "", "")
	c.SendJSON(Envelope{T: MsgQueued, Data: map[string]int{"waiting": c.hub.queue.WaitingCount()}})
}

func (c *Client) handleLeaveQueue() {
	if c.playerID == "" {
		return
	}
	c.hub.queue.Leave(c.playerID)
}

func (c *Client) handlePlay(data json.RawMessage) {
	if c.playerID == "" {
		return
	}
	var msg PlayMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	if c.hub.queue.RouteInput(c.playerID, msg.CardID, msg.X, msg.Y) {
		c.hub.analytics.Track(EvtCardPlayed, c.playerID, "", msg.CardID)
	}
}

func (c *Client) handleInvite(data json.RawMessage) {
	if c.playerID == "" {
		c.sendError("not authenticated")
		return
	}
	var msg InviteMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	if msg.TargetID == c.playerID {
		c.sendError("cannot invite yourself")
		return
	}
	target := c.hub.GetOnlineClient(msg.TargetID)
	if target == nil {
		c.sendError("player not online")
		return
	}
	c.hub.RecordInvite(msg.TargetID, c.playerID)
	target.SendJSON(Envelope{T: MsgInviteRecv, Data: InviteRecvMsg{
		InviterID:   c.playerID,
		InviterName: c.username,
	}})
}

func (c *Client) handleAcceptInvite(data json.RawMessage) {
	if c.playerID == "" {
		c.sendError("not authenticated")
		return
	}
	var msg AcceptInviteMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	if !c.hub.TakeInvite(c.playerID, msg.InviterID) {
		c.sendError("no pending invite")
		return
	}
	inviter := c.hub.GetOnlineClient(msg.InviterID)
	if inviter == nil {
		c.sendError("inviter no longer online")
		return
	}

	p1, ok1 := inviter.participant()
	p2, ok2 := c.participant()
	if !ok1 || !ok2 {
		c.sendError("profile not found")
		return
	}
	if c.hub.queue.CreateFriendly(p1, p2) == nil {
		c.sendError("a player is already in a match")
	}
}

func (c *Client) handleOpenChest(data json.RawMessage) {
	if c.playerID == "" {
		c.sendError("not authenticated")
		return
	}
	var msg OpenChestMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	opened, err := c.hub.rewards.OpenChest(c.playerID, msg.ChestID)
	if err != nil {
		c.sendError(err.Error())
		return
	}
	c.hub.analytics.Track(EvtChestOpen, c.playerID, "", msg.ChestID)
	c.SendJSON(Envelope{T: MsgChestOpened, Data: opened})
}

func (c *Client) handleSetDeck(data json.RawMessage) {
	if c.playerID == "" {
		c.sendError("not authenticated")
		return
	}
	var msg SetDeckMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	if len(msg.Deck) != len(DefaultDeck) {
		c.sendError("deck must hold 8 cards")
		return
	}
	for _, id := range msg.Deck {
		card := LookupCard(id)
		if card == nil || card.Type == TypeBuilding {
			c.sendError("invalid deck card " + id)
			return
		}
	}
	if err := c.hub.db.UpdateDeck(c.playerID, msg.Deck); err != nil {
		c.sendError("could not save deck")
		return
	}
	c.sendProfile()
}

func (c *Client) handleAdmin(data json.RawMessage) {
	if !c.isAdmin {
		c.sendError("not authorized")
		return
	}
	var cmd AdminCommand
	if err := json.Unmarshal(data, &cmd); err != nil {
		return
	}
	payload, err := DispatchAdmin(c.hub.queue, c.hub.rewards, cmd)
	if err != nil {
		c.sendError(err.Error())
		return
	}
	if payload != nil {
		c.SendJSON(Envelope{T: MsgAdminStats, Data: payload})
	}
}
