package main

import "encoding/json"

// Client -> Server message types
const (
	MsgRegister   = "register"
	MsgLogin      = "login"
	MsgAuth       = "auth"
	MsgProfile    = "profile"
	MsgJoinQueue  = "join_queue"
	MsgLeaveQueue = "leave_queue"
	MsgPlay       = "play" // card placement input
	MsgInvite     = "invite_friendly"
	MsgAcceptInv  = "accept_friendly"
	MsgOpenChest  = "open_chest"
	MsgSetDeck    = "set_deck"
	MsgAdmin      = "admin"
)

// Server -> Client message types
const (
	MsgAuthOK      = "auth_ok"
	MsgProfileData = "profile_data"
	MsgQueued      = "queued"
	MsgMatchStart  = "match_start"
	MsgMatchOver   = "match_over"
	MsgInviteRecv  = "invite_received"
	MsgChestOpened = "chest_opened"
	MsgAdminStats  = "admin_stats"
	MsgError       = "error"
)

// Envelope wraps all outgoing JSON messages with a type field
type Envelope struct {
	T    string      `json:"t"`
	Data interface{} `json:"d,omitempty"`
}

// InEnvelope is used for incoming messages — json.RawMessage avoids double-unmarshal
type InEnvelope struct {
	T string          `json:"t"`
	D json.RawMessage `json:"d,omitempty"`
}

// RegisterMsg creates an account
type RegisterMsg struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginMsg authenticates with credentials
type LoginMsg struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthMsg authenticates with a stored token
type AuthMsg struct {
	Token string `json:"token"`
}

// AuthOKMsg confirms authentication
type AuthOKMsg struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	PlayerID string `json:"pid"`
}

// PlayMsg is a card placement request
type PlayMsg struct {
	CardID string  `json:"card"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

// InviteMsg requests a friendly battle with an online player
type InviteMsg struct {
	TargetID string `json:"tid"`
}

// AcceptInviteMsg accepts a pending friendly invite
type AcceptInviteMsg struct {
	InviterID string `json:"iid"`
}

// InviteRecvMsg notifies a player of a friendly invite
type InviteRecvMsg struct {
	InviterID   string `json:"iid"`
	InviterName string `json:"iname"`
}

// OpenChestMsg opens a chest slot
type OpenChestMsg struct {
	ChestID string `json:"cid"`
}

// SetDeckMsg replaces the player's battle deck
type SetDeckMsg struct {
	Deck []string `json:"deck"`
}

// RosterEntry describes one participant in a match-start event
type RosterEntry struct {
	PlayerID string `json:"pid"`
	Name     string `json:"name"`
	Side     string `json:"side"` // "BOTTOM" or "TOP"
}

// MatchStartMsg announces a new match to both participants
type MatchStartMsg struct {
	MatchID  string        `json:"mid"`
	Roster   []RosterEntry `json:"roster"`
	Duration float64       `json:"duration"` // seconds
	Friendly bool          `json:"friendly"`
}

// MatchOverMsg is the terminal match-result event
type MatchOverMsg struct {
	MatchID      string `json:"mid"`
	WinnerID     string `json:"winner,omitempty"` // "" = draw or forced no-winner
	Reason       string `json:"reason"`
	TrophyChange int    `json:"trophies"`
}

// EntityWire is the snapshot form of one entity
type EntityWire struct {
	ID          string  `msgpack:"id" json:"id"`
	Card        string  `msgpack:"c" json:"c"`
	Owner       string  `msgpack:"o" json:"o"`
	X           float64 `msgpack:"x" json:"x"`
	Y           float64 `msgpack:"y" json:"y"`
	HP          int     `msgpack:"hp" json:"hp"`
	MaxHP       int     `msgpack:"mhp" json:"mhp"`
	State       string  `msgpack:"s" json:"s"`
	FacingRight bool    `msgpack:"f" json:"f"`
}

// ProjectileWire is the snapshot form of one projectile
type ProjectileWire struct {
	ID    string  `msgpack:"id" json:"id"`
	Owner string  `msgpack:"o" json:"o"`
	Kind  int     `msgpack:"k" json:"k"`
	X     float64 `msgpack:"x" json:"x"`
	Y     float64 `msgpack:"y" json:"y"`
	TX    float64 `msgpack:"tx" json:"tx"`
	TY    float64 `msgpack:"ty" json:"ty"`
}

// EffectWire is a transient, non-authoritative visual hint
type EffectWire struct {
	Kind  string  `msgpack:"k" json:"k"` // "zap", "splash", "spawn"
	Owner string  `msgpack:"o" json:"o"`
	X     float64 `msgpack:"x" json:"x"`
	Y     float64 `msgpack:"y" json:"y"`
	Scale float64 `msgpack:"sc" json:"sc"`
}

// Snapshot is the full per-tick state broadcast, msgpack-encoded as a binary
// WebSocket frame.
type Snapshot struct {
	Time        float64            `msgpack:"t" json:"t"` // remaining seconds
	Elixir      map[string]float64 `msgpack:"e" json:"e"`
	Entities    []EntityWire       `msgpack:"en" json:"en"`
	Projectiles []ProjectileWire   `msgpack:"pr" json:"pr"`
	Effects     []EffectWire       `msgpack:"fx" json:"fx,omitempty"`
	Tick        uint64             `msgpack:"n" json:"n"`
}

// ProfileDataMsg returns the persisted player profile
type ProfileDataMsg struct {
	PlayerID string      `json:"pid"`
	Username string      `json:"username"`
	Gold     int         `json:"gold"`
	Gems     int         `json:"gems"`
	Trophies int         `json:"trophies"`
	Wins     int         `json:"wins"`
	Losses   int         `json:"losses"`
	Deck     []string    `json:"deck"`
	Chests   []ChestInfo `json:"chests"`
}

// ChestOpenedMsg reports chest rewards
type ChestOpenedMsg struct {
	Gold  int      `json:"gold"`
	Cards []string `json:"cards"`
}

// ErrorMsg sends an error to the client
type ErrorMsg struct {
	Msg string `json:"msg"`
}
