package main

import (
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

const (
	TickRate     = 30 // simulation ticks per second
	TickDuration = time.Second / TickRate

	MatchDuration     = 180.0 // seconds
	StartElixir       = 5.0
	MaxElixir         = 10.0
	ElixirInterval    = 2.8  // seconds per elixir point
	LateGameThreshold = 60.0 // remaining seconds at which regen doubles
	maxTickStep       = 0.25 // clamp on dt after a scheduler stall

	autoplayInterval  = 2.0 // seconds between autoplay decisions
	autoplayMinElixir = 4.0

	elixirCostTolerance = 0.1

	winTrophyChange = 30
)

// Termination reasons for the match-result event
const (
	ReasonTowerDestroyed = "TOWER_DESTROYED"
	ReasonTimeUp         = "TIME_UP"
	ReasonForfeit        = "FORFEIT"
	ReasonForced         = "FORCED"
)

// Broadcaster delivers outbound messages to one participant's connection
type Broadcaster interface {
	SendJSON(msg interface{})
	SendBinary(data []byte)
	Connected() bool
}

// MatchResult is the one-shot terminal event handed to the economy collaborator
type MatchResult struct {
	MatchID      string
	WinnerID     string // "" = draw / forced no-winner
	LoserID      string
	Reason       string
	Friendly     bool
	TrophyChange int
}

// ResultFunc consumes the match result exactly once per match
type ResultFunc func(MatchResult)

// Participant is one side of a match as handed over by the pairing queue
type Participant struct {
	ID   string
	Name string
	Conn Broadcaster
	Deck []string
}

// overrides holds per-player admin flags, honored every tick
type overrides struct {
	UnlimitedElixir bool
	Invulnerable    bool
	Frozen          bool
	Autoplay        bool
	ElixirMult      float64
}

// Match owns one match's authoritative state. All mutation goes through the
// per-match mutex: the tick callback, input submission and admin calls are
// serialized relative to one another.
type Match struct {
	ID string

	mu          sync.Mutex
	p1          string // bottom side
	p2          string // top side
	names       map[string]string
	conns       map[string]Broadcaster
	decks       map[string][]string
	elixir      map[string]float64
	entities    []*Entity
	projectiles []*Projectile
	effects     []EffectWire
	overrides   map[string]*overrides
	aiTimers    map[string]float64
	timeLeft    float64
	tick        uint64
	over        bool
	winnerID    string
	reason      string
	friendly    bool

	lastTime time.Time
	stop     chan struct{}
	running  bool
	onResult ResultFunc
}

// NewMatch constructs a match between two participants. p1 takes the bottom
// side. Towers are spawned immediately; the loop starts with Start().
func NewMatch(id string, p1, p2 Participant, friendly bool, onResult ResultFunc) *Match {
	m := &Match{
		ID:        id,
		p1:        p1.ID,
		p2:        p2.ID,
		names:     map[string]string{p1.ID: p1.Name, p2.ID: p2.Name},
		conns:     map[string]Broadcaster{p1.ID: p1.Conn, p2.ID: p2.Conn},
		decks:     map[string][]string{p1.ID: p1.Deck, p2.ID: p2.Deck},
		elixir:    map[string]float64{p1.ID: StartElixir, p2.ID: StartElixir},
		overrides: map[string]*overrides{p1.ID: {ElixirMult: 1}, p2.ID: {ElixirMult: 1}},
		aiTimers:  map[string]float64{p1.ID: 0, p2.ID: 0},
		timeLeft:  MatchDuration,
		friendly:  friendly,
		stop:      make(chan struct{}),
		onResult:  onResult,
	}
	for pid, deck := range m.decks {
		if len(deck) == 0 {
			m.decks[pid] = DefaultDeck
		}
	}
	m.spawnTowers(p1.ID, true)
	m.spawnTowers(p2.ID, false)
	return m
}

func (m *Match) spawnTowers(playerID string, bottom bool) {
	yPrincess, yKing := 6.5, 2.5
	if !bottom {
		yPrincess = ArenaHeight - 6.5
		yKing = ArenaHeight - 2.5
	}
	for _, spawn := range []struct {
		card string
		x, y float64
	}{
		{"tower_princess", 3.5, yPrincess},
		{"tower_princess", ArenaWidth - 3.5, yPrincess},
		{KingTowerID, ArenaWidth / 2, yKing},
	} {
		if e := NewEntity(spawn.card, playerID, spawn.x, spawn.y); e != nil {
			// Towers are live from the first tick
			e.State = StateIdle
			e.DeployTimer = 0
			m.entities = append(m.entities, e)
		}
	}
}

// Start announces the match to both participants and launches the tick loop
func (m *Match) Start() {
	m.mu.Lock()
	m.running = true
	m.lastTime = time.Now()
	start := Envelope{T: MsgMatchStart, Data: MatchStartMsg{
		MatchID: m.ID,
		Roster: []RosterEntry{
			{PlayerID: m.p1, Name: m.names[m.p1], Side: "BOTTOM"},
			{PlayerID: m.p2, Name: m.names[m.p2], Side: "TOP"},
		},
		Duration: m.timeLeft,
		Friendly: m.friendly,
	}}
	conns := []Broadcaster{m.conns[m.p1], m.conns[m.p2]}
	m.mu.Unlock()

	for _, c := range conns {
		if c != nil {
			c.SendJSON(start)
		}
	}
	go m.run()
}

func (m *Match) run() {
	ticker := time.NewTicker(TickDuration)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.safeUpdate()
		case <-m.stop:
			return
		}
	}
}

// safeUpdate guards a single tick: an unexpected fault is logged and the loop
// continues on the next interval without affecting other matches.
func (m *Match) safeUpdate() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[match %s] tick panic recovered: %v", m.ID, r)
		}
	}()
	m.update()
}

// Stop cancels the tick scheduling. Idempotent.
func (m *Match) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopLocked()
}

func (m *Match) stopLocked() {
	if m.running {
		m.running = false
		close(m.stop)
	}
}

// update runs one simulation tick
func (m *Match) update() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.over {
		return
	}

	now := time.Now()
	dt := now.Sub(m.lastTime).Seconds()
	m.lastTime = now
	if dt > maxTickStep {
		dt = maxTickStep
	}
	m.tick++
	m.timeLeft -= dt

	if m.timeLeft <= 0 {
		m.endLocked("", ReasonTimeUp)
		m.broadcastSnapshot()
		return
	}

	m.regenElixir(dt)
	m.runAutoplay(dt)
	m.advanceProjectiles(dt)
	m.advanceEntities(dt)

	m.broadcastSnapshot()
}

// regenElixir applies phase (b) of the tick: base rate, late-game doubling,
// admin multiplier, unlimited-elixir pinning.
func (m *Match) regenElixir(dt float64) {
	interval := ElixirInterval
	if m.timeLeft <= LateGameThreshold {
		interval /= 2
	}
	for pid, bal := range m.elixir {
		ov := m.overrides[pid]
		if ov.UnlimitedElixir {
			m.elixir[pid] = MaxElixir
			continue
		}
		m.elixir[pid] = Clamp(bal+(dt/interval)*ov.ElixirMult, 0, MaxElixir)
	}
}

// runAutoplay performs throttled card selection and placement for players
// with the autoplay override enabled, through the normal submission path.
func (m *Match) runAutoplay(dt float64) {
	for pid, ov := range m.overrides {
		if !ov.Autoplay {
			continue
		}
		m.aiTimers[pid] += dt
		if m.aiTimers[pid] < autoplayInterval {
			continue
		}
		m.aiTimers[pid] = 0

		if m.elixir[pid] < autoplayMinElixir {
			continue
		}
		deck := m.decks[pid]
		card := LookupCard(deck[rand.Intn(len(deck))])
		if card == nil || m.elixir[pid] < card.Cost {
			continue
		}

		// Lane-appropriate point on own half, just behind the bridge
		y := BridgeY - 3
		if pid == m.p2 {
			y = BridgeY + 3
		}
		x := 4.5
		if rand.Float64() > 0.5 {
			x = ArenaWidth - 4.5
		}
		m.submitLocked(pid, card.ID, x, y, false)
	}
}

// SubmitInput handles a card placement from a player. Invalid submissions are
// silently ignored; the returned bool exists for tests and admin callers.
func (m *Match) SubmitInput(playerID, cardID string, x, y float64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.submitLocked(playerID, cardID, x, y, false)
}

// ForceSpawn is the admin bypass-cost spawn: no elixir check, no zone check,
// instant deployment.
func (m *Match) ForceSpawn(playerID, cardID string, x, y float64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.submitLocked(playerID, cardID, x, y, true)
}

func (m *Match) submitLocked(playerID, cardID string, x, y float64, bypassCost bool) bool {
	if m.over {
		return false
	}
	if _, ok := m.elixir[playerID]; !ok {
		return false
	}
	card := LookupCard(cardID)
	if card == nil {
		return false
	}

	ov := m.overrides[playerID]
	if !bypassCost && !ov.UnlimitedElixir && m.elixir[playerID] < card.Cost-elixirCostTolerance {
		return false
	}

	isP1 := playerID == m.p1
	if !bypassCost && !card.IsGlobalSpawn() {
		if isP1 && y > BridgeY {
			return false
		}
		if !isP1 && y < BridgeY {
			return false
		}
	}

	// Deduct before spawning
	if !bypassCost && !ov.UnlimitedElixir {
		m.elixir[playerID] -= card.Cost
	}

	switch {
	case card.Stats.Projectile == ProjLog:
		forward := 1.0
		if !isP1 {
			forward = -1.0
		}
		m.projectiles = append(m.projectiles, NewLogProjectile(card, playerID, x, y, forward))

	case card.Stats.Projectile == ProjBarrel:
		m.projectiles = append(m.projectiles, NewBarrelProjectile(card, playerID, x, y, m.backLineY(isP1)))

	case card.Type == TypeSpell:
		m.projectiles = append(m.projectiles, NewSpellProjectile(card, playerID, x, y, m.backLineY(isP1)))

	default:
		for _, off := range spawnOffsets(card.Stats.Count) {
			e := NewEntity(card.ID, playerID, x+off.x, y+off.y)
			if e == nil {
				continue
			}
			if bypassCost {
				e.DeployTimer = 0
				e.State = StateIdle
			}
			m.entities = append(m.entities, e)
			m.applySpawnDamage(e, card)
		}
	}
	return true
}

func (m *Match) backLineY(isP1 bool) float64 {
	if isP1 {
		return 0
	}
	return ArenaHeight
}

type offset struct{ x, y float64 }

// spawnOffsets returns the fixed per-count placement pattern around the
// requested point; unknown counts fall back to a jittered cluster.
func spawnOffsets(count int) []offset {
	switch count {
	case 0, 1:
		return []offset{{0, 0}}
	case 2:
		return []offset{{-0.5, 0}, {0.5, 0}}
	case 3:
		return []offset{{0, 0.8}, {-0.7, -0.4}, {0.7, -0.4}}
	case 6:
		return []offset{
			{-0.5, 0.5}, {0.5, 0.5},
			{-0.5, -0.5}, {0.5, -0.5},
			{-1.0, 0}, {1.0, 0},
		}
	}
	offs := make([]offset, count)
	for i := range offs {
		offs[i] = offset{(rand.Float64() - 0.5) * 1.5, (rand.Float64() - 0.5) * 1.5}
	}
	return offs
}

// --- Admin overrides ---

func (m *Match) SetUnlimitedElixir(playerID string, enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ov := m.overrides[playerID]; ov != nil {
		ov.UnlimitedElixir = enabled
	}
}

func (m *Match) SetInvulnerable(playerID string, enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ov := m.overrides[playerID]; ov != nil {
		ov.Invulnerable = enabled
	}
}

func (m *Match) SetFrozen(playerID string, enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ov := m.overrides[playerID]; ov != nil {
		ov.Frozen = enabled
	}
}

func (m *Match) SetElixirMultiplier(playerID string, mult float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ov := m.overrides[playerID]; ov != nil {
		ov.ElixirMult = mult
	}
}

func (m *Match) SetAutoplay(playerID string, enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ov := m.overrides[playerID]; ov != nil {
		ov.Autoplay = enabled
	}
}

// DestroyTowers zeroes the HP of every tower owned by the player. The death
// transitions (and any resulting match end) resolve on the next tick.
func (m *Match) DestroyTowers(playerID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entities {
		if e.OwnerID == playerID && e.Card.Type == TypeBuilding {
			e.HP = 0
		}
	}
}

// ForceEnd terminates the match with the given winner ("" = no winner)
func (m *Match) ForceEnd(winnerID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.endLocked(winnerID, ReasonForced)
}

// Forfeit terminates the match against the disconnected player
func (m *Match) Forfeit(loserID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.endLocked(m.opponentOf(loserID), ReasonForfeit)
}

func (m *Match) opponentOf(playerID string) string {
	if playerID == m.p1 {
		return m.p2
	}
	return m.p1
}

// LiveStats is a lightweight probe for the admin inspector
type LiveStats struct {
	Elixir     float64 `json:"elixir"`
	TowerHP    int     `json:"towerHp"`
	UnitCount  int     `json:"unitCount"`
	Frozen     bool    `json:"frozen"`
	ElixirMult float64 `json:"elixirMult"`
}

// GetLiveStats returns live numbers for one player
func (m *Match) GetLiveStats(playerID string) LiveStats {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := LiveStats{ElixirMult: 1}
	stats.Elixir = round1(m.elixir[playerID])
	if ov := m.overrides[playerID]; ov != nil {
		stats.Frozen = ov.Frozen
		stats.ElixirMult = ov.ElixirMult
	}
	for _, e := range m.entities {
		if e.OwnerID != playerID || e.State == StateDying {
			continue
		}
		if e.Card.Type == TypeBuilding {
			stats.TowerHP += e.HP
		} else {
			stats.UnitCount++
		}
	}
	return stats
}

// HasParticipant reports whether the player belongs to this match
func (m *Match) HasParticipant(playerID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.elixir[playerID]
	return ok
}

// ConnFor returns the recorded connection for a participant
func (m *Match) ConnFor(playerID string) Broadcaster {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.conns[playerID]
}

// SetConn rebinds a participant's connection after a reconnect
func (m *Match) SetConn(playerID string, conn Broadcaster) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.elixir[playerID]; ok {
		m.conns[playerID] = conn
	}
}

// IsOver reports whether the match reached its terminal state
func (m *Match) IsOver() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.over
}

// endLocked performs the one-shot terminal transition. Every termination
// path funnels through here; all calls after the first are no-ops.
func (m *Match) endLocked(winnerID, reason string) {
	if m.over {
		return
	}
	m.over = true
	m.winnerID = winnerID
	m.reason = reason
	m.stopLocked()

	trophies := 0
	if !m.friendly && winnerID != "" {
		trophies = winTrophyChange
	}

	result := MatchResult{
		MatchID:      m.ID,
		WinnerID:     winnerID,
		Reason:       reason,
		Friendly:     m.friendly,
		TrophyChange: trophies,
	}
	if winnerID != "" {
		result.LoserID = m.opponentOf(winnerID)
	}

	over := Envelope{T: MsgMatchOver, Data: MatchOverMsg{
		MatchID:      m.ID,
		WinnerID:     winnerID,
		Reason:       reason,
		TrophyChange: trophies,
	}}
	for _, c := range m.conns {
		if c != nil {
			c.SendJSON(over)
		}
	}

	log.Printf("[match %s] over: winner=%q reason=%s", m.ID, winnerID, reason)

	if m.onResult != nil {
		// Fire-and-forget: the economy collaborator must not block the engine
		go m.onResult(result)
	}
}

// broadcastSnapshot emits the per-tick state as a msgpack binary frame and
// clears the transient effect list.
func (m *Match) broadcastSnapshot() {
	snap := Snapshot{
		Time:        round1(m.timeLeft),
		Elixir:      make(map[string]float64, len(m.elixir)),
		Entities:    make([]EntityWire, 0, len(m.entities)),
		Projectiles: make([]ProjectileWire, 0, len(m.projectiles)),
		Effects:     m.effects,
		Tick:        m.tick,
	}
	for pid, bal := range m.elixir {
		snap.Elixir[pid] = round1(bal)
	}
	for _, e := range m.entities {
		snap.Entities = append(snap.Entities, e.ToState())
	}
	for _, p := range m.projectiles {
		snap.Projectiles = append(snap.Projectiles, p.ToState())
	}
	m.effects = nil

	data, err := msgpack.Marshal(snap)
	if err != nil {
		log.Printf("[match %s] snapshot marshal: %v", m.ID, err)
		return
	}
	for _, c := range m.conns {
		if c != nil {
			c.SendBinary(data)
		}
	}
}
